// Package logger 根据配置构建 zap 日志实例
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pocket-chat-server/internal/config"
)

// New 创建 zap.Logger
// json 格式使用生产环境编码器，console 格式使用开发环境编码器
// 参数:
//   - cfg: 日志配置
//
// 返回:
//   - *zap.Logger: 日志实例，调用方负责 Sync
//   - error: 级别或格式无法识别时返回错误
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		zc = zap.NewProductionConfig()
	case "console", "text":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
