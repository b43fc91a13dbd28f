// Package database 负责建立数据库连接并执行版本化迁移
// 连接在进程启动时创建一次，显式传递给各个 Repository
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// 注册纯 Go 的 "sqlite" 驱动，供 sqlite_pure 使用
	_ "modernc.org/sqlite"

	"pocket-chat-server/internal/config"
)

// Open 根据配置打开数据库连接并配置连接池
// 参数:
//   - cfg: 数据库配置
//   - debug: 是否输出 SQL 日志
//
// 返回:
//   - *gorm.DB: 数据库句柄，进程退出前调用 Close
//   - error: 连接失败时返回错误
func Open(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	dialector, err := newDialector(cfg)
	if err != nil {
		return nil, err
	}

	// 配置 GORM logger
	gormLogger := logger.Default.LogMode(logger.Warn)
	if debug {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// 配置连接池
	// SQLite 只保留一个连接，事务内先读后写不会因为锁升级返回 SQLITE_BUSY
	if cfg.IsSQLite() {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)
	}

	return db, nil
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// newDialector 按驱动类型构建 GORM Dialector
func newDialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		if err := ensureDir(cfg.Path); err != nil {
			return nil, err
		}
		return sqlite.Open(withParams(cfg.Path, "_foreign_keys=1&_busy_timeout=5000")), nil

	case config.DriverSQLitePure:
		if err := ensureDir(cfg.Path); err != nil {
			return nil, err
		}
		// modernc.org/sqlite 注册的驱动名是 "sqlite"，mattn 的是 "sqlite3"
		return &sqlite.Dialector{
			DriverName: "sqlite",
			DSN:        withParams(cfg.Path, "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"),
		}, nil

	case config.DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
			cfg.Username,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Name,
			cfg.Charset,
		)
		return mysql.Open(dsn), nil

	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
			cfg.Host,
			cfg.Username,
			cfg.Password,
			cfg.Name,
			cfg.Port,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// withParams 在 SQLite DSN 后追加连接参数
func withParams(path, params string) string {
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

// ensureDir 确保 SQLite 文件所在目录存在
func ensureDir(path string) error {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}
