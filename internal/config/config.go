// Package config 负责加载和管理应用程序的配置
// 使用 viper 库支持 YAML 配置文件和环境变量覆盖
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 支持的数据库驱动
const (
	DriverSQLite     = "sqlite"      // mattn/go-sqlite3（需要 cgo）
	DriverSQLitePure = "sqlite_pure" // modernc.org/sqlite（纯 Go）
	DriverMySQL      = "mysql"
	DriverPostgres   = "postgres"
)

// Config 是应用程序的根配置结构
// 包含所有子配置模块
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置
	Redis    RedisConfig    `mapstructure:"redis"`    // Redis 配置（分布式追加锁）
	Gateway  GatewayConfig  `mapstructure:"gateway"`  // 上游转发配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
}

// ServerConfig 服务器相关配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`          // 监听端口，默认 8083
	Mode         string        `mapstructure:"mode"`          // 运行模式: debug / release
	CORS         []string      `mapstructure:"cors"`          // CORS 允许的域名
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`  // 读取请求超时
	WriteTimeout time.Duration `mapstructure:"write_timeout"` // 写响应超时，必须大于上游超时
	MaxBodyMB    int64         `mapstructure:"max_body_mb"`   // 请求体大小上限（MB）
}

// DatabaseConfig 数据库连接配置
// sqlite / sqlite_pure 只使用 Path，mysql / postgres 使用其余字段
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`         // sqlite / sqlite_pure / mysql / postgres
	Path         string `mapstructure:"path"`           // SQLite 文件路径
	Host         string `mapstructure:"host"`           // 数据库主机地址
	Port         int    `mapstructure:"port"`           // 数据库端口
	Username     string `mapstructure:"username"`       // 数据库用户名
	Password     string `mapstructure:"password"`       // 数据库密码
	Name         string `mapstructure:"name"`           // 数据库名称
	Charset      string `mapstructure:"charset"`        // 字符集（mysql）
	SSLMode      string `mapstructure:"sslmode"`        // sslmode（postgres）
	MaxIdleConns int    `mapstructure:"max_idle_conns"` // 最大空闲连接数
	MaxOpenConns int    `mapstructure:"max_open_conns"` // 最大打开连接数
	MaxLifetime  int    `mapstructure:"max_lifetime"`   // 连接最大生命周期（秒）
}

// IsSQLite 是否使用 SQLite 驱动
func (d DatabaseConfig) IsSQLite() bool {
	return d.Driver == DriverSQLite || d.Driver == DriverSQLitePure
}

// RedisConfig Redis 连接配置
// 仅在多实例共享同一数据库时需要开启
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`   // 是否启用 Redis 锁
	Host     string        `mapstructure:"host"`      // Redis 主机地址
	Port     int           `mapstructure:"port"`      // Redis 端口
	Username string        `mapstructure:"username"`  // Redis 用户名
	Password string        `mapstructure:"password"`  // Redis 密码
	DB       int           `mapstructure:"db"`        // 数据库索引 (0-15)
	PoolSize int           `mapstructure:"pool_size"` // 连接池大小
	LockTTL  time.Duration `mapstructure:"lock_ttl"`  // 锁的最长持有时间
	LockWait time.Duration `mapstructure:"lock_wait"` // 获取锁的最长等待时间
}

// GatewayConfig 上游转发配置
type GatewayConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`        // 单次上游调用的总超时
	MaxIdleConns int           `mapstructure:"max_idle_conns"` // 共享连接池的空闲连接数
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug/info/warn/error
	Format string `mapstructure:"format"` // 日志格式: json/console
}

// Load 从指定路径加载配置文件
// 支持环境变量覆盖配置项
// 参数:
//   - configPath: 配置文件目录路径 (如 "./configs")
//
// 返回:
//   - *Config: 配置对象
//   - error: 如果加载失败则返回错误
func Load(configPath string) (*Config, error) {
	// 配置目录下的 .env 先写入进程环境，已存在的环境变量不会被覆盖
	if err := godotenv.Load(filepath.Join(configPath, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	// 启用环境变量
	// 例如: DATABASE_DRIVER -> database.driver
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVariables(v)
	setDefaults(v)

	// 读取配置文件（如果不存在则使用默认值和环境变量）
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查配置的合法性
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverSQLitePure:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for driver %q", c.Database.Driver)
		}
	case DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway.timeout must be positive, got %s", c.Gateway.Timeout)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %q", c.Log.Level)
	}

	if c.Redis.Enabled && c.Redis.LockTTL <= 0 {
		return fmt.Errorf("redis.lock_ttl must be positive when redis is enabled")
	}
	return nil
}

// bindEnvVariables 绑定环境变量到配置项
func bindEnvVariables(v *viper.Viper) {
	// 服务器配置
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// 数据库配置
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.path", "DATABASE_PATH")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.username", "DATABASE_USERNAME")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.name", "DATABASE_NAME")

	// Redis 配置
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// 转发配置
	v.BindEnv("gateway.timeout", "GATEWAY_TIMEOUT")

	// 日志配置
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
}

// setDefaults 设置配置项的默认值
// 当配置文件中没有指定某个值时，将使用这里设置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.port", 8083)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors", []string{"*"})
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "330s")
	v.SetDefault("server.max_body_mb", 50)

	// 数据库默认配置
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "./data/chat.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.max_lifetime", 3600)

	// Redis 默认配置
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.lock_ttl", "30s")
	v.SetDefault("redis.lock_wait", "10s")

	// 转发默认配置
	v.SetDefault("gateway.timeout", "300s")
	v.SetDefault("gateway.max_idle_conns", 100)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
