package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Gateway      GatewayConfig      `mapstructure:"gateway"`
	Webhook      WebhookConfig      `mapstructure:"webhook"`
	Contribution ContributionConfig `mapstructure:"contribution"`
	Task         TaskConfig         `mapstructure:"task"`
	Log          LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`
	BaseURL     string   `mapstructure:"base_url"` // 站点公网地址，用于回跳和通知地址
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"` // postgres 或 sqlite
	URL        string `mapstructure:"url"`    // 优先于分项配置
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	SSLMode    string `mapstructure:"sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"`
	MaxOpen    int    `mapstructure:"max_open"`
	MaxIdle    int    `mapstructure:"max_idle"`
	LogSQL     bool   `mapstructure:"log_sql"`
}

// GatewayConfig Mercado Pago 配置
type GatewayConfig struct {
	AccessToken         string        `mapstructure:"access_token"`
	APIBaseURL          string        `mapstructure:"api_base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxAmount           string        `mapstructure:"max_amount"`
	Sandbox             bool          `mapstructure:"sandbox"`
	StatementDescriptor string        `mapstructure:"statement_descriptor"`
	FallbackNotifyURL   string        `mapstructure:"fallback_notify_url"` // 本地地址无法接收回调时使用
}

// MaxAmountDecimal 单笔上限
func (g GatewayConfig) MaxAmountDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(g.MaxAmount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

type WebhookConfig struct {
	Secret      string        `mapstructure:"secret"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

type ContributionConfig struct {
	MinAmount     string        `mapstructure:"min_amount"`     // 0 表示不限制
	AttemptLimit  int           `mapstructure:"attempt_limit"`  // 0 表示不限制
	AttemptWindow time.Duration `mapstructure:"attempt_window"` // 同一邮箱的统计窗口
}

// MinAmountDecimal 最小贡献金额
func (c ContributionConfig) MinAmountDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(c.MinAmount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

type TaskConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	Interval           time.Duration `mapstructure:"interval"`
	PendingMinAge      time.Duration `mapstructure:"pending_min_age"`
	PendingExpireAfter time.Duration `mapstructure:"pending_expire_after"`
	Workers            int           `mapstructure:"workers"`
	BatchSize          int           `mapstructure:"batch_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

// Load 从默认位置加载配置
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile 加载指定文件，path 为空时搜索默认目录
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/giftreg")
	}

	setDefaults(v)

	// 自动读取环境变量，server.port -> SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.Database.URL = normalizeDatabaseURL(cfg.Database.URL)
	if cfg.Database.URL != "" {
		// 连接串只支持 postgres
		cfg.Database.Driver = "postgres"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://127.0.0.1:8080")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "wedding_gifts")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "wedding_gifts.db")
	v.SetDefault("database.max_open", 10)
	v.SetDefault("database.max_idle", 5)
	v.SetDefault("database.log_sql", false)

	v.SetDefault("gateway.access_token", "")
	v.SetDefault("gateway.api_base_url", "https://api.mercadopago.com")
	v.SetDefault("gateway.timeout", "10s")
	v.SetDefault("gateway.max_amount", "10000")
	v.SetDefault("gateway.sandbox", true)
	v.SetDefault("gateway.statement_descriptor", "PresenteCasamento")
	v.SetDefault("gateway.fallback_notify_url", "https://example.com/webhook/mercadopago")

	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.max_attempts", 3)
	v.SetDefault("webhook.retry_delay", "500ms")

	v.SetDefault("contribution.min_amount", "0")
	v.SetDefault("contribution.attempt_limit", 5)
	v.SetDefault("contribution.attempt_window", "5m")

	v.SetDefault("task.enabled", true)
	v.SetDefault("task.interval", "5m")
	v.SetDefault("task.pending_min_age", "15m")
	v.SetDefault("task.pending_expire_after", "48h")
	v.SetDefault("task.workers", 4)
	v.SetDefault("task.batch_size", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/app.log")
}

// bindLegacyEnv 兼容部署平台常用的环境变量名
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("server.port", "PORT", "SERVER_PORT")
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("gateway.access_token", "MERCADOPAGO_ACCESS_TOKEN", "GATEWAY_ACCESS_TOKEN")
	_ = v.BindEnv("webhook.secret", "MERCADOPAGO_WEBHOOK_SECRET", "WEBHOOK_SECRET")
}

// normalizeDatabaseURL postgres:// 转为 postgresql://
func normalizeDatabaseURL(url string) string {
	if strings.HasPrefix(url, "postgres://") {
		return "postgresql://" + strings.TrimPrefix(url, "postgres://")
	}
	return url
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway.timeout must be positive")
	}
	if !c.Gateway.MaxAmountDecimal().IsPositive() {
		return fmt.Errorf("gateway.max_amount must be a positive decimal")
	}
	if c.Webhook.MaxAttempts < 1 {
		return fmt.Errorf("webhook.max_attempts must be at least 1")
	}
	if c.Task.Enabled && c.Task.Interval <= 0 {
		return fmt.Errorf("task.interval must be positive")
	}
	if c.Task.Workers < 1 {
		c.Task.Workers = 1
	}
	return nil
}
