package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all connector configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	ERP       ERPConfig
	Export    ExportConfig
	Lock      LockConfig
	Telemetry TelemetryConfig
}

// AppConfig holds process-wide settings
type AppConfig struct {
	Name string
	Env  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
	// SQLLevel is the GORM log level: silent, error, warn, info
	SQLLevel string
}

// DatabaseConfig holds the shop database connection settings.
// Driver is either "postgres" or "sqlite"; Path is only used by sqlite.
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings for the export lock
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// ERPConfig holds the plentymarkets SOAP endpoint settings
type ERPConfig struct {
	Endpoint        string        `validate:"required,url"`
	Username        string        `validate:"required"`
	Token           string        `validate:"required"`
	Timeout         time.Duration `validate:"gt=0"`
	MaxResponseSize int64         `validate:"gt=0"`
	// ReadRetries is how often a failed catalog read is retried. Writes
	// are never retried.
	ReadRetries     int           `validate:"gte=0,lte=10"`
}

// ExportConfig holds the defaults applied when building remote orders,
// categories and items. Zero IDs mean "not configured".
type ExportConfig struct {
	OrderMarkingID         int64  `validate:"gte=0"`
	ResponsibleUserID      int64  `validate:"gte=0"`
	DefaultReferrerID      int64  `validate:"gte=0"`
	PaidStatusID           int64  `validate:"gt=0"`
	DebitMethodOfPaymentID int64  `validate:"gt=0"`
	ItemTextSync           bool
	PrimaryLanguage        string `validate:"len=2,alpha"`
	ItemNumberPrefix       string `validate:"omitempty,max=16"`
}

// LockConfig controls how long export locks are held before they expire
type LockConfig struct {
	OrderTTL    time.Duration
	CategoryTTL time.Duration
	KeyPrefix   string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool
}

// Load loads configuration from a TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with CONNECTOR_ prefix (e.g., CONNECTOR_ERP_TOKEN)
// 2. configFile, or config.toml found in the search paths when empty
// 3. Built-in defaults
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/connector")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetDefault("erp.read_retries", 2)

	v.SetEnvPrefix("CONNECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			Path:            v.GetString("database.path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:    v.GetString("log.level"),
			Format:   v.GetString("log.format"),
			Output:   v.GetString("log.output"),
			SQLLevel: v.GetString("log.sql_level"),
		},
		ERP: ERPConfig{
			Endpoint:        v.GetString("erp.endpoint"),
			Username:        v.GetString("erp.username"),
			Token:           v.GetString("erp.token"),
			Timeout:         v.GetDuration("erp.timeout"),
			MaxResponseSize: v.GetInt64("erp.max_response_size"),
			ReadRetries:     v.GetInt("erp.read_retries"),
		},
		Export: ExportConfig{
			OrderMarkingID:         v.GetInt64("export.order_marking_id"),
			ResponsibleUserID:      v.GetInt64("export.responsible_user_id"),
			DefaultReferrerID:      v.GetInt64("export.default_referrer_id"),
			PaidStatusID:           v.GetInt64("export.paid_status_id"),
			DebitMethodOfPaymentID: v.GetInt64("export.debit_method_of_payment_id"),
			ItemTextSync:           v.GetBool("export.item_text_sync"),
			PrimaryLanguage:        v.GetString("export.primary_language"),
			ItemNumberPrefix:       v.GetString("export.item_number_prefix"),
		},
		Lock: LockConfig{
			OrderTTL:    v.GetDuration("lock.order_ttl"),
			CategoryTTL: v.GetDuration("lock.category_ttl"),
			KeyPrefix:   v.GetString("lock.key_prefix"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "plentymarkets-connector"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "shopware"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "connector.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Log.SQLLevel == "" {
		cfg.Log.SQLLevel = "warn"
	}
	if cfg.ERP.Timeout == 0 {
		cfg.ERP.Timeout = 60 * time.Second
	}
	if cfg.ERP.MaxResponseSize == 0 {
		cfg.ERP.MaxResponseSize = 10 << 20 // 10MB
	}
	if cfg.Export.PaidStatusID == 0 {
		cfg.Export.PaidStatusID = 12
	}
	if cfg.Export.DebitMethodOfPaymentID == 0 {
		cfg.Export.DebitMethodOfPaymentID = 3
	}
	if cfg.Export.PrimaryLanguage == "" {
		cfg.Export.PrimaryLanguage = "de"
	}
	if cfg.Lock.OrderTTL == 0 {
		cfg.Lock.OrderTTL = 5 * time.Minute
	}
	if cfg.Lock.CategoryTTL == 0 {
		cfg.Lock.CategoryTTL = 30 * time.Minute
	}
	if cfg.Lock.KeyPrefix == "" {
		cfg.Lock.KeyPrefix = "connector:lock:"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
}

// validate performs validation on the configuration. The ERP section is
// validated where the client is built, so commands that never talk to the
// ERP (migrate) work without credentials.
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" && c.Database.Driver == "postgres" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
	}

	if err := validator.New().Struct(c.Export); err != nil {
		return fmt.Errorf("invalid export configuration: %w", err)
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// ValidateERP checks the ERP section before a client is created
func (c *Config) ValidateERP() error {
	if err := validator.New().Struct(c.ERP); err != nil {
		return fmt.Errorf("invalid erp configuration: %w", err)
	}
	return nil
}

// DSN returns the postgres connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// RedisAddr returns host:port for the Redis client
func (r *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
