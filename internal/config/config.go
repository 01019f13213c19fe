package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Notifier driver constants
const (
	NotifierDriverNone = "none"
	NotifierDriverNATS = "nats"
	NotifierDriverAMQP = "amqp"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Stamper    StamperConfig    `mapstructure:"stamper"`
	Notifier   NotifierConfig   `mapstructure:"notifier"`
	Resilience ResilienceConfig `mapstructure:"resilience"`
	Signing    SigningConfig    `mapstructure:"signing"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Port    int    `mapstructure:"port"`
	Env     string `mapstructure:"env"`
	BaseURL string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // seconds in config
}

type RedisConfig struct {
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	StatusTTL time.Duration `mapstructure:"status_ttl"` // seconds in config
}

type StorageConfig struct {
	BasePath string        `mapstructure:"base_path"` // Root folder for stored objects
	Timeout  time.Duration `mapstructure:"timeout"`   // seconds in config
}

// StamperConfig points at the external document stamping service
type StamperConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	Timeout      time.Duration `mapstructure:"timeout"` // seconds in config
}

type NotifierConfig struct {
	Driver        string `mapstructure:"driver"` // "none", "nats" or "amqp"
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"` // NATS subject prefix / AMQP exchange name
}

type ResilienceConfig struct {
	RetryMaxAttempts        int           `mapstructure:"retry_max_attempts"`
	RetryInitialBackoff     time.Duration `mapstructure:"retry_initial_backoff_ms"`
	RetryMaxBackoff         time.Duration `mapstructure:"retry_max_backoff_ms"`
	BreakerEnabled          bool          `mapstructure:"breaker_enabled"`
	BreakerMinRequests      uint32        `mapstructure:"breaker_min_requests"`
	BreakerFailureRatio     float64       `mapstructure:"breaker_failure_ratio"`
	BreakerOpenTimeout      time.Duration `mapstructure:"breaker_open_timeout"` // seconds in config
	BreakerHalfOpenMaxCalls uint32        `mapstructure:"breaker_half_open_max_calls"`
}

type SigningConfig struct {
	ArtifactPrefix  string        `mapstructure:"artifact_prefix"`  // Storage prefix for stamped documents
	ArtifactTimeout time.Duration `mapstructure:"artifact_timeout"` // seconds in config
	TimeLocation    string        `mapstructure:"time_location"`    // Timezone used on stamp marks
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return load(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "signflow")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.env", "development")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "signflow")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 1800)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "signflow:")
	v.SetDefault("redis.status_ttl", 30)
	v.SetDefault("storage.base_path", "./data/storage")
	v.SetDefault("storage.timeout", 10)
	v.SetDefault("stamper.base_url", "")
	v.SetDefault("stamper.client_id", "")
	v.SetDefault("stamper.client_secret", "")
	v.SetDefault("stamper.timeout", 30)
	v.SetDefault("notifier.driver", NotifierDriverNone)
	v.SetDefault("notifier.url", "")
	v.SetDefault("notifier.subject_prefix", "signflow")
	v.SetDefault("resilience.retry_max_attempts", 3)
	v.SetDefault("resilience.retry_initial_backoff_ms", 100)
	v.SetDefault("resilience.retry_max_backoff_ms", 400)
	v.SetDefault("resilience.breaker_enabled", true)
	v.SetDefault("resilience.breaker_min_requests", 10)
	v.SetDefault("resilience.breaker_failure_ratio", 0.5)
	v.SetDefault("resilience.breaker_open_timeout", 30)
	v.SetDefault("resilience.breaker_half_open_max_calls", 2)
	v.SetDefault("signing.artifact_prefix", "signed")
	v.SetDefault("signing.artifact_timeout", 60)
	v.SetDefault("signing.time_location", "UTC")
	v.SetDefault("logging.level", "info")
}

func load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Convert plain numbers to durations
	cfg.Database.ConnMaxLifetime = cfg.Database.ConnMaxLifetime * time.Second
	cfg.Redis.StatusTTL = cfg.Redis.StatusTTL * time.Second
	cfg.Storage.Timeout = cfg.Storage.Timeout * time.Second
	cfg.Stamper.Timeout = cfg.Stamper.Timeout * time.Second
	cfg.Resilience.RetryInitialBackoff = cfg.Resilience.RetryInitialBackoff * time.Millisecond
	cfg.Resilience.RetryMaxBackoff = cfg.Resilience.RetryMaxBackoff * time.Millisecond
	cfg.Resilience.BreakerOpenTimeout = cfg.Resilience.BreakerOpenTimeout * time.Second
	cfg.Signing.ArtifactTimeout = cfg.Signing.ArtifactTimeout * time.Second

	if cfg.Notifier.Driver == "" {
		cfg.Notifier.Driver = NotifierDriverNone
	}

	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// StampLocation returns the timezone used when formatting signing times on stamps
func (c *Config) StampLocation() *time.Location {
	loc, err := time.LoadLocation(c.Signing.TimeLocation)
	if err != nil {
		return time.UTC
	}
	return loc
}
