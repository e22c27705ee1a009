package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Data     DataConfig     `envconfig:"CSV"`
	Cache    CacheConfig    `envconfig:"CACHE"`
	Logger   LoggerConfig   `envconfig:"LOG"`
	Tracing  TracingConfig  `envconfig:"TRACING"`
	Report   ReportConfig   `envconfig:"REPORT"`
	Upload   UploadConfig   `envconfig:"UPLOAD"`
	Security SecurityConfig `envconfig:"SECURITY"`
}

type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"localhost" validate:"required"`
	Port            int           `envconfig:"PORT" default:"8084" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s" validate:"gt=0"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s" validate:"gt=0"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s" validate:"gte=0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s" validate:"gt=0"`
}

// DataConfig points at the order export served by the dashboard. CSV and
// XLSX files are both accepted.
type DataConfig struct {
	File string `envconfig:"FILE" default:"data.csv" validate:"required"`
}

type CacheConfig struct {
	Enabled bool   `envconfig:"ENABLED" default:"true"`
	Dir     string `envconfig:"DIR" default:".cache" validate:"required_if=Enabled true"`
}

type LoggerConfig struct {
	Level  string `envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
}

type TracingConfig struct {
	Enabled bool `envconfig:"ENABLED" default:"false"`
}

type ReportConfig struct {
	TopCustomers int `envconfig:"TOP_CUSTOMERS" default:"5" validate:"min=1,max=1000"`
}

type UploadConfig struct {
	MaxBytes int64 `envconfig:"MAX_BYTES" default:"10485760" validate:"min=1024"`
}

type SecurityConfig struct {
	EnableCSRF      bool     `envconfig:"CSRF_ENABLED" default:"true"`
	EnableRateLimit bool     `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRPS    int      `envconfig:"RATE_LIMIT_RPS" default:"100" validate:"gt=0"`
	RateLimitBurst  int      `envconfig:"RATE_LIMIT_BURST" default:"10" validate:"gt=0"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8084"`
	TrustedProxies  []string `envconfig:"TRUSTED_PROXIES" default:"127.0.0.1"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the configuration from the environment, applying defaults for
// unset variables, and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	return validate.Struct(c)
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
