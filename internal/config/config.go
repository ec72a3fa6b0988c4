// Package config loads application configuration from file and environment.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Catalog  CatalogConfig  `yaml:"catalog" mapstructure:"catalog"`
	Resolver ResolverConfig `yaml:"resolver" mapstructure:"resolver"`
	Ticket   TicketConfig   `yaml:"ticket" mapstructure:"ticket"`
	SMS      SMSConfig      `yaml:"sms" mapstructure:"sms"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the ticket persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite, postgres or memory
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CatalogConfig configures the zone/street catalog source.
type CatalogConfig struct {
	Path           string  `yaml:"path" mapstructure:"path"`
	DefaultRadiusM float64 `yaml:"default_radius_m" mapstructure:"default_radius_m"`
}

// ProviderConfig configures one reverse-geocode provider. Providers are
// queried in list order.
type ProviderConfig struct {
	Name        string  `yaml:"name" mapstructure:"name"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateRPS     float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
}

// Timeout returns the per-call timeout as a duration.
func (p ProviderConfig) Timeout() time.Duration {
	if p.TimeoutSecs <= 0 {
		return 8 * time.Second
	}
	return time.Duration(p.TimeoutSecs) * time.Second
}

// ResolverConfig configures the resolution chain.
type ResolverConfig struct {
	NearestMaxDistanceM float64          `yaml:"nearest_max_distance_m" mapstructure:"nearest_max_distance_m"`
	Providers           []ProviderConfig `yaml:"providers" mapstructure:"providers"`
}

// TicketConfig configures the session lifecycle.
type TicketConfig struct {
	MaxDurationHours  int `yaml:"max_duration_hours" mapstructure:"max_duration_hours"`
	SweepIntervalSecs int `yaml:"sweep_interval_secs" mapstructure:"sweep_interval_secs"`
}

// SweepInterval returns the sweep period as a duration.
func (t TicketConfig) SweepInterval() time.Duration {
	if t.SweepIntervalSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(t.SweepIntervalSecs) * time.Second
}

// SMSConfig configures the activation gateway. An empty GatewayURL selects
// the log-only transport.
type SMSConfig struct {
	GatewayURL  string `yaml:"gateway_url" mapstructure:"gateway_url"`
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	Sender      string `yaml:"sender" mapstructure:"sender"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PARKING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "parking.db")
	v.SetDefault("catalog.path", "catalog.yaml")
	v.SetDefault("catalog.default_radius_m", 100.0)
	v.SetDefault("resolver.nearest_max_distance_m", 200.0)
	v.SetDefault("ticket.max_duration_hours", 24)
	v.SetDefault("ticket.sweep_interval_secs", 60)
	v.SetDefault("sms.timeout_secs", 10)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
