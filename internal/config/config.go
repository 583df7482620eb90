package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Capture    CaptureConfig    `mapstructure:"capture"`
	Forwarding ForwardingConfig `mapstructure:"forwarding"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty means the relay runs
	// with an in-memory store (development only).
	URL            string `mapstructure:"url"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type CaptureConfig struct {
	// ReservedPath is the single path segment exempt from capture.
	ReservedPath  string `mapstructure:"reserved_path"`
	MaxBodyBytes  int64  `mapstructure:"max_body_bytes"`
	RetentionDays int    `mapstructure:"retention_days"`
}

type ForwardingConfig struct {
	// Target is the optional downstream host every captured event is
	// replicated to. Empty disables forwarding.
	Target    string        `mapstructure:"target"`
	Scheme    string        `mapstructure:"scheme"`
	Timeout   time.Duration `mapstructure:"timeout"`
	QueueSize int           `mapstructure:"queue_size"`
	Workers   int           `mapstructure:"workers"`
}

type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Name    string `mapstructure:"name"`
}

type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("database.url", "")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.migrations_path", "migrations")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "hookrelay")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("capture.reserved_path", "graphql")
	v.SetDefault("capture.max_body_bytes", 1048576)
	v.SetDefault("capture.retention_days", 0)
	v.SetDefault("forwarding.target", "")
	v.SetDefault("forwarding.scheme", "https")
	v.SetDefault("forwarding.timeout", "10s")
	v.SetDefault("forwarding.queue_size", 1000)
	v.SetDefault("forwarding.workers", 4)
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.name", "hookrelay")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/hookrelay")
	}

	// Environment variables override
	v.SetEnvPrefix("RELAY")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
