package config

import (
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Configuration struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Database DatabaseConfig
	Notify   NotifyConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

type LoggingConfig struct {
	Level string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	Username        string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int
}

type NotifyConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	Channel       string
}

// Load builds the configuration from environment variables with defaults
// suitable for local development. No config file is required.
func Load() *Configuration {
	v := viper.New()

	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")
	v.SetDefault("SERVER_CORS_ORIGINS", []string{"*"})

	v.SetDefault("LOG_LEVEL", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USERNAME", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "renewmart_docs")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)

	v.SetDefault("NOTIFY_ENABLED", false)
	v.SetDefault("NOTIFY_REDIS_ADDR", "localhost:6379")
	v.SetDefault("NOTIFY_REDIS_PASSWORD", "")
	v.SetDefault("NOTIFY_CHANNEL", "renewmart.review.events")

	v.AutomaticEnv()

	return &Configuration{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:  v.GetDuration("SERVER_IDLE_TIMEOUT"),
			CORSOrigins:  v.GetStringSlice("SERVER_CORS_ORIGINS"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			Username:        v.GetString("DB_USERNAME"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: v.GetInt("DB_CONN_MAX_LIFETIME"),
		},
		Notify: NotifyConfig{
			Enabled:       v.GetBool("NOTIFY_ENABLED"),
			RedisAddr:     v.GetString("NOTIFY_REDIS_ADDR"),
			RedisPassword: v.GetString("NOTIFY_REDIS_PASSWORD"),
			Channel:       v.GetString("NOTIFY_CHANNEL"),
		},
	}
}

// LogConfig reports the effective configuration without credentials.
func LogConfig(cfg *Configuration, logger *zap.Logger) {
	logger.Info("Application configuration",
		zap.String("port", cfg.Server.Port),
		zap.Duration("read_timeout", cfg.Server.ReadTimeout),
		zap.Duration("write_timeout", cfg.Server.WriteTimeout),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Name),
		zap.Bool("notify_enabled", cfg.Notify.Enabled),
		zap.String("notify_channel", cfg.Notify.Channel),
	)
}
