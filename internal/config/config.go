// Package config provides configuration management for the match predictor.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/match-predictor/internal/models"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Feed       FeedConfig       `mapstructure:"feed" validate:"required"`
	Prediction PredictionConfig `mapstructure:"prediction" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Features   FeaturesConfig   `mapstructure:"features"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// FeedConfig describes the live odds feed and how politely to poll it
type FeedConfig struct {
	BaseURL        string  `mapstructure:"base_url" validate:"required,url"`
	Sport          int     `mapstructure:"sport" validate:"required,gt=0"`
	Count          int     `mapstructure:"count" validate:"required,gt=0,lte=1000"`
	Language       string  `mapstructure:"language" validate:"required"`
	Group          int     `mapstructure:"group" validate:"required,gt=0"`
	Mode           int     `mapstructure:"mode" validate:"required,gt=0"`
	CountryCode    int     `mapstructure:"country_code" validate:"required,gt=0"`
	Country        string  `mapstructure:"country"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	CacheTTLSecs   int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// PredictionConfig holds the default alternative-market band and worker count
type PredictionConfig struct {
	MinPrice         float64 `mapstructure:"min_price" validate:"gte=0"`
	MaxPrice         float64 `mapstructure:"max_price" validate:"required,gt=0"`
	ProbabilityFloor float64 `mapstructure:"probability_floor" validate:"gte=0,lte=1"`
	Workers          int     `mapstructure:"workers" validate:"required,gt=0"`
}

// SchedulerConfig represents background job scheduling
type SchedulerConfig struct {
	ArchiveCron            string `mapstructure:"archive_cron" validate:"required,cron"`
	RefreshIntervalSeconds int    `mapstructure:"refresh_interval_seconds" validate:"required,gt=0"`
}

// ServerConfig represents the HTTP API server
type ServerConfig struct {
	Port           int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	PersistenceEnabled bool `mapstructure:"persistence_enabled"`
	WebsocketEnabled   bool `mapstructure:"websocket_enabled"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Band returns the configured default band for alternative markets
func (c *Config) Band() models.Band {
	return models.Band{
		MinPrice:         c.Prediction.MinPrice,
		MaxPrice:         c.Prediction.MaxPrice,
		ProbabilityFloor: c.Prediction.ProbabilityFloor,
	}
}

// FeedTimeout returns the feed request timeout
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.Feed.TimeoutSeconds) * time.Second
}

// FeedCacheTTL returns how long fetched feed envelopes stay cached
func (c *Config) FeedCacheTTL() time.Duration {
	return time.Duration(c.Feed.CacheTTLSecs) * time.Second
}

// RefreshInterval returns the prediction refresh period
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Scheduler.RefreshIntervalSeconds) * time.Second
}
