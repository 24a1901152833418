package config

import (
	"sync/atomic"
)

var configValue atomic.Value

func GetConfig() *Config {
	return configValue.Load().(*Config)
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

type Config struct {
	Environment string         `mapstructure:"environment"`
	Location    LocationConfig `mapstructure:"location"`
	Forecast    ForecastConfig `mapstructure:"forecast"`
	Database    DatabaseConfig `mapstructure:"database"`
	Email       EmailConfig    `mapstructure:"email"`
	Logging     LoggingConfig  `mapstructure:"logging"`
}

type LocationConfig struct {
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
}

type ForecastConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Days        int    `mapstructure:"days"`
	Timeout     int    `mapstructure:"timeout"`
	Retries     int    `mapstructure:"retries"`
	RetryWaitMS int    `mapstructure:"retry_wait_ms"`
	CacheDir    string `mapstructure:"cache_dir"`
	CacheTTL    int    `mapstructure:"cache_ttl"`
}

type DatabaseConfig struct {
	Path  string `mapstructure:"path"`
	Table string `mapstructure:"table"`
}

// EmailConfig carries the delivery credential and sender address so the
// notifier never reads the process environment itself. APIKey and
// Sender are bound to the SENDGRID_API_KEY and EMAIL_USER environment
// variables by the loader.
type EmailConfig struct {
	Sender         string `mapstructure:"sender"`
	APIKey         string `mapstructure:"api_key"`
	Host           string `mapstructure:"host"`
	Subject        string `mapstructure:"subject"`
	AttachmentName string `mapstructure:"attachment_name"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Location: LocationConfig{
			Latitude:  40.7143,
			Longitude: -74.006,
		},
		Forecast: ForecastConfig{
			BaseURL:     "https://api.open-meteo.com",
			Days:        14,
			Timeout:     10,
			Retries:     5,
			RetryWaitMS: 200,
			CacheDir:    ".cache",
			CacheTTL:    3600,
		},
		Database: DatabaseConfig{
			Path:  "weather.db",
			Table: "weather_forecast",
		},
		Email: EmailConfig{
			Host:           "https://api.sendgrid.com",
			Subject:        "Weather Report",
			AttachmentName: "weather_report.csv",
		},
		Logging: LoggingConfig{
			Level:      "info",
			OutputPath: "weather-report.log",
		},
	}
}
