package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full application configuration, loaded from YAML with
// environment variable overrides.
type Config struct {
	Env     string        `yaml:"env" env:"APP_ENV" env-default:"local"`
	Log     LogConfig     `yaml:"log"`
	Backend BackendConfig `yaml:"backend"`
	Server  ServerConfig  `yaml:"server"`
	Monitor MonitorConfig `yaml:"monitor"`
	Auth    AuthConfig    `yaml:"auth"`

	// StoragePath is the sqlite database file holding fences, assignments
	// and settings.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"zone-monitor.db"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// BackendConfig points at the external GPS ingest API that supplies
// location samples.
type BackendConfig struct {
	BaseURL string `yaml:"base_url" env:"BACKEND_BASE_URL" env-required:"true"`
	APIKey  string `yaml:"api_key" env:"BACKEND_API_KEY"`
	Timeout int    `yaml:"timeout" env:"BACKEND_TIMEOUT" env-default:"10"` // seconds
}

// ServerConfig controls the local dashboard API server.
type ServerConfig struct {
	Port int `yaml:"port" env:"SERVER_PORT" env-default:"8090"`
}

// MonitorConfig tunes the compliance monitor. The settings store can
// override the refresh interval, alert delay and device timeout at runtime;
// these are the boot defaults.
type MonitorConfig struct {
	RefreshIntervalSeconds int `yaml:"refresh_interval" env:"MONITOR_REFRESH_INTERVAL" env-default:"5"`
	AlertDelaySeconds      int `yaml:"alert_delay" env:"MONITOR_ALERT_DELAY" env-default:"30"`
	DeviceTimeoutSeconds   int `yaml:"device_timeout" env:"MONITOR_DEVICE_TIMEOUT" env-default:"30"`

	// HistoryPerDevice bounds the in-memory sample buffer kept per device.
	HistoryPerDevice int `yaml:"history_per_device" env:"MONITOR_HISTORY_PER_DEVICE" env-default:"120"`

	// AlertOnSilentDevice treats a device that stops reporting during shift
	// hours as a violation and raises a no-signal alert after the same
	// debounce delay. Off by default.
	AlertOnSilentDevice bool `yaml:"alert_on_silent_device" env:"MONITOR_ALERT_ON_SILENT_DEVICE" env-default:"false"`
}

// AuthConfig holds the two demo dashboard accounts.
type AuthConfig struct {
	ManagerEmail    string `yaml:"manager_email" env:"AUTH_MANAGER_EMAIL" env-default:"manager@demo.com"`
	ManagerPassword string `yaml:"manager_password" env:"AUTH_MANAGER_PASSWORD" env-default:"manager123"`
	WorkerEmail     string `yaml:"worker_email" env:"AUTH_WORKER_EMAIL" env-default:"worker@demo.com"`
	WorkerPassword  string `yaml:"worker_password" env:"AUTH_WORKER_PASSWORD" env-default:"worker123"`

	// WorkerDeviceID maps the worker account to its tracked device.
	WorkerDeviceID string `yaml:"worker_device_id" env:"AUTH_WORKER_DEVICE_ID" env-default:"2"`
}

// LoadConfig reads configuration from the given YAML file, applying
// environment variable overrides. A missing file is not an error as long as
// the required values are present in the environment.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	return &cfg, nil
}
