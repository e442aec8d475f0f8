// Package config loads, defaults and validates the server configuration.
//
// Configuration sources, highest precedence first:
//  1. Environment variables (THREADSERVE_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// The content store section follows a type-plus-options pattern: the Type
// field selects the backend and only the matching options map is decoded,
// by the factory in factories.go.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete server configuration.
type Config struct {
	// Logging controls diagnostic log output.
	Logging LoggingConfig `mapstructure:"logging"`

	// Server sizes the accept/dispatch pipeline.
	Server ServerConfig `mapstructure:"server"`

	// Admission bounds concurrent POST operations.
	Admission AdmissionConfig `mapstructure:"admission"`

	// Upload controls POST handling.
	Upload UploadConfig `mapstructure:"upload"`

	// Content selects and configures the content store backend.
	Content ContentConfig `mapstructure:"content"`

	// AccessLog configures the per-request append-only log.
	AccessLog AccessLogConfig `mapstructure:"access_log"`

	// RateLimit throttles connection acceptance. Zero rate disables it.
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Metrics configures the optional Prometheus endpoint.
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig controls the diagnostic logger.
type LoggingConfig struct {
	// Level is the minimum level to output: DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Output is "stdout", "stderr" or a file path.
	Output string `mapstructure:"output" validate:"required"`
}

// ServerConfig sizes the pipeline.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"gte=0,lte=65535"`

	// Workers is the fixed worker pool size.
	Workers int `mapstructure:"workers" validate:"gt=0"`

	// QueueDepth bounds the ingress queue between acceptor and workers.
	QueueDepth int `mapstructure:"queue_depth" validate:"gt=0"`

	// ShutdownTimeout caps how long shutdown waits for workers to drain.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// AdmissionConfig bounds in-flight POSTs.
type AdmissionConfig struct {
	// MaxConcurrentPosts is the admission limit. POSTs beyond it are
	// rejected with 503.
	MaxConcurrentPosts int `mapstructure:"max_concurrent_posts" validate:"gte=0"`
}

// UploadConfig controls POST handling.
type UploadConfig struct {
	// Delay is the artificial processing time applied to every upload
	// while its admission slot is held.
	Delay time.Duration `mapstructure:"delay" validate:"gte=0"`
}

// ContentConfig selects the content store backend.
type ContentConfig struct {
	// Type is one of: filesystem, memory, badger, s3.
	Type string `mapstructure:"type" validate:"required,oneof=filesystem memory badger s3"`

	// Filesystem options, used when Type = "filesystem".
	Filesystem map[string]any `mapstructure:"filesystem"`

	// Memory options, used when Type = "memory".
	Memory map[string]any `mapstructure:"memory"`

	// Badger options, used when Type = "badger".
	Badger map[string]any `mapstructure:"badger"`

	// S3 options, used when Type = "s3".
	S3 map[string]any `mapstructure:"s3"`
}

// AccessLogConfig configures the request log.
type AccessLogConfig struct {
	// Path is the append-only log file.
	Path string `mapstructure:"path" validate:"required"`
}

// RateLimitConfig throttles the accept loop.
type RateLimitConfig struct {
	// ConnectionsPerSecond is the sustained accept rate. Zero disables
	// rate limiting.
	ConnectionsPerSecond uint `mapstructure:"connections_per_second"`

	// Burst is the bucket capacity. Defaults to the sustained rate.
	Burst uint `mapstructure:"burst"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"gte=0,lte=65535"`
}

// Load reads configuration from file and environment, applies defaults and
// validates the result. An empty configPath uses the default location.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures environment variables and the config file search.
// Environment variables use the THREADSERVE_ prefix with underscores, e.g.
// THREADSERVE_LOGGING_LEVEL=DEBUG.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("THREADSERVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file: defaults plus environment are enough.
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

// getConfigDir returns $XDG_CONFIG_HOME/threadserve, falling back to
// ~/.config/threadserve, then the current directory.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "threadserve")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "threadserve")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
