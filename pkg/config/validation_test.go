package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()

	if err := Validate(cfg); err != nil {
		t.Fatalf("Expected default config to validate, got: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "VERBOSE"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for invalid log level, got nil")
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for out-of-range port, got nil")
	}
}

func TestValidate_ZeroWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Workers = -1

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for negative worker count, got nil")
	}
}

func TestValidate_UnknownContentType(t *testing.T) {
	cfg := validConfig()
	cfg.Content.Type = "redis"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for unknown content type, got nil")
	}
}

func TestValidate_FilesystemMissingPath(t *testing.T) {
	cfg := validConfig()
	cfg.Content.Filesystem = map[string]any{}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error for filesystem store without path, got nil")
	}
	if !strings.Contains(err.Error(), "path is required") {
		t.Errorf("Expected 'path is required' in error, got: %v", err)
	}
}

func TestValidate_BadgerMissingPath(t *testing.T) {
	cfg := validConfig()
	cfg.Content.Type = "badger"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for badger store without path, got nil")
	}
}

func TestValidate_BadgerInMemory(t *testing.T) {
	cfg := validConfig()
	cfg.Content.Type = "badger"
	cfg.Content.Badger = map[string]any{"in_memory": true}

	if err := Validate(cfg); err != nil {
		t.Fatalf("Expected in-memory badger config to validate, got: %v", err)
	}
}

func TestValidate_S3MissingBucket(t *testing.T) {
	cfg := validConfig()
	cfg.Content.Type = "s3"
	cfg.Content.S3 = map[string]any{"region": "us-east-1"}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error for S3 store without bucket, got nil")
	}
	if !strings.Contains(err.Error(), "bucket is required") {
		t.Errorf("Expected 'bucket is required' in error, got: %v", err)
	}
}

func TestValidate_S3MissingRegion(t *testing.T) {
	cfg := validConfig()
	cfg.Content.Type = "s3"
	cfg.Content.S3 = map[string]any{"bucket": "content"}

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for S3 store without region, got nil")
	}
}

func TestValidate_BurstWithoutRate(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.Burst = 50

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for burst without a sustained rate, got nil")
	}
}
