package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_LoggingUppercasesLevel(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "debug"
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level 'DEBUG', got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaults_Server(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Host != "localhost" {
		t.Errorf("Expected default host 'localhost', got %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.Workers != 5 {
		t.Errorf("Expected default workers 5, got %d", cfg.Server.Workers)
	}
	if cfg.Server.QueueDepth != 64 {
		t.Errorf("Expected default queue depth 64, got %d", cfg.Server.QueueDepth)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestApplyDefaults_Admission(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Admission.MaxConcurrentPosts != 5 {
		t.Errorf("Expected default max_concurrent_posts 5, got %d", cfg.Admission.MaxConcurrentPosts)
	}
}

func TestApplyDefaults_Upload(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Upload.Delay != 2*time.Second {
		t.Errorf("Expected default upload delay 2s, got %v", cfg.Upload.Delay)
	}
}

func TestApplyDefaults_Content(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Content.Type != "filesystem" {
		t.Errorf("Expected default content type 'filesystem', got %q", cfg.Content.Type)
	}

	if cfg.Content.Filesystem == nil {
		t.Fatal("Expected Filesystem map to be initialized")
	}
	if path, ok := cfg.Content.Filesystem["path"]; !ok || path != "static" {
		t.Errorf("Expected default filesystem path 'static', got %v", path)
	}

	if cfg.Content.Memory == nil {
		t.Fatal("Expected Memory map to be initialized")
	}
	if cfg.Content.Badger == nil {
		t.Fatal("Expected Badger map to be initialized")
	}
	if cfg.Content.S3 == nil {
		t.Fatal("Expected S3 map to be initialized")
	}
}

func TestApplyDefaults_AccessLog(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.AccessLog.Path != "server.log" {
		t.Errorf("Expected default access log path 'server.log', got %q", cfg.AccessLog.Path)
	}
}

func TestApplyDefaults_Metrics(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Metrics.Enabled {
		t.Error("Expected metrics to be disabled by default")
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9000
	cfg.Server.Workers = 2
	cfg.Upload.Delay = 100 * time.Millisecond
	ApplyDefaults(cfg)

	if cfg.Server.Port != 9000 {
		t.Errorf("Expected explicit port 9000 to be preserved, got %d", cfg.Server.Port)
	}
	if cfg.Server.Workers != 2 {
		t.Errorf("Expected explicit workers 2 to be preserved, got %d", cfg.Server.Workers)
	}
	if cfg.Upload.Delay != 100*time.Millisecond {
		t.Errorf("Expected explicit delay 100ms to be preserved, got %v", cfg.Upload.Delay)
	}
}
