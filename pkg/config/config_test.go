package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "INFO"

content:
  type: "filesystem"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults were applied
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.Workers != 5 {
		t.Errorf("Expected default workers 5, got %d", cfg.Server.Workers)
	}
	if cfg.Admission.MaxConcurrentPosts != 5 {
		t.Errorf("Expected default max_concurrent_posts 5, got %d", cfg.Admission.MaxConcurrentPosts)
	}
	if cfg.Upload.Delay != 2*time.Second {
		t.Errorf("Expected default upload delay 2s, got %v", cfg.Upload.Delay)
	}
	if cfg.AccessLog.Path != "server.log" {
		t.Errorf("Expected default access log path 'server.log', got %q", cfg.AccessLog.Path)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Point at a non-existent file so the user's config in
	// ~/.config/threadserve/ is never picked up.
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error with missing config file, got: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Content.Type != "filesystem" {
		t.Errorf("Expected default content type 'filesystem', got %q", cfg.Content.Type)
	}
	if path, _ := cfg.Content.Filesystem["path"].(string); path != "static" {
		t.Errorf("Expected default filesystem path 'static', got %q", path)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	configContent := `
logging:
  level: INFO
  invalid yaml here [[[
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_FullConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "DEBUG"
  output: "stderr"

server:
  host: "0.0.0.0"
  port: 9000
  workers: 8
  queue_depth: 128
  shutdown_timeout: 10s

admission:
  max_concurrent_posts: 3

upload:
  delay: 500ms

content:
  type: "badger"
  badger:
    path: "/var/lib/threadserve/content"

access_log:
  path: "/var/log/threadserve/server.log"

rate_limit:
  connections_per_second: 100
  burst: 200

metrics:
  enabled: true
  port: 9100
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected host '0.0.0.0', got %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.Workers != 8 {
		t.Errorf("Expected workers 8, got %d", cfg.Server.Workers)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected shutdown_timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Admission.MaxConcurrentPosts != 3 {
		t.Errorf("Expected max_concurrent_posts 3, got %d", cfg.Admission.MaxConcurrentPosts)
	}
	if cfg.Upload.Delay != 500*time.Millisecond {
		t.Errorf("Expected upload delay 500ms, got %v", cfg.Upload.Delay)
	}
	if cfg.Content.Type != "badger" {
		t.Errorf("Expected content type 'badger', got %q", cfg.Content.Type)
	}
	if path, _ := cfg.Content.Badger["path"].(string); path != "/var/lib/threadserve/content" {
		t.Errorf("Expected badger path '/var/lib/threadserve/content', got %q", path)
	}
	if cfg.RateLimit.ConnectionsPerSecond != 100 {
		t.Errorf("Expected connections_per_second 100, got %d", cfg.RateLimit.ConnectionsPerSecond)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Expected metrics to be enabled")
	}
	if cfg.Metrics.Port != 9100 {
		t.Errorf("Expected metrics port 9100, got %d", cfg.Metrics.Port)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "INFO"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("THREADSERVE_LOGGING_LEVEL", "ERROR")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected env override level 'ERROR', got %q", cfg.Logging.Level)
	}
}
