package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	// Create a temporary config file
	tempFile, err := os.CreateTemp("", "config_test.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tempFile.Name())

	configContent := `
server:
  addr: ":9090"
storage:
  type: local_disk
  path: /tmp/kv-test.json
  format: gob
nats:
  url: "nats://localhost:4222"
  subject: "test.events"
log:
  level: debug
`

	if _, err = tempFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config content: %v", err)
	}
	tempFile.Close()

	cfg, err := Load(tempFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected addr ':9090', got '%s'", cfg.Server.Addr)
	}
	if cfg.Storage.Type != "local_disk" {
		t.Errorf("Expected storage type 'local_disk', got '%s'", cfg.Storage.Type)
	}
	if cfg.Storage.Path != "/tmp/kv-test.json" {
		t.Errorf("Expected path '/tmp/kv-test.json', got '%s'", cfg.Storage.Path)
	}
	if cfg.Storage.Format != "gob" {
		t.Errorf("Expected format 'gob', got '%s'", cfg.Storage.Format)
	}
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("Expected NATS URL 'nats://localhost:4222', got '%s'", cfg.NATS.URL)
	}
	if cfg.NATS.Subject != "test.events" {
		t.Errorf("Expected subject 'test.events', got '%s'", cfg.NATS.Subject)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level 'debug', got '%s'", cfg.Log.Level)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	tempFile, err := os.CreateTemp("", "config_defaults.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err = tempFile.WriteString("{}\n"); err != nil {
		t.Fatalf("Failed to write config content: %v", err)
	}
	tempFile.Close()

	cfg, err := Load(tempFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected default addr ':8080', got '%s'", cfg.Server.Addr)
	}
	if cfg.Storage.Type != "in_memory" {
		t.Errorf("Expected default storage type 'in_memory', got '%s'", cfg.Storage.Type)
	}
	if cfg.Storage.Path != "kv.json" {
		t.Errorf("Expected default path 'kv.json', got '%s'", cfg.Storage.Path)
	}
	if cfg.Storage.Format != "json" {
		t.Errorf("Expected default format 'json', got '%s'", cfg.Storage.Format)
	}
	if cfg.NATS.URL != "" {
		t.Errorf("Expected NATS disabled by default, got URL '%s'", cfg.NATS.URL)
	}
	if cfg.NATS.Subject != "kvstore.events" {
		t.Errorf("Expected default subject 'kvstore.events', got '%s'", cfg.NATS.Subject)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected default log level 'info', got '%s'", cfg.Log.Level)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing config file, got nil")
	}
}
