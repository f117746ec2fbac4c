package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("PRINTBRIDGE_CONFIG")
	defer os.Setenv("PRINTBRIDGE_CONFIG", originalEnv)

	os.Setenv("PRINTBRIDGE_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails when database path is empty.
func TestRun_MissingDatabasePath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
printer:
  id: test-printer
  backend: auto

mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
    tls: false
  qos: 1
  account: test-account

database:
  path: ""
  wal_mode: true
  busy_timeout: 5

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("PRINTBRIDGE_CONFIG")
	defer os.Setenv("PRINTBRIDGE_CONFIG", originalEnv)
	os.Setenv("PRINTBRIDGE_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	originalEnv := os.Getenv("PRINTBRIDGE_CONFIG")
	defer os.Setenv("PRINTBRIDGE_CONFIG", originalEnv)

	os.Unsetenv("PRINTBRIDGE_CONFIG")

	path := getConfigPath()
	if path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	originalEnv := os.Getenv("PRINTBRIDGE_CONFIG")
	defer os.Setenv("PRINTBRIDGE_CONFIG", originalEnv)

	expected := "/custom/path/config.yaml"
	os.Setenv("PRINTBRIDGE_CONFIG", expected)

	path := getConfigPath()
	if path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestRun_StartupAndShutdown exercises the full startup path with no
// broker or printer reachable. Both connect failures are tolerated at
// startup, so run should block until the context cancels and then exit
// cleanly.
func TestRun_StartupAndShutdown(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")
	dbPath := filepath.Join(tmpDir, "test.db")

	configContent := `
printer:
  id: test-startup-printer
  queue_name: nonexistent_queue
  backend: queue

mqtt:
  broker:
    host: "127.0.0.1"
    port: 19999
    client_id: "test-startup"
    tls: false
  qos: 1
  account: test-account

recovery:
  poll_interval: 60
  max_attempts: 100
  reconnect_delay: 1

database:
  path: "` + dbPath + `"
  wal_mode: true
  busy_timeout: 5

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("PRINTBRIDGE_CONFIG")
	defer os.Setenv("PRINTBRIDGE_CONFIG", originalEnv)
	os.Setenv("PRINTBRIDGE_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := run(ctx)
	if err != nil {
		t.Logf("run() returned error: %v", err)
	}
}
