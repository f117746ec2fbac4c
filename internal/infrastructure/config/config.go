package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the print bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Printer   PrinterConfig   `yaml:"printer"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	QR        QRConfig        `yaml:"qr"`
	Recovery  RecoveryConfig  `yaml:"recovery"`
	Database  DatabaseConfig  `yaml:"database"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Debug     DebugConfig     `yaml:"debug"`
}

// PrinterConfig contains printer identity and connection settings.
type PrinterConfig struct {
	// ID identifies this printer on the MQTT topic tree.
	ID string `yaml:"id"`

	// QueueName is the CUPS queue name used by the buffered backend
	// and by named auto-detection.
	QueueName string `yaml:"queue_name"`

	// DevicePath is the character device used by the direct backend
	// (e.g. "/dev/usb/lp0").
	DevicePath string `yaml:"device_path"`

	// Backend selects the device backend: "queue", "direct", or "auto".
	Backend string `yaml:"backend"`

	// StatusInterval is the minimum seconds between status re-probes.
	StatusInterval int `yaml:"status_interval"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker MQTTBrokerConfig `yaml:"broker"`
	Auth   MQTTAuthConfig   `yaml:"auth"`
	QoS    int              `yaml:"qos"`

	// Account is the first segment of every topic. Defaults to the
	// auth username when empty.
	Account string `yaml:"account"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// HeartbeatConfig contains heartbeat publishing settings.
type HeartbeatConfig struct {
	// Interval is the seconds between heartbeats while connected.
	// Bounded to [1, 300].
	Interval int `yaml:"interval"`
}

// QRConfig contains QR code rendering settings.
type QRConfig struct {
	// ErrorCorrection is the recovery level for generated bitmaps:
	// "L", "M", "Q", or "H".
	ErrorCorrection string `yaml:"error_correction"`
}

// RecoveryConfig contains connection recovery settings.
type RecoveryConfig struct {
	// PollInterval is the seconds between recovery checks.
	PollInterval int `yaml:"poll_interval"`

	// MaxAttempts is the consecutive-failure threshold that signals
	// a fatal condition.
	MaxAttempts int `yaml:"max_attempts"`

	// ReconnectDelay is the seconds to pause between disconnect and
	// the fresh connect during a reconnect cycle.
	ReconnectDelay int `yaml:"reconnect_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DebugConfig contains development conveniences.
type DebugConfig struct {
	// TestPrint prints a canned test document on startup.
	TestPrint bool `yaml:"test_print"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: PRINTBRIDGE_SECTION_KEY
// For example: PRINTBRIDGE_DATABASE_PATH, PRINTBRIDGE_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	applyDerived(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Printer: PrinterConfig{
			QueueName:      "receipt",
			Backend:        "auto",
			StatusInterval: 30,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS: 1,
		},
		Heartbeat: HeartbeatConfig{
			Interval: 30,
		},
		QR: QRConfig{
			ErrorCorrection: "M",
		},
		Recovery: RecoveryConfig{
			PollInterval:   5,
			MaxAttempts:    5,
			ReconnectDelay: 2,
		},
		Database: DatabaseConfig{
			Path:        "./data/printbridge.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: PRINTBRIDGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Printer
	if v := os.Getenv("PRINTBRIDGE_PRINTER_ID"); v != "" {
		cfg.Printer.ID = v
	}
	if v := os.Getenv("PRINTBRIDGE_PRINTER_QUEUE"); v != "" {
		cfg.Printer.QueueName = v
	}
	if v := os.Getenv("PRINTBRIDGE_PRINTER_DEVICE"); v != "" {
		cfg.Printer.DevicePath = v
	}

	// Database
	if v := os.Getenv("PRINTBRIDGE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("PRINTBRIDGE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("PRINTBRIDGE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("PRINTBRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("PRINTBRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("PRINTBRIDGE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// applyDerived fills fields whose defaults depend on other fields.
func applyDerived(cfg *Config) {
	if cfg.MQTT.Account == "" {
		cfg.MQTT.Account = cfg.MQTT.Auth.Username
	}
	if cfg.MQTT.Broker.ClientID == "" {
		suffix := uuid.NewString()[:8]
		if cfg.Printer.ID != "" {
			suffix = cfg.Printer.ID
		}
		cfg.MQTT.Broker.ClientID = "printbridge-" + suffix
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Printer validation
	if c.Printer.ID == "" {
		errs = append(errs, "printer.id is required")
	}
	switch c.Printer.Backend {
	case "queue", "direct", "auto":
	default:
		errs = append(errs, "printer.backend must be queue, direct, or auto")
	}
	if c.Printer.Backend == "direct" && c.Printer.DevicePath == "" {
		errs = append(errs, "printer.device_path is required for the direct backend")
	}
	if c.Printer.StatusInterval < 1 {
		errs = append(errs, "printer.status_interval must be at least 1 second")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Account == "" {
		errs = append(errs, "mqtt.account is required (or set mqtt.auth.username)")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}

	// Heartbeat validation. The interval is bounded so a misconfigured
	// bridge can neither flood the broker nor go silent.
	if c.Heartbeat.Interval < 1 || c.Heartbeat.Interval > 300 {
		errs = append(errs, "heartbeat.interval must be between 1 and 300 seconds")
	}

	// QR validation
	switch strings.ToUpper(c.QR.ErrorCorrection) {
	case "L", "M", "Q", "H":
	default:
		errs = append(errs, "qr.error_correction must be L, M, Q, or H")
	}

	// Recovery validation
	if c.Recovery.PollInterval < 1 {
		errs = append(errs, "recovery.poll_interval must be at least 1 second")
	}
	if c.Recovery.MaxAttempts < 1 {
		errs = append(errs, "recovery.max_attempts must be at least 1")
	}
	if c.Recovery.ReconnectDelay < 0 {
		errs = append(errs, "recovery.reconnect_delay must not be negative")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetHeartbeatInterval returns the heartbeat interval as a Duration.
func (c *Config) GetHeartbeatInterval() time.Duration {
	return time.Duration(c.Heartbeat.Interval) * time.Second
}

// GetStatusInterval returns the printer status re-probe interval as a Duration.
func (c *Config) GetStatusInterval() time.Duration {
	return time.Duration(c.Printer.StatusInterval) * time.Second
}

// GetRecoveryPollInterval returns the recovery poll interval as a Duration.
func (c *Config) GetRecoveryPollInterval() time.Duration {
	return time.Duration(c.Recovery.PollInterval) * time.Second
}

// GetReconnectDelay returns the reconnect pause as a Duration.
func (c *Config) GetReconnectDelay() time.Duration {
	return time.Duration(c.Recovery.ReconnectDelay) * time.Second
}
