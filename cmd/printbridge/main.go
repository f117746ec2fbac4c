// Print Bridge - MQTT to thermal receipt printer gateway
//
// This is the main entry point for the print bridge. It replaces an
// ESP32-based printer controller with a host-side daemon:
//   - Subscribes to per-printer job topics on an MQTT broker
//   - Renders receipt documents to ESC/POS and prints them via a CUPS
//     queue or a raw device file
//   - Publishes heartbeat, status, error, and recovery records on the
//     sibling topics the firmware used
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/scandeer/printbridge/internal/bridge"
	"github.com/scandeer/printbridge/internal/escpos"
	"github.com/scandeer/printbridge/internal/history"
	"github.com/scandeer/printbridge/internal/infrastructure/config"
	"github.com/scandeer/printbridge/internal/infrastructure/database"
	"github.com/scandeer/printbridge/internal/infrastructure/influxdb"
	"github.com/scandeer/printbridge/internal/infrastructure/logging"
	"github.com/scandeer/printbridge/internal/infrastructure/mqtt"
	"github.com/scandeer/printbridge/internal/printer"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting print bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the job journal database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	journal := history.NewRepository(db)
	if err := journal.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("preparing job journal: %w", err)
	}
	log.Info("job journal ready")

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Open the printer session. A printer that is down at startup is not
	// fatal: the recovery controller keeps retrying.
	session := printer.NewSession(printer.Options{
		QueueName:       cfg.Printer.QueueName,
		DevicePath:      cfg.Printer.DevicePath,
		Backend:         cfg.Printer.Backend,
		StatusInterval:  cfg.GetStatusInterval(),
		ReconnectDelay:  cfg.GetReconnectDelay(),
		ErrorCorrection: cfg.QR.ErrorCorrection,
	})
	session.SetLogger(log)
	if err := session.Connect(); err != nil {
		log.Warn("printer not available at startup, recovery will retry", "error", err)
	} else {
		backend, target := session.Backend()
		log.Info("printer connected", "backend", backend, "target", target)
	}
	defer func() {
		log.Info("disconnecting printer")
		if closeErr := session.Disconnect(); closeErr != nil {
			log.Error("error disconnecting printer", "error", closeErr)
		}
	}()

	// Wire the connection manager. The dial function opens a fresh broker
	// connection on every (re)connect.
	topics := mqtt.Topics{Account: cfg.MQTT.Account, PrinterID: cfg.Printer.ID}

	var telemetry bridge.Telemetry
	if influxClient != nil {
		telemetry = influxClient
	}

	manager := bridge.NewManager(bridge.ManagerConfig{
		PrinterID: cfg.Printer.ID,
		Topics:    topics,
		QoS:       byte(cfg.MQTT.QoS),
		Dial: func() (bridge.Transport, error) {
			client, dialErr := mqtt.Connect(cfg.MQTT, topics)
			if dialErr != nil {
				return nil, dialErr
			}
			client.SetLogger(log)
			return client, nil
		},
		Session:           session,
		HeartbeatInterval: cfg.GetHeartbeatInterval(),
		ReconnectDelay:    cfg.GetReconnectDelay(),
		Journal:           journal,
		Telemetry:         telemetry,
	})
	manager.SetLogger(log)

	if err := manager.Connect(); err != nil {
		log.Warn("broker not available at startup, recovery will retry", "error", err)
	} else {
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"job_topic", topics.Job(),
		)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := manager.Disconnect(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()

	// Start the recovery controller: the only component allowed to
	// reconnect either resource, and the only source of fatal shutdown.
	recovery := bridge.NewController(bridge.ControllerConfig{
		PollInterval: cfg.GetRecoveryPollInterval(),
		MaxAttempts:  cfg.Recovery.MaxAttempts,
		Printer:      session,
		Broker:       manager,
	})
	recovery.SetLogger(log)
	recovery.Start(ctx)
	defer recovery.Stop()

	// Optional startup test print for commissioning a new printer.
	if cfg.Debug.TestPrint && session.Connected() {
		if err := testPrint(session, cfg.Printer.ID); err != nil {
			log.Warn("test print failed", "error", err)
		} else {
			log.Info("test print completed")
		}
	}

	log.Info("initialisation complete, waiting for jobs")

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, cleaning up")
	case <-recovery.Fatal():
		return fmt.Errorf("recovery attempts exhausted after %d failures", recovery.Attempts())
	}

	log.Info("print bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses PRINTBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("PRINTBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// testPrint runs a short self-test receipt through the full pipeline.
func testPrint(session *printer.Session, printerID string) error {
	center := "c"
	left := "l"
	bold := true
	regular := false

	doc := escpos.Document{
		OrderID:    "test-print",
		Page:       1,
		TotalPages: 1,
		Elements: []escpos.Element{
			escpos.FormatDirective{Align: &center, Bold: &bold},
			escpos.TextLine("PRINT BRIDGE"),
			escpos.FormatDirective{Align: &left, Bold: &regular},
			escpos.LineDirective{Kind: "solid"},
			escpos.TextLine("printer: " + printerID),
			escpos.TextLine("version: " + version),
			escpos.QRDirective{Payload: "printbridge:test", SizeClass: 6, Align: escpos.AlignCenter},
		},
	}

	_, err := session.Print(doc)
	return err
}
