package bridge

import (
	"context"
	"encoding/json"
	"net"
	"runtime"
	"sync"
	"time"

	"github.com/scandeer/printbridge/internal/printer"
)

// Heartbeat defaults and bounds.
const (
	defaultHeartbeatInterval = 30 * time.Second

	// hostWifiRSSI is reported in place of a radio measurement. The
	// firmware field is kept so dashboards consuming both sources keep
	// working; a host bridge on wired or unknown media reports a strong
	// fixed value.
	hostWifiRSSI = -50
)

// Publisher is the transport subset the heartbeat reporter needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
}

// PrinterProbe is the printer session subset the reporter needs.
type PrinterProbe interface {
	Status() printer.Status
	Connected() bool
}

// HeartbeatTelemetry mirrors heartbeat snapshots into a metrics store.
// Optional; writes are fire-and-forget.
type HeartbeatTelemetry interface {
	WriteHeartbeat(printerID string, printerOnline bool, printerStatus string)
}

// ReporterConfig holds configuration for the heartbeat reporter.
type ReporterConfig struct {
	// PrinterID identifies this bridge in heartbeat records.
	PrinterID string

	// Topic is the heartbeat topic.
	Topic string

	// QoS for heartbeat publishes.
	QoS byte

	// Interval between heartbeats. Default: 30 seconds.
	Interval time.Duration

	// Publisher is the MQTT transport.
	Publisher Publisher

	// Printer supplies printer liveness for the snapshot.
	Printer PrinterProbe

	// Telemetry optionally mirrors each heartbeat to a metrics store.
	Telemetry HeartbeatTelemetry
}

// Reporter publishes periodic heartbeat records while the transport is
// connected. The first heartbeat fires immediately on Start; none fire
// after Stop or while the transport is down.
type Reporter struct {
	cfg       ReporterConfig
	startTime time.Time

	// Shutdown coordination (stopOnce prevents double-close panics)
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	logger   Logger
	loggerMu sync.RWMutex
}

// NewReporter creates a heartbeat reporter. Call Start to begin.
func NewReporter(cfg ReporterConfig) *Reporter {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultHeartbeatInterval
	}
	return &Reporter{
		cfg:       cfg,
		startTime: time.Now(),
		done:      make(chan struct{}),
	}
}

// SetLogger sets the logger for this reporter.
func (r *Reporter) SetLogger(logger Logger) {
	r.loggerMu.Lock()
	r.logger = logger
	r.loggerMu.Unlock()
}

// Start begins periodic reporting. Call Stop to shut down.
func (r *Reporter) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.reportLoop(ctx)
}

// Stop stops reporting. Safe to call multiple times.
func (r *Reporter) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
}

// PublishNow publishes a heartbeat immediately. Skipped (without error)
// while the transport is disconnected: heartbeats are a liveness claim
// and must never be queued for later delivery.
func (r *Reporter) PublishNow() error {
	if r.cfg.Publisher == nil || !r.cfg.Publisher.IsConnected() {
		return nil
	}

	rec := r.buildRecord()
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := r.cfg.Publisher.Publish(r.cfg.Topic, payload, r.cfg.QoS, false); err != nil {
		return err
	}

	if r.cfg.Telemetry != nil {
		r.cfg.Telemetry.WriteHeartbeat(rec.PrinterID, rec.PrinterOnline, rec.PrinterStatus)
	}
	return nil
}

func (r *Reporter) reportLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	if err := r.PublishNow(); err != nil {
		r.logError("failed to publish initial heartbeat", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case <-ticker.C:
			if err := r.PublishNow(); err != nil {
				r.logError("failed to publish heartbeat", err)
			}
		}
	}
}

// buildRecord snapshots printer and transport liveness.
func (r *Reporter) buildRecord() HeartbeatRecord {
	status := printer.StatusOffline
	connected := false
	if r.cfg.Printer != nil {
		status = r.cfg.Printer.Status()
		connected = r.cfg.Printer.Connected()
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return HeartbeatRecord{
		PrinterID:     r.cfg.PrinterID,
		TimestampMS:   nowMS(),
		ESP32Status:   esp32StatusOnline,
		PrinterOnline: connected && status != printer.StatusOffline,
		PrinterStatus: string(status),
		Details: HeartbeatDetails{
			PaperPresent:  status != printer.StatusPaperOut,
			CoverClosed:   status != printer.StatusCoverOpen,
			CutterOK:      status != printer.StatusCutterError,
			WifiConnected: true,
			MQTTConnected: r.cfg.Publisher != nil && r.cfg.Publisher.IsConnected(),
			FreeHeap:      ms.HeapSys - ms.HeapInuse,
			UptimeMS:      time.Since(r.startTime).Milliseconds(),
			WifiRSSI:      hostWifiRSSI,
			LocalIP:       localIP(),
		},
	}
}

// localIP returns the outbound interface address. The dial never sends
// a packet; it only asks the kernel which source address routes out.
func localIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "unknown"
	}
	defer conn.Close()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "unknown"
}

func (r *Reporter) logError(msg string, err error) {
	r.loggerMu.RLock()
	logger := r.logger
	r.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}
