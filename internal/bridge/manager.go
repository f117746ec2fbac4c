package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/scandeer/printbridge/internal/escpos"
	"github.com/scandeer/printbridge/internal/infrastructure/mqtt"
	"github.com/scandeer/printbridge/internal/printer"
)

// State is the connection manager's lifecycle state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// Transport is the MQTT client surface the manager drives. Satisfied by
// *mqtt.Client; faked in tests.
type Transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	IsConnected() bool
	SetOnDisconnect(callback func(err error))
	Close() error
}

// PrintSession is the printer surface the manager drives. Satisfied by
// *printer.Session.
type PrintSession interface {
	Print(doc escpos.Document) (time.Duration, error)
	Status() printer.Status
	Connected() bool
}

// Journal persists job outcomes locally. Optional.
type Journal interface {
	RecordJob(rec StatusRecord) error
}

// Telemetry forwards job outcomes and reconnects to a metrics store.
// Optional; writes are fire-and-forget.
type Telemetry interface {
	WriteJobOutcome(printerID, orderID string, page int, status string, durationSeconds float64)
	WriteReconnect(printerID string, reconnectCount int)
}

// ManagerConfig holds the manager's collaborators and settings.
type ManagerConfig struct {
	// PrinterID identifies this bridge in published records.
	PrinterID string

	// Topics supplies the per-printer topic set.
	Topics mqtt.Topics

	// QoS for publishes and the job subscription.
	QoS byte

	// Dial opens a connected transport. Called on Connect and again on
	// every Reconnect; the previous transport is closed first.
	Dial func() (Transport, error)

	// Session executes decoded documents.
	Session PrintSession

	// HeartbeatInterval between heartbeats while connected.
	HeartbeatInterval time.Duration

	// ReconnectDelay is the pause inside Reconnect between teardown and
	// redial.
	ReconnectDelay time.Duration

	// Journal and Telemetry are optional sinks for job outcomes.
	Journal   Journal
	Telemetry Telemetry
}

// Stats is a snapshot of the manager's job and connection counters.
type Stats struct {
	JobsReceived     int   `json:"jobs_received"`
	JobsCompleted    int   `json:"jobs_completed"`
	JobsFailed       int   `json:"jobs_failed"`
	RecordsPublished int   `json:"records_published"`
	Reconnects       int   `json:"reconnects"`
	UptimeSeconds    int64 `json:"uptime_seconds"`
}

// Manager owns the broker connection lifecycle: subscribing to the job
// topic, handling inbound jobs synchronously, publishing status, error,
// heartbeat, and recovery records.
//
// The manager never reconnects on its own. A dropped connection moves it
// to Disconnected and stops the heartbeat; the RecoveryController drives
// Reconnect from outside.
type Manager struct {
	cfg    ManagerConfig
	logger Logger

	mu             sync.Mutex
	state          State
	transport      Transport
	heartbeat      *Reporter
	reconnectCount int
	startTime      time.Time
	stats          Stats
}

// NewManager creates a manager. Call Connect to go live.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 2 * time.Second
	}
	return &Manager{
		cfg:       cfg,
		logger:    noopLogger{},
		state:     StateDisconnected,
		startTime: time.Now(),
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connected reports whether the transport is live.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateConnected && m.transport != nil && m.transport.IsConnected()
}

// ReconnectCount returns how many reconnects have been attempted.
func (m *Manager) ReconnectCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reconnectCount
}

// Stats returns a snapshot of job and connection counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	s.Reconnects = m.reconnectCount
	s.UptimeSeconds = int64(time.Since(m.startTime).Seconds())
	return s
}

// Connect dials the broker, subscribes to the job topic, and starts the
// heartbeat.
func (m *Manager) Connect() error {
	m.mu.Lock()
	if m.state == StateConnected {
		m.mu.Unlock()
		return ErrAlreadyConnected
	}
	m.state = StateConnecting
	m.mu.Unlock()

	transport, err := m.cfg.Dial()
	if err != nil {
		m.setState(StateDisconnected)
		return err
	}

	transport.SetOnDisconnect(m.handleDisconnect)

	if err := transport.Subscribe(m.cfg.Topics.Job(), m.cfg.QoS, m.handleJob); err != nil {
		transport.Close()
		m.setState(StateDisconnected)
		return err
	}

	// Telemetry sinks that also understand heartbeats get them mirrored.
	heartbeatTelemetry, _ := m.cfg.Telemetry.(HeartbeatTelemetry)

	heartbeat := NewReporter(ReporterConfig{
		PrinterID: m.cfg.PrinterID,
		Topic:     m.cfg.Topics.Heartbeat(),
		QoS:       m.cfg.QoS,
		Interval:  m.cfg.HeartbeatInterval,
		Publisher: transport,
		Printer:   m.sessionProbe(),
		Telemetry: heartbeatTelemetry,
	})
	heartbeat.SetLogger(m.logger)

	m.mu.Lock()
	m.transport = transport
	m.heartbeat = heartbeat
	m.state = StateConnected
	m.mu.Unlock()

	// Heartbeats start only after the Connected transition; the reporter
	// publishes the first one immediately.
	heartbeat.Start(context.Background())

	m.logger.Info("broker connected", "job_topic", m.cfg.Topics.Job())
	return nil
}

// sessionProbe adapts the configured session to the reporter's probe,
// tolerating a nil session in tests.
func (m *Manager) sessionProbe() PrinterProbe {
	if m.cfg.Session == nil {
		return nil
	}
	return sessionAdapter{m.cfg.Session}
}

type sessionAdapter struct{ s PrintSession }

func (a sessionAdapter) Status() printer.Status { return a.s.Status() }
func (a sessionAdapter) Connected() bool        { return a.s.Connected() }

// Disconnect stops the heartbeat and closes the transport. Safe to call
// when already disconnected.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	transport := m.transport
	heartbeat := m.heartbeat
	m.transport = nil
	m.heartbeat = nil
	m.state = StateDisconnected
	m.mu.Unlock()

	if heartbeat != nil {
		heartbeat.Stop()
	}
	if transport != nil {
		return transport.Close()
	}
	return nil
}

// Reconnect tears the connection down, waits, and dials again. On
// success a recovery record summarizing uptime and the reconnect count
// is published.
func (m *Manager) Reconnect() error {
	m.mu.Lock()
	m.reconnectCount++
	count := m.reconnectCount
	m.mu.Unlock()

	if err := m.Disconnect(); err != nil {
		m.logger.Warn("disconnect before reconnect failed", "error", err)
	}

	time.Sleep(m.cfg.ReconnectDelay)

	if err := m.Connect(); err != nil {
		return err
	}

	m.publishRecovery(count)
	if m.cfg.Telemetry != nil {
		m.cfg.Telemetry.WriteReconnect(m.cfg.PrinterID, count)
	}
	return nil
}

// handleDisconnect reacts to an unsolicited connection loss. No
// reconnect happens here; the RecoveryController polls and drives it.
func (m *Manager) handleDisconnect(err error) {
	m.mu.Lock()
	heartbeat := m.heartbeat
	m.heartbeat = nil
	m.state = StateDisconnected
	m.mu.Unlock()

	m.logger.Warn("broker connection lost", "error", err)

	if heartbeat != nil {
		heartbeat.Stop()
	}
}

// handleJob processes one inbound job message. Jobs run synchronously
// inside the transport callback, so at most one document prints at a
// time.
//
// Malformed payloads are logged and dropped with no status record — no
// order id is recoverable to key one on.
func (m *Manager) handleJob(topic string, payload []byte) error {
	m.mu.Lock()
	m.stats.JobsReceived++
	m.mu.Unlock()

	doc, err := DecodeJob(payload, m.logger)
	if err != nil {
		m.logger.Error("dropping malformed job payload",
			"topic", topic,
			"error", err,
		)
		return err
	}

	m.logger.Info("printing job",
		"order_id", doc.OrderID,
		"page", doc.Page,
		"total_pages", doc.TotalPages,
	)

	elapsed, printErr := m.cfg.Session.Print(doc)

	status := JobStatusCompleted
	if printErr != nil {
		status = JobStatusFailed
	}

	m.mu.Lock()
	if printErr != nil {
		m.stats.JobsFailed++
	} else {
		m.stats.JobsCompleted++
	}
	m.mu.Unlock()

	if printErr != nil {
		m.logger.Error("print failed",
			"order_id", doc.OrderID,
			"page", doc.Page,
			"error", printErr,
		)
		m.publishError("print_failed", printErr.Error())
	}

	m.publishStatus(doc, status, elapsed)
	m.recordOutcome(doc, status, elapsed)
	return printErr
}

func (m *Manager) publishStatus(doc escpos.Document, status string, elapsed time.Duration) {
	rec := StatusRecord{
		TimestampMS: nowMS(),
		PrinterID:   m.cfg.PrinterID,
		OrderID:     doc.OrderID,
		Page:        doc.Page,
		Status:      status,
		PrintTime:   elapsed.Seconds(),
	}
	m.publish(m.cfg.Topics.Status(), rec)
}

func (m *Manager) publishError(errorType, message string) {
	printerStatus := string(printer.StatusOffline)
	if m.cfg.Session != nil {
		printerStatus = string(m.cfg.Session.Status())
	}
	rec := ErrorRecord{
		TimestampMS:   nowMS(),
		PrinterID:     m.cfg.PrinterID,
		ErrorType:     errorType,
		ErrorMessage:  message,
		PrinterStatus: printerStatus,
	}
	m.publish(m.cfg.Topics.Error(), rec)
}

func (m *Manager) publishRecovery(count int) {
	rec := RecoveryRecord{
		TimestampMS:    nowMS(),
		PrinterID:      m.cfg.PrinterID,
		Message:        "connection recovered",
		Uptime:         int64(time.Since(m.startTime).Seconds()),
		ReconnectCount: count,
	}
	m.publish(m.cfg.Topics.Recovery(), rec)
}

// publish marshals and sends a record, logging failures. Records are a
// live stream: delivery is best-effort and never retried.
func (m *Manager) publish(topic string, record any) {
	m.mu.Lock()
	transport := m.transport
	m.mu.Unlock()

	if transport == nil {
		return
	}

	payload, err := json.Marshal(record)
	if err != nil {
		m.logger.Error("failed to marshal record", "topic", topic, "error", err)
		return
	}
	if err := transport.Publish(topic, payload, m.cfg.QoS, false); err != nil {
		m.logger.Warn("failed to publish record", "topic", topic, "error", err)
		return
	}

	m.mu.Lock()
	m.stats.RecordsPublished++
	m.mu.Unlock()
}

// recordOutcome feeds the optional journal and telemetry sinks.
func (m *Manager) recordOutcome(doc escpos.Document, status string, elapsed time.Duration) {
	if m.cfg.Journal != nil {
		rec := StatusRecord{
			TimestampMS: nowMS(),
			PrinterID:   m.cfg.PrinterID,
			OrderID:     doc.OrderID,
			Page:        doc.Page,
			Status:      status,
			PrintTime:   elapsed.Seconds(),
		}
		if err := m.cfg.Journal.RecordJob(rec); err != nil {
			m.logger.Warn("failed to journal job outcome", "error", err)
		}
	}
	if m.cfg.Telemetry != nil {
		m.cfg.Telemetry.WriteJobOutcome(m.cfg.PrinterID, doc.OrderID, doc.Page, status, elapsed.Seconds())
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
