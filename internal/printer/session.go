package printer

import (
	"fmt"
	"sync"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/scandeer/printbridge/internal/escpos"
)

// Backend selection tokens.
const (
	BackendQueue  = "queue"
	BackendDirect = "direct"
	BackendAuto   = "auto"
)

// Defaults applied by NewSession for zero option values.
const (
	defaultStatusInterval = 10 * time.Second
	defaultReconnectDelay = 2 * time.Second
)

// Options configures a printer session.
type Options struct {
	// QueueName is the spooler queue for the queue backend.
	QueueName string

	// DevicePath is the character device for the direct backend.
	DevicePath string

	// Backend selects queue, direct, or auto (try queue name, then
	// device path, then scan the spooler for a thermal queue).
	Backend string

	// StatusInterval is the minimum age before a cached status is
	// re-probed.
	StatusInterval time.Duration

	// ReconnectDelay is the pause between disconnect and reconnect.
	ReconnectDelay time.Duration

	// ErrorCorrection is the QR recovery level token (L, M, Q, H).
	ErrorCorrection string
}

// Logger defines the logging interface for the session.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Stats is a snapshot of session counters.
type Stats struct {
	TotalJobs      int `json:"total_jobs"`
	SuccessfulJobs int `json:"successful_jobs"`
	FailedJobs     int `json:"failed_jobs"`
	Reconnects     int `json:"reconnects"`
}

// Session owns one printer connection and executes rendered documents on
// it. All methods are safe for concurrent use; Print serialises, so jobs
// cannot interleave on the device.
type Session struct {
	opts    Options
	ecLevel qrcode.RecoveryLevel
	logger  Logger

	mu         sync.Mutex
	device     Device
	backend    string // resolved backend after Connect
	target     string // resolved queue name or device path
	stats      Stats
	status     Status
	statusTime time.Time

	// openQueue and openDirect are swapped out in tests.
	openQueue  func(queue string) Device
	openDirect func(path string) (Device, error)
	findQueue  func() (string, error)
}

// NewSession creates a session. Connect must be called before printing.
func NewSession(opts Options) *Session {
	if opts.Backend == "" {
		opts.Backend = BackendAuto
	}
	if opts.StatusInterval <= 0 {
		opts.StatusInterval = defaultStatusInterval
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = defaultReconnectDelay
	}

	return &Session{
		opts:       opts,
		ecLevel:    escpos.ParseECLevel(opts.ErrorCorrection),
		logger:     noopLogger{},
		status:     StatusOffline,
		openQueue:  func(queue string) Device { return NewBufferedQueue(queue) },
		openDirect: func(path string) (Device, error) { return OpenDirect(path) },
		findQueue:  findThermalQueue,
	}
}

// SetLogger sets the logger for the session.
func (s *Session) SetLogger(logger Logger) {
	s.logger = logger
}

// Connect opens a printer backend and initialises the device.
func (s *Session) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device != nil {
		return nil
	}

	dev, backend, target, err := s.open()
	if err != nil {
		return err
	}

	if err := dev.Init(); err != nil {
		dev.Close()
		return fmt.Errorf("%w: init: %v", ErrConnectFailed, err)
	}

	s.device = dev
	s.backend = backend
	s.target = target
	s.status = StatusReady
	s.statusTime = time.Now()

	s.logger.Info("printer connected", "backend", backend, "target", target)
	return nil
}

// open resolves the backend per the configured selection order.
func (s *Session) open() (Device, string, string, error) {
	switch s.opts.Backend {
	case BackendQueue:
		if s.opts.QueueName == "" {
			return nil, "", "", fmt.Errorf("%w: queue backend needs a queue name", ErrConnectFailed)
		}
		return s.openQueue(s.opts.QueueName), BackendQueue, s.opts.QueueName, nil

	case BackendDirect:
		if s.opts.DevicePath == "" {
			return nil, "", "", fmt.Errorf("%w: direct backend needs a device path", ErrConnectFailed)
		}
		dev, err := s.openDirect(s.opts.DevicePath)
		if err != nil {
			return nil, "", "", err
		}
		return dev, BackendDirect, s.opts.DevicePath, nil

	default: // auto
		if s.opts.QueueName != "" {
			return s.openQueue(s.opts.QueueName), BackendQueue, s.opts.QueueName, nil
		}
		if s.opts.DevicePath != "" {
			dev, err := s.openDirect(s.opts.DevicePath)
			if err == nil {
				return dev, BackendDirect, s.opts.DevicePath, nil
			}
			s.logger.Warn("device path unavailable, scanning spooler",
				"path", s.opts.DevicePath,
				"error", err,
			)
		}
		queue, err := s.findQueue()
		if err != nil {
			return nil, "", "", err
		}
		s.logger.Info("auto-detected thermal queue", "queue", queue)
		return s.openQueue(queue), BackendQueue, queue, nil
	}
}

// Disconnect closes the backend. Safe to call when not connected.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnectLocked()
}

func (s *Session) disconnectLocked() error {
	if s.device == nil {
		return nil
	}
	err := s.device.Close()
	s.device = nil
	s.status = StatusOffline
	s.statusTime = time.Now()
	if err != nil {
		return fmt.Errorf("closing printer: %w", err)
	}
	return nil
}

// Reconnect tears the connection down, waits, and connects again. The
// delay gives USB device nodes time to reappear after a printer power
// cycle.
func (s *Session) Reconnect() error {
	s.mu.Lock()
	if err := s.disconnectLocked(); err != nil {
		s.logger.Warn("disconnect before reconnect failed", "error", err)
	}
	s.stats.Reconnects++
	s.mu.Unlock()

	time.Sleep(s.opts.ReconnectDelay)
	return s.Connect()
}

// Connected reports whether a backend is open.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device != nil
}

// Print executes a rendered document on the printer. Every call counts
// toward the job total, including failures. Returns the time spent
// executing on success.
func (s *Session) Print(doc escpos.Document) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TotalJobs++

	if s.device == nil {
		s.stats.FailedJobs++
		return 0, ErrNotConnected
	}

	start := time.Now()
	ops := escpos.NewRenderer(s.logger).Render(doc)

	for _, op := range ops {
		if err := s.execOp(op); err != nil {
			s.stats.FailedJobs++
			return 0, fmt.Errorf("printing order %s page %d: %w", doc.OrderID, doc.Page, err)
		}
	}

	if err := s.device.Flush(); err != nil {
		s.stats.FailedJobs++
		return 0, fmt.Errorf("printing order %s page %d: %w", doc.OrderID, doc.Page, err)
	}

	s.stats.SuccessfulJobs++
	return time.Since(start), nil
}

func (s *Session) execOp(op escpos.Operation) error {
	switch o := op.(type) {
	case escpos.SetFormatOp:
		if err := s.device.SetAlign(o.State.Align); err != nil {
			return err
		}
		if err := s.device.SetBold(o.State.Bold); err != nil {
			return err
		}
		return s.device.SetSize(o.State.Size)

	case escpos.WriteTextOp:
		return s.device.WriteText(o.Text)

	case escpos.DrawLineOp:
		return s.execLine(o)

	case escpos.RasterOp:
		return s.device.WriteRaw(o.Data)

	case escpos.QRCodeOp:
		return s.execQR(o)

	case escpos.FinalizeOp:
		return s.execFinalize()

	default:
		return nil
	}
}

// execLine prints a centered separator. The renderer re-asserts text
// formatting afterwards, so the alignment change does not need undoing.
func (s *Session) execLine(op escpos.DrawLineOp) error {
	if err := s.device.SetAlign(escpos.AlignCenter); err != nil {
		return err
	}
	rows := op.Thickness
	if rows <= 0 {
		rows = escpos.DefaultLineThickness
	}
	pattern := escpos.LinePattern(op.Kind, op.Width) + "\n"
	for i := 0; i < rows; i++ {
		if err := s.device.WriteText(pattern); err != nil {
			return err
		}
	}
	return nil
}

// execQR prints a QR code, degrading through rendering strategies:
// a job-supplied bitmap rasters directly; otherwise the printer's native
// symbol generator is tried, then a locally generated raster bitmap,
// then a plain text line so the payload is at least legible.
func (s *Session) execQR(op escpos.QRCodeOp) error {
	if err := s.device.SetAlign(op.Align); err != nil {
		return err
	}

	if op.Bitmap != nil {
		err := s.writeRaster(*op.Bitmap)
		if err == nil {
			return nil
		}
		s.logger.Warn("supplied QR bitmap failed, generating locally", "error", err)
	}

	nativeErr := s.writeNativeQR(op)
	if nativeErr == nil {
		return nil
	}
	s.logger.Warn("native QR failed, falling back to raster", "error", nativeErr)

	bitmap, err := escpos.BuildQRBitmap(op.Payload, op.SizeClass, s.ecLevel)
	if err == nil {
		if err := s.writeRaster(bitmap); err == nil {
			return nil
		}
		s.logger.Warn("raster QR failed, falling back to text", "error", err)
	} else {
		s.logger.Warn("QR generation failed, falling back to text", "error", err)
	}

	return s.device.WriteText("QR: " + op.Payload + "\n")
}

func (s *Session) writeNativeQR(op escpos.QRCodeOp) error {
	if len(op.Payload) > escpos.MaxNativeQRPayload {
		s.logger.Warn("QR payload truncated for native rendering",
			"length", len(op.Payload),
			"max", escpos.MaxNativeQRPayload,
		)
	}
	for _, seq := range escpos.NativeQRSequences(op.Payload, escpos.SizeClassToModuleSize(op.SizeClass)) {
		if err := s.device.WriteRaw(seq); err != nil {
			return err
		}
	}
	return s.device.WriteText("\n")
}

func (s *Session) writeRaster(b escpos.Bitmap) error {
	bands, err := b.RasterOps()
	if err != nil {
		return err
	}
	for _, band := range bands {
		if err := s.device.WriteRaw(band.Data); err != nil {
			return err
		}
	}
	return nil
}

// execFinalize feeds and cuts. A failing cutter degrades to extra feed
// lines so the receipt can be torn off by hand.
func (s *Session) execFinalize() error {
	if err := s.device.WriteText("\n\n"); err != nil {
		return err
	}
	if err := s.device.Cut(); err != nil {
		s.logger.Warn("cut failed, feeding for manual tear", "error", err)
		return s.device.WriteRaw(escpos.FeedCutFallback())
	}
	return nil
}

// Status returns the printer condition, probing the backend at most once
// per StatusInterval. Disconnected sessions report offline.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device == nil {
		return StatusOffline
	}
	if time.Since(s.statusTime) < s.opts.StatusInterval {
		return s.status
	}

	if prober, ok := s.device.(statusProber); ok {
		status, err := prober.probeStatus()
		if err != nil {
			s.logger.Warn("status probe failed", "error", err)
			status = StatusOffline
		}
		s.status = status
	} else {
		// No probe available; an open device that keeps accepting
		// writes is assumed ready.
		s.status = StatusReady
	}

	s.statusTime = time.Now()
	return s.status
}

// Backend returns the resolved backend and target after Connect.
func (s *Session) Backend() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend, s.target
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
