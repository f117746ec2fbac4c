package bridge

import (
	"context"
	"sync"
	"time"
)

// Recovery defaults.
const (
	defaultRecoveryPoll = 5 * time.Second
	defaultMaxAttempts  = 5
)

// Reconnector is a resource the controller can bring back: the printer
// session or the connection manager.
type Reconnector interface {
	Connected() bool
	Reconnect() error
}

// ControllerConfig holds the recovery controller's resources and limits.
type ControllerConfig struct {
	// PollInterval between recovery checks. Default: 5 seconds.
	PollInterval time.Duration

	// MaxAttempts is the consecutive-failure threshold that triggers
	// fatal shutdown. Default: 5.
	MaxAttempts int

	// Printer and Broker are the recoverable resources. Either may be
	// nil, in which case it is skipped.
	Printer Reconnector
	Broker  Reconnector
}

// Controller polls the printer session and the broker connection and
// reconnects whichever is down. A shared attempt counter increments on
// every failed reconnect of either resource and resets on any success;
// reaching MaxAttempts closes the Fatal channel — the only fatal
// condition in the bridge.
type Controller struct {
	cfg    ControllerConfig
	logger Logger

	mu       sync.Mutex
	attempts int

	fatal     chan struct{}
	fatalOnce sync.Once

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewController creates a recovery controller. Call Start to begin.
func NewController(cfg ControllerConfig) *Controller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultRecoveryPoll
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	return &Controller{
		cfg:    cfg,
		logger: noopLogger{},
		fatal:  make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// SetLogger sets the logger for the controller.
func (c *Controller) SetLogger(logger Logger) {
	c.logger = logger
}

// Fatal is closed when consecutive recovery failures reach MaxAttempts.
func (c *Controller) Fatal() <-chan struct{} {
	return c.fatal
}

// Attempts returns the current consecutive-failure count.
func (c *Controller) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Start begins the poll loop. Call Stop to shut down.
func (c *Controller) Start(ctx context.Context) {
	c.wg.Add(1)
	go c.pollLoop(ctx)
}

// Stop stops the poll loop. Safe to call multiple times.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.wg.Wait()
	})
}

func (c *Controller) pollLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Tick runs one recovery pass. Exported so tests (and a future health
// endpoint) can drive recovery without waiting on the ticker.
func (c *Controller) Tick() {
	c.recover("printer", c.cfg.Printer)
	c.recover("broker", c.cfg.Broker)
}

func (c *Controller) recover(name string, r Reconnector) {
	if r == nil || r.Connected() {
		return
	}

	c.logger.Warn("resource down, reconnecting", "resource", name)

	if err := r.Reconnect(); err != nil {
		c.mu.Lock()
		c.attempts++
		attempts := c.attempts
		c.mu.Unlock()

		c.logger.Error("reconnect failed",
			"resource", name,
			"error", err,
			"attempts", attempts,
			"max_attempts", c.cfg.MaxAttempts,
		)

		if attempts >= c.cfg.MaxAttempts {
			c.logger.Error("recovery attempts exhausted, signalling fatal shutdown",
				"attempts", attempts,
			)
			c.fatalOnce.Do(func() { close(c.fatal) })
		}
		return
	}

	c.mu.Lock()
	c.attempts = 0
	c.mu.Unlock()

	c.logger.Info("resource recovered", "resource", name)
}
