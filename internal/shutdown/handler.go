package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yourusername/pesterlink/internal/output"
)

// Handler coordinates a clean exit of the client. Registered cleanup runs
// in order, bounded by a force timeout, and the session context is
// cancelled afterwards.
type Handler struct {
	logger       output.Logger
	mu           sync.Mutex
	cleanups     []namedCleanup
	ctx          context.Context
	cancel       context.CancelFunc
	signalChan   chan os.Signal
	doneChan     chan struct{}
	forceTimeout time.Duration
	once         sync.Once
	reason       string
}

type namedCleanup struct {
	name string
	fn   func() error
}

// NewHandler creates a handler listening for SIGINT and SIGTERM.
func NewHandler(logger output.Logger, forceTimeout time.Duration) *Handler {
	h := newHandler(logger, forceTimeout)
	signal.Notify(h.signalChan, syscall.SIGINT, syscall.SIGTERM)
	return h
}

func newHandler(logger output.Logger, forceTimeout time.Duration) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		signalChan:   make(chan os.Signal, 1),
		doneChan:     make(chan struct{}),
		forceTimeout: forceTimeout,
	}
}

// Context is cancelled once shutdown has finished its cleanup.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Register adds a cleanup step. Steps run in registration order.
func (h *Handler) Register(name string, fn func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleanups = append(h.cleanups, namedCleanup{name: name, fn: fn})
}

// WaitForShutdown blocks until a signal arrives or Shutdown is called
// elsewhere.
func (h *Handler) WaitForShutdown() {
	select {
	case sig, ok := <-h.signalChan:
		if ok {
			h.logger.Info("Received signal: %v", sig)
			h.Shutdown("signal " + sig.String())
		}
	case <-h.ctx.Done():
	}
	<-h.doneChan
}

// Shutdown runs the cleanup steps once. Later calls are no-ops.
func (h *Handler) Shutdown(reason string) {
	h.once.Do(func() {
		h.mu.Lock()
		h.reason = reason
		h.mu.Unlock()

		h.logger.Info("Shutting down (%s)...", reason)

		timer := time.NewTimer(h.forceTimeout)
		defer timer.Stop()

		done := make(chan struct{})
		go func() {
			h.runCleanups()
			close(done)
		}()

		select {
		case <-done:
			h.logger.Success("Shutdown complete")
		case <-timer.C:
			h.logger.Warning("Forced shutdown after %s", h.forceTimeout)
		}
		h.cancel()
		close(h.doneChan)
	})
}

func (h *Handler) runCleanups() {
	h.mu.Lock()
	steps := make([]namedCleanup, len(h.cleanups))
	copy(steps, h.cleanups)
	h.mu.Unlock()

	for _, step := range steps {
		if err := step.fn(); err != nil {
			h.logger.Error("Cleanup %q failed: %v", step.name, err)
		}
	}
}

// Reason returns what triggered shutdown, or "" if it has not started.
// It is set before any cleanup runs.
func (h *Handler) Reason() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reason
}

// Done is closed once every cleanup has run or the force timeout hit.
func (h *Handler) Done() <-chan struct{} {
	return h.doneChan
}

// Stop stops listening for signals.
func (h *Handler) Stop() {
	signal.Stop(h.signalChan)
}
