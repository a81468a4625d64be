package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/gonogo/logger"
	"github.com/kbukum/gonogo/observability"
	"go.opentelemetry.io/otel/attribute"
)

// State is the connectivity state of a Handle.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Reason says why a handle is disconnected.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonConfigAbsent
	ReasonConnectError
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonConfigAbsent:
		return "config_absent"
	case ReasonConnectError:
		return "connect_error"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Handle owns zero or one backend connection. A closed handle never
// reopens. Pooled inserts share the read lock; single-use inserts and Close
// take the write lock.
type Handle struct {
	mu      sync.RWMutex
	state   State
	reason  Reason
	cause   error
	backend Backend

	mode       Mode
	collection string
	log        *logger.Logger
}

func disconnected(cfg Config, reason Reason, cause error, log *logger.Logger) *Handle {
	return &Handle{
		state:      StateDisconnected,
		reason:     reason,
		cause:      cause,
		mode:       cfg.Mode,
		collection: cfg.Collection,
		log:        log,
	}
}

// NewHandle wraps an already open backend in a connected handle.
func NewHandle(b Backend, cfg Config, log *logger.Logger) *Handle {
	cfg.ApplyDefaults()
	return &Handle{
		state:      StateConnected,
		backend:    b,
		mode:       cfg.Mode,
		collection: cfg.Collection,
		log:        log,
	}
}

// State returns the current connectivity state.
func (h *Handle) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Connected reports whether writes can currently be attempted.
func (h *Handle) Connected() bool {
	return h.State() == StateConnected
}

// Reason returns why the handle is disconnected, or ReasonNone.
func (h *Handle) Reason() Reason {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.reason
}

// Cause returns the connect error behind ReasonConnectError.
func (h *Handle) Cause() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cause
}

// Mode returns the handle's connection mode.
func (h *Handle) Mode() Mode { return h.mode }

// Collection returns the collection records are written to.
func (h *Handle) Collection() string { return h.collection }

// BackendName returns the backend kind, or "" when never connected.
func (h *Handle) BackendName() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.backend == nil {
		return ""
	}
	return h.backend.Name()
}

// Target describes the backend destination, or "" when never connected.
func (h *Handle) Target() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.backend == nil {
		return ""
	}
	return h.backend.Target()
}

// Insert writes rec as one document. It returns ErrNotConnected on a
// disconnected handle and ErrClosed on a closed one.
//
// In single-use mode a successful insert closes the handle before Insert
// returns; a close failure is logged and the insert still counts. A failed
// insert leaves the handle open.
func (h *Handle) Insert(ctx context.Context, rec Record) (err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanInsert)
	span.SetAttributes(
		attribute.String(observability.AttrCollection, h.collection),
		attribute.String(observability.AttrMode, string(h.mode)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if h.mode == ModeSingleUse {
		h.mu.Lock()
		defer h.mu.Unlock()
	} else {
		h.mu.RLock()
		defer h.mu.RUnlock()
	}

	switch h.state {
	case StateDisconnected:
		return ErrNotConnected
	case StateClosed:
		return ErrClosed
	case StateConnected:
	default:
		return fmt.Errorf("store: invalid handle state %s", h.state)
	}

	span.SetAttributes(attribute.String(observability.AttrBackend, h.backend.Name()))
	if err := h.backend.Insert(ctx, h.collection, rec); err != nil {
		return fmt.Errorf("insert into %s: %w", h.collection, err)
	}

	if h.mode == ModeSingleUse {
		_ = h.closeLocked(ctx)
	}
	return nil
}

// Close releases the backend. It is a no-op unless the handle is connected.
func (h *Handle) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateConnected {
		return nil
	}
	return h.closeLocked(ctx)
}

func (h *Handle) closeLocked(ctx context.Context) error {
	h.state = StateClosed
	err := h.backend.Close(ctx)
	if err != nil {
		h.log.Error("Failed to close database connection", logger.ErrorFields("close", err))
		return err
	}
	h.log.Info("Database connection closed", map[string]interface{}{
		logger.FieldBackend: h.backend.Name(),
	})
	return nil
}
