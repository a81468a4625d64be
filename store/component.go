package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/gonogo/component"
	"github.com/kbukum/gonogo/logger"
)

const componentName = "store"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component runs Connect at startup and closes the handle at shutdown.
// Start never fails: an unavailable store only degrades health.
type Component struct {
	cfg Config
	log *logger.Logger

	mu     sync.RWMutex
	handle *Handle
}

// NewComponent creates a store component for cfg.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log}
}

// Name returns the registration name.
func (c *Component) Name() string { return componentName }

// Start connects to the store.
func (c *Component) Start(ctx context.Context) error {
	h := Connect(ctx, c.cfg, c.log)
	c.mu.Lock()
	c.handle = h
	c.mu.Unlock()
	return nil
}

// Stop closes the handle if it is still connected.
func (c *Component) Stop(ctx context.Context) error {
	h := c.Handle()
	if h == nil {
		return nil
	}
	return h.Close(ctx)
}

// Handle returns the handle opened by Start, or nil before Start.
func (c *Component) Handle() *Handle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handle
}

// Health reports healthy while connected. Running without a database, or
// after the single-use connection has been spent, is degraded.
func (c *Component) Health(context.Context) component.Health {
	h := c.Handle()
	if h == nil {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not started"}
	}

	switch h.State() {
	case StateConnected:
		return component.Health{Name: componentName, Status: component.StatusHealthy}
	case StateClosed:
		return component.Health{Name: componentName, Status: component.StatusDegraded, Message: "connection closed"}
	default:
		msg := "no database configured"
		if h.Reason() == ReasonConnectError {
			msg = "database unreachable, submissions are not stored"
		}
		return component.Health{Name: componentName, Status: component.StatusDegraded, Message: msg}
	}
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	d := component.Description{Name: "Document Store", Type: "database"}
	h := c.Handle()
	switch {
	case h == nil:
		d.Details = "not started"
	case h.BackendName() == "":
		d.Details = "disabled (" + h.Reason().String() + ")"
	default:
		d.Details = fmt.Sprintf("%s %s collection=%s mode=%s", h.BackendName(), h.Target(), h.Collection(), h.Mode())
	}
	return d
}
