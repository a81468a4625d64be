package observability

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/gonogo/component"
)

const componentName = "observability"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component installs the tracer and meter providers on Start and flushes
// them on Stop. Register it before any component that records spans so its
// providers are live when they start and it stops after they do.
type Component struct {
	cfg            Config
	serviceName    string
	serviceVersion string
	setup          func(context.Context, *Config, string, string) (ShutdownFunc, error)

	mu       sync.Mutex
	shutdown ShutdownFunc
}

// NewComponent creates the telemetry component for cfg.
func NewComponent(cfg Config, serviceName, serviceVersion string) *Component {
	return &Component{
		cfg:            cfg,
		serviceName:    serviceName,
		serviceVersion: serviceVersion,
		setup:          Setup,
	}
}

// Name returns the registration name.
func (c *Component) Name() string { return componentName }

// Start installs the providers. Disabled configs install nothing.
func (c *Component) Start(ctx context.Context) error {
	shutdown, err := c.setup(ctx, &c.cfg, c.serviceName, c.serviceVersion)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	c.mu.Lock()
	c.shutdown = shutdown
	c.mu.Unlock()
	return nil
}

// Stop flushes pending spans and metrics.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	shutdown := c.shutdown
	c.shutdown = nil
	c.mu.Unlock()
	if shutdown == nil {
		return nil
	}
	return shutdown(ctx)
}

// Health is always healthy; export failures are retried by the SDK.
func (c *Component) Health(context.Context) component.Health {
	return component.Health{Name: componentName, Status: component.StatusHealthy, Message: c.details()}
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	return component.Description{Name: "Telemetry", Type: "observability", Details: c.details()}
}

func (c *Component) details() string {
	if !c.cfg.Enabled {
		return "disabled"
	}
	return "otlp " + c.cfg.Endpoint
}
