package store

import (
	"context"
	"time"

	"github.com/kbukum/gonogo/logger"
	"github.com/kbukum/gonogo/observability"
	"github.com/kbukum/gonogo/util"
	"go.opentelemetry.io/otel/attribute"
)

// Connect opens the configured store. It never returns nil and never
// panics: an empty URI yields Disconnected(ConfigAbsent), and any failure to
// resolve, open or ping the backend yields Disconnected(ConnectError).
func Connect(ctx context.Context, cfg Config, log *logger.Logger) *Handle {
	cfg.ApplyDefaults()
	log = log.WithComponent("store")

	if cfg.URI == "" {
		log.Warn("No database configuration found")
		return disconnected(cfg, ReasonConfigAbsent, nil, log)
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanConnect)
	span.SetAttributes(attribute.String(observability.AttrMode, string(cfg.Mode)))

	log.Info("Connecting to database", map[string]interface{}{
		"uri":  util.RedactURI(cfg.URI),
		"mode": string(cfg.Mode),
	})

	backend, err := dial(ctx, cfg, log)
	observability.EndSpan(span, err)
	if err != nil {
		log.Error("Database connection failed", logger.ErrorFields("connect", err))
		log.Warn("Continuing experiment without a database")
		return disconnected(cfg, ReasonConnectError, err, log)
	}

	log.Info("Connected to database", map[string]interface{}{
		logger.FieldBackend:    backend.Name(),
		"target":               backend.Target(),
		logger.FieldCollection: cfg.Collection,
	})
	return NewHandle(backend, cfg, log)
}

// dial resolves the backend and opens it within the connect timeout.
// Panics from a driver are turned into errors.
func dial(ctx context.Context, cfg Config, log *logger.Logger) (b Backend, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			b, err = nil, panicError{rec}
		}
	}()

	d, _, err := dialerFor(cfg.URI)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	start := time.Now()
	b, err = d(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Debug("Backend opened", logger.DurationFields("connect", time.Since(start)))
	return b, nil
}
