package experiment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/gonogo/errors"
	"github.com/kbukum/gonogo/logger"
	"github.com/kbukum/gonogo/observability"
	"github.com/kbukum/gonogo/store"
)

// Meta describes the request a submission arrived on.
type Meta struct {
	RequestID  string
	ReceivedAt time.Time
}

// Result reports what Submit did.
type Result struct {
	Stored bool
}

// Service records submissions. It performs at most one insert per call.
type Service struct {
	handle        *store.Handle
	recordSession bool
	metrics       *observability.Metrics
	log           *logger.Logger
}

// NewService returns a Service writing through h. metrics may be nil.
func NewService(h *store.Handle, cfg Config, metrics *observability.Metrics, log *logger.Logger) *Service {
	return &Service{
		handle:        h,
		recordSession: cfg.RecordSession,
		metrics:       metrics,
		log:           log.WithComponent("experiment"),
	}
}

// Submit stores payload as {data: payload}.
//
// Without a database connection nothing is written and Submit returns
// Result{Stored: false} with no error. A failed insert, including one on a
// handle already closed by single-use mode, returns a DATABASE_ERROR
// AppError and leaves the handle as it was.
func (s *Service) Submit(ctx context.Context, payload any, meta Meta) (res Result, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanSubmit)
	span.SetAttributes(attribute.String(observability.AttrRequestID, meta.RequestID))
	defer func() {
		observability.EndSpan(span, err)
		s.recordOutcome(ctx, res, err)
	}()

	log := s.log.WithRequestID(meta.RequestID)

	if s.handle.State() == store.StateDisconnected {
		log.Warn("No connection to database", map[string]interface{}{
			"reason": s.handle.Reason().String(),
		})
		return Result{Stored: false}, nil
	}

	rec := store.Record{Data: payload}
	if s.recordSession {
		rec.SessionID = meta.RequestID
		if rec.SessionID == "" {
			rec.SessionID = uuid.NewString()
		}
		rec.ReceivedAt = meta.ReceivedAt
		if rec.ReceivedAt.IsZero() {
			rec.ReceivedAt = time.Now().UTC()
		}
	}

	start := time.Now()
	insertErr := s.handle.Insert(ctx, rec)
	if s.metrics != nil {
		s.metrics.RecordInsert(ctx, s.handle.BackendName(), insertErr == nil, time.Since(start))
	}
	if insertErr != nil {
		log.Error("Failed to store submission", logger.ErrorFields("insert", insertErr))
		return Result{}, errors.DatabaseError(insertErr).
			WithDetail("collection", s.handle.Collection())
	}

	log.Debug("Submission stored", map[string]interface{}{
		logger.FieldCollection: s.handle.Collection(),
		"mode":                 string(s.handle.Mode()),
	})
	return Result{Stored: true}, nil
}

func (s *Service) recordOutcome(ctx context.Context, res Result, err error) {
	if s.metrics == nil {
		return
	}
	outcome := observability.OutcomeSkipped
	switch {
	case err != nil:
		outcome = observability.OutcomeFailed
	case res.Stored:
		outcome = observability.OutcomeStored
	}
	s.metrics.RecordSubmission(ctx, outcome)
}
