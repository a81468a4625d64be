// Package observability wires OpenTelemetry tracing and metrics.
//
// Exporters are opt-in. With observability.enabled=false the global
// providers stay no-op and spans/instruments cost nothing:
//
//	shutdown, err := observability.Setup(ctx, cfg, "gonogo", version.Get().Version)
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanSubmit)
//	defer span.End()
//
// Submission outcomes and insert latency are recorded through Metrics:
//
//	m, _ := observability.NewMetrics(observability.Meter("gonogo"))
//	m.RecordSubmission(ctx, observability.OutcomeStored)
package observability
