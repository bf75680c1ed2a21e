// Package recorder is the explicit call site for entity lifecycle
// auditing: the hosting application calls Record at each transition and
// the recorder runs the gate, the builder, persistence, retention, and
// fan-out in order.
package recorder

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"trail/internal/platform/metrics"
	"trail/pkg/audit"
)

type Recorder struct {
	builder         *audit.Builder
	store           audit.Store
	source          audit.SourceResolver
	metrics         *metrics.Metrics
	logger          *slog.Logger
	tracer          trace.Tracer
	fanout          chan<- audit.Record
	consoleAuditing bool
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithFanout queues every persisted record on the channel for a publish
// worker. The send never blocks; a full buffer drops the record and
// counts it.
func WithFanout(ch chan<- audit.Record) Option {
	return func(r *Recorder) { r.fanout = ch }
}

// WithConsoleAuditing enables auditing when running outside a request
// context. Off by default.
func WithConsoleAuditing(enabled bool) Option {
	return func(r *Recorder) { r.consoleAuditing = enabled }
}

func New(builder *audit.Builder, store audit.Store, source audit.SourceResolver, m *metrics.Metrics, logger *slog.Logger, opts ...Option) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		builder: builder,
		store:   store,
		source:  source,
		metrics: m,
		logger:  logger,
		tracer:  otel.Tracer("trail/internal/recorder"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record audits one lifecycle transition of the subject. It returns
// (nil, nil) when nothing is recorded: auditing disabled for the runtime
// or the event not allow-listed. Configuration errors (missing actor
// resolver, allow-listed event without a diff strategy) are returned to
// the caller; nothing partial is persisted on failure.
func (r *Recorder) Record(ctx context.Context, subject audit.Subject, event audit.Event) (*audit.Record, error) {
	ctx, span := r.tracer.Start(ctx, "audit.record", trace.WithAttributes(
		attribute.String("audit.event", string(event)),
		attribute.String("audit.auditable_type", subject.AuditableType()),
	))
	defer span.End()

	if !audit.Enabled(r.source.Console(ctx), r.consoleAuditing) {
		r.metrics.IncSkipped()
		return nil, nil
	}

	policy := subject.AuditPolicy()
	gate := audit.NewGate(policy.Events)
	gate.SetCurrent(event)

	record, err := r.builder.Build(ctx, subject, gate)
	if err != nil {
		r.metrics.IncFailed()
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		return nil, err
	}
	if record == nil {
		r.metrics.IncSkipped()
		return nil, nil
	}

	if err := r.store.Append(ctx, *record); err != nil {
		r.metrics.IncFailed()
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		return nil, fmt.Errorf("append audit record: %w", err)
	}

	if policy.Threshold > 0 {
		// Retention is best-effort; the record is already persisted.
		if err := r.store.Prune(ctx, record.AuditableType, record.AuditableID, policy.Threshold); err != nil {
			r.logger.WarnContext(ctx, "audit prune failed",
				"auditable_type", record.AuditableType,
				"auditable_id", record.AuditableID,
				"error", err,
			)
		} else {
			r.metrics.IncPruned()
		}
	}

	if r.fanout != nil {
		select {
		case r.fanout <- *record:
		default:
			r.metrics.IncFanoutDropped()
			r.logger.WarnContext(ctx, "audit fanout buffer full, record dropped",
				"record_id", record.ID,
			)
		}
	}

	r.metrics.IncBuilt()
	r.logger.DebugContext(ctx, "audit record stored",
		"record_id", record.ID,
		"event", record.Event,
		"auditable_type", record.AuditableType,
		"auditable_id", record.AuditableID,
	)
	return record, nil
}
