package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActorResolver returns the identifier of the current actor, or false
// when no actor is present (anonymous or background work).
type ActorResolver func(ctx context.Context) (string, bool)

// SourceResolver describes where a transition came from. Outside of a
// request-handling context URL returns "console".
type SourceResolver interface {
	Console(ctx context.Context) bool
	URL(ctx context.Context) string
	IPAddress(ctx context.Context) string
	UserAgent(ctx context.Context) string
}

// Transform lets callers rewrite the assembled record before it is
// returned. The builder does not validate the transform's output.
type Transform func(Record) Record

// Builder assembles audit records. It performs no I/O beyond invoking
// the injected resolvers; each Build call is an independent, synchronous
// computation over caller-owned snapshots, so concurrent builds need no
// coordination.
type Builder struct {
	actor     ActorResolver
	source    SourceResolver
	transform Transform
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithTransform overrides the identity transform applied to every record.
func WithTransform(t Transform) BuilderOption {
	return func(b *Builder) {
		if t != nil {
			b.transform = t
		}
	}
}

// NewBuilder wires the builder's resolvers. A nil source resolver is
// treated as a console runtime; a nil actor resolver is a configuration
// error reported by Build, not here, so construction stays infallible.
func NewBuilder(actor ActorResolver, source SourceResolver, opts ...BuilderOption) *Builder {
	b := &Builder{
		actor:     actor,
		source:    source,
		transform: func(r Record) Record { return r },
	}
	if b.source == nil {
		b.source = consoleSource{}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build produces the record for the gate's pending event, or (nil, nil)
// when no event is pending — a normal short-circuit, not a failure.
// Classification and diffing run fresh on every call.
func (b *Builder) Build(ctx context.Context, subject Subject, gate *Gate) (*Record, error) {
	event, ok := gate.Current()
	if !ok {
		return nil, nil
	}

	if b.actor == nil {
		return nil, ErrNoActorResolver
	}

	policy := subject.AuditPolicy()
	current := subject.Attributes()
	excluded := computeExclusions(current, policy)

	old, new, err := Diff(event, current, subject.Original(), func(name string) bool {
		return policy.isAuditable(name, excluded)
	})
	if err != nil {
		return nil, err
	}

	var userID *string
	if id, ok := b.actor(ctx); ok {
		userID = &id
	}

	record := Record{
		ID:            uuid.New(),
		Event:         event,
		AuditableID:   subject.AuditableID(),
		AuditableType: subject.AuditableType(),
		Old:           old,
		New:           new,
		UserID:        userID,
		URL:           b.source.URL(ctx),
		IPAddress:     b.source.IPAddress(ctx),
		UserAgent:     b.source.UserAgent(ctx),
		CreatedAt:     time.Now().UTC(),
	}

	record = b.transform(record)
	return &record, nil
}

// consoleSource is the fallback when no source resolver is wired.
type consoleSource struct{}

func (consoleSource) Console(context.Context) bool     { return true }
func (consoleSource) URL(context.Context) string       { return "console" }
func (consoleSource) IPAddress(context.Context) string { return "" }
func (consoleSource) UserAgent(context.Context) string { return "" }
