package audit

import "context"

// Store persists completed audit records. Implementations must treat
// records as immutable; Prune keeps only the most recent records for an
// entity when its policy sets a threshold.
type Store interface {
	Append(ctx context.Context, record Record) error
	Prune(ctx context.Context, auditableType, auditableID string, keep int) error
	ListByAuditable(ctx context.Context, auditableType, auditableID string) ([]Record, error)
}

// Publisher fans a completed record out to an external system, e.g. a
// Kafka topic. Publishing is best-effort relative to the store write.
type Publisher interface {
	Publish(ctx context.Context, record Record) error
}
