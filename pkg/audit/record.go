package audit

import (
	"time"

	"github.com/google/uuid"
)

// Record is the immutable output of one lifecycle transition. It is
// constructed once per build and handed to a Store or publisher; the
// core never mutates it afterwards.
type Record struct {
	ID            uuid.UUID `json:"id"`
	Event         Event     `json:"event"`
	AuditableID   string    `json:"auditable_id"`
	AuditableType string    `json:"auditable_type"`
	Old           Snapshot  `json:"old_values"`
	New           Snapshot  `json:"new_values"`
	UserID        *string   `json:"user_id,omitempty"`
	URL           string    `json:"url"`
	IPAddress     string    `json:"ip_address"`
	UserAgent     string    `json:"user_agent,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Subject is the audited entity's view: identity, the current and
// original attribute snapshots, and the audit configuration. Snapshots
// must be stable for the duration of one Build call; the core does not
// detect concurrent mutation.
type Subject interface {
	AuditableID() string
	AuditableType() string
	Attributes() Snapshot
	Original() Snapshot
	AuditPolicy() Policy
}
