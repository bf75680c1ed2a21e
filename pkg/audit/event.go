// Package audit computes immutable records describing entity lifecycle
// transitions. It decides which attributes are eligible for auditing,
// diffs current against original state per event kind, and assembles the
// final record with actor and request metadata. Persistence is a
// collaborator behind the Store interface so sinks can fan out.
package audit

// Event identifies a lifecycle transition of an audited entity.
type Event string

const (
	EventCreated  Event = "created"
	EventUpdated  Event = "updated"
	EventDeleted  Event = "deleted"
	EventRestored Event = "restored"
)

// DefaultEvents is the allow-list applied when a policy declares none.
func DefaultEvents() []Event {
	return []Event{EventCreated, EventUpdated, EventDeleted, EventRestored}
}

// EventAllowed reports whether the event is in the entity's allow-list.
func EventAllowed(event Event, allowed []Event) bool {
	for _, e := range allowed {
		if e == event {
			return true
		}
	}
	return false
}
