package audit

import (
	"fmt"
	"reflect"
)

// diffFunc computes the old/new value maps for one event kind. auditable
// is the classifier's predicate for the snapshot being diffed.
type diffFunc func(current, original Snapshot, auditable func(string) bool) (old, new Snapshot)

// diffStrategies dispatches by event kind. An allow-listed event missing
// here is a configuration error surfaced by Diff, never swallowed.
var diffStrategies = map[Event]diffFunc{
	EventCreated:  diffCreated,
	EventUpdated:  diffUpdated,
	EventDeleted:  diffDeleted,
	EventRestored: diffRestored,
}

// Diff produces the old and new value maps for the given event. Both maps
// may be empty; that is a normal result when every attribute is excluded.
// An event with no diff strategy returns ErrNoDiffStrategy.
func Diff(event Event, current, original Snapshot, auditable func(string) bool) (Snapshot, Snapshot, error) {
	fn, ok := diffStrategies[event]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrNoDiffStrategy, event)
	}
	old, new := fn(current, original, auditable)
	return old, new, nil
}

// diffCreated records every auditable attribute of the current snapshot
// as new state; nothing existed before.
func diffCreated(current, _ Snapshot, auditable func(string) bool) (Snapshot, Snapshot) {
	new := Snapshot{}
	for name, value := range current {
		if auditable(name) {
			new[name] = value
		}
	}
	return Snapshot{}, new
}

// diffDeleted is the mirror of diffCreated: the snapshot at the moment of
// deletion is the old state being removed.
func diffDeleted(current, original Snapshot, auditable func(string) bool) (Snapshot, Snapshot) {
	_, removed := diffCreated(current, original, auditable)
	return removed, Snapshot{}
}

// diffRestored reinstates the entity, so the restored values populate the
// new map, exactly as on creation.
func diffRestored(current, original Snapshot, auditable func(string) bool) (Snapshot, Snapshot) {
	return diffCreated(current, original, auditable)
}

// diffUpdated records only attributes present in both snapshots whose
// values differ. Unchanged or non-auditable attributes appear in neither
// map.
func diffUpdated(current, original Snapshot, auditable func(string) bool) (Snapshot, Snapshot) {
	old := Snapshot{}
	new := Snapshot{}
	for name, value := range current {
		before, ok := original[name]
		if !ok || reflect.DeepEqual(value, before) {
			continue
		}
		if !auditable(name) {
			continue
		}
		old[name] = before
		new[name] = value
	}
	return old, new
}
