package audit

import (
	"encoding"
	"fmt"
	"reflect"
	"time"
)

// Snapshot is a point-in-time mapping of attribute name to value. Two
// snapshots exist per build: the entity's current state and its original
// (pre-modification) state.
type Snapshot map[string]any

// Policy is the per-entity audit configuration. Zero value: all four
// standard events allowed, every scalar attribute auditable, no pruning.
type Policy struct {
	// Events is the allow-list of lifecycle events that may produce a
	// record. Empty means the four standard events.
	Events []Event

	// Include restricts auditing to the listed attributes when non-empty.
	Include []string

	// Exclude names attributes that are never audited.
	Exclude []string

	// Strict limits auditing to the entity's public serialization
	// surface: hidden attributes and attributes outside the visible
	// list are excluded.
	Strict  bool
	Hidden  []string
	Visible []string

	// Threshold caps how many records stores retain per entity.
	// Zero means unbounded. Consumed by the persistence layer.
	Threshold int
}

// computeExclusions builds the exclusion set for one snapshot. It unions
// the configured exclude list, the strict-mode visibility rules, and the
// scalar-only rule. The set is recomputed fresh for every build; entity
// state may have changed between builds.
func computeExclusions(snapshot Snapshot, p Policy) map[string]struct{} {
	excluded := make(map[string]struct{}, len(p.Exclude))
	for _, name := range p.Exclude {
		excluded[name] = struct{}{}
	}

	if p.Strict {
		hidden := toSet(p.Hidden)
		visible := toSet(p.Visible)
		for name := range snapshot {
			if _, ok := hidden[name]; ok {
				excluded[name] = struct{}{}
				continue
			}
			// An empty visible list means the whole surface is public.
			if len(visible) > 0 {
				if _, ok := visible[name]; !ok {
					excluded[name] = struct{}{}
				}
			}
		}
	}

	// Composite values cannot be represented in the record's value maps,
	// so they are excluded rather than erroring. Applies in both modes.
	for name, value := range snapshot {
		if !scalar(value) {
			excluded[name] = struct{}{}
		}
	}

	return excluded
}

// isAuditable reports whether the named attribute may appear in a record:
// it must not be excluded, and when an include list is configured it must
// be listed there.
func (p Policy) isAuditable(name string, excluded map[string]struct{}) bool {
	if _, ok := excluded[name]; ok {
		return false
	}
	if len(p.Include) == 0 {
		return true
	}
	for _, n := range p.Include {
		if n == name {
			return true
		}
	}
	return false
}

// scalar reports whether a value can be carried in an audit record:
// nil, booleans, numbers, strings, timestamps, and anything that knows
// how to render itself as text. Slices, maps, and plain structs are
// composite and fail the check.
func scalar(value any) bool {
	switch value.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		time.Time:
		return true
	}
	if _, ok := value.(fmt.Stringer); ok {
		return true
	}
	if _, ok := value.(encoding.TextMarshaler); ok {
		return true
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
