package audit

import "errors"

// Configuration errors raised synchronously by Build. These are fatal:
// there is no partial record on failure.
var (
	// ErrNoActorResolver means no actor resolver was configured. Absence
	// and misconfiguration are treated the same; silently recording a
	// nil actor would hide a wiring bug.
	ErrNoActorResolver = errors.New("audit: actor resolver not configured")

	// ErrNoDiffStrategy means an allow-listed event has no diff
	// implementation, e.g. a custom event name the differ does not know.
	ErrNoDiffStrategy = errors.New("audit: no diff strategy for event")
)
