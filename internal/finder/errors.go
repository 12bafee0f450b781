package finder

import (
	"errors"
	"fmt"
)

// ErrNoEvent is returned by FindParticles before any event has been loaded
// with Init.
var ErrNoEvent = errors.New("finder: no event initialised")

// BadEventError reports malformed per-event input. The event is unusable but
// the caller may skip it and continue with the next one.
type BadEventError struct {
	EventID int64
	Track   int // offending track index, -1 for event-level problems
	Reason  string
}

func (e *BadEventError) Error() string {
	if e.Track >= 0 {
		return fmt.Sprintf("finder: event %d: track %d: %s", e.EventID, e.Track, e.Reason)
	}
	return fmt.Sprintf("finder: event %d: %s", e.EventID, e.Reason)
}
