package session

import (
	"slices"
	"time"

	"github.com/oshokin/eresus/internal/domain/arrest"
)

// eventLog is append-only within a session generation. Entries are kept
// newest first for display; each carries its own timestamp so callers can
// re-sort chronologically.
type eventLog struct {
	events []arrest.Event
}

// record prepends an event stamped with the given total elapsed time.
func (l *eventLog) record(at time.Duration, message string, category arrest.EventCategory) arrest.Event {
	e := arrest.NewEvent(at, message, category)
	l.events = slices.Insert(l.events, 0, e)

	return e
}

func (l *eventLog) len() int {
	return len(l.events)
}

func (l *eventLog) clone() eventLog {
	return eventLog{events: arrest.CloneEvents(l.events)}
}
