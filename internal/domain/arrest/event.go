package arrest

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Event is an immutable entry of the arrest log.
type Event struct {
	// ID is an opaque unique token.
	ID string
	// Timestamp is the session's total elapsed time when the event was recorded.
	Timestamp time.Duration
	// Message is the human-readable description.
	Message string
	// Category classifies the event for display.
	Category EventCategory
}

// NewEvent stamps a new event with a fresh identifier.
func NewEvent(at time.Duration, message string, category EventCategory) Event {
	return Event{
		ID:        uuid.NewString(),
		Timestamp: at,
		Message:   message,
		Category:  category,
	}
}

// CloneEvents returns an independent copy of events.
func CloneEvents(events []Event) []Event {
	if events == nil {
		return nil
	}

	return slices.Clone(events)
}

// Chronological returns a copy of events sorted oldest first.
// Events sharing a timestamp keep their relative insertion order, so a
// newest-first slice is reversed before sorting.
func Chronological(newestFirst []Event) []Event {
	out := CloneEvents(newestFirst)
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b Event) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})

	return out
}
