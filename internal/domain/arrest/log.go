package arrest

import (
	"fmt"
	"strings"
	"time"
)

// ArchivedLog is a finalized arrest episode. It is immutable once created.
type ArchivedLog struct {
	// ID identifies the log in the archive.
	ID string
	// StartedAt is the wall-clock instant the arrest was started.
	StartedAt time.Time
	// EndedAt is the wall-clock instant the log was finalized.
	EndedAt time.Time
	// TotalDuration includes any downtime offset.
	TotalDuration time.Duration
	// Outcome is derived from the phase at finalize time.
	Outcome Outcome
	// Events is stored newest first, as recorded.
	Events []Event
}

// Clone returns a deep copy of the log.
func (l *ArchivedLog) Clone() *ArchivedLog {
	if l == nil {
		return nil
	}

	cloned := *l
	cloned.Events = CloneEvents(l.Events)

	return &cloned
}

// Summary renders the log as export text.
func (l *ArchivedLog) Summary() string {
	return Summary(l.TotalDuration, l.Events)
}

// FormatClock renders d as mm:ss, clamping negatives to zero.
// Minutes are not wrapped into hours.
func FormatClock(d time.Duration) string {
	total := max(0, int(d/time.Second))

	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Summary renders the export text: a header with the total time followed by
// one "[mm:ss] message" line per event in chronological order.
func Summary(total time.Duration, newestFirst []Event) string {
	var b strings.Builder

	b.WriteString("eResus Event Summary\n")

	if len(newestFirst) > 0 {
		fmt.Fprintf(&b, "Total Arrest Time: %s\n\n", FormatClock(total))
	}

	b.WriteString("--- Event Log ---\n")

	lines := make([]string, 0, len(newestFirst))
	for _, e := range Chronological(newestFirst) {
		lines = append(lines, fmt.Sprintf("[%s] %s", FormatClock(e.Timestamp), e.Message))
	}

	b.WriteString(strings.Join(lines, "\n"))

	return b.String()
}
