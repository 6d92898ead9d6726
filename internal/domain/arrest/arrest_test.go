package arrest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestArchivedLogClone verifies that Clone returns a deep copy and handles nil safely.
func TestArchivedLogClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*ArchivedLog)(nil).Clone())

	l := &ArchivedLog{
		ID:            "log-1",
		StartedAt:     time.Date(2025, 9, 10, 8, 0, 0, 0, time.UTC),
		TotalDuration: 5 * time.Minute,
		Outcome:       OutcomeROSC,
		Events:        []Event{NewEvent(time.Minute, "Shock 1 Delivered. Resuming CPR.", CategoryShock)},
	}

	c := l.Clone()
	require.Equal(t, l, c)
	require.NotSame(t, l, c)

	// Ensure events are not shared.
	c.Events[0].Message = "changed"
	require.NotEqual(t, l.Events[0].Message, c.Events[0].Message)
}

// TestOutcomeFor checks phase to outcome mapping.
func TestOutcomeFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, OutcomeROSC, OutcomeFor(PhaseROSC))
	require.Equal(t, OutcomeDeceased, OutcomeFor(PhaseEnded))
	require.Equal(t, OutcomeIncomplete, OutcomeFor(PhaseActive))
	require.Equal(t, OutcomeIncomplete, OutcomeFor(PhasePending))
}

// TestNewChecklist ensures templates produce fresh items with unique ids.
func TestNewChecklist(t *testing.T) {
	t.Parallel()

	a := NewChecklist(ChecklistReversibleCauses)
	b := NewChecklist(ChecklistReversibleCauses)

	require.Len(t, a, 8)
	require.Len(t, NewChecklist(ChecklistPostROSC), 6)
	require.Len(t, NewChecklist(ChecklistPostMortem), 7)
	require.Empty(t, NewChecklist("unknown"))

	seen := make(map[string]struct{}, len(a))
	for i := range a {
		require.False(t, a[i].Completed)
		require.NotEqual(t, a[i].ID, b[i].ID)
		seen[a[i].ID] = struct{}{}
	}

	require.Len(t, seen, len(a))
	require.Equal(t, HypothermiaNone, HypothermiaGradeOf(a))

	for i := range a {
		if a[i].Name == HypothermiaItemName {
			a[i].Hypothermia = HypothermiaModerate
		}
	}

	require.Equal(t, HypothermiaModerate, HypothermiaGradeOf(a))
}

// TestFormatClock checks mm:ss rendering and clamping.
func TestFormatClock(t *testing.T) {
	t.Parallel()

	require.Equal(t, "00:00", FormatClock(-5*time.Second))
	require.Equal(t, "01:05", FormatClock(65*time.Second+900*time.Millisecond))
	require.Equal(t, "125:00", FormatClock(125*time.Minute))
}

// TestSummary ensures lines are sorted chronologically under a total-time header.
func TestSummary(t *testing.T) {
	t.Parallel()

	newestFirst := []Event{
		NewEvent(130*time.Second, "Adrenaline (1mg) Given - Dose 1", CategoryDrug),
		NewEvent(0, "New CPR Cycle Started", CategoryCPR),
		NewEvent(0, "Arrest Started", CategoryStatus),
	}

	want := "eResus Event Summary\n" +
		"Total Arrest Time: 02:30\n\n" +
		"--- Event Log ---\n" +
		"[00:00] Arrest Started\n" +
		"[00:00] New CPR Cycle Started\n" +
		"[02:10] Adrenaline (1mg) Given - Dose 1"

	require.Equal(t, want, Summary(150*time.Second, newestFirst))
	require.Equal(t, "eResus Event Summary\n--- Event Log ---\n", Summary(0, nil))
}
