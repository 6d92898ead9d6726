package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestManualAdvance verifies the manual clock only moves on Advance.
func TestManualAdvance(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 9, 10, 8, 0, 0, 0, time.UTC)
	c := NewManual(start)

	require.Equal(t, start, c.Now())

	c.Advance(90 * time.Second)
	require.Equal(t, start.Add(90*time.Second), c.Now())
}

// TestSystemIsUTC checks the system clock reports UTC.
func TestSystemIsUTC(t *testing.T) {
	t.Parallel()

	require.Equal(t, time.UTC, System{}.Now().Location())
}
