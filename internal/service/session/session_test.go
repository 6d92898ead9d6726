package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/eresus/internal/clock"
	"github.com/oshokin/eresus/internal/config"
	"github.com/oshokin/eresus/internal/domain/arrest"
	"github.com/oshokin/eresus/internal/domain/dosage"
)

//nolint:gochecknoglobals // Fixed start instant for manual clocks.
var testStart = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

// startedMessage is the event logged when an arrest starts at testStart.
func startedMessage() string {
	return "Arrest Started at " + testStart.Local().Format(time.TimeOnly)
}

type fakeArchiver struct {
	mu   sync.Mutex
	logs []*arrest.ArchivedLog
}

func (f *fakeArchiver) Archive(_ context.Context, log *arrest.ArchivedLog) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.logs = append(f.logs, log)
}

func (f *fakeArchiver) archived() []*arrest.ArchivedLog {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.logs
}

type mutableSettings struct {
	mu     sync.Mutex
	timers config.Timers
}

func (m *mutableSettings) TimerSettings() config.Timers {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.timers
}

func (m *mutableSettings) setCPRCycle(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.timers.CPRCycle = d
}

func newTestSession(t *testing.T, settings Settings) (*Session, *clock.Manual, *fakeArchiver) {
	t.Helper()

	if settings == nil {
		settings = config.Default().Timers
	}

	clk := clock.NewManual(testStart)
	archiver := new(fakeArchiver)

	s := New(context.Background(), settings,
		WithClock(clk),
		WithArchiver(archiver),
		// The periodic ticker never fires; tests tick explicitly.
		WithTickInterval(time.Hour),
	)
	t.Cleanup(s.Close)

	return s, clk, archiver
}

func shock(s *Session) {
	s.AnalyseRhythm()
	s.LogRhythm("VF", true)
	s.DeliverShock()
}

func messages(events []arrest.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range arrest.Chronological(events) {
		out = append(out, e.Message)
	}

	return out
}

func TestStartArrest(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSession(t, nil)

	v := s.View()
	require.Equal(t, arrest.PhasePending, v.Phase)
	require.True(t, v.StartedAt.IsZero())
	require.False(t, v.TickerRunning)
	require.False(t, v.CanUndo)

	s.StartArrest()

	v = s.View()
	require.Equal(t, arrest.PhaseActive, v.Phase)
	require.Equal(t, arrest.SubPhaseDefault, v.SubPhase)
	require.False(t, v.StartedAt.IsZero())
	require.Equal(t, config.DefaultCPRCycle, v.CPRRemaining)
	require.True(t, v.TickerRunning)
	require.True(t, v.CanUndo)
	require.Len(t, v.Events, 1)
	require.Equal(t, arrest.CategoryStatus, v.Events[0].Category)
	require.Equal(t, startedMessage(), v.Events[0].Message)

	// A second start is ignored.
	s.StartArrest()
	require.Len(t, s.View().Events, 1)
}

func TestRhythmAnalysisAndShocks(t *testing.T) {
	t.Parallel()

	s, clk, _ := newTestSession(t, nil)
	s.StartArrest()

	clk.Advance(30 * time.Second)
	s.AnalyseRhythm()
	require.Equal(t, arrest.SubPhaseAnalyzing, s.View().SubPhase)

	// The countdown is frozen while analysing.
	clk.Advance(10 * time.Second)
	s.Tick()
	require.Equal(t, 90*time.Second, s.View().CPRRemaining)

	s.LogRhythm("VF", true)
	require.Equal(t, arrest.SubPhaseShockAdvised, s.View().SubPhase)

	s.DeliverShock()

	v := s.View()
	require.Equal(t, arrest.SubPhaseDefault, v.SubPhase)
	require.Equal(t, 1, v.ShockCount)
	require.Equal(t, config.DefaultCPRCycle, v.CPRRemaining)
	require.Equal(t, []string{
		startedMessage(),
		"Rhythm Analysis - CPR Paused",
		"Rhythm is VF",
		"Shock 1 Delivered. Resuming CPR.",
		"New CPR Cycle Started",
	}, messages(v.Events))

	// Non-shockable rhythm resumes CPR directly.
	s.AnalyseRhythm()
	s.LogRhythm("PEA", false)

	v = s.View()
	require.Equal(t, arrest.SubPhaseDefault, v.SubPhase)
	require.Equal(t, 1, v.ShockCount)

	// Shocks are only delivered when advised.
	s.DeliverShock()
	require.Equal(t, 1, s.View().ShockCount)
}

func TestResumeCPR(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSession(t, nil)
	s.StartArrest()
	s.AnalyseRhythm()
	s.LogRhythm("VT", true)
	s.ResumeCPR()

	v := s.View()
	require.Equal(t, arrest.SubPhaseDefault, v.SubPhase)
	require.Zero(t, v.ShockCount)
	require.Equal(t, "New CPR Cycle Started", v.Events[0].Message)
	require.Equal(t, arrest.CategoryCPR, v.Events[0].Category)
}

func TestPhaseTransitions(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSession(t, nil)

	// Nothing but start is valid while pending.
	s.AchieveROSC()
	s.EndArrest()
	s.ReArrest()
	require.Equal(t, arrest.PhasePending, s.View().Phase)
	require.False(t, s.CanUndo())

	s.StartArrest()
	s.AchieveROSC()
	require.Equal(t, arrest.PhaseROSC, s.View().Phase)
	require.True(t, s.TickerRunning())

	s.ReArrest()
	require.Equal(t, arrest.PhaseActive, s.View().Phase)

	s.EndArrest()

	v := s.View()
	require.Equal(t, arrest.PhaseEnded, v.Phase)
	require.False(t, v.TickerRunning)
	require.Equal(t, "Arrest Ended (Patient Deceased)", v.Events[0].Message)
}

func TestCPRRollover(t *testing.T) {
	t.Parallel()

	s, clk, _ := newTestSession(t, nil)
	s.StartArrest()

	clk.Advance(119 * time.Second)
	s.Tick()
	require.Equal(t, time.Second, s.View().CPRRemaining)

	clk.Advance(time.Second)
	s.Tick()

	v := s.View()
	require.Equal(t, config.DefaultCPRCycle, v.CPRRemaining)
	// Silent rollover logs nothing.
	require.Len(t, v.Events, 1)

	// No double rollover on the next tick.
	s.Tick()
	require.Equal(t, config.DefaultCPRCycle, s.View().CPRRemaining)

	clk.Advance(30 * time.Second)
	s.Tick()
	require.Equal(t, 90*time.Second, s.View().CPRRemaining)
}

func TestCycleLengthChangeAppliesOnNextCycle(t *testing.T) {
	t.Parallel()

	settings := &mutableSettings{timers: config.Default().Timers}
	s, clk, _ := newTestSession(t, settings)
	s.StartArrest()

	settings.setCPRCycle(90 * time.Second)

	clk.Advance(60 * time.Second)
	s.Tick()
	require.Equal(t, 60*time.Second, s.View().CPRRemaining)

	clk.Advance(60 * time.Second)
	s.Tick()

	v := s.View()
	require.Equal(t, 90*time.Second, v.CPRCycleLength)
	require.Equal(t, 90*time.Second, v.CPRRemaining)
}

func TestROSCSuspendsCountdown(t *testing.T) {
	t.Parallel()

	s, clk, _ := newTestSession(t, nil)
	s.StartArrest()

	clk.Advance(20 * time.Second)
	s.AchieveROSC()

	clk.Advance(time.Minute)
	s.Tick()

	v := s.View()
	require.Equal(t, 80*time.Second, v.TotalElapsed)
	require.Equal(t, 100*time.Second, v.CPRRemaining)

	s.ReArrest()
	require.Equal(t, config.DefaultCPRCycle, s.View().CPRRemaining)
}

func TestDowntimeOffsetScenario(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSession(t, nil)
	s.StartArrest()
	s.AddDowntimeOffset(300 * time.Second)
	s.LogAdrenaline("")

	v := s.View()
	require.Equal(t, 300*time.Second, v.TotalElapsed)
	require.NotNil(t, v.LastAdrenalineAt)
	require.Equal(t, 300*time.Second, *v.LastAdrenalineAt)
	require.Equal(t, 1, v.AdrenalineCount)
	require.Equal(t, arrest.CategoryDrug, v.Events[0].Category)
	require.Contains(t, v.Events[0].Message, "Dose 1")
	require.Equal(t, "Time offset added: +5 min", v.Events[1].Message)

	// The running cycle keeps its cadence.
	require.Equal(t, config.DefaultCPRCycle, v.CPRRemaining)

	// Offsets only ever add.
	s.AddDowntimeOffset(-time.Minute)
	s.AddDowntimeOffset(0)
	require.Equal(t, 300*time.Second, s.View().TotalElapsed)

	s.AddDowntimeOffset(90 * time.Second)
	require.Equal(t, "Time offset added: +90s", s.View().Events[0].Message)
}

func TestDrugLogging(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSession(t, nil)
	s.StartArrest()

	s.LogAdrenaline("1mg")
	s.LogAmiodarone("300mg")
	s.LogOtherDrug("  Atropine ")
	s.LogOtherDrug("   ")
	s.LogAirwayPlaced()
	s.LogAirwayPlaced()

	v := s.View()
	require.Equal(t, 1, v.AdrenalineCount)
	require.Equal(t, 1, v.AmiodaroneCount)
	require.True(t, v.AirwayPlaced)
	require.Equal(t, arrest.AntiarrhythmicAmiodarone, v.Antiarrhythmic)
	require.NotNil(t, v.ShockCountAtFirstAmiodarone)
	require.Zero(t, *v.ShockCountAtFirstAmiodarone)
	require.Equal(t, []string{
		startedMessage(),
		"Adrenaline (1mg) Given - Dose 1",
		"Amiodarone (300mg) Given - Dose 1",
		"Atropine Given",
		"Advanced Airway Placed",
	}, messages(v.Events))
}

func TestLogEtco2(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSession(t, nil)
	s.StartArrest()

	before := s.View()
	depth := s.undo.len()

	for _, input := range []string{"abc", "", "-4", "0", "3.5"} {
		s.LogEtco2(input)
	}

	require.Len(t, s.View().Events, len(before.Events))
	require.Equal(t, depth, s.undo.len())

	s.LogEtco2("35")

	v := s.View()
	require.Len(t, v.Events, len(before.Events)+1)
	require.Equal(t, arrest.CategoryETCO2, v.Events[0].Category)
	require.Contains(t, v.Events[0].Message, "35")
	require.Equal(t, depth+1, s.undo.len())
}

func TestAntiarrhythmicMutualExclusion(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSession(t, nil)
	s.StartArrest()

	v := s.View()
	require.False(t, v.AmiodaroneAvailable)
	require.False(t, v.LidocaineAvailable)

	for range 3 {
		shock(s)
	}

	v = s.View()
	require.True(t, v.AmiodaroneAvailable)
	require.True(t, v.LidocaineAvailable)

	s.LogAmiodarone("")

	for range 5 {
		shock(s)
		require.False(t, s.View().LidocaineAvailable)
	}

	// Second dose unlocked at five shocks, then nothing more.
	s.LogAmiodarone("")
	require.False(t, s.View().AmiodaroneAvailable)

	other, _, _ := newTestSession(t, nil)
	other.StartArrest()

	for range 3 {
		shock(other)
	}

	other.LogLidocaine("")

	for range 3 {
		shock(other)
		require.False(t, other.View().AmiodaroneAvailable)
	}

	require.Equal(t, arrest.AntiarrhythmicLidocaine, other.View().Antiarrhythmic)
}

func TestSecondAmiodaroneDoseThreshold(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSession(t, nil)
	s.StartArrest()

	for range 3 {
		shock(s)
	}

	s.LogAmiodarone("")
	require.False(t, s.View().AmiodaroneAvailable)

	shock(s)

	v := s.View()
	require.Equal(t, 4, v.ShockCount)
	require.False(t, v.AmiodaroneReminder)
	require.False(t, v.AmiodaroneAvailable)

	shock(s)

	v = s.View()
	require.Equal(t, 5, v.ShockCount)
	require.True(t, v.AmiodaroneReminder)
	require.True(t, v.AmiodaroneAvailable)

	s.LogAmiodarone("")
	require.False(t, s.View().AmiodaroneReminder)
}

func TestHypothermia(t *testing.T) {
	t.Parallel()

	s, clk, _ := newTestSession(t, nil)
	s.StartArrest()

	for range 3 {
		shock(s)
	}

	s.LogAdrenaline("")
	require.True(t, s.View().AdrenalineAvailable)

	s.SetHypothermiaGrade(arrest.HypothermiaSevere)

	v := s.View()
	require.Equal(t, arrest.HypothermiaSevere, v.Hypothermia)
	require.False(t, v.AdrenalineAvailable)
	require.False(t, v.AmiodaroneAvailable)
	require.False(t, v.LidocaineAvailable)
	require.Equal(t, "Hypothermia status set to: Severe (< 30°C)", v.Events[0].Message)
	require.Equal(t, arrest.CategoryCause, v.Events[0].Category)

	for _, item := range v.ReversibleCauses {
		if item.Name == arrest.HypothermiaItemName {
			require.True(t, item.Completed)
		}
	}

	// Moderate hypothermia doubles the interval.
	s.SetHypothermiaGrade(arrest.HypothermiaModerate)

	v = s.View()
	require.True(t, v.AdrenalineAvailable)
	require.Equal(t, 2*config.DefaultAdrenalineInterval, v.AdrenalineInterval)

	clk.Advance(config.DefaultAdrenalineInterval)
	s.Tick()
	require.False(t, s.View().AdrenalineDue)

	s.SetHypothermiaGrade(arrest.HypothermiaNone)

	v = s.View()
	require.True(t, v.AdrenalineDue)

	for _, item := range v.ReversibleCauses {
		if item.Name == arrest.HypothermiaItemName {
			require.False(t, item.Completed)
		}
	}
}

func TestAdrenalineDue(t *testing.T) {
	t.Parallel()

	s, clk, _ := newTestSession(t, nil)
	s.StartArrest()

	v := s.View()
	require.False(t, v.AdrenalineDue)
	require.False(t, v.AdrenalineDueSoon)

	s.LogAdrenaline("")

	clk.Advance(config.DefaultAdrenalineInterval - 31*time.Second)
	s.Tick()
	require.False(t, s.View().AdrenalineDueSoon)

	clk.Advance(time.Second)
	s.Tick()

	v = s.View()
	require.True(t, v.AdrenalineDueSoon)
	require.False(t, v.AdrenalineDue)
	require.Equal(t, 30*time.Second, v.AdrenalineDueIn)

	clk.Advance(30 * time.Second)
	s.Tick()

	v = s.View()
	require.True(t, v.AdrenalineDue)
	require.False(t, v.AdrenalineDueSoon)
}

func TestChecklistToggle(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSession(t, nil)
	s.StartArrest()
	s.AchieveROSC()

	task := s.View().PostROSCTasks[1]

	s.ToggleChecklistItem(arrest.ChecklistPostROSC, task.ID)

	v := s.View()
	require.True(t, v.PostROSCTasks[1].Completed)
	require.Equal(t, "Post-ROSC task completed: "+task.Name, v.Events[0].Message)

	s.ToggleChecklistItem(arrest.ChecklistPostROSC, task.ID)
	require.False(t, s.View().PostROSCTasks[1].Completed)
	require.Equal(t, "Post-ROSC task reopened: "+task.Name, s.View().Events[0].Message)

	cause := v.ReversibleCauses[0]
	s.ToggleChecklistItem(arrest.ChecklistReversibleCauses, cause.ID)
	require.Equal(t, "Reversible cause addressed: "+cause.Name, s.View().Events[0].Message)

	// Unknown ids and lists are ignored.
	events := len(s.View().Events)
	s.ToggleChecklistItem(arrest.ChecklistPostMortem, "missing")
	s.ToggleChecklistItem("bogus", cause.ID)
	require.Len(t, s.View().Events, events)
}

func TestUndo(t *testing.T) {
	t.Parallel()

	s, clk, _ := newTestSession(t, nil)
	require.False(t, s.Undo())

	initial := s.st.clone()

	s.StartArrest()
	clk.Advance(10 * time.Second)
	shock(s)
	s.LogAdrenaline("1mg")
	s.LogEtco2("40")
	s.SetHypothermiaGrade(arrest.HypothermiaModerate)
	s.ToggleChecklistItem(arrest.ChecklistReversibleCauses, s.View().ReversibleCauses[0].ID)
	s.AddDowntimeOffset(time.Minute)
	s.AchieveROSC()
	s.EndArrest()
	require.False(t, s.TickerRunning())

	// Undoing the end restarts the ticker.
	require.True(t, s.Undo())
	require.Equal(t, arrest.PhaseROSC, s.View().Phase)
	require.True(t, s.TickerRunning())

	for s.Undo() {
	}

	require.Equal(t, initial, s.st)
	require.False(t, s.TickerRunning())
	require.False(t, s.CanUndo())
}

func TestUndoRestoresChecklistsAndLog(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSession(t, nil)
	s.StartArrest()

	before := s.View()
	cause := before.ReversibleCauses[2]

	s.ToggleChecklistItem(arrest.ChecklistReversibleCauses, cause.ID)
	require.True(t, s.Undo())

	after := s.View()
	require.Equal(t, before.ReversibleCauses, after.ReversibleCauses)
	require.Equal(t, before.Events, after.Events)
}

func TestPatientAgeSurvivesUndo(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSession(t, nil)
	s.StartArrest()
	s.SetPatientAgeCategory(dosage.FiveYears)
	s.LogAdrenaline("190mcg")

	v := s.View()
	require.Equal(t, dosage.FiveYears, v.PatientAge)
	require.Equal(t, "190mcg", v.NextAdrenalineDose)
	require.Equal(t, "100mg", v.NextAmiodaroneDose)

	require.True(t, s.Undo())
	require.Equal(t, dosage.FiveYears, s.View().PatientAge)

	s.SetPatientAgeCategory("adult")
	require.Equal(t, dosage.Adult, s.View().PatientAge)

	s.SetPatientAgeCategory("elderly")
	require.Equal(t, dosage.Adult, s.View().PatientAge)

	s.SetPatientAgeCategory("")
	v = s.View()
	require.Empty(t, v.PatientAge)
	require.Empty(t, v.NextAdrenalineDose)
}

func TestResetArchivesROSCSession(t *testing.T) {
	t.Parallel()

	s, clk, archiver := newTestSession(t, nil)
	s.StartArrest()
	clk.Advance(45 * time.Second)
	s.LogAdrenaline("")
	s.AchieveROSC()
	clk.Advance(15 * time.Second)

	s.Tick()
	live := s.View()

	archived := s.Reset(context.Background(), ResetOptions{SaveLog: true})
	require.NotNil(t, archived)

	logs := archiver.archived()
	require.Len(t, logs, 1)
	require.Equal(t, arrest.OutcomeROSC, logs[0].Outcome)
	require.Equal(t, time.Minute, logs[0].TotalDuration)
	require.Equal(t, live.StartedAt, logs[0].StartedAt)
	require.Equal(t, live.Events, logs[0].Events)
	require.Equal(t, archived, logs[0])

	v := s.View()
	require.Equal(t, arrest.PhasePending, v.Phase)
	require.Zero(t, v.TotalElapsed)
	require.Empty(t, v.Events)
	require.False(t, v.CanUndo)
	require.False(t, v.TickerRunning)
}

func TestResetOutcomes(t *testing.T) {
	t.Parallel()

	s, _, archiver := newTestSession(t, nil)

	// Nothing to archive before an arrest starts.
	require.Nil(t, s.Reset(context.Background(), ResetOptions{SaveLog: true}))

	s.StartArrest()
	s.EndArrest()
	require.Equal(t, arrest.OutcomeDeceased, s.Reset(context.Background(), ResetOptions{SaveLog: true}).Outcome)

	s.StartArrest()
	require.Equal(t, arrest.OutcomeIncomplete, s.Reset(context.Background(), ResetOptions{SaveLog: true}).Outcome)

	// Discarded sessions are not archived.
	s.StartArrest()
	require.Nil(t, s.Reset(context.Background(), ResetOptions{}))

	require.Len(t, archiver.archived(), 2)
}

func TestEventTimestampsAreOrdered(t *testing.T) {
	t.Parallel()

	s, clk, _ := newTestSession(t, nil)
	s.StartArrest()

	for i := range 5 {
		clk.Advance(time.Duration(i) * time.Second)
		s.LogEtco2("30")
	}

	s.AddDowntimeOffset(time.Minute)
	s.LogOtherDrug("Calcium Chloride")

	events := arrest.Chronological(s.View().Events)
	for i := 1; i < len(events); i++ {
		require.LessOrEqual(t, events[i-1].Timestamp, events[i].Timestamp)
	}

	require.Equal(t, "Calcium Chloride Given", events[len(events)-1].Message)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	s, clk, _ := newTestSession(t, nil)
	s.StartArrest()
	clk.Advance(65 * time.Second)
	s.LogAirwayPlaced()

	summary := s.Summary()
	require.True(t, strings.HasPrefix(summary, "eResus Event Summary\nTotal Arrest Time: 01:05\n\n--- Event Log ---\n"))
	require.True(t, strings.HasSuffix(summary, "[01:05] Advanced Airway Placed"))
}

func TestTickerUpdatesElapsedTime(t *testing.T) {
	t.Parallel()

	s := New(context.Background(), config.Default().Timers, WithTickInterval(10*time.Millisecond))
	t.Cleanup(s.Close)

	s.StartArrest()

	require.Eventually(t, func() bool {
		return s.View().Elapsed > 0
	}, time.Second, 5*time.Millisecond)

	select {
	case <-s.Updates():
	case <-time.After(time.Second):
		require.FailNow(t, "no update signalled")
	}

	s.Close()
	require.False(t, s.TickerRunning())
}
