package session

import (
	"time"

	"github.com/oshokin/eresus/internal/domain/arrest"
	"github.com/oshokin/eresus/internal/domain/dosage"
)

// View is a point-in-time copy of everything a renderer shows. It shares no
// memory with the session.
type View struct {
	Phase    arrest.Phase
	SubPhase arrest.SubPhase

	// StartedAt is zero while pending.
	StartedAt      time.Time
	Elapsed        time.Duration
	DowntimeOffset time.Duration
	TotalElapsed   time.Duration

	CPRCycleLength time.Duration
	CPRRemaining   time.Duration
	MetronomeBPM   int

	ShockCount      int
	AdrenalineCount int
	AmiodaroneCount int
	LidocaineCount  int
	AirwayPlaced    bool
	Antiarrhythmic  arrest.AntiarrhythmicClass
	Hypothermia     arrest.HypothermiaGrade

	// LastAdrenalineAt is nil before the first dose.
	LastAdrenalineAt *time.Duration
	// ShockCountAtFirstAmiodarone is nil before the first amiodarone dose.
	ShockCountAtFirstAmiodarone *int

	Eligibility

	// PatientAge is empty until selected.
	PatientAge dosage.Age
	// NextAdrenalineDose and NextAmiodaroneDose are empty when no age is
	// selected or the table has no dose.
	NextAdrenalineDose string
	NextAmiodaroneDose string

	ReversibleCauses []arrest.ChecklistItem
	PostROSCTasks    []arrest.ChecklistItem
	PostMortemTasks  []arrest.ChecklistItem

	// Events are newest first.
	Events []arrest.Event

	CanUndo       bool
	TickerRunning bool
}

// View returns a snapshot of the session for rendering.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	timers := s.timers()
	st := &s.st

	v := View{
		Phase:            st.phase,
		SubPhase:         st.subPhase,
		StartedAt:        st.startedAt,
		Elapsed:          st.elapsed,
		DowntimeOffset:   st.downtimeOffset,
		TotalElapsed:     st.total(),
		CPRCycleLength:   st.cprCycleLength,
		CPRRemaining:     st.cprRemaining,
		MetronomeBPM:     timers.MetronomeBPM,
		ShockCount:       st.shockCount,
		AdrenalineCount:  st.adrenalineCount,
		AmiodaroneCount:  st.amiodaroneCount,
		LidocaineCount:   st.lidocaineCount,
		AirwayPlaced:     st.airwayPlaced,
		Antiarrhythmic:   st.antiarrhythmic,
		Hypothermia:      arrest.HypothermiaGradeOf(st.reversibleCauses),
		Eligibility:      eligibilityOf(st, timers.AdrenalineInterval),
		PatientAge:       st.patientAge,
		ReversibleCauses: arrest.CloneChecklist(st.reversibleCauses),
		PostROSCTasks:    arrest.CloneChecklist(st.postROSCTasks),
		PostMortemTasks:  arrest.CloneChecklist(st.postMortemTasks),
		Events:           arrest.CloneEvents(st.log.events),
		CanUndo:          s.undo.len() > 0,
		TickerRunning:    s.tickCancel != nil,
	}

	if st.adrenalineCount > 0 {
		at := st.lastAdrenalineAt
		v.LastAdrenalineAt = &at
	}

	if st.amiodaroneCount > 0 {
		shocks := st.shockCountAtFirstAmiodarone
		v.ShockCountAtFirstAmiodarone = &shocks
	}

	if st.patientAge != "" {
		v.NextAdrenalineDose, _ = dosage.DoseFor(dosage.Adrenaline, st.patientAge, st.adrenalineCount+1)
		v.NextAmiodaroneDose, _ = dosage.DoseFor(dosage.Amiodarone, st.patientAge, st.amiodaroneCount+1)
	}

	return v
}
