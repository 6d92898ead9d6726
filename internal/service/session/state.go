package session

import (
	"time"

	"github.com/oshokin/eresus/internal/config"
	"github.com/oshokin/eresus/internal/domain/arrest"
	"github.com/oshokin/eresus/internal/domain/dosage"
)

// state is every mutable field of a session. Undo snapshots are deep copies of it.
type state struct {
	phase    arrest.Phase
	subPhase arrest.SubPhase

	// startedAt is zero while pending.
	startedAt      time.Time
	elapsed        time.Duration
	downtimeOffset time.Duration

	// cprCycleAnchor is the total elapsed time at which the current cycle began.
	cprCycleAnchor time.Duration
	// cprCycleLength is the cycle duration in force when the cycle began.
	cprCycleLength time.Duration
	cprRemaining   time.Duration

	shockCount      int
	adrenalineCount int
	amiodaroneCount int
	lidocaineCount  int
	airwayPlaced    bool
	antiarrhythmic  arrest.AntiarrhythmicClass

	// lastAdrenalineAt is meaningful only when adrenalineCount > 0.
	lastAdrenalineAt time.Duration
	// shockCountAtFirstAmiodarone is meaningful only when amiodaroneCount > 0.
	shockCountAtFirstAmiodarone int

	reversibleCauses []arrest.ChecklistItem
	postROSCTasks    []arrest.ChecklistItem
	postMortemTasks  []arrest.ChecklistItem

	patientAge dosage.Age

	log eventLog
}

// initialState is the post-reset state.
func initialState(timers config.Timers) state {
	return state{
		phase:            arrest.PhasePending,
		subPhase:         arrest.SubPhaseDefault,
		cprCycleLength:   timers.CPRCycle,
		cprRemaining:     timers.CPRCycle,
		antiarrhythmic:   arrest.AntiarrhythmicNone,
		reversibleCauses: arrest.NewChecklist(arrest.ChecklistReversibleCauses),
		postROSCTasks:    arrest.NewChecklist(arrest.ChecklistPostROSC),
		postMortemTasks:  arrest.NewChecklist(arrest.ChecklistPostMortem),
	}
}

// clone returns a fully independent copy.
func (st *state) clone() state {
	c := *st
	c.reversibleCauses = arrest.CloneChecklist(st.reversibleCauses)
	c.postROSCTasks = arrest.CloneChecklist(st.postROSCTasks)
	c.postMortemTasks = arrest.CloneChecklist(st.postMortemTasks)
	c.log = st.log.clone()

	return c
}

func (st *state) total() time.Duration {
	return st.elapsed + st.downtimeOffset
}

// checklist returns a pointer to the list selected by kind, or nil.
func (st *state) checklist(kind arrest.ChecklistKind) *[]arrest.ChecklistItem {
	switch kind {
	case arrest.ChecklistReversibleCauses:
		return &st.reversibleCauses
	case arrest.ChecklistPostROSC:
		return &st.postROSCTasks
	case arrest.ChecklistPostMortem:
		return &st.postMortemTasks
	default:
		return nil
	}
}
