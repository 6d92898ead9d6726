package arrest

// Phase is the top-level arrest state.
type Phase string

const (
	// PhasePending means no arrest is being tracked yet.
	PhasePending Phase = "PENDING"
	// PhaseActive means resuscitation is in progress.
	PhaseActive Phase = "ACTIVE"
	// PhaseROSC means spontaneous circulation has returned.
	PhaseROSC Phase = "ROSC"
	// PhaseEnded means resuscitation was stopped (patient deceased).
	PhaseEnded Phase = "ENDED"
)

// Timed reports whether the session clock runs in this phase.
func (p Phase) Timed() bool {
	return p == PhaseActive || p == PhaseROSC
}

// SubPhase refines PhaseActive and governs which actions are valid.
type SubPhase string

const (
	// SubPhaseDefault is the normal compressions state.
	SubPhaseDefault SubPhase = "default"
	// SubPhaseAnalyzing means CPR is paused for a rhythm check.
	SubPhaseAnalyzing SubPhase = "analyzing"
	// SubPhaseShockAdvised means a shockable rhythm was found.
	SubPhaseShockAdvised SubPhase = "shock_advised"
)

// EventCategory classifies log entries.
type EventCategory string

// Event categories.
const (
	CategoryStatus   EventCategory = "status"
	CategoryCPR      EventCategory = "cpr"
	CategoryShock    EventCategory = "shock"
	CategoryAnalysis EventCategory = "analysis"
	CategoryRhythm   EventCategory = "rhythm"
	CategoryDrug     EventCategory = "drug"
	CategoryAirway   EventCategory = "airway"
	CategoryETCO2    EventCategory = "etco2"
	CategoryCause    EventCategory = "cause"
)

// HypothermiaGrade is attached to the "Hypothermia" reversible cause.
type HypothermiaGrade string

// Hypothermia grades.
const (
	HypothermiaNone         HypothermiaGrade = "none"
	HypothermiaSevere       HypothermiaGrade = "severe"
	HypothermiaModerate     HypothermiaGrade = "moderate"
	HypothermiaNormothermic HypothermiaGrade = "normothermic"
)

// AntiarrhythmicClass records which antiarrhythmic was chosen for the episode.
type AntiarrhythmicClass string

// Antiarrhythmic classes.
const (
	AntiarrhythmicNone       AntiarrhythmicClass = "none"
	AntiarrhythmicAmiodarone AntiarrhythmicClass = "amiodarone"
	AntiarrhythmicLidocaine  AntiarrhythmicClass = "lidocaine"
)

// Outcome is the final result stored with an archived log.
type Outcome string

// Outcomes.
const (
	OutcomeROSC       Outcome = "ROSC"
	OutcomeDeceased   Outcome = "Deceased"
	OutcomeIncomplete Outcome = "Incomplete"
)

// OutcomeFor derives the archive outcome from the phase at finalize time.
func OutcomeFor(p Phase) Outcome {
	switch p {
	case PhaseROSC:
		return OutcomeROSC
	case PhaseEnded:
		return OutcomeDeceased
	default:
		return OutcomeIncomplete
	}
}
