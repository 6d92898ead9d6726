package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/eresus/internal/domain/arrest"
	"github.com/oshokin/eresus/internal/domain/dosage"
)

// ResetOptions controls Reset.
type ResetOptions struct {
	// SaveLog archives the session before clearing it, if an arrest was started.
	SaveLog bool
}

// StartArrest moves a pending session to active, starts the first CPR cycle
// and the ticker.
func (s *Session) StartArrest() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.expectPhase("start arrest", arrest.PhasePending) {
		return
	}

	s.beginCommandLocked()

	now := s.clock.Now()
	s.st.startedAt = now
	s.st.elapsed = 0
	s.st.phase = arrest.PhaseActive
	s.st.subPhase = arrest.SubPhaseDefault
	s.startCycleLocked(false)
	s.recordLocked("Arrest Started at "+now.Local().Format(time.TimeOnly), arrest.CategoryStatus)
	s.startTickerLocked()

	s.log.Infow("Arrest started", "started_at", now)
	s.notify()
}

// AchieveROSC records return of spontaneous circulation. The clock keeps
// running but the CPR countdown is suspended.
func (s *Session) AchieveROSC() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.expectPhase("achieve ROSC", arrest.PhaseActive) {
		return
	}

	s.beginCommandLocked()
	s.st.phase = arrest.PhaseROSC
	s.st.subPhase = arrest.SubPhaseDefault
	s.recordLocked("Return of Spontaneous Circulation (ROSC)", arrest.CategoryStatus)

	s.log.Infow("ROSC achieved", "total_elapsed", s.st.total())
	s.notify()
}

// ReArrest returns a ROSC session to active with a new CPR cycle.
func (s *Session) ReArrest() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.expectPhase("re-arrest", arrest.PhaseROSC) {
		return
	}

	s.beginCommandLocked()
	s.st.phase = arrest.PhaseActive
	s.st.subPhase = arrest.SubPhaseDefault
	s.startCycleLocked(true)
	s.recordLocked("Patient Re-Arrested. CPR Resumed.", arrest.CategoryStatus)

	if s.tickCancel == nil {
		s.startTickerLocked()
	}

	s.log.Infow("Patient re-arrested", "total_elapsed", s.st.total())
	s.notify()
}

// EndArrest stops resuscitation. The session stays ended until reset.
func (s *Session) EndArrest() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.expectPhase("end arrest", arrest.PhaseActive, arrest.PhaseROSC) {
		return
	}

	s.beginCommandLocked()
	s.st.phase = arrest.PhaseEnded
	s.st.subPhase = arrest.SubPhaseDefault
	s.stopTickerLocked()
	s.recordLocked("Arrest Ended (Patient Deceased)", arrest.CategoryStatus)

	s.log.Infow("Arrest ended", "total_elapsed", s.st.total())
	s.notify()
}

// Reset finalizes the session and returns it to pending. When opts.SaveLog is
// set and an arrest was started, the session is handed to the archiver first
// and the archived copy is returned. Archiving failures never block the reset.
func (s *Session) Reset(ctx context.Context, opts ResetOptions) *arrest.ArchivedLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickLocked()

	var archived *arrest.ArchivedLog

	if opts.SaveLog && !s.st.startedAt.IsZero() {
		archived = &arrest.ArchivedLog{
			ID:            uuid.NewString(),
			StartedAt:     s.st.startedAt,
			EndedAt:       s.clock.Now(),
			TotalDuration: s.st.total(),
			Outcome:       arrest.OutcomeFor(s.st.phase),
			Events:        arrest.CloneEvents(s.st.log.events),
		}

		if s.archiver != nil {
			s.archiver.Archive(ctx, archived.Clone())
		}
	}

	s.stopTickerLocked()
	s.undo.clear()
	s.st = initialState(s.timers())

	if archived != nil {
		s.log.Infow("Session reset", "archived_log", archived.ID, "outcome", archived.Outcome)
	} else {
		s.log.Info("Session reset without archiving")
	}

	s.notify()

	return archived
}

// AnalyseRhythm pauses CPR for a rhythm check.
func (s *Session) AnalyseRhythm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.expectSubPhase("analyse rhythm", arrest.SubPhaseDefault) {
		return
	}

	s.beginCommandLocked()
	s.st.subPhase = arrest.SubPhaseAnalyzing
	s.recordLocked("Rhythm Analysis - CPR Paused", arrest.CategoryAnalysis)
	s.notify()
}

// LogRhythm records the analysed rhythm. A shockable rhythm advises a shock;
// otherwise CPR resumes with a new cycle.
func (s *Session) LogRhythm(kind string, shockable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind = strings.TrimSpace(kind)
	if kind == "" || !s.expectSubPhase("log rhythm", arrest.SubPhaseAnalyzing) {
		return
	}

	s.beginCommandLocked()
	s.recordLocked("Rhythm is "+kind, arrest.CategoryRhythm)

	if shockable {
		s.st.subPhase = arrest.SubPhaseShockAdvised
	} else {
		s.st.subPhase = arrest.SubPhaseDefault
		s.startCycleLocked(true)
	}

	s.notify()
}

// DeliverShock records a shock and resumes CPR with a new cycle.
func (s *Session) DeliverShock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.expectSubPhase("deliver shock", arrest.SubPhaseShockAdvised) {
		return
	}

	s.beginCommandLocked()
	s.st.shockCount++
	s.recordLocked(fmt.Sprintf("Shock %d Delivered. Resuming CPR.", s.st.shockCount), arrest.CategoryShock)
	s.st.subPhase = arrest.SubPhaseDefault
	s.startCycleLocked(true)
	s.notify()
}

// ResumeCPR abandons an analysis or an advised shock and starts a new cycle.
func (s *Session) ResumeCPR() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.expectSubPhase("resume CPR", arrest.SubPhaseAnalyzing, arrest.SubPhaseShockAdvised) {
		return
	}

	s.beginCommandLocked()
	s.st.subPhase = arrest.SubPhaseDefault
	s.startCycleLocked(true)
	s.notify()
}

// LogAdrenaline records an adrenaline dose. dose is optional, e.g. "1mg".
func (s *Session) LogAdrenaline(dose string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.beginCommandLocked()
	s.st.adrenalineCount++
	s.st.lastAdrenalineAt = s.st.total()
	s.recordLocked(fmt.Sprintf("Adrenaline%s Given - Dose %d", doseLabel(dose), s.st.adrenalineCount), arrest.CategoryDrug)
	s.notify()
}

// LogAmiodarone records an amiodarone dose and locks the antiarrhythmic class.
func (s *Session) LogAmiodarone(dose string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.beginCommandLocked()
	s.st.amiodaroneCount++

	if s.st.amiodaroneCount == 1 {
		s.st.shockCountAtFirstAmiodarone = s.st.shockCount
	}

	if s.st.antiarrhythmic == arrest.AntiarrhythmicNone {
		s.st.antiarrhythmic = arrest.AntiarrhythmicAmiodarone
	}

	s.recordLocked(fmt.Sprintf("Amiodarone%s Given - Dose %d", doseLabel(dose), s.st.amiodaroneCount), arrest.CategoryDrug)
	s.notify()
}

// LogLidocaine records a lidocaine dose and locks the antiarrhythmic class.
func (s *Session) LogLidocaine(dose string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.beginCommandLocked()
	s.st.lidocaineCount++

	if s.st.antiarrhythmic == arrest.AntiarrhythmicNone {
		s.st.antiarrhythmic = arrest.AntiarrhythmicLidocaine
	}

	s.recordLocked(fmt.Sprintf("Lidocaine%s Given - Dose %d", doseLabel(dose), s.st.lidocaineCount), arrest.CategoryDrug)
	s.notify()
}

// LogOtherDrug records a free-text drug. Blank names are ignored.
func (s *Session) LogOtherDrug(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		s.log.Debug("Ignoring drug with empty name")

		return
	}

	s.beginCommandLocked()
	s.recordLocked(name+" Given", arrest.CategoryDrug)
	s.notify()
}

// LogAirwayPlaced records an advanced airway. It can only happen once.
func (s *Session) LogAirwayPlaced() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.airwayPlaced {
		s.log.Debug("Ignoring airway: already placed")

		return
	}

	s.beginCommandLocked()
	s.st.airwayPlaced = true
	s.recordLocked("Advanced Airway Placed", arrest.CategoryAirway)
	s.notify()
}

// LogEtco2 records an end-tidal CO2 reading in mmHg. Anything that is not a
// positive integer is ignored.
func (s *Session) LogEtco2(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reading, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || reading <= 0 {
		s.log.Debugw("Ignoring malformed ETCO2 value", "value", value)

		return
	}

	s.beginCommandLocked()
	s.recordLocked(fmt.Sprintf("ETCO2: %d mmHg", reading), arrest.CategoryETCO2)
	s.notify()
}

// ToggleChecklistItem flips the completion flag of an item. Unknown lists or
// ids are ignored.
func (s *Session) ToggleChecklistItem(kind arrest.ChecklistKind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.st.checklist(kind)
	if list == nil {
		s.log.Debugw("Ignoring toggle for unknown checklist", "checklist", kind)

		return
	}

	index := indexOfItem(*list, id)
	if index < 0 {
		s.log.Debugw("Ignoring toggle for unknown item", "checklist", kind, "item", id)

		return
	}

	s.beginCommandLocked()

	// The snapshot holds its own copy, so the live list can be edited in place.
	list = s.st.checklist(kind)
	item := &(*list)[index]
	item.Completed = !item.Completed

	message, category := checklistMessage(kind, item.Name, item.Completed)
	s.recordLocked(message, category)
	s.notify()
}

// SetHypothermiaGrade records the hypothermia status on the Hypothermia cause.
// Any grade other than none marks the cause as addressed.
func (s *Session) SetHypothermiaGrade(grade arrest.HypothermiaGrade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	message, ok := hypothermiaMessage(grade)
	if !ok {
		s.log.Debugw("Ignoring unknown hypothermia grade", "grade", grade)

		return
	}

	index := -1

	for i, item := range s.st.reversibleCauses {
		if item.Name == arrest.HypothermiaItemName {
			index = i

			break
		}
	}

	if index < 0 {
		return
	}

	s.beginCommandLocked()
	s.st.reversibleCauses[index].Hypothermia = grade
	s.st.reversibleCauses[index].Completed = grade != arrest.HypothermiaNone
	s.recordLocked(message, arrest.CategoryCause)
	s.notify()
}

// AddDowntimeOffset adds pre-arrival or adjustment time to the session clock.
// Non-positive offsets are ignored. While active, the CPR cycle anchor moves
// with the offset so the running countdown keeps its cadence.
func (s *Session) AddDowntimeOffset(offset time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if offset <= 0 {
		s.log.Debugw("Ignoring non-positive downtime offset", "offset", offset)

		return
	}

	s.beginCommandLocked()
	s.st.downtimeOffset += offset

	if s.st.phase == arrest.PhaseActive {
		s.st.cprCycleAnchor += offset
	}

	s.recordLocked("Time offset added: +"+formatOffset(offset), arrest.CategoryStatus)
	s.notify()
}

// SetPatientAgeCategory selects the age band used for dose suggestions. An
// empty age clears the selection. The selection is not an undoable command
// and survives undo of other commands.
func (s *Session) SetPatientAgeCategory(age dosage.Age) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if age != "" {
		parsed, ok := dosage.ParseAge(string(age))
		if !ok {
			s.log.Debugw("Ignoring unknown patient age", "age", age)

			return
		}

		age = parsed
	}

	s.st.patientAge = age
	s.log.Debugw("Patient age set", "age", age)
	s.notify()
}

// beginCommandLocked brings timers up to date and pushes the undo snapshot.
func (s *Session) beginCommandLocked() {
	s.tickLocked()
	s.undo.push(s.st.clone())
}

// recordLocked appends an event stamped with the current total elapsed time.
func (s *Session) recordLocked(message string, category arrest.EventCategory) {
	e := s.st.log.record(s.st.total(), message, category)
	s.log.Debugw("Event recorded", "category", e.Category, "message", e.Message, "at", e.Timestamp)
}

// startCycleLocked anchors a new CPR cycle at the current total elapsed time,
// reading the cycle length from settings.
func (s *Session) startCycleLocked(logEvent bool) {
	length := s.timers().CPRCycle
	s.st.cprCycleAnchor = s.st.total()
	s.st.cprCycleLength = length
	s.st.cprRemaining = length

	if logEvent {
		s.recordLocked("New CPR Cycle Started", arrest.CategoryCPR)
	}
}

func (s *Session) expectPhase(command string, phases ...arrest.Phase) bool {
	for _, p := range phases {
		if s.st.phase == p {
			return true
		}
	}

	s.log.Debugw("Ignoring command in current phase", "command", command, "phase", s.st.phase)

	return false
}

func (s *Session) expectSubPhase(command string, subPhases ...arrest.SubPhase) bool {
	if !s.expectPhase(command, arrest.PhaseActive) {
		return false
	}

	for _, p := range subPhases {
		if s.st.subPhase == p {
			return true
		}
	}

	s.log.Debugw("Ignoring command in current sub-phase", "command", command, "sub_phase", s.st.subPhase)

	return false
}

func indexOfItem(items []arrest.ChecklistItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}

	return -1
}

func doseLabel(dose string) string {
	dose = strings.TrimSpace(dose)
	if dose == "" {
		return ""
	}

	return " (" + dose + ")"
}

func formatOffset(d time.Duration) string {
	if d%time.Minute == 0 {
		return fmt.Sprintf("%d min", int(d/time.Minute))
	}

	return fmt.Sprintf("%ds", int(d/time.Second))
}

func checklistMessage(kind arrest.ChecklistKind, name string, completed bool) (string, arrest.EventCategory) {
	verb := "reopened"
	if completed {
		verb = "completed"
	}

	switch kind {
	case arrest.ChecklistReversibleCauses:
		if completed {
			verb = "addressed"
		}

		return fmt.Sprintf("Reversible cause %s: %s", verb, name), arrest.CategoryCause
	case arrest.ChecklistPostROSC:
		return fmt.Sprintf("Post-ROSC task %s: %s", verb, name), arrest.CategoryStatus
	default:
		return fmt.Sprintf("Post-mortem task %s: %s", verb, name), arrest.CategoryStatus
	}
}

func hypothermiaMessage(grade arrest.HypothermiaGrade) (string, bool) {
	switch grade {
	case arrest.HypothermiaSevere:
		return "Hypothermia status set to: Severe (< 30°C)", true
	case arrest.HypothermiaModerate:
		return "Hypothermia status set to: Moderate (30-35°C)", true
	case arrest.HypothermiaNormothermic:
		return "Hypothermia status cleared (Normothermic)", true
	case arrest.HypothermiaNone:
		return "Hypothermia status cleared", true
	default:
		return "", false
	}
}
