package tracker

import (
	"context"
	"slices"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/oshokin/eresus/internal/domain/arrest"
	"github.com/oshokin/eresus/internal/domain/dosage"
	"github.com/oshokin/eresus/internal/logger"
	"github.com/oshokin/eresus/internal/service/session"
)

type mode int

const (
	modeMain mode = iota
	modeEtco2
	modeOtherDrug
	modeChecklist
	modeConfirmReset
	modeSummary
)

const (
	// shortOffset and longOffset are the downtime increments bound to keys.
	shortOffset = time.Minute
	longOffset  = 5 * time.Minute
	// visibleEvents is how many recent events the main screen lists.
	visibleEvents = 8
)

//nolint:gochecknoglobals // Rhythm shortcuts in the order they are offered.
var rhythms = []struct {
	key       string
	name      string
	shockable bool
}{
	{"1", "VF", true},
	{"2", "VT", true},
	{"3", "PEA", false},
	{"4", "Asystole", false},
}

//nolint:gochecknoglobals // Order of the hypothermia key cycle.
var hypothermiaCycle = []arrest.HypothermiaGrade{
	arrest.HypothermiaNone,
	arrest.HypothermiaModerate,
	arrest.HypothermiaSevere,
	arrest.HypothermiaNormothermic,
}

// updateMsg reports that the session changed.
type updateMsg struct{}

// beatMsg advances the metronome.
type beatMsg struct {
	generation int
}

// Model is the bubbletea model of the tracker screen.
type Model struct {
	// ctx carries the logger and is passed to session calls that take one.
	ctx context.Context //nolint:containedctx // bubbletea models have no per-call context.
	// session is the state machine being driven.
	session *session.Session
	// view is the last snapshot rendered.
	view session.View

	mode  mode
	input textinput.Model
	// cursor selects a checklist item in modeChecklist.
	cursor int

	// metronomeOn toggles the visual compression beat.
	metronomeOn bool
	beat        bool
	// beatGeneration discards beats from a previous metronome run.
	beatGeneration int

	// status is a one-line message shown in the status bar.
	status string
	// archived is the last log saved by a reset, if any.
	archived *arrest.ArchivedLog

	width  int
	height int
}

// New creates the model for sess.
func New(ctx context.Context, sess *session.Session) Model {
	input := textinput.New()
	input.CharLimit = 40

	return Model{
		ctx:     logger.WithName(ctx, "ui"),
		session: sess,
		view:    sess.View(),
		input:   input,
		width:   100,
		height:  40,
	}
}

// Init starts listening for session updates.
func (m Model) Init() tea.Cmd {
	return waitForUpdate(m.session.Updates())
}

// Archived returns the log stored by the most recent reset, if any.
func (m Model) Archived() *arrest.ArchivedLog {
	return m.archived
}

// Update handles key presses, session updates and metronome beats.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil

	case updateMsg:
		m.view = m.session.View()

		return m, waitForUpdate(m.session.Updates())

	case beatMsg:
		if !m.metronomeOn || msg.generation != m.beatGeneration {
			return m, nil
		}

		m.beat = !m.beat

		return m, beatCmd(m.view.MetronomeBPM, m.beatGeneration)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		var cmd tea.Cmd

		switch m.mode {
		case modeEtco2, modeOtherDrug:
			m, cmd = m.updateInput(msg)
		case modeChecklist:
			m = m.updateChecklist(msg)
		case modeConfirmReset:
			m = m.updateConfirmReset(msg)
		case modeSummary:
			m = m.updateSummary(msg)
		default:
			m, cmd = m.updateMain(msg)
		}

		m.view = m.session.View()

		return m, cmd
	}

	return m, nil
}

//nolint:gocyclo,cyclop,funlen // One case per key binding.
func (m Model) updateMain(msg tea.KeyMsg) (Model, tea.Cmd) {
	v := m.view
	m.status = ""

	switch key := msg.String(); key {
	case "q":
		return m, tea.Quit

	case "s":
		m.session.StartArrest()

	case "a":
		m.session.AnalyseRhythm()

	case "1", "2", "3", "4":
		if v.SubPhase != arrest.SubPhaseAnalyzing {
			break
		}

		for _, r := range rhythms {
			if r.key == key {
				m.session.LogRhythm(r.name, r.shockable)
			}
		}

	case "x":
		m.session.DeliverShock()

	case "c":
		m.session.ResumeCPR()

	case "d":
		if !v.AdrenalineAvailable {
			m.status = "Adrenaline withheld in severe hypothermia"

			break
		}

		m.session.LogAdrenaline(v.NextAdrenalineDose)

	case "m":
		if !v.AmiodaroneAvailable {
			m.status = "Amiodarone not indicated yet"

			break
		}

		m.session.LogAmiodarone(v.NextAmiodaroneDose)

	case "l":
		if !v.LidocaineAvailable {
			m.status = "Lidocaine not indicated yet"

			break
		}

		m.session.LogLidocaine("")

	case "o":
		return m.startInput(modeOtherDrug, "drug name"), textinput.Blink

	case "e":
		return m.startInput(modeEtco2, "mmHg"), textinput.Blink

	case "w":
		m.session.LogAirwayPlaced()

	case "h":
		m.session.SetHypothermiaGrade(nextGrade(v.Hypothermia))

	case "+":
		m.session.AddDowntimeOffset(shortOffset)

	case "]":
		m.session.AddDowntimeOffset(longOffset)

	case "p":
		m.session.SetPatientAgeCategory(nextAge(v.PatientAge, 1))

	case "P":
		m.session.SetPatientAgeCategory(nextAge(v.PatientAge, -1))

	case "r":
		m.session.AchieveROSC()

	case "R":
		m.session.ReArrest()

	case "E":
		m.session.EndArrest()

	case "u":
		if !m.session.Undo() {
			m.status = "Nothing to undo"
		}

	case "k":
		m.mode = modeChecklist
		m.cursor = 0

	case "n":
		m.mode = modeConfirmReset

	case "v":
		m.mode = modeSummary

	case "y":
		m.status = m.copySummary()

	case "b":
		m.metronomeOn = !m.metronomeOn
		m.beatGeneration++

		if m.metronomeOn {
			return m, beatCmd(v.MetronomeBPM, m.beatGeneration)
		}
	}

	return m, nil
}

func (m Model) startInput(next mode, placeholder string) Model {
	m.mode = next
	m.input.Reset()
	m.input.Placeholder = placeholder
	m.input.Focus()

	return m
}

func (m Model) updateInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.mode = modeMain

		return m, nil

	case "enter":
		value := m.input.Value()

		if m.mode == modeEtco2 {
			m.session.LogEtco2(value)
		} else {
			m.session.LogOtherDrug(value)
		}

		m.input.Blur()
		m.mode = modeMain

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m Model) updateChecklist(msg tea.KeyMsg) Model {
	kind, items := m.activeChecklist()

	switch msg.String() {
	case "esc", "k", "q":
		m.mode = modeMain

	case "up":
		m.cursor = max(0, m.cursor-1)

	case "down":
		m.cursor = min(len(items)-1, m.cursor+1)

	case " ", "enter":
		if m.cursor >= 0 && m.cursor < len(items) {
			m.session.ToggleChecklistItem(kind, items[m.cursor].ID)
		}
	}

	return m
}

func (m Model) updateConfirmReset(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "y":
		m.archived = m.session.Reset(m.ctx, session.ResetOptions{SaveLog: true})
		m.status = "Session reset"

		if m.archived != nil {
			m.status = "Session archived as " + string(m.archived.Outcome)
		}

		m.mode = modeMain

	case "n":
		m.session.Reset(m.ctx, session.ResetOptions{})
		m.status = "Session discarded"
		m.mode = modeMain

	case "esc":
		m.mode = modeMain
	}

	return m
}

func (m Model) updateSummary(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "y":
		m.status = m.copySummary()
	case "esc", "v", "q":
		m.mode = modeMain
	}

	return m
}

// activeChecklist is the list relevant to the current phase.
func (m Model) activeChecklist() (arrest.ChecklistKind, []arrest.ChecklistItem) {
	switch m.view.Phase {
	case arrest.PhaseROSC:
		return arrest.ChecklistPostROSC, m.view.PostROSCTasks
	case arrest.PhaseEnded:
		return arrest.ChecklistPostMortem, m.view.PostMortemTasks
	default:
		return arrest.ChecklistReversibleCauses, m.view.ReversibleCauses
	}
}

func (m Model) copySummary() string {
	if err := clipboard.WriteAll(m.session.Summary()); err != nil {
		logger.WarnKV(m.ctx, "Failed to copy summary to clipboard", "error", err)

		return "Clipboard unavailable"
	}

	return "Summary copied to clipboard"
}

func waitForUpdate(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates

		return updateMsg{}
	}
}

func beatCmd(bpm, generation int) tea.Cmd {
	if bpm <= 0 {
		return nil
	}

	return tea.Tick(time.Minute/time.Duration(bpm), func(time.Time) tea.Msg {
		return beatMsg{generation: generation}
	})
}

func nextGrade(current arrest.HypothermiaGrade) arrest.HypothermiaGrade {
	index := slices.Index(hypothermiaCycle, current)

	return hypothermiaCycle[(index+1)%len(hypothermiaCycle)]
}

// nextAge steps through the age bands; stepping past either end clears the
// selection.
func nextAge(current dosage.Age, step int) dosage.Age {
	ages := dosage.Ages()
	index := slices.Index(ages, current)

	switch {
	case index < 0 && step > 0:
		return ages[len(ages)-1]
	case index < 0:
		return ages[0]
	}

	index += step
	if index < 0 || index >= len(ages) {
		return ""
	}

	return ages[index]
}
