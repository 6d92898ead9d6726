package tracker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/oshokin/eresus/internal/domain/arrest"
	"github.com/oshokin/eresus/internal/service/session"
)

// View renders the current screen.
func (m Model) View() string {
	v := m.view

	sections := []string{m.renderHeader()}

	switch m.mode {
	case modeSummary:
		sections = append(sections, panelStyle.Render(m.session.Summary()))
	case modeChecklist:
		sections = append(sections, m.renderChecklist())
	default:
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
			panelStyle.Render(renderCounters(v)),
			panelStyle.Render(renderDrugs(v)),
		))
		sections = append(sections, panelStyle.Render(renderEvents(v.Events)))
	}

	if m.mode == modeEtco2 || m.mode == modeOtherDrug {
		label := "ETCO2"
		if m.mode == modeOtherDrug {
			label = "Drug"
		}

		sections = append(sections, labelStyle.Render(label+": ")+m.input.View())
	}

	if m.mode == modeConfirmReset {
		sections = append(sections, alertStyle.Render("New patient: save this log? [y] save  [n] discard  [esc] cancel"))
	}

	sections = append(sections, m.renderStatusBar(), helpStyle.Render(m.help()))

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	v := m.view

	parts := []string{
		titleStyle.Render("eResus"),
		phaseStyles[v.Phase].Render(string(v.Phase)),
		clockStyle.Render(arrest.FormatClock(v.TotalElapsed)),
	}

	if v.Phase == arrest.PhaseActive {
		switch v.SubPhase {
		case arrest.SubPhaseAnalyzing:
			parts = append(parts, warnStyle.Render("ANALYSING RHYTHM - CPR PAUSED"))
		case arrest.SubPhaseShockAdvised:
			parts = append(parts, alertStyle.Render("SHOCK ADVISED"))
		default:
			parts = append(parts, labelStyle.Render("CPR cycle")+" "+clockStyle.Render(arrest.FormatClock(v.CPRRemaining)))
		}
	}

	if m.metronomeOn {
		beat := "○"
		if m.beat {
			beat = "●"
		}

		parts = append(parts, warnStyle.Render(fmt.Sprintf("%s %d bpm", beat, v.MetronomeBPM)))
	}

	return strings.Join(parts, "  ")
}

func renderCounters(v session.View) string {
	rows := []string{
		row("Shocks", fmt.Sprint(v.ShockCount)),
		row("Adrenaline", fmt.Sprint(v.AdrenalineCount)),
		row("Amiodarone", fmt.Sprint(v.AmiodaroneCount)),
		row("Lidocaine", fmt.Sprint(v.LidocaineCount)),
		row("Airway", yesNo(v.AirwayPlaced)),
		row("Hypothermia", string(v.Hypothermia)),
		row("Offset", arrest.FormatClock(v.DowntimeOffset)),
	}

	age := "not set"
	if v.PatientAge != "" {
		age = string(v.PatientAge)
	}

	rows = append(rows, row("Age", age))

	return strings.Join(rows, "\n")
}

func renderDrugs(v session.View) string {
	rows := []string{
		drugRow("Adrenaline", v.AdrenalineAvailable, v.NextAdrenalineDose),
		drugRow("Amiodarone", v.AmiodaroneAvailable, v.NextAmiodaroneDose),
		drugRow("Lidocaine", v.LidocaineAvailable, ""),
	}

	switch {
	case v.AdrenalineDue:
		rows = append(rows, alertStyle.Render("ADRENALINE DUE"))
	case v.AdrenalineDueSoon:
		rows = append(rows, warnStyle.Render("Adrenaline due in "+arrest.FormatClock(v.AdrenalineDueIn)))
	case v.LastAdrenalineAt != nil:
		rows = append(rows, labelStyle.Render("Next adrenaline in "+arrest.FormatClock(v.AdrenalineDueIn)))
	}

	if v.AmiodaroneReminder {
		rows = append(rows, warnStyle.Render("Consider 2nd amiodarone dose"))
	}

	return strings.Join(rows, "\n")
}

func renderEvents(events []arrest.Event) string {
	if len(events) == 0 {
		return dimStyle.Render("No events yet")
	}

	lines := make([]string, 0, visibleEvents)
	for _, e := range events[:min(len(events), visibleEvents)] {
		lines = append(lines, labelStyle.Render("["+arrest.FormatClock(e.Timestamp)+"]")+" "+e.Message)
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderChecklist() string {
	kind, items := m.activeChecklist()

	lines := []string{labelStyle.Render(checklistTitle(kind))}

	for i, item := range items {
		mark := "[ ]"
		if item.Completed {
			mark = "[x]"
		}

		line := mark + " " + item.Name
		if item.Name == arrest.HypothermiaItemName && item.Hypothermia != arrest.HypothermiaNone {
			line += " (" + string(item.Hypothermia) + ")"
		}

		if i == m.cursor {
			line = selectedStyle.Render(line)
		}

		lines = append(lines, line)
	}

	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderStatusBar() string {
	status := m.status
	if status == "" {
		status = fmt.Sprintf("%d events", len(m.view.Events))
		if m.view.CanUndo {
			status += "  undo available"
		}
	}

	return statusBarStyle.Width(max(0, m.width)).Render(status)
}

func (m Model) help() string {
	switch m.mode {
	case modeChecklist:
		return "↑/↓ move  space toggle  esc back"
	case modeSummary:
		return "y copy  esc back"
	case modeEtco2, modeOtherDrug:
		return "enter log  esc cancel"
	case modeConfirmReset:
		return ""
	}

	v := m.view

	switch v.Phase {
	case arrest.PhasePending:
		return "s start arrest  + / ] add downtime  p/P age  v summary  q quit"
	case arrest.PhaseROSC:
		return "R re-arrest  E end  k post-ROSC tasks  d/m/l/o drugs  e ETCO2  u undo  n new patient  q quit"
	case arrest.PhaseEnded:
		return "k post-mortem tasks  v summary  y copy  u undo  n new patient  q quit"
	}

	switch v.SubPhase {
	case arrest.SubPhaseAnalyzing:
		return "1 VF  2 VT  3 PEA  4 Asystole  c resume CPR  u undo"
	case arrest.SubPhaseShockAdvised:
		return "x deliver shock  c resume CPR  u undo"
	default:
		return "a analyse  d adrenaline  m amiodarone  l lidocaine  o other  w airway  e ETCO2  h hypothermia  " +
			"k causes  + / ] downtime  p/P age  b metronome  r ROSC  E end  u undo  v summary  n new patient  q quit"
	}
}

func checklistTitle(kind arrest.ChecklistKind) string {
	switch kind {
	case arrest.ChecklistPostROSC:
		return "Post-ROSC care"
	case arrest.ChecklistPostMortem:
		return "Post-mortem tasks"
	default:
		return "Reversible causes (4 Hs & 4 Ts)"
	}
}

func row(label, value string) string {
	return labelStyle.Width(12).Render(label) + " " + value
}

func drugRow(name string, available bool, dose string) string {
	text := name
	if dose != "" {
		text += " " + dose
	}

	if available {
		return availableStyle.Render("● " + text)
	}

	return unavailableStyle.Render("○ " + text)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
