package logbook

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/oshokin/eresus/internal/domain/arrest"
)

// shortIDLength is how much of a log ID the table shows.
const shortIDLength = 8

//nolint:gochecknoglobals // Terminal styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	outcomeStyles = map[arrest.Outcome]lipgloss.Style{
		arrest.OutcomeROSC:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		arrest.OutcomeDeceased:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
		arrest.OutcomeIncomplete: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	}
)

// column widths in cells, including padding.
const (
	idWidth       = shortIDLength + 2
	dateWidth     = 22
	durationWidth = 10
	outcomeWidth  = 12
)

// RenderTable writes logs as a table, one row per log.
func RenderTable(w io.Writer, logs []*arrest.ArchivedLog) error {
	if len(logs) == 0 {
		_, err := fmt.Fprintln(w, dimStyle.Render("No archived arrest logs."))

		return err
	}

	rows := make([]string, 0, len(logs)+1)
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Width(idWidth).Render("ID"),
		headerStyle.Width(dateWidth).Render("STARTED"),
		headerStyle.Width(durationWidth).Render("DURATION"),
		headerStyle.Width(outcomeWidth).Render("OUTCOME"),
	))

	for _, log := range logs {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			cellStyle.Width(idWidth).Render(shortID(log.ID)),
			cellStyle.Width(dateWidth).Render(log.StartedAt.Local().Format(time.DateTime)),
			cellStyle.Width(durationWidth).Render(arrest.FormatClock(log.TotalDuration)),
			cellStyle.Width(outcomeWidth).Render(outcomeStyle(log.Outcome).Render(string(log.Outcome))),
		))
	}

	_, err := fmt.Fprintln(w, strings.Join(rows, "\n"))

	return err
}

func outcomeStyle(o arrest.Outcome) lipgloss.Style {
	if style, ok := outcomeStyles[o]; ok {
		return style
	}

	return cellStyle
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}

	return id[:shortIDLength]
}
