package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"regscan/internal/classify"
)

// Semantic colors for terminal output.
var (
	colorSuccess = lipgloss.Color("#8BC34A")
	colorWarning = lipgloss.Color("#FFC107")
	colorMuted   = lipgloss.Color("#6b7280")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	includedStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	excludedStyle = lipgloss.NewStyle().Foreground(colorWarning)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
)

// Render returns a styled terminal view of the summary. It mirrors
// WriteSummary's content but is for humans at a terminal, not for the output
// artifact, so styling here does not affect idempotence of the files.
func (r *Report) Render() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Registry triage"))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "%s %d    %s %d    %s %d\n",
		mutedStyle.Render("rows:"), r.Stats.Total,
		includedStyle.Render("included:"), r.Stats.Included,
		excludedStyle.Render("excluded:"), r.Stats.Excluded,
	)

	sb.WriteString("\n")
	rows := make([][2]string, 0, len(classify.Tiers))
	width := 0
	for _, tier := range classify.Tiers {
		label := string(tier)
		if w := lipgloss.Width(label); w > width {
			width = w
		}
		rows = append(rows, [2]string{label, fmt.Sprintf("%d", r.Stats.ByTier[tier])})
	}
	for _, row := range rows {
		fmt.Fprintf(&sb, "  %s %s\n",
			mutedStyle.Render(pad(row[0], width)),
			row[1],
		)
	}
	return sb.String()
}

func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
