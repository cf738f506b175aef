package live

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerColor   = lipgloss.Color("33")
	countsColor   = lipgloss.Color("242")
	verdictsColor = lipgloss.Color("240")
	footerColor   = lipgloss.Color("244")
)

func renderHeader(state State, now time.Time, noColor bool) string {
	parts := []string{"Run " + state.RunID}
	if state.Workbook != "" {
		parts = append(parts, state.Workbook)
	}
	if !state.StartedAt.IsZero() {
		parts = append(parts, "elapsed "+formatDuration(now.Sub(state.StartedAt)))
	}
	if state.Done {
		parts = append(parts, "done")
	}
	return paint(strings.Join(parts, " | "), headerColor, noColor)
}

func renderSummary(state State, noColor bool) string {
	c := state.Counts
	line := fmt.Sprintf("Pending %d  Active %d  Written %d  Defaults %d  Duplicates %d  Failed %d",
		state.Pending, c.Active, c.Written, c.Defaults, c.Duplicate, c.Failed)
	return paint(line, countsColor, noColor)
}

// renderPriorities lists written verdicts per label, alphabetically.
func renderPriorities(state State, noColor bool) string {
	if len(state.ByPriority) == 0 {
		return ""
	}
	labels := make([]string, 0, len(state.ByPriority))
	for label := range state.ByPriority {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for i, label := range labels {
		labels[i] = fmt.Sprintf("%s %d", label, state.ByPriority[label])
	}
	return paint("Verdicts: "+strings.Join(labels, "  "), verdictsColor, noColor)
}

func renderFooter(state State, noColor bool) string {
	if state.LastEvent == "" {
		return ""
	}
	return paint(state.LastEvent, footerColor, noColor)
}

func paint(text string, color lipgloss.Color, noColor bool) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
