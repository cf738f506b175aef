package live

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"screener/internal/pipeline"
)

// formatIdentity collapses whitespace and caps the identity at 48 runes.
func formatIdentity(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return "(none)"
	}
	const limit = 48
	runes := []rune(normalized)
	if len(runes) <= limit {
		return normalized
	}
	return string(runes[:limit-3]) + "..."
}

func formatStatus(row CandidateRow, noColor bool) string {
	return stylizeStatus(statusLabel(row.Status), row.Status, noColor)
}

func statusLabel(status pipeline.CandidateStatus) string {
	switch status {
	case pipeline.CandidateNoIdentity:
		return "no identity"
	case "":
		return "queued"
	default:
		return string(status)
	}
}

// formatVerdict renders the priority with a marker for default verdicts.
func formatVerdict(row CandidateRow) string {
	if row.Priority == "" {
		return ""
	}
	if row.Fallback {
		return row.Priority + " (default)"
	}
	return row.Priority
}

func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(100 * time.Millisecond).String()
}

// formatRowDuration is the running time of an active row or the total time
// of a finished one.
func formatRowDuration(row CandidateRow, now time.Time) string {
	if row.StartedAt.IsZero() {
		return ""
	}
	if !row.FinishedAt.IsZero() {
		return formatDuration(row.FinishedAt.Sub(row.StartedAt))
	}
	return formatDuration(now.Sub(row.StartedAt))
}

func stylizeStatus(text string, status pipeline.CandidateStatus, noColor bool) string {
	if noColor {
		return text
	}
	return statusStyle(status).Render(text)
}

func statusStyle(status pipeline.CandidateStatus) lipgloss.Style {
	color := lipgloss.Color("244")
	switch status {
	case pipeline.CandidateWritten:
		color = lipgloss.Color("42")
	case pipeline.CandidateDuplicate:
		color = lipgloss.Color("220")
	case pipeline.CandidateFailed, pipeline.CandidateNoIdentity:
		color = lipgloss.Color("196")
	case pipeline.CandidateRetrieving:
		color = lipgloss.Color("39")
	case pipeline.CandidateEvaluating:
		color = lipgloss.Color("33")
	case pipeline.CandidateWriting:
		color = lipgloss.Color("201")
	}
	return lipgloss.NewStyle().Foreground(color)
}
