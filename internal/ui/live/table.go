package live

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// defaultColumns returns the table layout for an 80 column terminal.
func defaultColumns() []table.Column {
	return columnsForWidth(80)
}

// columnsForWidth gives the identity column whatever the fixed columns leave.
func columnsForWidth(width int) []table.Column {
	const (
		rowWidth      = 6
		statusWidth   = 14
		priorityWidth = 20
		elapsedWidth  = 8
		padding       = 10
	)
	identityWidth := width - rowWidth - statusWidth - priorityWidth - elapsedWidth - padding
	if identityWidth < 16 {
		identityWidth = 16
	}
	return []table.Column{
		{Title: "Row", Width: rowWidth},
		{Title: "Candidate", Width: identityWidth},
		{Title: "Status", Width: statusWidth},
		{Title: "Verdict", Width: priorityWidth},
		{Title: "Time", Width: elapsedWidth},
	}
}

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// rowsForState converts UI state into table rows, newest first.
func rowsForState(state State, now time.Time, noColor bool) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for i := len(state.Rows) - 1; i >= 0; i-- {
		row := state.Rows[i]
		rows = append(rows, table.Row{
			strconv.Itoa(row.Row),
			formatIdentity(row.Identity),
			formatStatus(row, noColor),
			formatVerdict(row),
			formatRowDuration(row, now),
		})
	}
	return rows
}
