package live

import (
	"fmt"

	"screener/internal/pipeline"
)

// Reduce applies a candidate event to the UI state. Rows are keyed by input
// row number and kept in first-seen order.
func Reduce(state State, event pipeline.CandidateEvent) State {
	index := rowIndex(state, event.Row)
	if index < 0 {
		state.Rows = append(state.Rows, CandidateRow{Row: event.Row, StartedAt: event.EmittedAt})
		index = len(state.Rows) - 1
	}
	row := state.Rows[index]
	if row.Identity == "" {
		row.Identity = event.Identity
	}
	row.Status = event.Status
	if event.Priority != "" {
		row.Priority = event.Priority
	}
	if event.Status.Terminal() {
		row.FinishedAt = event.EmittedAt
		row.Fallback = event.Fallback
		row.Reason = event.Reason
		row.Error = event.Error
	}
	state.Rows[index] = row
	state.Counts, state.ByPriority = recount(state.Rows)
	if message := formatLastEvent(event); message != "" {
		state.LastEvent = message
	}
	return state
}

// ReducePoll records a poll result.
func ReducePoll(state State, pending int) State {
	state.Polls++
	state.Pending = pending
	if pending == 0 {
		state.LastEvent = "no new candidates"
	} else {
		state.LastEvent = fmt.Sprintf("poll found %d candidate(s)", pending)
	}
	return state
}

func rowIndex(state State, row int) int {
	for i := range state.Rows {
		if state.Rows[i].Row == row {
			return i
		}
	}
	return -1
}

// recount recomputes status counts for the current rows.
func recount(rows []CandidateRow) (StatusCounts, map[string]int) {
	var counts StatusCounts
	priorities := map[string]int{}
	for _, row := range rows {
		switch row.Status {
		case pipeline.CandidateWritten:
			counts.Written++
			priorities[row.Priority]++
			if row.Fallback {
				counts.Defaults++
			}
		case pipeline.CandidateDuplicate:
			counts.Duplicate++
		case pipeline.CandidateFailed, pipeline.CandidateNoIdentity:
			counts.Failed++
		default:
			counts.Active++
		}
	}
	return counts, priorities
}

// formatLastEvent creates a short footer message for the event.
func formatLastEvent(event pipeline.CandidateEvent) string {
	who := fmt.Sprintf("row %d", event.Row)
	if event.Identity != "" {
		who += " " + event.Identity
	}
	switch event.Status {
	case pipeline.CandidateWritten:
		if event.Fallback {
			return fmt.Sprintf("%s: %s (default, %s)", who, event.Priority, event.Reason)
		}
		return fmt.Sprintf("%s: %s", who, event.Priority)
	case pipeline.CandidateDuplicate:
		return who + ": already in output"
	case pipeline.CandidateNoIdentity:
		return who + ": no e-mail or profile URL"
	case pipeline.CandidateFailed:
		return fmt.Sprintf("%s: write failed: %s", who, event.Error)
	}
	return ""
}
