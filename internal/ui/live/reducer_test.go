package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"screener/internal/pipeline"
)

func TestReduceCandidateLifecycle(t *testing.T) {
	start := time.Now()
	state := State{}
	for _, status := range []pipeline.CandidateStatus{
		pipeline.CandidateRetrieving,
		pipeline.CandidateEvaluating,
		pipeline.CandidateWriting,
	} {
		state = Reduce(state, event(2, status, start))
	}
	require.Equal(t, 1, state.Counts.Active)

	done := event(2, pipeline.CandidateWritten, start.Add(1500*time.Millisecond))
	done.Priority = "accept"
	state = Reduce(state, done)

	require.Len(t, state.Rows, 1)
	row := state.Rows[0]
	require.Equal(t, pipeline.CandidateWritten, row.Status)
	require.Equal(t, "accept", row.Priority)
	require.Equal(t, "1.5s", formatRowDuration(row, time.Time{}))
	require.Equal(t, StatusCounts{Written: 1}, state.Counts)
	require.Equal(t, map[string]int{"accept": 1}, state.ByPriority)
	require.Equal(t, "row 2 a@one.io: accept", state.LastEvent)
}

func TestReduceCountsOutcomes(t *testing.T) {
	now := time.Now()
	state := State{}

	fallback := event(2, pipeline.CandidateWritten, now)
	fallback.Priority = "reject"
	fallback.Fallback = true
	fallback.Reason = "oracle_error"
	state = Reduce(state, fallback)
	state = Reduce(state, event(3, pipeline.CandidateDuplicate, now))
	state = Reduce(state, event(4, pipeline.CandidateNoIdentity, now))
	failed := event(5, pipeline.CandidateFailed, now)
	failed.Error = "quota exceeded"
	state = Reduce(state, failed)

	require.Equal(t, StatusCounts{Written: 1, Defaults: 1, Duplicate: 1, Failed: 2}, state.Counts)
	require.Equal(t, "reject (default)", formatVerdict(state.Rows[0]))
	require.Equal(t, "row 5 a@one.io: write failed: quota exceeded", state.LastEvent)
}

func TestReducePoll(t *testing.T) {
	state := ReducePoll(State{}, 3)
	require.Equal(t, 3, state.Pending)
	state = ReducePoll(state, 0)
	require.Equal(t, 2, state.Polls)
	require.Equal(t, "no new candidates", state.LastEvent)
}

func TestRowsForStateNewestFirst(t *testing.T) {
	now := time.Now()
	state := Reduce(State{}, event(2, pipeline.CandidateRetrieving, now))
	state = Reduce(state, event(3, pipeline.CandidateRetrieving, now))

	rows := rowsForState(state, now, true)
	require.Len(t, rows, 2)
	require.Equal(t, "3", rows[0][0])
	require.Equal(t, "retrieving", rows[0][2])
}

func TestColumnsForWidth(t *testing.T) {
	columns := columnsForWidth(120)
	total := 0
	for _, column := range columns {
		total += column.Width
	}
	require.Equal(t, 110, total)
	require.Equal(t, 16, columnsForWidth(20)[1].Width)
}

func event(row int, status pipeline.CandidateStatus, when time.Time) pipeline.CandidateEvent {
	return pipeline.CandidateEvent{
		Row:       row,
		Identity:  "a@one.io",
		Status:    status,
		EmittedAt: when,
	}
}
