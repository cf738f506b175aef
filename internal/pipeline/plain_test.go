package pipeline

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPlainObserverPrintsTerminalEvents(t *testing.T) {
	var buf bytes.Buffer
	obs := NewPlainObserver(&buf, true)

	obs.OnRunStart("run-1", "duckdb:book.duckdb")
	obs.OnCandidate(CandidateEvent{Row: 2, Identity: "a@one.io", Status: CandidateEvaluating})
	obs.OnCandidate(CandidateEvent{Row: 2, Identity: "a@one.io", Status: CandidateWritten, Priority: "reject", Fallback: true, Reason: "oracle_error", WallTime: 1500 * time.Millisecond})
	obs.OnCandidate(CandidateEvent{Row: 3, Identity: "", Status: CandidateNoIdentity, Error: "no identity"})
	obs.OnRunEnd(Summary{Attempted: 2, Succeeded: 1, Failed: 1, Fallbacks: 1, ByPriority: map[string]int{"reject": 1}, Interrupted: true})

	require.Equal(t, "Run run-1 | duckdb:book.duckdb\n"+
		"row 2 a@one.io: written (reject, default: oracle_error) 1.5s\n"+
		"row 3 : no_identity (no identity)\n"+
		"Summary: attempted=2 written=1 failed=1 duplicates=0 defaults=1 reject=1 (interrupted)\n",
		buf.String())
}
