package live

import "screener/internal/pipeline"

// EventKind tags an Event.
type EventKind int

const (
	EventRunStart EventKind = iota
	EventPoll
	EventCandidate
	EventRunEnd
)

// Event is one pipeline callback queued for the UI goroutine. Only the
// fields matching Kind are set.
type Event struct {
	Kind      EventKind
	RunID     string
	Workbook  string
	Pending   int
	Candidate pipeline.CandidateEvent
	Summary   pipeline.Summary
}
