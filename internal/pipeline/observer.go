package pipeline

import "time"

// CandidateStatus identifies a candidate status update for observers.
type CandidateStatus string

const (
	// CandidateRetrieving marks profile and company lookups in progress.
	CandidateRetrieving CandidateStatus = "retrieving"
	// CandidateEvaluating marks an active oracle evaluation.
	CandidateEvaluating CandidateStatus = "evaluating"
	// CandidateWriting marks the verdict write.
	CandidateWriting CandidateStatus = "writing"
	// CandidateWritten marks a verdict appended to the output tab.
	CandidateWritten CandidateStatus = "written"
	// CandidateDuplicate marks a candidate whose identity was already written.
	CandidateDuplicate CandidateStatus = "duplicate"
	// CandidateNoIdentity marks an input row without e-mail or profile URL.
	CandidateNoIdentity CandidateStatus = "no_identity"
	// CandidateFailed marks a write failure.
	CandidateFailed CandidateStatus = "failed"
)

// Terminal reports whether no further events follow for the candidate.
func (s CandidateStatus) Terminal() bool {
	switch s {
	case CandidateWritten, CandidateDuplicate, CandidateNoIdentity, CandidateFailed:
		return true
	default:
		return false
	}
}

// CandidateEvent carries a single status update for an input row.
type CandidateEvent struct {
	Row       int
	Identity  string
	Status    CandidateStatus
	Priority  string
	Fallback  bool
	Reason    string
	Error     string
	WallTime  time.Duration
	EmittedAt time.Time
}

// Observer receives run lifecycle events for UI or logging.
type Observer interface {
	// OnRunStart signals the start of a run.
	OnRunStart(runID string, workbook string)
	// OnPoll reports how many candidates a poll returned.
	OnPoll(pending int)
	// OnCandidate delivers a candidate status update.
	OnCandidate(event CandidateEvent)
	// OnRunEnd signals run completion.
	OnRunEnd(summary Summary)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnRunStart(string, string)  {}
func (NopObserver) OnPoll(int)                 {}
func (NopObserver) OnCandidate(CandidateEvent) {}
func (NopObserver) OnRunEnd(Summary)           {}
