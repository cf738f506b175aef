package live

import (
	"time"

	"screener/internal/pipeline"
)

// CandidateRow holds UI state for a single input row.
type CandidateRow struct {
	Row        int
	Identity   string
	Status     pipeline.CandidateStatus
	Priority   string
	Fallback   bool
	Reason     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// StatusCounts aggregates counts by status bucket.
type StatusCounts struct {
	Active    int
	Written   int
	Defaults  int
	Duplicate int
	Failed    int
}

// State captures the live UI state for a run.
type State struct {
	RunID      string
	Workbook   string
	StartedAt  time.Time
	Polls      int
	Pending    int
	LastEvent  string
	Rows       []CandidateRow
	ByPriority map[string]int
	Counts     StatusCounts
	Done       bool
}
