package pipeline

import (
	"sort"
	"time"
)

// Summary aggregates one run.
type Summary struct {
	RunID     string
	Attempted int
	Succeeded int
	Failed    int
	// Skipped counts candidates found to be duplicates at write time.
	Skipped    int
	Fallbacks  int
	ByPriority map[string]int
	// Interrupted is set when cancellation or a panic ended the run early.
	Interrupted bool
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Duration returns the run's wall time.
func (s Summary) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Priorities returns the priority labels seen, sorted.
func (s Summary) Priorities() []string {
	labels := make([]string, 0, len(s.ByPriority))
	for label := range s.ByPriority {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

func (s *Summary) record(priority string) {
	if s.ByPriority == nil {
		s.ByPriority = map[string]int{}
	}
	s.ByPriority[priority]++
}
