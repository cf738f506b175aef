//go:build cucumber

package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"screener/internal/pipeline"
	"screener/internal/ui/live"
)

// TestLiveUIScenarios runs the live UI feature scenarios.
func TestLiveUIScenarios(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "live-ui",
		ScenarioInitializer: InitializeLiveUIScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("testdata", "features", "live-ui.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeLiveUIScenario wires steps for live UI scenarios.
func InitializeLiveUIScenario(ctx *godog.ScenarioContext) {
	state := &liveUIScenarioState{}
	orig := isTerminal
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		isTerminal = func(io.Writer) bool { return state.isTTY }
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		isTerminal = orig
		return ctx, nil
	})

	ctx.Step(`^a TTY stdout$`, state.givenTTY)
	ctx.Step(`^stdout is not a TTY$`, state.givenNonTTY)
	ctx.Step(`^(\d+) candidates are being screened$`, state.givenCandidates)
	ctx.Step(`^a candidate that was written as "([^"]+)"$`, state.givenWritten)
	ctx.Step(`^I run "([^"]+)"$`, state.whenIRun)
	ctx.Step(`^a live UI is shown$`, state.thenLiveUIShown)
	ctx.Step(`^the UI lists each candidate with a status$`, state.thenCandidateStatuses)
	ctx.Step(`^the UI counts (\d+) "([^"]+)" verdicts?$`, state.thenPriorityCount)
	ctx.Step(`^the output uses plain summary text$`, state.thenPlainOutput)
}

type liveUIScenarioState struct {
	isTTY    bool
	decision uiModeDecision
	uiState  live.State
	expected int
}

func (s *liveUIScenarioState) reset() {
	s.isTTY = false
	s.decision = uiModeDecision{}
	s.uiState = live.State{}
	s.expected = 0
}

func (s *liveUIScenarioState) givenTTY() error {
	s.isTTY = true
	return nil
}

func (s *liveUIScenarioState) givenNonTTY() error {
	s.isTTY = false
	return nil
}

// givenCandidates seeds in-flight candidates for UI state.
func (s *liveUIScenarioState) givenCandidates(count int) error {
	now := time.Now()
	for i := 0; i < count; i++ {
		s.uiState = live.Reduce(s.uiState, pipeline.CandidateEvent{
			Row:       i + 2,
			Identity:  fmt.Sprintf("user%d@example.org", i),
			Status:    pipeline.CandidateRetrieving,
			EmittedAt: now,
		})
	}
	s.expected = count
	return nil
}

// givenWritten seeds a finished candidate.
func (s *liveUIScenarioState) givenWritten(priority string) error {
	s.uiState = live.Reduce(s.uiState, pipeline.CandidateEvent{
		Row:       2,
		Identity:  "jane@acme.io",
		Status:    pipeline.CandidateWritten,
		Priority:  priority,
		EmittedAt: time.Now(),
	})
	return nil
}

// whenIRun resolves the UI mode from the --ui and --verbose flags of a
// command line such as "screener run --ui plain".
func (s *liveUIScenarioState) whenIRun(command string) error {
	mode, verbose := "", false
	args := strings.Fields(command)
	for i, arg := range args {
		switch {
		case arg == "--ui" && i+1 < len(args):
			mode = args[i+1]
		case strings.HasPrefix(arg, "--ui="):
			mode = strings.TrimPrefix(arg, "--ui=")
		case arg == "-v" || arg == "--verbose":
			verbose = true
		}
	}
	decision, err := resolveUIMode(mode, verbose, nil)
	if err != nil {
		return err
	}
	s.decision = decision
	return nil
}

// thenLiveUIShown asserts the live UI is enabled.
func (s *liveUIScenarioState) thenLiveUIShown() error {
	if !s.decision.useLive {
		return fmt.Errorf("expected live UI to be enabled")
	}
	return nil
}

// thenCandidateStatuses asserts that every candidate has a row.
func (s *liveUIScenarioState) thenCandidateStatuses() error {
	if len(s.uiState.Rows) != s.expected {
		return fmt.Errorf("expected %d rows, got %d", s.expected, len(s.uiState.Rows))
	}
	for _, row := range s.uiState.Rows {
		if row.Status == "" {
			return fmt.Errorf("row %d has no status", row.Row)
		}
	}
	return nil
}

// thenPriorityCount asserts the verdict tally.
func (s *liveUIScenarioState) thenPriorityCount(count int, priority string) error {
	if got := s.uiState.ByPriority[priority]; got != count {
		return fmt.Errorf("expected %d %s verdicts, got %d", count, priority, got)
	}
	return nil
}

// thenPlainOutput asserts the live UI is disabled.
func (s *liveUIScenarioState) thenPlainOutput() error {
	if s.decision.useLive {
		return fmt.Errorf("expected plain output")
	}
	return nil
}
