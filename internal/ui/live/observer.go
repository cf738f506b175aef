package live

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"screener/internal/pipeline"
)

// Controller owns the Bubble Tea program and feeds it pipeline events.
type Controller struct {
	events  chan Event
	program *tea.Program
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
}

// Start runs the live table on the alternate screen of stdout.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	return start(opts, tea.WithOutput(stdout), tea.WithAltScreen())
}

func start(opts Options, programOpts ...tea.ProgramOption) *Controller {
	events := make(chan Event, 256)
	model := NewModel(events, opts)
	program := tea.NewProgram(model, programOpts...)
	controller := &Controller{
		events:  events,
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, _ = program.Run()
		close(controller.done)
	}()
	return controller
}

// Close stops the table once queued events are drawn. It is idempotent.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
}

func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

func (c *Controller) OnRunStart(runID string, workbook string) {
	c.send(Event{Kind: EventRunStart, RunID: runID, Workbook: workbook})
}

func (c *Controller) OnPoll(pending int) {
	c.send(Event{Kind: EventPoll, Pending: pending})
}

func (c *Controller) OnCandidate(event pipeline.CandidateEvent) {
	c.send(Event{Kind: EventCandidate, Candidate: event})
}

// OnRunEnd shows the summary and closes the table.
func (c *Controller) OnRunEnd(summary pipeline.Summary) {
	c.send(Event{Kind: EventRunEnd, Summary: summary})
	c.Close()
}

// send never blocks the run: a full queue or a closed controller drops the
// event.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}
