package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"screener/internal/pipeline"
)

const defaultTick = 200 * time.Millisecond

// Options configures the live table.
type Options struct {
	NoColor      bool
	TickInterval time.Duration
	// OnInterrupt runs on the first ctrl+c. The terminal is in raw mode, so
	// the key never reaches the process as SIGINT. A second ctrl+c quits the
	// UI without waiting for the run to finish.
	OnInterrupt func()
}

// Model is the Bubble Tea model behind the live candidate table.
type Model struct {
	opts        Options
	events      <-chan Event
	state       State
	table       table.Model
	now         time.Time
	interrupted bool
}

// NewModel builds a model fed by events.
func NewModel(events <-chan Event, opts Options) Model {
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTick
	}
	candidates := table.New(
		table.WithColumns(defaultColumns()),
		table.WithFocused(false),
	)
	candidates.SetStyles(tableStyles(opts.NoColor))
	return Model{opts: opts, events: events, table: candidates, now: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(nextEvent(m.events), tick(m.opts.TickInterval))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		m.apply(msg.Event)
		return m, nextEvent(m.events)
	case tickMsg:
		m.now = time.Time(msg)
		m.refresh()
		return m, tick(m.opts.TickInterval)
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(msg.Height-4, 1))
		m.table.SetColumns(columnsForWidth(msg.Width))
		return m, nil
	case tea.KeyMsg:
		if msg.Type != tea.KeyCtrlC {
			return m, nil
		}
		if m.interrupted {
			return m, tea.Quit
		}
		m.interrupted = true
		m.state.LastEvent = "stopping after the current candidate (ctrl+c again to quit)"
		if m.opts.OnInterrupt != nil {
			m.opts.OnInterrupt()
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(m.state, m.now, m.opts.NoColor),
		renderSummary(m.state, m.opts.NoColor),
		renderPriorities(m.state, m.opts.NoColor),
		m.table.View(),
		renderFooter(m.state, m.opts.NoColor),
	)
}

// State returns a snapshot of what the table shows.
func (m Model) State() State {
	return m.state
}

func (m *Model) apply(event Event) {
	switch event.Kind {
	case EventRunStart:
		m.state.RunID = event.RunID
		m.state.Workbook = event.Workbook
		if m.state.StartedAt.IsZero() {
			m.state.StartedAt = time.Now()
		}
	case EventPoll:
		m.state = ReducePoll(m.state, event.Pending)
	case EventCandidate:
		m.state = Reduce(m.state, event.Candidate)
	case EventRunEnd:
		m.state.Done = true
		m.state.LastEvent = pipeline.FormatSummary(event.Summary)
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.table.SetRows(rowsForState(m.state, m.now, m.opts.NoColor))
}

// EventMsg delivers a pipeline event to the program.
type EventMsg struct {
	Event Event
}

type tickMsg time.Time

// nextEvent waits for one event; a closed channel quits the program.
func nextEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		event, ok := <-events
		if !ok {
			return tea.Quit()
		}
		return EventMsg{Event: event}
	}
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}
