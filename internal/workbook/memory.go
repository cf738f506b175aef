package workbook

import (
	"context"
	"fmt"
	"sync"

	"screener/internal/config"
)

// Memory is an in-process Store used by tests and dry runs. Tabs are created
// on first write; reading a missing tab returns no rows.
type Memory struct {
	mu          sync.Mutex
	tabs        map[string][][]string
	backgrounds map[string]map[int]config.Color
	failures    map[string]error
}

// NewMemory returns an empty workbook.
func NewMemory() *Memory {
	return &Memory{
		tabs:        map[string][][]string{},
		backgrounds: map[string]map[int]config.Color{},
		failures:    map[string]error{},
	}
}

// Seed replaces the contents of tab.
func (m *Memory) Seed(tab string, rows ...[]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tabs[tab] = copyRows(rows)
}

// FailOn makes the named operation ("read", "append", "update", "format") on
// tab return err. A nil err clears the failure.
func (m *Memory) FailOn(op, tab string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := op + ":" + tab
	if err == nil {
		delete(m.failures, key)
		return
	}
	m.failures[key] = err
}

// Rows returns a copy of tab.
func (m *Memory) Rows(tab string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyRows(m.tabs[tab])
}

// Background returns the color last applied to row.
func (m *Memory) Background(tab string, row int) (config.Color, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	color, ok := m.backgrounds[tab][row]
	return color, ok
}

func (m *Memory) Read(_ context.Context, tab string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["read:"+tab]; err != nil {
		return nil, err
	}
	return copyRows(m.tabs[tab]), nil
}

func (m *Memory) Append(_ context.Context, tab string, row []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["append:"+tab]; err != nil {
		return 0, err
	}
	m.tabs[tab] = append(m.tabs[tab], append([]string(nil), row...))
	return len(m.tabs[tab]), nil
}

func (m *Memory) Update(_ context.Context, tab string, row int, cells []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["update:"+tab]; err != nil {
		return err
	}
	if row < 1 {
		return fmt.Errorf("row %d out of range", row)
	}
	for len(m.tabs[tab]) < row {
		m.tabs[tab] = append(m.tabs[tab], nil)
	}
	current := m.tabs[tab][row-1]
	for len(current) < len(cells) {
		current = append(current, "")
	}
	copy(current, cells)
	m.tabs[tab][row-1] = current
	return nil
}

func (m *Memory) Format(_ context.Context, tab string, row int, _ int, color config.Color) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["format:"+tab]; err != nil {
		return err
	}
	if m.backgrounds[tab] == nil {
		m.backgrounds[tab] = map[int]config.Color{}
	}
	m.backgrounds[tab][row] = color
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}
