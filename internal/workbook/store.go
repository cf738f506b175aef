// Package workbook abstracts the two-tab spreadsheet the screener reads
// candidates from and writes verdicts to.
package workbook

import (
	"context"
	"errors"
	"io"

	"screener/internal/config"
)

// ErrUnknownTab is returned when a tab does not exist in the workbook.
var ErrUnknownTab = errors.New("unknown tab")

// Store is a row-oriented view of a workbook. Row numbers are 1-based and
// include the header row.
type Store interface {
	// Read returns every row of tab.
	Read(ctx context.Context, tab string) ([][]string, error)
	// Append adds row after the last used row and returns its number.
	Append(ctx context.Context, tab string, row []string) (int, error)
	// Update overwrites cells of row starting at the first column.
	Update(ctx context.Context, tab string, row int, cells []string) error
	// Format sets the background of the first width cells of row.
	Format(ctx context.Context, tab string, row int, width int, color config.Color) error
}

// Backend is a Store that holds resources.
type Backend interface {
	Store
	io.Closer
}
