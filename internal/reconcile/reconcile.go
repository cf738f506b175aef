// Package reconcile decides which input rows still need a verdict and writes
// verdicts back to the workbook.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"screener/internal/config"
	"screener/internal/identity"
	"screener/internal/workbook"
)

var (
	// ErrDuplicate is returned by WriteVerdict when the identity is already
	// present in the output tab.
	ErrDuplicate = errors.New("candidate already processed")
	// ErrNoIdentity marks a row or verdict without e-mail or LinkedIn URL.
	ErrNoIdentity = errors.New("no identity")
)

// Candidate is an unprocessed input row.
type Candidate struct {
	// Row is the 1-based row number in the input tab.
	Row      int
	Cells    []string
	Identity identity.Identity
}

// Reconciler compares the input and output tabs of a workbook.
type Reconciler struct {
	store  workbook.Store
	cfg    *config.Config
	logger *zap.Logger

	mu         sync.Mutex
	seen       *identity.Set
	marked     map[int]struct{}
	inputWidth int
	// headerChecked is set once the output tab is known to be non-empty.
	headerChecked bool
}

const defaultInputWidth = 10

// New builds a Reconciler over store.
func New(store workbook.Store, cfg *config.Config, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		store:  store,
		cfg:    cfg,
		logger: logger,
		seen:   identity.NewSet(),
		marked: map[int]struct{}{},
	}
}

// ListUnprocessed scans both tabs and returns the input rows whose identities
// are absent from the output tab. The output scan refreshes the membership
// set; a failed scan is an error rather than an empty set.
func (r *Reconciler) ListUnprocessed(ctx context.Context) ([]Candidate, error) {
	inputTab, outputTab := r.cfg.Sheet.InputSheetName, r.cfg.Sheet.OutputSheetName

	outputRows, err := r.store.Read(ctx, outputTab)
	if err != nil {
		return nil, fmt.Errorf("read output tab %s: %w", outputTab, err)
	}
	seen := identity.NewSet()
	for _, row := range outputRows {
		seen.AddRow(identity.CleanRow(row))
	}
	r.mu.Lock()
	r.seen = seen
	if len(outputRows) > 0 {
		r.headerChecked = true
	}
	r.mu.Unlock()

	inputRows, err := r.store.Read(ctx, inputTab)
	if err != nil {
		return nil, fmt.Errorf("read input tab %s: %w", inputTab, err)
	}

	if len(inputRows) > 0 && len(inputRows[0]) > 0 {
		r.mu.Lock()
		r.inputWidth = len(inputRows[0])
		r.mu.Unlock()
	}

	polled := identity.NewSet()
	var candidates []Candidate
	for i, row := range inputRows {
		if i == 0 {
			continue
		}
		cells := identity.CleanRow(row)
		if isBlank(cells) {
			continue
		}
		keys := identity.Keys(cells)
		if seen.ContainsAny(keys...) {
			continue
		}
		if polled.ContainsAny(keys...) {
			r.logger.Debug("duplicate input row in poll", zap.Int("row", i+1))
			continue
		}
		polled.Add(keys...)
		candidates = append(candidates, Candidate{
			Row:      i + 1,
			Cells:    cells,
			Identity: identity.ExtractCells(cells),
		})
	}
	r.logger.Debug("reconciled tabs",
		zap.Int("input_rows", max(len(inputRows)-1, 0)),
		zap.Int("output_keys", seen.Len()),
		zap.Int("unprocessed", len(candidates)),
	)
	return candidates, nil
}

// WriteVerdict appends the projection of verdict onto required_fields,
// colours it by priority and highlights the source row. Formatting failures
// are logged and do not fail the write.
func (r *Reconciler) WriteVerdict(ctx context.Context, verdict map[string]string, sourceRow int) error {
	keys := verdictKeys(verdict)
	if len(keys) == 0 {
		return ErrNoIdentity
	}
	r.mu.Lock()
	duplicate := r.seen.ContainsAny(keys...)
	r.mu.Unlock()
	if duplicate {
		r.logger.Info("skipping duplicate verdict", zap.Int("row", sourceRow), zap.Strings("keys", keys))
		r.MarkSeen(ctx, sourceRow)
		return ErrDuplicate
	}

	outputTab := r.cfg.Sheet.OutputSheetName
	fields := r.cfg.Response.RequiredFields
	if err := r.ensureHeader(ctx, outputTab, fields); err != nil {
		return err
	}
	row, err := r.store.Append(ctx, outputTab, Project(verdict, fields))
	if err != nil {
		return fmt.Errorf("append verdict: %w", err)
	}
	r.mu.Lock()
	r.seen.Add(keys...)
	r.mu.Unlock()

	priority := config.NormalizeLabel(verdict["priority"])
	if color, ok := r.cfg.Sheet.PriorityColors[priority]; ok {
		if err := r.store.Format(ctx, outputTab, row, len(fields), color); err != nil {
			r.logger.Warn("format verdict row failed", zap.Int("row", row), zap.Error(err))
		}
	}
	r.MarkSeen(ctx, sourceRow)
	return nil
}

func (r *Reconciler) ensureHeader(ctx context.Context, tab string, fields []string) error {
	if !r.cfg.Sheet.WriteHeaders {
		return nil
	}
	r.mu.Lock()
	checked := r.headerChecked
	r.mu.Unlock()
	if checked {
		return nil
	}
	rows, err := r.store.Read(ctx, tab)
	if err != nil {
		return fmt.Errorf("read output tab %s: %w", tab, err)
	}
	if len(rows) == 0 {
		if _, err := r.store.Append(ctx, tab, append([]string(nil), fields...)); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	r.mu.Lock()
	r.headerChecked = true
	r.mu.Unlock()
	return nil
}

// MarkSeen highlights an input row once per process when highlighting is on.
func (r *Reconciler) MarkSeen(ctx context.Context, row int) {
	if row < 2 || !r.cfg.Sheet.HighlightProcessedRows {
		return
	}
	r.mu.Lock()
	if _, done := r.marked[row]; done {
		r.mu.Unlock()
		return
	}
	r.marked[row] = struct{}{}
	width := r.inputWidth
	r.mu.Unlock()

	if width == 0 {
		width = defaultInputWidth
	}
	if err := r.store.Format(ctx, r.cfg.Sheet.InputSheetName, row, width, r.cfg.Sheet.HighlightColor); err != nil {
		r.logger.Warn("highlight input row failed", zap.Int("row", row), zap.Error(err))
	}
}

// Project orders verdict values by fields; missing fields become "".
func Project(verdict map[string]string, fields []string) []string {
	out := make([]string, len(fields))
	for i, field := range fields {
		out[i] = verdict[field]
	}
	return out
}

func verdictKeys(verdict map[string]string) []string {
	var keys []string
	if email := strings.TrimSpace(verdict["email"]); email != "" {
		keys = append(keys, identity.EmailKey(email))
	}
	if profile := strings.TrimSpace(verdict["linkedin"]); profile != "" {
		keys = append(keys, identity.LinkedInKey(profile))
	}
	return keys
}

func isBlank(cells []string) bool {
	for _, cell := range cells {
		if cell != "" {
			return false
		}
	}
	return true
}
