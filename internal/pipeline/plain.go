package pipeline

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
	ansiGray  = "\x1b[90m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiBlue  = "\x1b[34m"
)

type lineStyle int

const (
	styleDefault lineStyle = iota
	styleRun
	styleSuccess
	styleError
)

// PlainObserver prints one line per terminal candidate event and a run
// summary. It is used when the live UI is off.
type PlainObserver struct {
	mu      sync.Mutex
	w       io.Writer
	palette palette
}

// NewPlainObserver writes progress lines to w.
func NewPlainObserver(w io.Writer, noColor bool) *PlainObserver {
	return &PlainObserver{w: w, palette: paletteFor(w, noColor)}
}

func (p *PlainObserver) OnRunStart(runID string, workbook string) {
	line := "Run " + runID
	if workbook != "" {
		line += " | " + workbook
	}
	p.printf(styleRun, "%s", line)
}

func (p *PlainObserver) OnPoll(pending int) {
	p.printf(styleDefault, "poll: %d candidate(s) pending", pending)
}

func (p *PlainObserver) OnCandidate(event CandidateEvent) {
	if !event.Status.Terminal() {
		return
	}
	line := fmt.Sprintf("row %d %s: %s", event.Row, event.Identity, event.Status)
	style := styleDefault
	switch event.Status {
	case CandidateWritten:
		line += " (" + event.Priority
		if event.Fallback {
			line += ", default: " + event.Reason
		}
		line += ")"
		style = styleSuccess
	case CandidateFailed, CandidateNoIdentity:
		if event.Error != "" {
			line += " (" + event.Error + ")"
		}
		style = styleError
	}
	if event.WallTime > 0 {
		line += " " + event.WallTime.Round(10*time.Millisecond).String()
	}
	p.printf(style, "%s", line)
}

func (p *PlainObserver) OnRunEnd(summary Summary) {
	p.printf(styleRun, "%s", FormatSummary(summary))
}

// FormatSummary renders the run summary on one line.
func FormatSummary(summary Summary) string {
	parts := []string{
		fmt.Sprintf("attempted=%d", summary.Attempted),
		fmt.Sprintf("written=%d", summary.Succeeded),
		fmt.Sprintf("failed=%d", summary.Failed),
		fmt.Sprintf("duplicates=%d", summary.Skipped),
		fmt.Sprintf("defaults=%d", summary.Fallbacks),
	}
	for _, label := range summary.Priorities() {
		parts = append(parts, fmt.Sprintf("%s=%d", label, summary.ByPriority[label]))
	}
	line := "Summary: " + strings.Join(parts, " ")
	if summary.Interrupted {
		line += " (interrupted)"
	}
	return line
}

func (p *PlainObserver) printf(style lineStyle, format string, args ...any) {
	if p == nil || p.w == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, p.palette.apply(style, fmt.Sprintf(format, args...)))
}

type palette struct {
	enabled bool
}

func paletteFor(w io.Writer, noColor bool) palette {
	if noColor {
		return palette{}
	}
	return palette{enabled: shouldUseStyling(w)}
}

func shouldUseStyling(w io.Writer) bool {
	if w == nil {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if strings.EqualFold(os.Getenv("CLICOLOR"), "0") {
		return false
	}
	if fder, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}

func (p palette) apply(style lineStyle, text string) string {
	if !p.enabled {
		return text
	}
	switch style {
	case styleRun:
		return ansiBold + ansiBlue + text + ansiReset
	case styleSuccess:
		return ansiGreen + text + ansiReset
	case styleError:
		return ansiBold + ansiRed + text + ansiReset
	default:
		return ansiDim + ansiGray + text + ansiReset
	}
}
