package cli

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

type uiMode string

const (
	uiAuto  uiMode = "auto"
	uiLive  uiMode = "live"
	uiPlain uiMode = "plain"
)

func parseUIMode(raw string) (uiMode, error) {
	switch mode := uiMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "":
		return uiAuto, nil
	case uiAuto, uiLive, uiPlain:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid ui mode %q (expected auto|live|plain)", raw)
	}
}

// uiModeDecision says whether run shows the live table, plus an optional
// warning for stderr.
type uiModeDecision struct {
	useLive bool
	warning string
}

// isTerminal is replaced in tests.
var isTerminal = writerIsTerminal

// resolveUIMode picks the progress output for run. Verbose logging always
// forces plain output so log lines do not fight the table.
func resolveUIMode(raw string, verbose bool, stdout io.Writer) (uiModeDecision, error) {
	mode, err := parseUIMode(raw)
	if err != nil {
		return uiModeDecision{}, err
	}
	if verbose || mode == uiPlain {
		return uiModeDecision{}, nil
	}
	tty := isTerminal(stdout)
	if mode == uiLive && !tty {
		return uiModeDecision{warning: "stdout is not a terminal; using plain progress output"}, nil
	}
	return uiModeDecision{useLive: tty}, nil
}

func writerIsTerminal(w io.Writer) bool {
	fder, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(fder.Fd()))
}
