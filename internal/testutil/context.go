// Package testutil holds small helpers shared by package tests.
package testutil

import (
	"context"
	"testing"
	"time"
)

// DefaultTimeout bounds a unit test that passes a zero timeout.
const DefaultTimeout = 5 * time.Second

// Context returns a context cancelled after timeout, at test cleanup or a
// second before the go test deadline, whichever comes first.
func Context(t testing.TB, timeout time.Duration) context.Context {
	t.Helper()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if dt, ok := t.(interface{ Deadline() (time.Time, bool) }); ok {
		if deadline, set := dt.Deadline(); set {
			if left := time.Until(deadline) - time.Second; left > 0 {
				timeout = min(timeout, left)
			}
		}
	}
	ctx, cancel := context.WithTimeout(t.Context(), timeout)
	t.Cleanup(cancel)
	return ctx
}
