package testutil

import (
	"testing"
	"time"
)

// WaitFor runs fn in a goroutine and fails the test when it has not returned
// within timeout.
func WaitFor(t testing.TB, timeout time.Duration, fn func(), msg string) {
	t.Helper()
	ctx := Context(t, timeout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if msg == "" {
			msg = "operation did not finish before timeout"
		}
		t.Fatalf("%s", msg)
	}
}
