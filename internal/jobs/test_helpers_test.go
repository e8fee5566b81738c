package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// waitForChannel waits for a signal on the channel or fails after timeout.
func waitForChannel(t *testing.T, ch <-chan struct{}, timeout time.Duration, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		require.Fail(t, msg)
	}
}

// assertNotReady fails if ch is signalled within wait.
func assertNotReady(t *testing.T, ch <-chan struct{}, wait time.Duration, msg string) {
	t.Helper()
	select {
	case <-ch:
		require.Fail(t, msg)
	case <-time.After(wait):
	}
}

const (
	// DefaultTestTimeout is the standard timeout for most async test operations.
	DefaultTestTimeout = 5 * time.Second

	// ShortTestTimeout is for operations expected to complete quickly.
	ShortTestTimeout = 1 * time.Second

	// settleDelay is how long a negative check waits before concluding nothing happened.
	settleDelay = 50 * time.Millisecond
)

// newStartedManager returns a running manager that is stopped on cleanup.
func newStartedManager(t *testing.T, workers, queueSize int, opts ...Option) *Manager {
	t.Helper()
	m := NewManager(workers, queueSize, opts...)
	m.Start(t.Context())
	t.Cleanup(func() {
		require.NoError(t, m.StopWithTimeout(DefaultTestTimeout))
	})
	return m
}
