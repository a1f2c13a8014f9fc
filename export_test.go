package spanlog

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// resetInstalled uninstalls the process-wide logger, draining its writer.
func resetInstalled(t *testing.T) {
	t.Helper()
	installMu.Lock()
	l := installed.Swap(nil)
	installMu.Unlock()
	if l != nil {
		require.NoError(t, l.Close(context.Background()))
	}
}

// newTestLogger builds a console-only logger writing to io.Discard unless an
// option overrides it.
func newTestLogger(t *testing.T, options ...LoggerOption) *Logger {
	t.Helper()
	base := []LoggerOption{
		WithConsole(io.Discard),
		WithANSI(ANSINever),
		WithoutFile(),
		WithErrorHandler(func(err error) { t.Errorf("unexpected logging error: %v", err) }),
	}
	l, err := New(append(base, options...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close(context.Background()) })
	return l
}

// errorSink collects errors passed to an ErrorHandler.
type errorSink struct {
	mu   sync.Mutex
	errs []error
}

func (s *errorSink) handle(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *errorSink) all() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
