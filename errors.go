package spanlog

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ErrAlreadyInitialized is returned by Initialize when a logger has already
// been installed for this process.
var ErrAlreadyInitialized = errors.New("spanlog: already initialized")

var (
	errEmptyTarget = errors.New("empty target")
	errBadANSIMode = errors.New("want auto, always or never")
)

// ConfigurationError reports a setting that could not be applied at startup.
type ConfigurationError struct {
	Setting string
	Value   string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("spanlog: invalid %s %q: %v", e.Setting, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// FormattingError reports an event that a sink could not render. The record is
// dropped for that sink only.
type FormattingError struct {
	Sink string
	Err  error
}

func (e *FormattingError) Error() string {
	return fmt.Sprintf("spanlog: %s sink: format event: %v", e.Sink, e.Err)
}

func (e *FormattingError) Unwrap() error { return e.Err }

// WriteError reports a failed write to a sink destination. Attempt is 1 for
// the first try and 2 for the retry after re-opening the file.
type WriteError struct {
	Path    string
	Attempt int
	Dropped bool
	Err     error
}

func (e *WriteError) Error() string {
	msg := fmt.Sprintf("spanlog: write %s (attempt %d): %v", e.Path, e.Attempt, e.Err)
	if e.Dropped {
		msg += ", record dropped"
	}
	return msg
}

func (e *WriteError) Unwrap() error { return e.Err }

// ErrorHandler receives failures the logging pipeline absorbs. It must not log
// through the same logger.
type ErrorHandler func(error)

var stderrMu sync.Mutex

// StderrErrorHandler is the default last-resort error channel.
func StderrErrorHandler(err error) {
	stderrMu.Lock()
	defer stderrMu.Unlock()
	fmt.Fprintf(os.Stderr, "spanlog: %v\n", trimPrefix(err))
}

func trimPrefix(err error) string {
	const prefix = "spanlog: "
	msg := err.Error()
	if len(msg) >= len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

// degradedReportInterval bounds how often failures are reported while a
// reporter is degraded.
const degradedReportInterval = 5 * time.Second

// errorReporter forwards errors to an ErrorHandler. Once degraded, reports are
// rate limited and the number of suppressed reports is attached to the next
// one that gets through.
type errorReporter struct {
	handler    ErrorHandler
	limiter    *rate.Limiter
	degraded   atomic.Bool
	suppressed atomic.Uint64
}

func newErrorReporter(h ErrorHandler) *errorReporter {
	if h == nil {
		h = StderrErrorHandler
	}
	return &errorReporter{
		handler: h,
		limiter: rate.NewLimiter(rate.Every(degradedReportInterval), 1),
	}
}

func (r *errorReporter) report(err error) {
	if err == nil {
		return
	}
	if r.degraded.Load() && !r.limiter.Allow() {
		r.suppressed.Add(1)
		return
	}
	if n := r.suppressed.Swap(0); n > 0 {
		err = fmt.Errorf("%w (%d similar reports suppressed)", err, n)
	}
	r.handler(err)
}

func (r *errorReporter) degrade()         { r.degraded.Store(true) }
func (r *errorReporter) restore()         { r.degraded.Store(false) }
func (r *errorReporter) isDegraded() bool { return r.degraded.Load() }
