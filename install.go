package spanlog

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/max-chem-eng/spanlog/models"
)

// Process-wide installation state. installMu serializes Initialize; installed
// is read lock-free by the package-level emit functions.
var (
	installMu sync.Mutex
	installed atomic.Pointer[Logger]
)

// Handle owns the installed logger and its background writer.
type Handle struct {
	logger *Logger
	once   sync.Once
	err    error
}

// Initialize builds a logger from options and installs it as the process-wide
// default. It must run before anything emits events and succeeds at most once
// per process: later calls return ErrAlreadyInitialized and build nothing, so
// no second writer competes for the log file.
func Initialize(options ...LoggerOption) (*Handle, error) {
	installMu.Lock()
	defer installMu.Unlock()

	if installed.Load() != nil {
		return nil, ErrAlreadyInitialized
	}

	l, err := New(options...)
	if err != nil {
		return nil, err
	}
	installed.Store(l)
	return &Handle{logger: l}, nil
}

// Logger returns the installed logger.
func (h *Handle) Logger() *Logger { return h.logger }

// Shutdown drains the file writer and waits for it to exit, or for ctx. The
// logger stays installed; file-bound records emitted afterwards are dropped.
func (h *Handle) Shutdown(ctx context.Context) error {
	h.once.Do(func() {
		h.err = h.logger.Close(ctx)
	})
	return h.err
}

// Default returns the installed logger, or nil before Initialize.
func Default() *Logger {
	return installed.Load()
}

// Package level emitters route to the installed logger. They are no-ops
// before Initialize.

func Trace(ctx context.Context, msg string, fields ...models.Field) {
	if l := Default(); l != nil {
		l.log(ctx, models.LevelTrace, msg, fields)
	}
}

func Debug(ctx context.Context, msg string, fields ...models.Field) {
	if l := Default(); l != nil {
		l.log(ctx, models.LevelDebug, msg, fields)
	}
}

func Info(ctx context.Context, msg string, fields ...models.Field) {
	if l := Default(); l != nil {
		l.log(ctx, models.LevelInfo, msg, fields)
	}
}

func Warn(ctx context.Context, msg string, fields ...models.Field) {
	if l := Default(); l != nil {
		l.log(ctx, models.LevelWarn, msg, fields)
	}
}

func Error(ctx context.Context, msg string, fields ...models.Field) {
	if l := Default(); l != nil {
		l.log(ctx, models.LevelError, msg, fields)
	}
}
