package spanlog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// OpenFunc opens the log file at path for appending.
type OpenFunc func(path string) (io.WriteCloser, error)

// OpenAppend is the default OpenFunc. It creates the parent directory when it
// does not exist yet.
func OpenAppend(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// WriterConfig configures a RotatingWriter. Zero values select defaults.
type WriterConfig struct {
	Dir       string
	Prefix    string
	Rotation  Rotation
	QueueSize int
	Open      OpenFunc
	OnError   ErrorHandler
	// Start is the process start time embedded in the first file name.
	Start time.Time
	Now   func() time.Time
}

// activeWriters counts running writer loops.
var activeWriters atomic.Int32

// dropReportInterval bounds how often queue overflow is reported.
const dropReportInterval = time.Second

// RotatingWriter persists records on a single background goroutine. Producers
// only touch the bounded queue; the loop is the sole owner of the file.
//
// When the queue is full the record being enqueued is dropped (drop-newest)
// and counted, so producers never block.
type RotatingWriter struct {
	dir      string
	prefix   string
	rotation Rotation
	open     OpenFunc
	start    time.Time
	now      func() time.Time

	queue   chan []byte
	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	dropped atomic.Uint64
	failed  atomic.Uint64

	reporter    *errorReporter
	dropLimiter *rate.Limiter

	// owned by run
	file          io.WriteCloser
	path          string
	rotateAt      time.Time
	reportedDrops uint64
	closeErr      error
}

// NewRotatingWriter starts the writer loop. The file is created lazily on the
// first record.
func NewRotatingWriter(cfg WriterConfig) *RotatingWriter {
	if cfg.Dir == "" {
		cfg.Dir = DefaultLogDir
	}
	if cfg.Prefix == "" {
		cfg.Prefix = processName()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Open == nil {
		cfg.Open = OpenAppend
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Start.IsZero() {
		cfg.Start = cfg.Now()
	}

	w := &RotatingWriter{
		dir:         cfg.Dir,
		prefix:      cfg.Prefix,
		rotation:    cfg.Rotation,
		open:        cfg.Open,
		start:       cfg.Start,
		now:         cfg.Now,
		queue:       make(chan []byte, cfg.QueueSize),
		done:        make(chan struct{}),
		reporter:    newErrorReporter(cfg.OnError),
		dropLimiter: rate.NewLimiter(rate.Every(dropReportInterval), 1),
	}

	activeWriters.Add(1)
	go w.run()
	return w
}

// Enqueue hands rec to the writer without blocking. It reports whether the
// record was accepted; rejected records are counted in Dropped. rec must not
// be modified afterwards.
func (w *RotatingWriter) Enqueue(rec []byte) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		// The loop no longer reports drops.
		total := w.dropped.Add(1)
		if w.dropLimiter.Allow() {
			w.reporter.report(fmt.Errorf("spanlog: record dropped after close, %d in total", total))
		}
		return false
	}
	select {
	case w.queue <- rec:
		return true
	default:
		w.dropped.Add(1)
		return false
	}
}

// Write implements io.Writer by enqueuing a copy of p. It never blocks and
// never fails; overflow is accounted in Dropped.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	rec := make([]byte, len(p))
	copy(rec, p)
	w.Enqueue(rec)
	return len(p), nil
}

// Dropped returns the number of records rejected by Enqueue.
func (w *RotatingWriter) Dropped() uint64 { return w.dropped.Load() }

// Failed returns the number of records lost to write errors after the retry.
func (w *RotatingWriter) Failed() uint64 { return w.failed.Load() }

// Degraded reports whether the last record could not be written.
func (w *RotatingWriter) Degraded() bool { return w.reporter.isDegraded() }

// Close stops accepting records and waits until every queued record has been
// written and the file closed, or until ctx is done. The loop keeps draining
// in the background if ctx expires first.
func (w *RotatingWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-w.done:
		return w.closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *RotatingWriter) run() {
	defer close(w.done)
	defer activeWriters.Add(-1)

	for rec := range w.queue {
		w.write(rec)
		w.reportDrops(false)
	}

	w.reportDrops(true)
	w.closeErr = w.closeFile()
}

// write appends rec, re-opening the file and retrying once on failure.
func (w *RotatingWriter) write(rec []byte) {
	err := w.tryWrite(rec)
	if err == nil {
		w.reporter.restore()
		return
	}
	w.reporter.report(&WriteError{Path: w.path, Attempt: 1, Err: err})

	// Re-open the same file for the retry.
	_ = w.closeFile()
	if err = w.tryWrite(rec); err == nil {
		w.reporter.restore()
		return
	}

	w.failed.Add(1)
	w.reporter.degrade()
	w.reporter.report(&WriteError{Path: w.path, Attempt: 2, Dropped: true, Err: err})
	_ = w.closeFile()
}

func (w *RotatingWriter) tryWrite(rec []byte) error {
	now := w.now()
	switch {
	case w.path == "":
		// A boundary may already have passed since start.
		opened := w.start
		if next := w.rotation.next(w.start); !next.IsZero() && !now.Before(next) {
			opened = now
		}
		w.path = logFilePath(w.dir, w.prefix, opened)
		w.rotateAt = w.rotation.next(opened)
	case !w.rotateAt.IsZero() && !now.Before(w.rotateAt):
		if err := w.closeFile(); err != nil {
			w.reporter.report(fmt.Errorf("spanlog: close rotated file %s: %w", w.path, err))
		}
		w.path = logFilePath(w.dir, w.prefix, now)
		w.rotateAt = w.rotation.next(now)
	}

	if w.file == nil {
		f, err := w.open(w.path)
		if err != nil {
			return err
		}
		w.file = f
	}
	_, err := w.file.Write(rec)
	return err
}

type syncer interface {
	Sync() error
}

func (w *RotatingWriter) closeFile() error {
	if w.file == nil {
		return nil
	}
	f := w.file
	w.file = nil

	var syncErr error
	if s, ok := f.(syncer); ok {
		syncErr = s.Sync()
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	if syncErr != nil {
		return fmt.Errorf("sync log file: %w", syncErr)
	}
	return nil
}

func (w *RotatingWriter) reportDrops(final bool) {
	total := w.dropped.Load()
	if total == w.reportedDrops {
		return
	}
	if !final && !w.dropLimiter.Allow() {
		return
	}
	w.reporter.report(fmt.Errorf("spanlog: %d records dropped, %d in total", total-w.reportedDrops, total))
	w.reportedDrops = total
}

// processName is the base name of the running executable.
func processName() string {
	if len(os.Args) == 0 || os.Args[0] == "" {
		return "spanlog"
	}
	name := filepath.Base(os.Args[0])
	if ext := filepath.Ext(name); ext == ".exe" {
		name = name[:len(name)-len(ext)]
	}
	return name
}
