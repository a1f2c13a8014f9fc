package spanlog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/max-chem-eng/spanlog/models"
)

func readLogFiles(t *testing.T, dir string) map[string]string {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	files := make(map[string]string, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		files[filepath.Base(p)] = string(data)
	}
	return files
}

func onlyLogFile(t *testing.T, dir string) string {
	t.Helper()
	files := readLogFiles(t, dir)
	require.Len(t, files, 1)
	for _, content := range files {
		return content
	}
	return ""
}

var (
	fileHeaderRe = regexp.MustCompile(`^\[INFO \] \d+ \d{4}-\d\d-\d\d \d\d:\d\d:\d\d\.\d{3}\S+ github\.com/max-chem-eng/spanlog\(\d+\)$`)
	fileBodyRe   = regexp.MustCompile(`^\.\.\. worker-(\d) record worker=(\d) seq=(\d+)$`)
)

func TestRotatingWriter_ConcurrentProducers(t *testing.T) {
	const workers, perWorker = 8, 125
	dir := t.TempDir()
	l, err := New(
		WithoutConsole(),
		WithLogDir(dir),
		WithProcessName("app"),
		WithSpanEvents(false),
		WithErrorHandler(func(err error) { t.Errorf("unexpected logging error: %v", err) }),
	)
	require.NoError(t, err)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			ctx, span := l.Span(context.Background(), models.LevelInfo, fmt.Sprintf("worker-%d", w))
			defer span.Exit()
			for i := 0; i < perWorker; i++ {
				l.Info(ctx, "record", Int("worker", w), Int("seq", i))
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.NoError(t, l.Close(context.Background()))
	assert.Zero(t, l.Writer().Dropped())

	lines := strings.Split(strings.TrimSuffix(onlyLogFile(t, dir), "\n"), "\n")
	require.Len(t, lines, 2*workers*perWorker)

	next := make(map[string]int)
	for i := 0; i < len(lines); i += 2 {
		require.Regexp(t, fileHeaderRe, lines[i])
		m := fileBodyRe.FindStringSubmatch(lines[i+1])
		require.NotNil(t, m, lines[i+1])
		require.Equal(t, m[1], m[2], "span chain belongs to the emitting worker")
		require.Equal(t, fmt.Sprint(next[m[2]]), m[3], "records of one producer stay in order")
		next[m[2]]++
	}
	assert.Len(t, next, workers)
}

// flakyFile fails its first Write.
type flakyFile struct {
	io.WriteCloser
	failed atomic.Bool
}

func (f *flakyFile) Write(p []byte) (int, error) {
	if f.failed.CompareAndSwap(false, true) {
		return 0, errors.New("disk hiccup")
	}
	return f.WriteCloser.Write(p)
}

func TestRotatingWriter_RetriesOnce(t *testing.T) {
	dir := t.TempDir()
	var opens atomic.Int32
	errs := &errorSink{}

	w := NewRotatingWriter(WriterConfig{
		Dir:     dir,
		Prefix:  "app",
		OnError: errs.handle,
		Open: func(path string) (io.WriteCloser, error) {
			f, err := OpenAppend(path)
			if err != nil {
				return nil, err
			}
			if opens.Add(1) == 1 {
				return &flakyFile{WriteCloser: f}, nil
			}
			return f, nil
		},
	})
	for i := 0; i < 50; i++ {
		require.True(t, w.Enqueue([]byte(fmt.Sprintf("line %d\n", i))))
	}
	require.NoError(t, w.Close(context.Background()))

	var want strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&want, "line %d\n", i)
	}
	assert.Equal(t, want.String(), onlyLogFile(t, dir))
	assert.EqualValues(t, 2, opens.Load())
	assert.Zero(t, w.Failed())
	assert.False(t, w.Degraded())

	got := errs.all()
	require.Len(t, got, 1)
	var we *WriteError
	require.ErrorAs(t, got[0], &we)
	assert.Equal(t, 1, we.Attempt)
	assert.False(t, we.Dropped)
	assert.EqualError(t, we.Err, "disk hiccup")
}

func TestRotatingWriter_PersistentFailure(t *testing.T) {
	errs := &errorSink{}
	w := NewRotatingWriter(WriterConfig{
		Dir:     t.TempDir(),
		Prefix:  "app",
		OnError: errs.handle,
		Open: func(string) (io.WriteCloser, error) {
			return nil, errors.New("read-only file system")
		},
	})
	for i := 0; i < 5; i++ {
		w.Enqueue([]byte("x\n"))
	}
	require.NoError(t, w.Close(context.Background()))

	assert.EqualValues(t, 5, w.Failed())
	assert.True(t, w.Degraded())

	// Once degraded, further failures are rate limited.
	got := errs.all()
	require.Len(t, got, 2)
	var first, second *WriteError
	require.ErrorAs(t, got[0], &first)
	require.ErrorAs(t, got[1], &second)
	assert.Equal(t, 1, first.Attempt)
	assert.Equal(t, 2, second.Attempt)
	assert.True(t, second.Dropped)
}

// blockingFile holds its first Write until release is closed.
type blockingFile struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once

	mu  sync.Mutex
	buf bytes.Buffer
}

func (f *blockingFile) Write(p []byte) (int, error) {
	f.once.Do(func() {
		close(f.started)
		<-f.release
	})
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.Write(p)
}

func (f *blockingFile) Close() error { return nil }

func (f *blockingFile) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.String()
}

func TestRotatingWriter_DropsNewestWhenFull(t *testing.T) {
	file := &blockingFile{started: make(chan struct{}), release: make(chan struct{})}
	errs := &errorSink{}
	w := NewRotatingWriter(WriterConfig{
		Prefix:    "app",
		QueueSize: 2,
		OnError:   errs.handle,
		Open:      func(string) (io.WriteCloser, error) { return file, nil },
	})

	require.True(t, w.Enqueue([]byte("1\n")))
	<-file.started

	assert.True(t, w.Enqueue([]byte("2\n")))
	assert.True(t, w.Enqueue([]byte("3\n")))
	assert.False(t, w.Enqueue([]byte("4\n")))
	n, err := w.Write([]byte("5\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	close(file.release)
	require.NoError(t, w.Close(context.Background()))

	assert.Equal(t, "1\n2\n3\n", file.String())
	assert.EqualValues(t, 2, w.Dropped())

	got := errs.all()
	require.NotEmpty(t, got)
	assert.Contains(t, got[0].Error(), "2 records dropped, 2 in total")
}

func TestRotatingWriter_EnqueueAfterClose(t *testing.T) {
	errs := &errorSink{}
	w := NewRotatingWriter(WriterConfig{Dir: t.TempDir(), Prefix: "app", OnError: errs.handle})
	require.NoError(t, w.Close(context.Background()))
	require.NoError(t, w.Close(context.Background()))

	for i := 0; i < 10; i++ {
		assert.False(t, w.Enqueue([]byte("late\n")))
	}
	assert.EqualValues(t, 10, w.Dropped())

	got := errs.all()
	require.Len(t, got, 1, "late drops are reported, rate limited")
	assert.Contains(t, got[0].Error(), "record dropped after close, 1 in total")
}

func TestRotatingWriter_CreatesFileLazily(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	w := NewRotatingWriter(WriterConfig{Dir: dir, Prefix: "app"})
	require.NoError(t, w.Close(context.Background()))
	assert.NoDirExists(t, dir)
}

func TestRotatingWriter_CloseHonorsContext(t *testing.T) {
	file := &blockingFile{started: make(chan struct{}), release: make(chan struct{})}
	w := NewRotatingWriter(WriterConfig{
		Prefix: "app",
		Open:   func(string) (io.WriteCloser, error) { return file, nil },
	})
	w.Enqueue([]byte("1\n"))
	<-file.started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Close(ctx), context.DeadlineExceeded)

	close(file.release)
	require.NoError(t, w.Close(context.Background()))
	assert.Equal(t, "1\n", file.String())
}

func TestRotatingWriter_RotatesOnBoundary(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 5, 1, 10, 0, 59, 500*int(time.Millisecond), time.UTC)
	ticks := []time.Time{
		start,
		start.Add(10 * time.Second),
		start.Add(30 * time.Second),
	}
	var calls int
	now := func() time.Time {
		// Only the writer goroutine reads the clock.
		ts := ticks[min(calls, len(ticks)-1)]
		calls++
		return ts
	}

	w := NewRotatingWriter(WriterConfig{
		Dir:      dir,
		Prefix:   "app",
		Rotation: RotationMinutely,
		Start:    start,
		Now:      now,
	})
	for _, rec := range []string{"a\n", "b\n", "c\n"} {
		require.True(t, w.Enqueue([]byte(rec)))
	}
	require.NoError(t, w.Close(context.Background()))

	assert.Equal(t, map[string]string{
		"app-20240501-100059500.log": "a\n",
		"app-20240501-100109500.log": "b\nc\n",
	}, readLogFiles(t, dir))
}

func TestRotatingWriter_FirstFileAfterBoundaryUsesNow(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 5, 1, 10, 59, 59, 0, time.UTC)
	now := time.Date(2024, 5, 1, 13, 30, 0, 0, time.UTC)

	w := NewRotatingWriter(WriterConfig{
		Dir:      dir,
		Prefix:   "app",
		Rotation: RotationHourly,
		Start:    start,
		Now:      fixedClock(now),
	})
	require.True(t, w.Enqueue([]byte("a\n")))
	require.True(t, w.Enqueue([]byte("b\n")))
	require.NoError(t, w.Close(context.Background()))

	assert.Equal(t, map[string]string{
		"app-20240501-133000000.log": "a\nb\n",
	}, readLogFiles(t, dir))
}
