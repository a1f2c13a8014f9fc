package spanlog

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/max-chem-eng/spanlog/models"
)

// ANSIMode controls color output on the console sink.
type ANSIMode int

const (
	// ANSIAuto colors output when the console is a terminal.
	ANSIAuto ANSIMode = iota
	ANSIAlways
	ANSINever
)

// ParseANSIMode accepts "auto", "always" and "never".
func ParseANSIMode(s string) (ANSIMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ANSIAuto, nil
	case "always", "true", "on":
		return ANSIAlways, nil
	case "never", "false", "off":
		return ANSINever, nil
	}
	return ANSIAuto, &ConfigurationError{Setting: "ansi", Value: s, Err: errBadANSIMode}
}

type LoggerConfig struct {
	Filter     Filter
	FilterSpec string

	Console        io.Writer
	DisableConsole bool
	ANSI           ANSIMode

	LogDir      string
	ProcessName string
	Rotation    Rotation
	QueueSize   int
	DisableFile bool
	Open        OpenFunc

	SpanEvents bool
	OnError    ErrorHandler
	Now        func() time.Time
	Sinks      []Sink
}

type LoggerOption func(*LoggerConfig)

// WithFilter installs a ready-made filter predicate.
func WithFilter(filter Filter) LoggerOption {
	return func(c *LoggerConfig) {
		c.Filter = filter
	}
}

// WithFilterSpec installs the filter described by spec; see ParseFilter.
func WithFilterSpec(spec string) LoggerOption {
	return func(c *LoggerConfig) {
		c.FilterSpec = spec
	}
}

func WithLevel(level models.Level) LoggerOption {
	return WithFilter(LevelFilter(level))
}

func WithConsole(w io.Writer) LoggerOption {
	return func(c *LoggerConfig) {
		c.Console = w
		c.DisableConsole = false
	}
}

func WithoutConsole() LoggerOption {
	return func(c *LoggerConfig) {
		c.DisableConsole = true
	}
}

func WithANSI(mode ANSIMode) LoggerOption {
	return func(c *LoggerConfig) {
		c.ANSI = mode
	}
}

func WithLogDir(dir string) LoggerOption {
	return func(c *LoggerConfig) {
		c.LogDir = dir
		c.DisableFile = false
	}
}

// WithProcessName sets the log file name prefix.
func WithProcessName(name string) LoggerOption {
	return func(c *LoggerConfig) {
		c.ProcessName = name
	}
}

func WithRotation(r Rotation) LoggerOption {
	return func(c *LoggerConfig) {
		c.Rotation = r
	}
}

// WithAsyncBuffer sets the capacity of the file writer queue.
func WithAsyncBuffer(size int) LoggerOption {
	return func(c *LoggerConfig) {
		c.QueueSize = size
	}
}

func WithoutFile() LoggerOption {
	return func(c *LoggerConfig) {
		c.DisableFile = true
	}
}

// WithFileOpener replaces the function used to open log files.
func WithFileOpener(open OpenFunc) LoggerOption {
	return func(c *LoggerConfig) {
		c.Open = open
	}
}

// WithSpanEvents toggles the "close" event emitted when a span exits.
func WithSpanEvents(enabled bool) LoggerOption {
	return func(c *LoggerConfig) {
		c.SpanEvents = enabled
	}
}

func WithErrorHandler(h ErrorHandler) LoggerOption {
	return func(c *LoggerConfig) {
		c.OnError = h
	}
}

func WithClock(now func() time.Time) LoggerOption {
	return func(c *LoggerConfig) {
		c.Now = now
	}
}

// WithSink adds a sink next to the console and file sinks.
func WithSink(sink Sink) LoggerOption {
	return func(c *LoggerConfig) {
		c.Sinks = append(c.Sinks, sink)
	}
}

// core is shared by a Logger and every logger derived from it.
type core struct {
	filter     Filter
	sinks      []Sink
	reporters  []*errorReporter // one per sink
	writer     *RotatingWriter
	spanEvents bool
	now        func() time.Time
}

// Logger fans every enabled event out to its sinks. It is safe for concurrent
// use.
type Logger struct {
	core   *core
	target string
}

// New composes a logger from the console sink, the file sink and any extra
// sinks. The file sink starts a background writer; Close stops it.
func New(options ...LoggerOption) (*Logger, error) {
	cfg := &LoggerConfig{
		Console:    os.Stdout,
		LogDir:     DefaultLogDir,
		QueueSize:  DefaultQueueSize,
		SpanEvents: true,
	}
	for _, opt := range options {
		opt(cfg)
	}

	filter := cfg.Filter
	switch {
	case filter != nil:
	case cfg.FilterSpec == "":
		filter = defaultFilter()
	default:
		f, err := ParseFilter(cfg.FilterSpec)
		if err != nil {
			return nil, err
		}
		filter = f
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	c := &core{
		filter:     filter,
		spanEvents: cfg.SpanEvents,
		now:        cfg.Now,
	}

	if !cfg.DisableConsole && cfg.Console != nil {
		formatter := &ConsoleFormatter{ShowColor: colorEnabled(cfg.ANSI, cfg.Console)}
		c.sinks = append(c.sinks, NewWriterSink("console", cfg.Console, formatter))
	}

	if !cfg.DisableFile {
		c.writer = NewRotatingWriter(WriterConfig{
			Dir:       cfg.LogDir,
			Prefix:    cfg.ProcessName,
			Rotation:  cfg.Rotation,
			QueueSize: cfg.QueueSize,
			Open:      cfg.Open,
			OnError:   cfg.OnError,
			Now:       cfg.Now,
		})
		c.sinks = append(c.sinks, NewFileSink(c.writer, &FileFormatter{}))
	}

	c.sinks = append(c.sinks, cfg.Sinks...)
	for range c.sinks {
		c.reporters = append(c.reporters, newErrorReporter(cfg.OnError))
	}
	return &Logger{core: c}, nil
}

func colorEnabled(mode ANSIMode, w io.Writer) bool {
	switch mode {
	case ANSIAlways:
		return true
	case ANSINever:
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Named returns a logger sharing l's sinks whose events and spans use target
// instead of the caller's package path.
func (l *Logger) Named(target string) *Logger {
	return &Logger{core: l.core, target: target}
}

// Enabled reports whether an event of level from target would be delivered.
func (l *Logger) Enabled(target string, level models.Level) bool {
	return l.core.filter(target, level)
}

// Writer returns the background file writer, or nil when file output is
// disabled.
func (l *Logger) Writer() *RotatingWriter { return l.core.writer }

func (l *Logger) Trace(ctx context.Context, msg string, fields ...models.Field) {
	l.log(ctx, models.LevelTrace, msg, fields)
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...models.Field) {
	l.log(ctx, models.LevelDebug, msg, fields)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...models.Field) {
	l.log(ctx, models.LevelInfo, msg, fields)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...models.Field) {
	l.log(ctx, models.LevelWarn, msg, fields)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...models.Field) {
	l.log(ctx, models.LevelError, msg, fields)
}

// Close drains the file writer and closes the log file. Console output keeps
// working; file-bound records after Close are dropped.
func (l *Logger) Close(ctx context.Context) error {
	if l.core.writer == nil {
		return nil
	}
	return l.core.writer.Close(ctx)
}

func (l *Logger) log(ctx context.Context, level models.Level, msg string, fields []models.Field) {
	loc := callerLocation(callerSkip)
	if l.target != "" {
		loc.Target = l.target
	}
	if !l.core.filter(loc.Target, level) {
		return
	}
	event := models.NewEvent(level, l.core.now(), goroutineID(), loc, msg, fields, SpansFromContext(ctx))
	l.core.dispatch(event)
}

func (l *Logger) emitSpanClose(ctx context.Context, span *models.Span) {
	loc := span.Location()
	if !l.core.filter(loc.Target, span.Level()) {
		return
	}
	now := l.core.now()
	fields := []models.Field{Duration("time.busy", now.Sub(span.Entered()))}
	event := models.NewEvent(span.Level(), now, goroutineID(), loc, "close", fields, SpansFromContext(ctx))
	l.core.dispatch(event)
}

// Emit delivers a prebuilt event to every sink, bypassing the filter.
func (l *Logger) Emit(event *models.Event) {
	l.core.dispatch(event)
}

// dispatch writes event to every sink. A sink whose destination fails stays
// degraded until its next successful write.
func (c *core) dispatch(event *models.Event) {
	for i, sink := range c.sinks {
		r := c.reporters[i]
		err := sink.Write(event)
		var we *WriteError
		switch {
		case err == nil:
			r.restore()
		case errors.As(err, &we):
			r.degrade()
			r.report(err)
		default:
			r.report(err)
		}
	}
}
