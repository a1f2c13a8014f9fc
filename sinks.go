package spanlog

import (
	"io"
	"sync"

	"github.com/max-chem-eng/spanlog/models"
)

// Sink renders events and delivers them to one destination. Sinks are fault
// isolated: an error from one sink never stops delivery to the others.
type Sink interface {
	Name() string
	Write(event *models.Event) error
}

// WriterSink formats events and writes each block synchronously to an
// io.Writer. Whole blocks are written under a mutex so concurrent events
// never interleave.
type WriterSink struct {
	name      string
	output    io.Writer
	formatter Formatter
	mu        sync.Mutex
}

func NewWriterSink(name string, output io.Writer, formatter Formatter) *WriterSink {
	if formatter == nil {
		formatter = &ConsoleFormatter{}
	}
	return &WriterSink{
		name:      name,
		output:    output,
		formatter: formatter,
	}
}

func (ws *WriterSink) Name() string { return ws.name }

func (ws *WriterSink) Write(event *models.Event) error {
	data, err := ws.formatter.Format(event)
	if err != nil {
		return &FormattingError{Sink: ws.name, Err: err}
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if _, err := ws.output.Write(data); err != nil {
		return &WriteError{Path: ws.name, Attempt: 1, Dropped: true, Err: err}
	}
	return nil
}

// FileSink formats events and hands them to a RotatingWriter. Write returns
// as soon as the record is queued.
type FileSink struct {
	writer    *RotatingWriter
	formatter Formatter
}

func NewFileSink(writer *RotatingWriter, formatter Formatter) *FileSink {
	if formatter == nil {
		formatter = &FileFormatter{}
	}
	return &FileSink{writer: writer, formatter: formatter}
}

func (fs *FileSink) Name() string { return "file" }

func (fs *FileSink) Write(event *models.Event) error {
	data, err := fs.formatter.Format(event)
	if err != nil {
		return &FormattingError{Sink: fs.Name(), Err: err}
	}
	// Overflow is counted and reported by the writer itself.
	fs.writer.Enqueue(data)
	return nil
}
