package spanlog

import (
	"io"

	"github.com/max-chem-eng/spanlog/models"
)

type LoggerBuilder struct {
	options []LoggerOption
}

func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{}
}

func (b *LoggerBuilder) WithLevel(level models.Level) *LoggerBuilder {
	b.options = append(b.options, WithLevel(level))
	return b
}

func (b *LoggerBuilder) WithFilterSpec(spec string) *LoggerBuilder {
	b.options = append(b.options, WithFilterSpec(spec))
	return b
}

func (b *LoggerBuilder) WithConsole(output io.Writer, mode ANSIMode) *LoggerBuilder {
	b.options = append(b.options, WithConsole(output), WithANSI(mode))
	return b
}

func (b *LoggerBuilder) WithSink(sink Sink) *LoggerBuilder {
	b.options = append(b.options, WithSink(sink))
	return b
}

// ToDir writes the file sink into dir, naming files after processName.
func (b *LoggerBuilder) ToDir(dir, processName string) *LoggerBuilder {
	b.options = append(b.options, WithLogDir(dir), WithProcessName(processName))
	return b
}

func (b *LoggerBuilder) WithRotation(r Rotation) *LoggerBuilder {
	b.options = append(b.options, WithRotation(r))
	return b
}

func (b *LoggerBuilder) WithAsyncBuffer(size int) *LoggerBuilder {
	b.options = append(b.options, WithAsyncBuffer(size))
	return b
}

func (b *LoggerBuilder) WithErrorHandler(h ErrorHandler) *LoggerBuilder {
	b.options = append(b.options, WithErrorHandler(h))
	return b
}

func (b *LoggerBuilder) Build() (*Logger, error) {
	return New(b.options...)
}

// Install builds the logger and installs it process-wide; see Initialize.
func (b *LoggerBuilder) Install() (*Handle, error) {
	return Initialize(b.options...)
}
