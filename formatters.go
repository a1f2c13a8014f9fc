package spanlog

import (
	"fmt"
	"strconv"

	"github.com/max-chem-eng/spanlog/models"
	"github.com/max-chem-eng/spanlog/pool"
)

// Formatter renders one event into the bytes written by a sink. The returned
// slice is owned by the caller.
type Formatter interface {
	Format(event *models.Event) ([]byte, error)
}

// ConsoleFormatter renders a multi-line, human oriented block:
//
//	INFO  2024-05-01 10:00:00.000CEST 1 main(12)
//	... outer -> inner
//	message key=value
//
// followed by a blank line. Colors are emitted only when ShowColor is set.
type ConsoleFormatter struct {
	ShowColor bool
}

func (cf *ConsoleFormatter) Format(event *models.Event) ([]byte, error) {
	buf := pool.AcquireBuffer()
	defer pool.ReleaseBuffer(buf)

	level := fmt.Sprintf("%-5s", event.Level())
	ts := event.Time().Format(TimeFormat)
	gid := strconv.FormatUint(event.GoroutineID(), 10)
	loc := sourceLocation(event.Location())
	if cf.ShowColor {
		level = paint(ColorFor(event.Level()), level)
		ts = paint(MutedColor, ts)
		gid = paint(MutedColor, gid)
		loc = paint(MutedColor, loc)
	}

	buf.WriteString(level)
	buf.WriteByte(' ')
	buf.WriteString(ts)
	buf.WriteByte(' ')
	buf.WriteString(gid)
	buf.WriteByte(' ')
	buf.WriteString(loc)
	buf.WriteByte('\n')

	buf.WriteString(RenderSpans(event.Spans()))
	buf.WriteByte('\n')

	if err := writeFields(buf, event.Message(), event.Fields()); err != nil {
		return nil, err
	}
	buf.WriteString("\n\n")

	return pool.Bytes(buf), nil
}

// FileFormatter renders an uncolored record for offline parsing:
//
//	[INFO ] 1 2024-05-01 10:00:00.000CEST main(12)
//	... outer -> inner message key=value
type FileFormatter struct{}

func (ff *FileFormatter) Format(event *models.Event) ([]byte, error) {
	buf := pool.AcquireBuffer()
	defer pool.ReleaseBuffer(buf)

	fmt.Fprintf(buf, "[%-5s] %d %s %s\n",
		event.Level(),
		event.GoroutineID(),
		event.Time().Format(TimeFormat),
		sourceLocation(event.Location()),
	)

	buf.WriteString(RenderSpans(event.Spans()))
	buf.WriteByte(' ')

	if err := writeFields(buf, event.Message(), event.Fields()); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')

	return pool.Bytes(buf), nil
}

func sourceLocation(loc models.Location) string {
	return loc.Target + "(" + strconv.Itoa(loc.Line) + ")"
}
