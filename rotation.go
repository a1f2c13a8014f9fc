package spanlog

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Rotation selects when the file writer starts a new log file.
type Rotation int

const (
	// RotationNever keeps one file per process run.
	RotationNever Rotation = iota
	RotationMinutely
	RotationHourly
	RotationDaily
)

func (r Rotation) String() string {
	switch r {
	case RotationNever:
		return "never"
	case RotationMinutely:
		return "minutely"
	case RotationHourly:
		return "hourly"
	case RotationDaily:
		return "daily"
	default:
		return fmt.Sprintf("rotation(%d)", int(r))
	}
}

// ParseRotation accepts the names returned by Rotation.String.
func ParseRotation(s string) (Rotation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "never":
		return RotationNever, nil
	case "minutely":
		return RotationMinutely, nil
	case "hourly":
		return RotationHourly, nil
	case "daily":
		return RotationDaily, nil
	}
	return RotationNever, &ConfigurationError{Setting: "rotation", Value: s, Err: fmt.Errorf("want never, minutely, hourly or daily")}
}

// next returns the first period boundary strictly after t, or the zero time
// for RotationNever.
func (r Rotation) next(t time.Time) time.Time {
	switch r {
	case RotationMinutely:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()+1, 0, 0, t.Location())
	case RotationHourly:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, t.Location())
	case RotationDaily:
		return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
	default:
		return time.Time{}
	}
}

// logFileName returns "<prefix>-<YYYYMMDD-HHMMSSmmm>.log".
func logFileName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s%03d.log", prefix, t.Format(FileTimeFormat), t.Nanosecond()/int(time.Millisecond))
}

func logFilePath(dir, prefix string, t time.Time) string {
	return filepath.Join(dir, logFileName(prefix, t))
}
