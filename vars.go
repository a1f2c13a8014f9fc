package spanlog

import "github.com/max-chem-eng/spanlog/models"

var (
	// TimeFormat is the event timestamp layout used by both formatters.
	TimeFormat = "2006-01-02 15:04:05.000MST"
	// FileTimeFormat is the timestamp layout embedded in log file names, before
	// the millisecond suffix.
	FileTimeFormat = "20060102-150405"
)

// defaults

const (
	DefaultLogDir    = ".logs"
	DefaultQueueSize = 8192
)

func defaultFilter() Filter {
	return LevelFilter(models.LevelInfo)
}
