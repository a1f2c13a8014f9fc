package spanlog

import (
	"github.com/muesli/termenv"

	"github.com/max-chem-eng/spanlog/models"
)

// MutedColor is used for decorative console text: timestamps, goroutine ids
// and source locations.
const MutedColor = termenv.ANSIBrightBlack

// ColorFor returns the console color of a level.
func ColorFor(level models.Level) termenv.ANSIColor {
	switch level {
	case models.LevelTrace:
		return termenv.ANSIBrightMagenta
	case models.LevelDebug:
		return termenv.ANSIBrightCyan
	case models.LevelInfo:
		return termenv.ANSIBrightGreen
	case models.LevelWarn:
		return termenv.ANSIYellow
	case models.LevelError:
		return termenv.ANSIRed
	}
	// unreachable for valid levels
	return MutedColor
}

// paint wraps s in the SGR sequence for c followed by a reset.
func paint(c termenv.Color, s string) string {
	return termenv.String(s).Foreground(c).String()
}
