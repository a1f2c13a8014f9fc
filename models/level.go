package models

import (
	"fmt"
	"strings"
)

// Level is the severity of an event or span. Levels are totally ordered from
// least to most severe.
type Level int8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// Levels lists every level in ascending severity.
var Levels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

var levelsMap = map[Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if s, ok := levelsMap[l]; ok {
		return s
	}
	return fmt.Sprintf("LEVEL(%d)", int8(l))
}

// Valid reports whether l is one of the five defined levels.
func (l Level) Valid() bool {
	return l >= LevelTrace && l <= LevelError
}

// ParseLevel parses a case-insensitive level name. "warning" is accepted as an
// alias for WARN.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown level %q", s)
}
