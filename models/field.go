package models

// Field is one structured key/value pair attached to an event or span.
type Field struct {
	Key   string
	Value any
}

// Location identifies where an event or span was emitted.
type Location struct {
	// Target is the Go package path of the emitting code, unless overridden.
	Target string
	File   string
	Line   int
}
