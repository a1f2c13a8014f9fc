package models

import "time"

// Event is one discrete log record. It is immutable after NewEvent returns and
// may be read concurrently by every sink.
type Event struct {
	level       Level
	timestamp   time.Time
	goroutineID uint64
	location    Location
	message     string
	fields      []Field
	spans       []*Span
}

// NewEvent builds an event. fields and spans are copied.
func NewEvent(level Level, ts time.Time, goroutineID uint64, loc Location, msg string, fields []Field, spans []*Span) *Event {
	return &Event{
		level:       level,
		timestamp:   ts,
		goroutineID: goroutineID,
		location:    loc,
		message:     msg,
		fields:      append([]Field(nil), fields...),
		spans:       append([]*Span(nil), spans...),
	}
}

func (e *Event) Level() Level        { return e.level }
func (e *Event) Time() time.Time     { return e.timestamp }
func (e *Event) GoroutineID() uint64 { return e.goroutineID }
func (e *Event) Location() Location  { return e.location }
func (e *Event) Message() string     { return e.message }

// Fields returns a copy of the event's fields in the order they were given.
func (e *Event) Fields() []Field { return append([]Field(nil), e.fields...) }

// Spans returns a copy of the span snapshot, root first.
func (e *Event) Spans() []*Span { return append([]*Span(nil), e.spans...) }
