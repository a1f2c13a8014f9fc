package models

import (
	"sync/atomic"
	"time"
)

// Span is one nested unit of execution context. A span is created when a
// scope is entered and marked closed when it exits; its name, fields and
// parent never change.
type Span struct {
	name     string
	level    Level
	fields   []Field
	location Location
	entered  time.Time
	parent   *Span

	closed atomic.Bool
}

// NewSpan creates an open span under parent. parent is nil for a root span.
func NewSpan(parent *Span, level Level, name string, loc Location, entered time.Time, fields []Field) *Span {
	return &Span{
		name:     name,
		level:    level,
		fields:   append([]Field(nil), fields...),
		location: loc,
		entered:  entered,
		parent:   parent,
	}
}

func (s *Span) Name() string          { return s.name }
func (s *Span) Level() Level          { return s.level }
func (s *Span) Location() Location    { return s.location }
func (s *Span) Entered() time.Time    { return s.entered }
func (s *Span) Parent() *Span         { return s.parent }
func (s *Span) Closed() bool          { return s.closed.Load() }
func (s *Span) Fields() []Field       { return append([]Field(nil), s.fields...) }
func (s *Span) Close() (already bool) { return s.closed.Swap(true) }

// SpanStack returns the open spans from the root down to leaf, oldest first.
// Closed spans are left out so a snapshot only ever names live scopes.
func SpanStack(leaf *Span) []*Span {
	depth := 0
	for s := leaf; s != nil; s = s.parent {
		if !s.Closed() {
			depth++
		}
	}
	if depth == 0 {
		return nil
	}

	stack := make([]*Span, depth)
	i := depth - 1
	for s := leaf; s != nil; s = s.parent {
		if s.Closed() {
			continue
		}
		stack[i] = s
		i--
	}
	return stack
}
