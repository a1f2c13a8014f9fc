package spanlog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/max-chem-eng/spanlog/models"
)

const (
	spanLeadMarker = "... "
	spanSeparator  = " -> "
)

type spanKey struct{}

// spanFromContext returns the innermost span carried by ctx, or nil.
func spanFromContext(ctx context.Context) *models.Span {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(spanKey{}).(*models.Span)
	return s
}

// SpansFromContext returns the open spans of ctx, root first.
func SpansFromContext(ctx context.Context) []*models.Span {
	return models.SpanStack(spanFromContext(ctx))
}

// RenderSpans renders a span snapshot as "... root -> child -> leaf".
// Only span names are rendered. An empty stack renders as "".
func RenderSpans(stack []*models.Span) string {
	if len(stack) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, s := range stack {
		if i == 0 {
			sb.WriteString(spanLeadMarker)
		} else {
			sb.WriteString(spanSeparator)
		}
		sb.WriteString(s.Name())
	}
	return sb.String()
}

// SpanGuard releases a span entered with Enter or Logger.Span. Exit must be
// called on every path out of the scope, usually with defer.
type SpanGuard struct {
	span   *models.Span
	ctx    context.Context
	logger *Logger
	once   sync.Once
}

// Span returns the guarded span.
func (g *SpanGuard) Span() *models.Span { return g.span }

// Exit closes the span. When span close events are enabled on the owning
// logger, a "close" event carrying time.busy is emitted first. Exit is
// idempotent.
func (g *SpanGuard) Exit() {
	if g == nil {
		return
	}
	g.once.Do(func() {
		if g.logger != nil && g.logger.core.spanEvents {
			g.logger.emitSpanClose(g.ctx, g.span)
		}
		g.span.Close()
	})
}

// Span enters a new span named name under the span carried by ctx. The
// returned context carries the new span; the guard closes it.
func (l *Logger) Span(ctx context.Context, level models.Level, name string, fields ...models.Field) (context.Context, *SpanGuard) {
	return enterSpan(l, ctx, level, name, fields)
}

// Enter enters an INFO span using the installed logger. Before Initialize the
// span is still tracked in the context, but no close event is emitted.
func Enter(ctx context.Context, name string, fields ...models.Field) (context.Context, *SpanGuard) {
	return enterSpan(Default(), ctx, models.LevelInfo, name, fields)
}

func enterSpan(l *Logger, ctx context.Context, level models.Level, name string, fields []models.Field) (context.Context, *SpanGuard) {
	if ctx == nil {
		ctx = context.Background()
	}
	loc := callerLocation(callerSkip)
	now := time.Now
	if l != nil {
		if l.target != "" {
			loc.Target = l.target
		}
		now = l.core.now
	}
	span := models.NewSpan(spanFromContext(ctx), level, name, loc, now(), fields)
	child := context.WithValue(ctx, spanKey{}, span)
	return child, &SpanGuard{span: span, ctx: child, logger: l}
}
