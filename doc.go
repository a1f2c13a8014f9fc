// Package spanlog renders structured events to two destinations at once: a
// color-coded console stream and a plain, time-rotated log file written by a
// background goroutine. Every event carries the chain of spans open in its
// context.Context.
//
// Features:
//   - Console and file sinks fed by the same events, fault isolated
//   - Span chains rendered as "... outer -> inner" in both destinations
//   - Non-blocking file writer with a bounded, drop-newest queue
//   - One file per run by default, optional minutely/hourly/daily rotation
//   - Graceful drain of queued records on shutdown
//   - Per-target level filters ("warn,github.com/acme/app=debug")
//   - Configuration from YAML and SPANLOG_* environment variables
//
// Usage:
//
//	h, err := spanlog.Initialize(spanlog.WithFilterSpec(os.Getenv("SPANLOG_FILTER")))
//	if err != nil {
//	    fmt.Fprintln(os.Stderr, err)
//	    os.Exit(1)
//	}
//	defer h.Shutdown(context.Background())
//
//	ctx, span := spanlog.Enter(ctx, "load")
//	defer span.Exit()
//	spanlog.Info(ctx, "loading model", spanlog.String("name", name))
package spanlog
