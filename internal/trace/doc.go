// Package trace records what the wstok driver is doing.
//
// A Tracer receives Events. Spans (Begin / End) bracket units of work: the
// whole command, one file, or one stage of a file (load, tokenize, render).
// Tracers travel in a context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "file:notes.txt", 0)
//	defer span.End("")
//
// Implementations:
//
//   - Nop: tracing disabled, zero cost
//   - StreamTracer: writes each event as it happens (text or NDJSON)
//   - RingTracer: keeps the last N events in memory for a dump on failure
//   - MultiTracer: fans out to several tracers
//
// Verbosity is a Level; LevelPhase shows the driver and file spans,
// LevelDetail adds per-stage spans and LevelDebug everything.
package trace
