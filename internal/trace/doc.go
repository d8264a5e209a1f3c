// Package trace records what hilite is doing while it highlights files.
//
// It answers two questions: where the time goes in a large directory run,
// and which file a stuck run is working on.
//
//	hilite render --trace=- --trace-level=file ./src
//
// Spans travel in the context. Start opens a span under the one already in
// the context and returns a context carrying the new span:
//
//	ctx, span := trace.Start(ctx, trace.ScopePhase, "tokenize")
//	defer span.End(path)
//	trace.Point(ctx, trace.ScopeCache, "disk", "miss")
//
// A level names the finest scope that is recorded: phase covers runs and
// phases, file adds one span per file of a directory run, cache adds cache
// lookups. A Session writes events as they happen (stream), keeps the last
// ones for a dump after a failed command (ring), or both. Its heartbeat lists
// the spans still open.
package trace
