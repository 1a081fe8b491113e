// Package trace records what the navigation engine does and how long it takes.
//
// Events are grouped by scope:
//
//   - ScopeSession: lifetime of a navigation session or CLI command
//   - ScopeCheck: checker invocations and snapshot adoption
//   - ScopeQuery: index and hole lookups
//   - ScopeEvent: individual host events (selection, save, jump)
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeCheck, "check")
//	defer span.End("")
//
// Code that finds no tracer in its context gets a disabled span.
package trace
