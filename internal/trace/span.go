package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

func nextSeq() uint64 { return seqCounter.Add(1) }

// Span is one timed operation. The zero-cost span returned when tracing is
// off accepts every method and records nothing.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

var disabled = &Span{}

// Start opens a span under the innermost span of ctx and returns a context
// in which the new span is innermost.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	f := frameOf(ctx)
	if !enabled(f.tracer) {
		return ctx, disabled
	}
	sp := &Span{
		tracer:  f.tracer,
		id:      spanCounter.Add(1),
		parent:  f.span,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	if f.tracer.Level().Allows(scope) {
		f.tracer.Emit(sp.event(KindSpanBegin, sp.started, ""))
	}
	f.span = sp.id
	return context.WithValue(ctx, frameKey{}, f), sp
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
	}
}

// End closes the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	dur := time.Since(s.started)
	ev := s.event(KindSpanEnd, time.Now(), detail)
	ev.Extra = s.extra
	if s.tracer.Level().Keeps(ev) {
		s.tracer.Emit(ev)
	}
	return dur
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// Fail records err on the span, which keeps it at LevelError. A nil err
// is ignored.
func (s *Span) Fail(err error) *Span {
	if err == nil {
		return s
	}
	return s.WithExtra("error", err.Error())
}

// Point emits an instant event under the innermost span of ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	f := frameOf(ctx)
	if !enabled(f.tracer) {
		return
	}
	ev := &Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: f.span,
		Name:     name,
		Detail:   detail,
	}
	if f.tracer.Level().Keeps(ev) {
		f.tracer.Emit(ev)
	}
}
