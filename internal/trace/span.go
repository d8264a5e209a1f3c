package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seq   atomic.Uint64
	spans atomic.Uint64
)

type ctxKey uint8

const (
	tracerKey ctxKey = iota
	spanKey
)

// WithTracer attaches t to ctx. A nil t detaches tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey, t)
}

// FromContext returns the tracer of ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(tracerKey).(Tracer); ok {
		return t
	}
	return Nop
}

func parentOf(ctx context.Context) uint64 {
	if s, ok := ctx.Value(spanKey).(*Span); ok {
		return s.id
	}
	return 0
}

// Span is an open operation. All methods accept a nil receiver, which is what
// Start returns for a scope the tracer does not record.
type Span struct {
	t      Tracer
	id     uint64
	parent uint64
	scope  Scope
	name   string
	start  time.Time
	attrs  []Attr
}

// Start records the beginning of name under the span active in ctx. The
// returned context carries the new span; for a filtered scope it is ctx
// itself, so children attach to the nearest recorded ancestor.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	t := FromContext(ctx)
	if !t.Level().Records(scope) {
		return ctx, nil
	}
	s := &Span{
		t:      t,
		id:     spans.Add(1),
		parent: parentOf(ctx),
		scope:  scope,
		name:   name,
		start:  time.Now(),
	}
	t.Record(Event{
		Time:   s.start,
		Seq:    seq.Add(1),
		Kind:   KindBegin,
		Scope:  scope,
		Span:   s.id,
		Parent: s.parent,
		Name:   name,
	})
	return context.WithValue(ctx, spanKey, s), s
}

// Attr adds a key-value pair to the end event.
func (s *Span) Attr(key, value string) *Span {
	if s != nil {
		s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	}
	return s
}

// ID returns the span identifier, 0 for a nil span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// End records the end of the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	now := time.Now()
	d := now.Sub(s.start)
	s.t.Record(Event{
		Time:    now,
		Seq:     seq.Add(1),
		Kind:    KindEnd,
		Scope:   s.scope,
		Span:    s.id,
		Parent:  s.parent,
		Name:    s.name,
		Detail:  detail,
		Elapsed: d,
		Attrs:   s.attrs,
	})
	return d
}

// Point records an instant event under the span active in ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Level().Records(scope) {
		return
	}
	t.Record(Event{
		Time:   time.Now(),
		Seq:    seq.Add(1),
		Kind:   KindPoint,
		Scope:  scope,
		Parent: parentOf(ctx),
		Name:   name,
		Detail: detail,
	})
}
