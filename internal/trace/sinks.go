package trace

import (
	"io"
	"sync"
	"time"
)

// Writer formats every recorded event to w as it arrives.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	start  time.Time
}

// NewWriter creates a Writer. FormatAuto means text.
func NewWriter(w io.Writer, level Level, format Format) *Writer {
	if format == FormatAuto {
		format = FormatText
	}
	return &Writer{w: w, level: level, format: format, start: time.Now()}
}

func (t *Writer) Record(ev Event) {
	if !t.level.Records(ev.Scope) && ev.Kind != KindBeat {
		return
	}
	line := AppendEvent(nil, &ev, t.format, t.start)
	t.mu.Lock()
	defer t.mu.Unlock()
	// ошибки записи трассы не должны ломать подсветку
	_, _ = t.w.Write(line) //nolint:errcheck
}

func (t *Writer) Level() Level { return t.level }

// Ring keeps the last recorded events for a dump after a failed run.
type Ring struct {
	mu     sync.Mutex
	events []Event
	next   int
	filled bool
	level  Level
}

// NewRing keeps up to size events; size <= 0 means DefaultRingSize.
func NewRing(size int, level Level) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{events: make([]Event, size), level: level}
}

func (r *Ring) Record(ev Event) {
	if !r.level.Records(ev.Scope) && ev.Kind != KindBeat {
		return
	}
	r.mu.Lock()
	r.events[r.next] = ev
	r.next++
	if r.next == len(r.events) {
		r.next, r.filled = 0, true
	}
	r.mu.Unlock()
}

func (r *Ring) Level() Level { return r.level }

// Events returns the kept events, oldest first.
func (r *Ring) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.filled {
		return append([]Event(nil), r.events[:r.next]...)
	}
	out := make([]Event, 0, len(r.events))
	out = append(out, r.events[r.next:]...)
	return append(out, r.events[:r.next]...)
}

// Dump writes the kept events to w. Offsets count from the oldest one.
func (r *Ring) Dump(w io.Writer, format Format) error {
	events := r.Events()
	if len(events) == 0 {
		return nil
	}
	var buf []byte
	for i := range events {
		buf = AppendEvent(buf, &events[i], format, events[0].Time)
	}
	_, err := w.Write(buf)
	return err
}

// Tee records every event in each of tracers.
func Tee(level Level, tracers ...Tracer) Tracer {
	return tee{level: level, tracers: tracers}
}

type tee struct {
	level   Level
	tracers []Tracer
}

func (t tee) Record(ev Event) {
	for _, tr := range t.tracers {
		tr.Record(ev)
	}
}

func (t tee) Level() Level { return t.level }
