package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"
)

// DefaultRingSize is the ring capacity when Config.RingSize is unset.
const DefaultRingSize = 4096

// Mode selects where a Session keeps events.
type Mode uint8

const (
	ModeStream Mode = iota + 1 // write every event to the output
	ModeRing                   // keep the last events, dump them on failure
	ModeBoth
)

func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	}
	return "unknown"
}

// ParseMode converts a flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{ModeStream, ModeRing, ModeBoth} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return ModeStream, fmt.Errorf("invalid trace mode %q (expected stream|ring|both)", s)
}

// Config describes a tracing session.
type Config struct {
	Level  Level
	Mode   Mode
	Format Format
	// Path receives the stream and the ring dump; "" and "-" mean Stderr.
	Path string
	// Stderr defaults to os.Stderr.
	Stderr    io.Writer
	RingSize  int
	Heartbeat time.Duration // 0 disables heartbeats
}

// Session is an open trace output. It is the Tracer to attach to contexts;
// Close stops the heartbeat, dumps the ring of a failed run and closes the
// output file.
type Session struct {
	Tracer
	out    io.Writer
	file   *os.File
	format Format
	ring   *Ring

	mu   sync.Mutex
	open map[uint64]string // незакрытые спаны, для heartbeat

	stop chan struct{}
	done chan struct{}
}

// Open starts a session. With LevelOff it returns a session around Nop.
func Open(cfg Config) (*Session, error) {
	s := &Session{
		Tracer: Nop,
		out:    cfg.Stderr,
		format: formatFor(cfg.Format, cfg.Path),
		open:   make(map[uint64]string),
	}
	if s.out == nil {
		s.out = os.Stderr
	}
	if cfg.Level == LevelOff {
		return s, nil
	}
	if cfg.Path != "" && cfg.Path != "-" {
		f, err := os.Create(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace output: %w", err)
		}
		s.file, s.out = f, f
	}

	var sinks []Tracer
	if cfg.Mode == ModeStream || cfg.Mode == ModeBoth {
		sinks = append(sinks, NewWriter(s.out, cfg.Level, s.format))
	}
	if cfg.Mode == ModeRing || cfg.Mode == ModeBoth {
		s.ring = NewRing(cfg.RingSize, cfg.Level)
		sinks = append(sinks, s.ring)
	}
	if len(sinks) == 0 {
		return nil, errors.Join(fmt.Errorf("unknown trace mode %v", cfg.Mode), s.closeFile())
	}
	s.Tracer = Tee(cfg.Level, sinks...)

	if cfg.Heartbeat > 0 {
		s.stop, s.done = make(chan struct{}), make(chan struct{})
		go s.beat(cfg.Heartbeat)
	}
	return s, nil
}

// Record tracks open spans for the heartbeat and forwards ev.
func (s *Session) Record(ev Event) {
	switch ev.Kind {
	case KindBegin:
		s.mu.Lock()
		s.open[ev.Span] = ev.Name
		s.mu.Unlock()
	case KindEnd:
		s.mu.Lock()
		delete(s.open, ev.Span)
		s.mu.Unlock()
	}
	s.Tracer.Record(ev)
}

// Busy returns the names of the open spans in start order.
func (s *Session) Busy() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint64, 0, len(s.open))
	for id := range s.open {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = s.open[id]
	}
	return names
}

// beat records a heartbeat listing the open spans. Beats that keep naming
// the same file point at a grammar stuck backtracking on it.
func (s *Session) beat(every time.Duration) {
	defer close(s.done)
	tick := time.NewTicker(every)
	defer tick.Stop()
	for n := 1; ; n++ {
		select {
		case <-s.stop:
			return
		case now := <-tick.C:
			s.Tracer.Record(Event{
				Time:   now,
				Seq:    seq.Add(1),
				Kind:   KindBeat,
				Scope:  ScopeRun,
				Name:   "heartbeat",
				Detail: fmt.Sprintf("#%d", n),
				Attrs:  []Attr{{Key: "open", Value: strings.Join(s.Busy(), " > ")}},
			})
		}
	}
}

// Close ends the session. When failed is set and events are kept in a ring,
// they are written to the output first.
func (s *Session) Close(failed bool) error {
	if s.stop != nil {
		close(s.stop)
		<-s.done
		s.stop = nil
	}
	var errs []error
	if failed && s.ring != nil {
		_, err := io.WriteString(s.out, "trace: last events before failure:\n")
		errs = append(errs, err, s.ring.Dump(s.out, s.format))
	}
	errs = append(errs, s.closeFile())
	return errors.Join(errs...)
}

func (s *Session) closeFile() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
