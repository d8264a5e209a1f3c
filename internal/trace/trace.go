package trace

import (
	"fmt"
	"strings"
	"time"
)

// Scope is the granularity of an event. Lower scopes are coarser.
type Scope uint8

const (
	ScopeRun   Scope = iota + 1 // one driver call: a file, stdin or a directory
	ScopePhase                  // load, tokenize, render
	ScopeFile                   // one file of a directory run
	ScopeCache                  // memory and disk cache lookups
)

var scopeNames = [...]string{ScopeRun: "run", ScopePhase: "phase", ScopeFile: "file", ScopeCache: "cache"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return fmt.Sprintf("scope(%d)", s)
}

// Level is the finest scope a tracer records.
type Level uint8

const (
	LevelOff   Level = 0
	LevelPhase       = Level(ScopePhase)
	LevelFile        = Level(ScopeFile)
	LevelCache       = Level(ScopeCache)
)

var levelNames = map[string]Level{"off": LevelOff, "phase": LevelPhase, "file": LevelFile, "cache": LevelCache}

func (l Level) String() string {
	if l == LevelOff {
		return "off"
	}
	return Scope(l).String()
}

// ParseLevel accepts off, phase, file and cache; an empty string is off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	if l, ok := levelNames[s]; ok {
		return l, nil
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (expected off|phase|file|cache)", s)
}

// Records reports whether events of scope pass the level.
func (l Level) Records(scope Scope) bool {
	return l != LevelOff && scope <= Scope(l)
}

// Kind is the type of an event.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindPoint
	KindBeat // heartbeat
)

func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindBeat:
		return "heartbeat"
	}
	return "unknown"
}

// Attr is an ordered key-value pair attached to an event.
type Attr struct {
	Key, Value string
}

// Event is one trace record.
type Event struct {
	Time   time.Time
	Seq    uint64
	Kind   Kind
	Scope  Scope
	Span   uint64 // 0 for points and heartbeats
	Parent uint64
	Name   string // "tokenize", "file:src/main.go", "disk"
	Detail string
	// Elapsed is the span duration, set on KindEnd.
	Elapsed time.Duration
	Attrs   []Attr
}

// Tracer receives events. Implementations must be safe for concurrent use.
type Tracer interface {
	Record(ev Event)
	Level() Level
}

type nop struct{}

func (nop) Record(Event) {}
func (nop) Level() Level { return LevelOff }

// Nop records nothing.
var Nop Tracer = nop{}
