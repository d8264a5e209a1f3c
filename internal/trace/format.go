package trace

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format is the output format of a Writer or a ring dump.
type Format uint8

const (
	FormatAuto Format = iota // text, or NDJSON for .ndjson and .jsonl paths
	FormatText
	FormatNDJSON
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format %q (expected auto|text|ndjson)", s)
}

// formatFor resolves FormatAuto from the output path.
func formatFor(f Format, path string) Format {
	if f != FormatAuto {
		return f
	}
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".jsonl") {
		return FormatNDJSON
	}
	return FormatText
}

// AppendEvent appends one formatted line to buf. Text offsets are measured
// from start.
func AppendEvent(buf []byte, ev *Event, format Format, start time.Time) []byte {
	if format == FormatNDJSON {
		return appendJSON(buf, ev)
	}
	return appendText(buf, ev, start)
}

type jsonEvent struct {
	Time    string            `json:"time"`
	Seq     uint64            `json:"seq"`
	Kind    string            `json:"kind"`
	Scope   string            `json:"scope"`
	Span    uint64            `json:"span,omitempty"`
	Parent  uint64            `json:"parent,omitempty"`
	Name    string            `json:"name"`
	Detail  string            `json:"detail,omitempty"`
	Elapsed int64             `json:"elapsed_us,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

func appendJSON(buf []byte, ev *Event) []byte {
	j := jsonEvent{
		Time:    ev.Time.Format(time.RFC3339Nano),
		Seq:     ev.Seq,
		Kind:    ev.Kind.String(),
		Scope:   ev.Scope.String(),
		Span:    ev.Span,
		Parent:  ev.Parent,
		Name:    ev.Name,
		Detail:  ev.Detail,
		Elapsed: ev.Elapsed.Microseconds(),
	}
	if len(ev.Attrs) > 0 {
		j.Attrs = make(map[string]string, len(ev.Attrs))
		for _, a := range ev.Attrs {
			j.Attrs[a.Key] = a.Value
		}
	}
	data, err := json.Marshal(j)
	if err != nil {
		return buf
	}
	return append(append(buf, data...), '\n')
}

// appendText writes
//
//	[   1.234ms]   ← tokenize (main.go) 0.8ms lang=go cached=false
//
// indented by scope.
func appendText(buf []byte, ev *Event, start time.Time) []byte {
	var at time.Duration
	if !start.IsZero() {
		at = ev.Time.Sub(start)
	}
	buf = fmt.Appendf(buf, "[%9.3fms] ", float64(at)/float64(time.Millisecond))
	if ev.Scope > ScopeRun {
		buf = append(buf, strings.Repeat("  ", int(ev.Scope-ScopeRun))...)
	}
	switch ev.Kind {
	case KindBegin:
		buf = append(buf, "→ "...)
	case KindEnd:
		buf = append(buf, "← "...)
	case KindPoint:
		buf = append(buf, "• "...)
	case KindBeat:
		buf = append(buf, "♡ "...)
	}
	buf = append(buf, ev.Name...)
	if ev.Detail != "" {
		buf = append(buf, " ("...)
		buf = append(buf, ev.Detail...)
		buf = append(buf, ')')
	}
	if ev.Kind == KindEnd {
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, float64(ev.Elapsed)/float64(time.Millisecond), 'f', 3, 64)
		buf = append(buf, "ms"...)
	}
	for _, a := range ev.Attrs {
		buf = append(buf, ' ')
		buf = append(buf, a.Key...)
		buf = append(buf, '=')
		buf = append(buf, a.Value...)
	}
	return append(buf, '\n')
}
