package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLevelRecords(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeRun, false},
		{LevelPhase, ScopeRun, true},
		{LevelPhase, ScopePhase, true},
		{LevelPhase, ScopeFile, false},
		{LevelFile, ScopeFile, true},
		{LevelFile, ScopeCache, false},
		{LevelCache, ScopeCache, true},
	}
	for _, tt := range tests {
		if got := tt.level.Records(tt.scope); got != tt.want {
			t.Errorf("%s.Records(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParseFlags(t *testing.T) {
	if l, err := ParseLevel("File"); err != nil || l != LevelFile {
		t.Errorf("ParseLevel(File) = %v, %v", l, err)
	}
	if l, err := ParseLevel(""); err != nil || l != LevelOff {
		t.Errorf("ParseLevel(\"\") = %v, %v", l, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("unknown level must fail")
	}
	if m, err := ParseMode("BOTH"); err != nil || m != ModeBoth {
		t.Errorf("ParseMode(BOTH) = %v, %v", m, err)
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Errorf("ParseFormat(ndjson) = %v, %v", f, err)
	}
	if formatFor(FormatAuto, "run.jsonl") != FormatNDJSON || formatFor(FormatAuto, "-") != FormatText {
		t.Error("auto format must follow the path")
	}
}

func TestSpansNestThroughContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewWriter(&buf, LevelFile, FormatText))

	rctx, run := Start(ctx, ScopeRun, "highlight-dir")
	fctx, file := Start(rctx, ScopeFile, "file:a.go")
	if file.parent != run.ID() {
		t.Errorf("file parent = %d, want %d", file.parent, run.ID())
	}
	Point(fctx, ScopeCache, "memory", "hit") // отфильтровано уровнем
	file.Attr("lang", "go").Attr("cached", "true").End("")
	run.End("1 file")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 events, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], "→ highlight-dir") {
		t.Errorf("begin line = %q", lines[0])
	}
	if !strings.Contains(lines[2], "    ← file:a.go ") || !strings.HasSuffix(lines[2], "ms lang=go cached=true") {
		t.Errorf("file end line = %q", lines[2])
	}
	if !strings.Contains(lines[3], "← highlight-dir (1 file) ") {
		t.Errorf("end line = %q", lines[3])
	}
}

func TestFilteredScopeKeepsParent(t *testing.T) {
	ring := NewRing(8, LevelPhase)
	ctx := WithTracer(context.Background(), ring)
	rctx, run := Start(ctx, ScopeRun, "highlight")
	fctx, file := Start(rctx, ScopeFile, "file:a.go")
	if file != nil || fctx != rctx {
		t.Fatal("a filtered scope must not open a span")
	}
	_, phase := Start(fctx, ScopePhase, "tokenize")
	phase.End("")
	file.Attr("k", "v").End("")
	run.End("")

	events := ring.Events()
	if len(events) != 4 || events[1].Parent != run.ID() {
		t.Errorf("events = %+v", events)
	}
}

func TestWriterNDJSON(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewWriter(&buf, LevelCache, FormatNDJSON))
	ctx, span := Start(ctx, ScopePhase, "tokenize")
	Point(ctx, ScopeCache, "disk", "miss")

	var ev map[string]any
	line, _, _ := strings.Cut(buf.String(), "\n")
	line2 := strings.TrimPrefix(buf.String(), line+"\n")
	if err := json.Unmarshal([]byte(line2), &ev); err != nil {
		t.Fatalf("invalid NDJSON %q: %v", line2, err)
	}
	if ev["kind"] != "point" || ev["scope"] != "cache" || ev["detail"] != "miss" || ev["parent"] != float64(span.ID()) {
		t.Errorf("event = %v", ev)
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRing(3, LevelCache)
	ctx := WithTracer(context.Background(), ring)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ctx, ScopeCache, name, "")
	}
	var names []string
	for _, ev := range ring.Events() {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ","); got != "c,d,e" {
		t.Errorf("Events = %s, want c,d,e", got)
	}

	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Errorf("Dump:\n%s", buf.String())
	}
}

func TestSessionDumpsRingOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.trace")
	s, err := Open(Config{Level: LevelPhase, Mode: ModeRing, Path: path})
	if err != nil {
		t.Fatal(err)
	}
	ctx := WithTracer(context.Background(), s)
	_, span := Start(ctx, ScopePhase, "tokenize")
	span.End("main.go")
	if err := s.Close(true); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "trace: last events before failure:\n") || strings.Count(out, "\n") != 3 {
		t.Errorf("dump:\n%s", out)
	}

	var stderr bytes.Buffer
	quiet, err := Open(Config{Level: LevelPhase, Mode: ModeRing, Stderr: &stderr})
	if err != nil {
		t.Fatal(err)
	}
	Start(WithTracer(context.Background(), quiet), ScopeRun, "highlight")
	if err := quiet.Close(false); err != nil || stderr.Len() != 0 {
		t.Errorf("a successful run must not dump: %q, %v", stderr.String(), err)
	}
}

func TestSessionHeartbeatNamesOpenSpans(t *testing.T) {
	var buf syncBuffer
	s, err := Open(Config{Level: LevelFile, Mode: ModeStream, Stderr: &buf, Heartbeat: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	ctx := WithTracer(context.Background(), s)
	ctx, run := Start(ctx, ScopeRun, "highlight-dir")
	_, file := Start(ctx, ScopeFile, "file:slow.go")
	if got := strings.Join(s.Busy(), " > "); got != "highlight-dir > file:slow.go" {
		t.Errorf("Busy = %q", got)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(buf.String(), "open=highlight-dir > file:slow.go") && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	file.End("")
	run.End("")
	if err := s.Close(false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "♡ heartbeat") {
		t.Errorf("no heartbeat in:\n%s", buf.String())
	}
	if len(s.Busy()) != 0 {
		t.Errorf("spans left open: %v", s.Busy())
	}
}

func TestOffSessionIsInert(t *testing.T) {
	s, err := Open(Config{Level: LevelOff, Path: filepath.Join(t.TempDir(), "never")})
	if err != nil {
		t.Fatal(err)
	}
	ctx := WithTracer(context.Background(), s)
	if _, sp := Start(ctx, ScopeRun, "x"); sp != nil || sp.End("") != 0 {
		t.Error("spans of an off session must be nil")
	}
	if err := s.Close(true); err != nil {
		t.Error(err)
	}
	if FromContext(context.Background()) != Nop {
		t.Error("missing tracer must be Nop")
	}
}
