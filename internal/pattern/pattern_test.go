package pattern_test

import (
	"testing"

	"hilite/internal/pattern"
)

func TestInputSliceOffsets(t *testing.T) {
	in := pattern.NewInput("αβ := γ")
	sub := in.Slice(2, 8) // "β := "
	if sub.Text() != "β := " {
		t.Fatalf("slice text = %q", sub.Text())
	}
	m := pattern.MustCompile(`:=`, pattern.EngineRegexp2)
	res, ok := m.Match(sub, 0)
	if !ok {
		t.Fatal("expected a match")
	}
	if res.Start != 3 || res.End != 5 {
		t.Errorf("match = [%d,%d), want [3,5)", res.Start, res.End)
	}
}

func TestMatchFromOffset(t *testing.T) {
	for _, engine := range []pattern.Engine{pattern.EngineRegexp2, pattern.EngineRE2} {
		t.Run(string(engine), func(t *testing.T) {
			m := pattern.MustCompile(`func`, engine)
			in := pattern.NewInput("func a() { func() {} }")
			res, ok := m.Match(in, 1)
			if !ok {
				t.Fatal("expected second func")
			}
			if res.Start != 11 || res.End != 15 {
				t.Errorf("got [%d,%d)", res.Start, res.End)
			}
			if _, ok := m.Match(in, 16); ok {
				t.Error("no match expected after the last func")
			}
		})
	}
}

func TestRegexp2SeesPrecedingContext(t *testing.T) {
	m := pattern.MustCompile(`(?<=interface\s*\{)[^}]+(?=\})`, pattern.EngineRegexp2)
	text := "type R interface {\n\tRead(p []byte) (n int, err error)\n}"
	in := pattern.NewInput(text)
	res, ok := m.Match(in, 17)
	if !ok {
		t.Fatal("lookbehind must see text before the starting offset")
	}
	if got := text[res.Start:res.End]; got != "\n\tRead(p []byte) (n int, err error)\n" {
		t.Errorf("matched %q", got)
	}

	// `\b` at the start of a view behaves like a string start
	word := pattern.MustCompile(`\bfunc\b`, pattern.EngineRegexp2)
	if _, ok := word.Match(pattern.NewInput("xfunc"), 1); ok {
		t.Error("full input: no word boundary inside xfunc")
	}
	if _, ok := word.Match(pattern.NewInput("xfunc").Slice(1, 5), 0); !ok {
		t.Error("sliced view: boundary expected at view start")
	}
}

func TestRegexp2ClassesAreASCII(t *testing.T) {
	tests := []struct {
		expr, text string
		want       string
	}{
		{`\w+`, "héllo", "h"},
		{`\d+`, "١٢3", "3"},
		{`\bx\b`, "éx", "x"},
		{`a.b`, "a\rb a b", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			m := pattern.MustCompile(tt.expr, pattern.EngineRegexp2)
			res, ok := m.Match(pattern.NewInput(tt.text), 0)
			got := ""
			if ok {
				got = tt.text[res.Start:res.End]
			}
			if got != tt.want {
				t.Errorf("%s on %q = %q, want %q", tt.expr, tt.text, got, tt.want)
			}
		})
	}
}

func TestEmptyMatchesAreSkipped(t *testing.T) {
	for _, engine := range []pattern.Engine{pattern.EngineRegexp2, pattern.EngineRE2} {
		t.Run(string(engine), func(t *testing.T) {
			m := pattern.MustCompile(`a*`, engine)
			res, ok := m.Match(pattern.NewInput("bbaab"), 0)
			if !ok {
				t.Fatal("expected non-empty match")
			}
			if res.Start != 2 || res.End != 4 {
				t.Errorf("got [%d,%d)", res.Start, res.End)
			}
			if _, ok := m.Match(pattern.NewInput("bbb"), 0); ok {
				t.Error("only empty matches exist; expected none")
			}
		})
	}
}

func TestGroups(t *testing.T) {
	for _, engine := range []pattern.Engine{pattern.EngineRegexp2, pattern.EngineRE2} {
		t.Run(string(engine), func(t *testing.T) {
			m := pattern.MustCompile(`(interface\s*\{)(x)?[^}]+`, engine)
			if m.NumGroups() != 2 {
				t.Fatalf("NumGroups = %d", m.NumGroups())
			}
			res, ok := m.Match(pattern.NewInput("type A interface { M() }"), 0)
			if !ok {
				t.Fatal("expected match")
			}
			s, e, ok := res.Group(1)
			if !ok || s != 7 || e != 18 {
				t.Errorf("group 1 = [%d,%d) ok=%v", s, e, ok)
			}
			if _, _, ok := res.Group(2); ok {
				t.Error("group 2 did not participate")
			}
			if _, _, ok := res.Group(3); ok {
				t.Error("group 3 does not exist")
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		expr   string
		engine pattern.Engine
	}{
		{"", pattern.EngineRegexp2},
		{"(unclosed", pattern.EngineRegexp2},
		{"(unclosed", pattern.EngineRE2},
		{`\w+(?=\()`, pattern.EngineRE2}, // no lookahead in RE2
		{"x", pattern.Engine("pcre")},
	}
	for _, tt := range tests {
		if _, err := pattern.Compile(tt.expr, tt.engine); err == nil {
			t.Errorf("Compile(%q, %s) succeeded, want error", tt.expr, tt.engine)
		}
	}
}

func TestParseEngine(t *testing.T) {
	for in, want := range map[string]pattern.Engine{"": pattern.EngineRegexp2, "RE2": pattern.EngineRE2, "regexp": pattern.EngineRE2} {
		got, err := pattern.ParseEngine(in)
		if err != nil || got != want {
			t.Errorf("ParseEngine(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := pattern.ParseEngine("onig"); err == nil {
		t.Error("expected error")
	}
}
