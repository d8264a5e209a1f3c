package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"hilite/internal/diag"
	"hilite/internal/source"
)

func configBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("/home/user/proj/hilite.toml", []byte("[highlight]\nmax_depth = -1\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.CfgInvalidValue,
		source.Span{File: id, Start: 24, End: 26}, "max_depth must be positive").
		WithNote(source.Span{File: id, Start: 0, End: 11}, "in this table"))
	return bag, fs
}

func TestPrettyExactOutput(t *testing.T) {
	bag, fs := configBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true})

	want := "hilite.toml:2:13: ERROR CFG1003: max_depth must be positive\n" +
		" 2 | max_depth = -1\n" +
		"   |             ^~\n" +
		"  note: hilite.toml:1:1: in this table\n"
	if got := buf.String(); got != want {
		t.Errorf("Pretty() =\n%s\nwant:\n%s", got, want)
	}
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	bag, fs := configBag(t)
	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Auto keeps path", PathModeAuto, "/home/user/proj/hilite.toml:2:13"},
		{"Basename only", PathModeBasename, "\nhilite.toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			output := "\n" + buf.String()
			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if strings.Contains(output, "note:") {
				t.Error("notes must be hidden unless ShowNotes is set")
			}
		})
	}
}

func TestPrettyContextAndTabs(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.toml", []byte("a = 1\n\tb = ?\nc = 3\n"))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.CfgParse, source.Span{File: id, Start: 11, End: 12}, "bad value"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1})
	want := "a.toml:2:6: ERROR CFG1001: bad value\n" +
		" 1 | a = 1\n" +
		" 2 |     b = ?\n" +
		"   |         ^\n" +
		" 3 | c = 3\n"
	if got := buf.String(); got != want {
		t.Errorf("Pretty() =\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs := configBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected ANSI escapes, got %q", buf.String())
	}
}
