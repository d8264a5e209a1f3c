package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"hilite/internal/diag"
	"hilite/internal/grammar"
	"hilite/internal/languages"
	"hilite/internal/lexer"
	"hilite/internal/observ"
	"hilite/internal/render"
	"hilite/internal/testkit"
	"hilite/internal/trace"
)

const goSample = "package main\n\n// entry\nfunc main() {\n\tprintln(\"hi\")\n}\n"

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHighlightFile(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "main.go"), "\ufeff"+strings.ReplaceAll(goSample, "\n", "\r\n"))
	timer := observ.NewTimer()

	fs, res, err := Highlight(context.Background(), path, Options{Timer: timer})
	if err != nil {
		t.Fatal(err)
	}
	if res.Lang != "go" || res.Cached || res.Failed() {
		t.Fatalf("result = %+v", res)
	}
	f := fs.Get(res.FileID)
	if f.Text() != goSample {
		t.Errorf("BOM and CRLF must be normalized, got %q", f.Text())
	}
	if err := testkit.CheckFileStream(res.Tokens, f); err != nil {
		t.Error(err)
	}
	if res.Tokens[0].Name != "keyword" || res.Tokens[0].Text != "package" {
		t.Errorf("first token = %+v", res.Tokens[0])
	}
	if n := len(timer.Report().Phases); n != 2 {
		t.Errorf("expected load and tokenize phases, got %d", n)
	}

	if _, _, err := Highlight(context.Background(), path, Options{Lang: "cobol"}); err == nil {
		t.Error("unknown language must fail")
	}
	if _, _, err := Highlight(context.Background(), filepath.Join(t.TempDir(), "none.go"), Options{}); err == nil {
		t.Error("missing file must fail")
	}
}

func TestHighlightSource(t *testing.T) {
	_, res, err := HighlightSource(context.Background(), "<stdin>.json", []byte(`{"a": 1}`), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Lang != "json" || res.Tokens.Text() != `{"a": 1}` {
		t.Errorf("result = %+v", res)
	}
	_, res, err = HighlightSource(context.Background(), "<stdin>", []byte("x := 1"), Options{Lang: "golang"})
	if err != nil || res.Lang != "go" {
		t.Errorf("forced language: %+v, %v", res, err)
	}
}

func TestRecursionLimitIsDiagnostic(t *testing.T) {
	set, err := languages.NewSet()
	if err != nil {
		t.Fatal(err)
	}
	err = set.Add(languages.Language{Decl: grammar.Decl{Name: "parens", Rules: []grammar.RuleDecl{
		grammar.Rule("group", grammar.P(`(\()[\s\S]*(?=\))`).AsLookbehind().WithInsideRef(grammar.SelfRef)),
	}}})
	if err != nil {
		t.Fatal(err)
	}

	_, res, err := HighlightSource(context.Background(), "x", []byte("((((x))))"),
		Options{Languages: set, Lang: "parens", MaxDepth: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.Tokens != nil || !res.Failed() {
		t.Fatalf("expected a failed result, got %+v", res)
	}
	d := res.Bag.Items()[0]
	if d.Code != diag.TokRecursionLimit || !strings.Contains(d.Message, "group > group > group") {
		t.Errorf("diagnostic = %+v", d)
	}
	if d.Primary.End != 9 {
		t.Errorf("diagnostic must cover the file, got %v", d.Primary)
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "main.go"), goSample)
	cache, err := NewDiskCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	_, first, err := Highlight(context.Background(), path, Options{Disk: cache})
	if err != nil || first.Cached {
		t.Fatalf("first run: %+v, %v", first, err)
	}
	_, second, err := Highlight(context.Background(), path, Options{Disk: cache})
	if err != nil || !second.Cached {
		t.Fatalf("second run must hit the cache: %+v, %v", second, err)
	}
	if diff := cmp.Diff(first.Tokens, second.Tokens); diff != "" {
		t.Errorf("cached tree differs (-fresh +cached):\n%s", diff)
	}

	// другая глубина - другой ключ
	_, third, err := Highlight(context.Background(), path, Options{Disk: cache, MaxDepth: 8})
	if err != nil || third.Cached {
		t.Errorf("MaxDepth must be part of the key: %+v, %v", third, err)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	_, fourth, err := Highlight(context.Background(), path, Options{Disk: cache})
	if err != nil || fourth.Cached {
		t.Errorf("DropAll must empty the cache: %+v, %v", fourth, err)
	}
}

func TestRemapLeavesCacheUntouched(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "main.go"), goSample)
	mem := NewMemCache(4)
	remap := map[string]string{"keyword": "kw"}

	_, first, err := Highlight(context.Background(), path, Options{Memory: mem, Remap: remap})
	if err != nil {
		t.Fatal(err)
	}
	if got := first.Tokens[0].Category(); got != "kw" {
		t.Errorf("remapped category = %q", got)
	}
	_, plain, err := Highlight(context.Background(), path, Options{Memory: mem})
	if err != nil || !plain.Cached {
		t.Fatalf("second run must hit the cache: %+v, %v", plain, err)
	}
	if got := plain.Tokens[0].Category(); got != "keyword" {
		t.Errorf("cached tree carries the remap: %q", got)
	}
}

func TestLexerOptionsResolveDepth(t *testing.T) {
	if got := (&Options{}).lexerOptions().MaxDepth; got != lexer.DefaultMaxDepth {
		t.Errorf("unset depth = %d", got)
	}
	if got := (&Options{MaxDepth: 3}).lexerOptions().MaxDepth; got != 3 {
		t.Errorf("depth = %d", got)
	}
}

func TestStaleDiskEntryIsIgnored(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "a.json"), `[1, 2]`)
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fs, res, err := Highlight(context.Background(), path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	f := fs.Get(res.FileID)
	g, _ := languages.Default().Lookup("json")
	key := cacheKey(f.Hash, g.Name(), g.Fingerprint(), (&Options{}).lexerOptions().MaxDepth)

	bad := newPayload("json", g.Fingerprint(), 3, res.Tokens)
	if err := cache.Put(key, bad); err != nil {
		t.Fatal(err)
	}
	if _, err := bad.Stream(f); err == nil {
		t.Error("size mismatch must be rejected")
	}
	_, again, err := Highlight(context.Background(), path, Options{Disk: cache})
	if err != nil || again.Cached {
		t.Fatalf("stale entry must be retokenized: %+v, %v", again, err)
	}
	var p DiskPayload
	if ok, err := cache.Get(key, &p); !ok || err != nil || p.Size != 6 {
		t.Errorf("entry must be rewritten: ok=%v err=%v size=%d", ok, err, p.Size)
	}
}

type collectSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *collectSink) OnEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func TestHighlightDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), goSample)
	writeFile(t, filepath.Join(dir, "b.json"), `{"k": true}`)
	writeFile(t, filepath.Join(dir, "sub", "c.go"), goSample)
	writeFile(t, filepath.Join(dir, ".git", "d.go"), goSample)
	writeFile(t, filepath.Join(dir, "notes.md"), "# skipped")
	out := t.TempDir()

	sink := &collectSink{}
	var traceBuf strings.Builder
	tr := trace.NewWriter(&traceBuf, trace.LevelCache, trace.FormatText)
	ctx := trace.WithTracer(context.Background(), tr)

	fs, results, err := HighlightDir(ctx, dir, Options{
		Jobs:     1,
		Progress: sink,
		Render:   &RenderOptions{Format: render.FormatHTML, OutDir: out},
	})
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, r := range results {
		rel, _ := filepath.Rel(dir, r.Path)
		got = append(got, filepath.ToSlash(rel)+":"+r.Lang)
		if err := testkit.CheckFileStream(r.Tokens, fs.Get(r.FileID)); err != nil {
			t.Errorf("%s: %v", rel, err)
		}
	}
	if diff := cmp.Diff([]string{"a.go:go", "b.json:json", "sub/c.go:go"}, got); diff != "" {
		t.Errorf("files (-want +got):\n%s", diff)
	}
	if results[0].Cached || !results[2].Cached {
		t.Errorf("identical content must come from memory: %v %v", results[0].Cached, results[2].Cached)
	}
	if results[2].Tokens[0].Span.File != results[2].FileID {
		t.Error("cached tokens must be rebound to their file")
	}

	html, err := os.ReadFile(filepath.Join(out, "sub", "c.go.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(html), `<span class="token keyword">func</span>`) {
		t.Errorf("rendered output:\n%s", html)
	}
	if results[1].Output != filepath.Join(out, "b.json.html") {
		t.Errorf("Output = %q", results[1].Output)
	}

	statuses := map[Status]int{}
	for _, ev := range sink.events {
		if ev.File != "" {
			statuses[ev.Status]++
		}
	}
	if statuses[StatusQueued] != 3 || statuses[StatusDone] != 2 || statuses[StatusCached] != 1 {
		t.Errorf("progress statuses = %v", statuses)
	}
	for _, want := range []string{"highlight-dir", "file:", "memory (hit"} {
		if !strings.Contains(traceBuf.String(), want) {
			t.Errorf("trace misses %q:\n%s", want, traceBuf.String())
		}
	}
}

func TestHighlightDirCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), goSample)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := HighlightDir(ctx, dir, Options{}); err == nil {
		t.Error("cancelled context must stop the run")
	}
}

func TestCacheKey(t *testing.T) {
	var content Digest
	base := cacheKey(content, "go", "fp", 64)
	for name, other := range map[string]Digest{
		"lang":        cacheKey(content, "json", "fp", 64),
		"fingerprint": cacheKey(content, "go", "fp2", 64),
		"depth":       cacheKey(content, "go", "fp", 63),
		"split":       cacheKey(content, "gof", "p", 64),
	} {
		if other == base {
			t.Errorf("%s must change the key", name)
		}
	}
	if cacheKey(content, "go", "fp", 64) != base {
		t.Error("key must be deterministic")
	}
}
