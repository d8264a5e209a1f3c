package lexer_test

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"hilite/internal/grammar"
	"hilite/internal/lexer"
	"hilite/internal/source"
	"hilite/internal/token"
)

// tk builds an expected token; an empty name means plain text.
func tk(name, text string, start uint32, children ...token.Token) token.Token {
	t := token.Token{Name: name, Text: text, Span: source.Span{Start: start, End: start + uint32(len(text))}}
	if children != nil {
		t.Children = children
	}
	return t
}

func aliased(t token.Token, alias string) token.Token {
	t.Alias = alias
	return t
}

func mustTokenize(t *testing.T, text string, g *grammar.Grammar) token.Stream {
	t.Helper()
	s, err := lexer.Tokenize(text, g, lexer.Options{})
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", text, err)
	}
	if err := s.Validate(text, 0); err != nil {
		t.Fatalf("Tokenize(%q) broke the partition: %v", text, err)
	}
	return s
}

func TestCommentClaimsKeyword(t *testing.T) {
	g := grammar.MustBuild(grammar.Decl{Name: "mini", Rules: []grammar.RuleDecl{
		grammar.Simple("comment", `//.*`),
		grammar.Simple("keyword", `\bfunc\b`),
	}})
	got := mustTokenize(t, "// func noop() {}\nfunc x(){}", g)
	want := token.Stream{
		tk("comment", "// func noop() {}", 0),
		tk("", "\n", 17),
		tk("keyword", "func", 18),
		tk("", " x(){}", 22),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestInterfaceMethodChildren(t *testing.T) {
	g := grammar.MustBuild(grammar.Decl{Name: "mini", Rules: []grammar.RuleDecl{
		grammar.Rule("interface-method",
			grammar.P(`(interface\s*\{)[^}]+(?=\})`).AsLookbehind().WithInside(
				grammar.Simple("function", `\w+(?=\()`),
			)),
	}})
	const method = "Read(p []byte) (n int, err error)"
	got := mustTokenize(t, "interface{"+method+"}", g)
	want := token.Stream{
		tk("", "interface{", 0),
		tk("interface-method", method, 10,
			tk("function", "Read", 10),
			tk("", "(p []byte) (n int, err error)", 14),
		),
		tk("", "}", 43),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestPrecedenceIsDeclarationOrder(t *testing.T) {
	tests := []struct {
		name  string
		rules []grammar.RuleDecl
		text  string
		want  token.Stream
	}{
		{
			name:  "shorter first wins",
			rules: []grammar.RuleDecl{grammar.Simple("r1", `ab`), grammar.Simple("r2", `abc`)},
			text:  "abc",
			want:  token.Stream{tk("r1", "ab", 0), tk("", "c", 2)},
		},
		{
			name:  "greedy later rule does not steal a tie",
			rules: []grammar.RuleDecl{grammar.Simple("r1", `ab`), grammar.Rule("r2", grammar.P(`abc`).AsGreedy())},
			text:  "abc",
			want:  token.Stream{tk("r1", "ab", 0), tk("", "c", 2)},
		},
		{
			name:  "longer first wins",
			rules: []grammar.RuleDecl{grammar.Simple("r1", `abc`), grammar.Simple("r2", `ab`)},
			text:  "abc",
			want:  token.Stream{tk("r1", "abc", 0)},
		},
		{
			name:  "earliest start beats order",
			rules: []grammar.RuleDecl{grammar.Simple("r1", `c`), grammar.Simple("r2", `b`)},
			text:  "abc",
			want:  token.Stream{tk("", "a", 0), tk("r2", "b", 1), tk("r1", "c", 2)},
		},
		{
			name: "alternatives keep their order",
			rules: []grammar.RuleDecl{grammar.Rule("num",
				grammar.P(`\d`).WithAlias("digit"),
				grammar.P(`\d+`),
			)},
			text: "123",
			want: token.Stream{aliased(tk("num", "1", 0), "digit"), aliased(tk("num", "2", 1), "digit"), aliased(tk("num", "3", 2), "digit")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := grammar.MustBuild(grammar.Decl{Name: "p", Rules: tt.rules})
			got := mustTokenize(t, tt.text, g)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGreedyExtension(t *testing.T) {
	comments := grammar.Rule("comment",
		grammar.P(`/\*[\s\S]*?\*/`).AsGreedy(),
		grammar.P(`//.*`).AsGreedy(),
	)
	g := grammar.MustBuild(grammar.Decl{Name: "c", Rules: []grammar.RuleDecl{comments, grammar.Simple("word", `\w+`)}})

	t.Run("block comment swallows line comment", func(t *testing.T) {
		got := mustTokenize(t, "/* a // b */ x", g)
		want := token.Stream{tk("comment", "/* a // b */", 0), tk("", " ", 12), tk("word", "x", 13)}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})
	t.Run("line comment swallows block opener", func(t *testing.T) {
		got := mustTokenize(t, "// a /* b\n*/", g)
		want := token.Stream{tk("comment", "// a /* b", 0), tk("", "\n*/", 9)}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	// строка объявлена позже ключевого слова
	for _, greedy := range []bool{true, false} {
		str := grammar.P("`[^`]*`")
		str.Greedy = greedy
		g := grammar.MustBuild(grammar.Decl{Name: "s", Rules: []grammar.RuleDecl{
			grammar.Simple("keyword", `\bfunc\b`),
			grammar.Rule("string", str),
		}})
		got := mustTokenize(t, "x `func` y", g)
		var want token.Stream
		if greedy {
			want = token.Stream{tk("", "x ", 0), tk("string", "`func`", 2), tk("", " y", 8)}
		} else {
			want = token.Stream{tk("", "x `", 0), tk("keyword", "func", 3), tk("", "` y", 7)}
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("greedy=%v (-want +got):\n%s", greedy, diff)
		}
	}
}

func TestLookbehindPrefixIsPlain(t *testing.T) {
	g := grammar.MustBuild(grammar.Decl{Name: "lb", Rules: []grammar.RuleDecl{
		grammar.Rule("value", grammar.P(`(=\s*)\w+`).AsLookbehind()),
		grammar.Simple("key", `^\w+`),
	}})
	got := mustTokenize(t, "k = v", g)
	want := token.Stream{tk("key", "k", 0), tk("", " = ", 1), tk("value", "v", 4)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestEmptyMatchesAreSkipped(t *testing.T) {
	g := grammar.MustBuild(grammar.Decl{Name: "z", Rules: []grammar.RuleDecl{
		grammar.Simple("xs", `x*`),
		grammar.Rule("lb", grammar.P(`(y)`).AsLookbehind()),
	}})
	got := mustTokenize(t, "ayxxb", g)
	want := token.Stream{tk("", "ay", 0), tk("xs", "xx", 2), tk("", "b", 4)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestEmptyAndUnmatchedText(t *testing.T) {
	g := grammar.MustBuild(grammar.Decl{Name: "e", Rules: []grammar.RuleDecl{grammar.Simple("d", `\d+`)}})
	got, err := lexer.Tokenize("", g, lexer.Options{})
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("empty text: %v %v", got, err)
	}
	got = mustTokenize(t, "héllo wörld", g)
	if len(got) != 1 || !got[0].IsPlain() {
		t.Errorf("unmatched text must be one plain token, got %v", got)
	}
	if _, err := lexer.Tokenize("x", nil, lexer.Options{}); err == nil {
		t.Error("nil grammar must be rejected")
	}
}

func TestUnicodeOffsets(t *testing.T) {
	g := grammar.MustBuild(grammar.Decl{Name: "u", Rules: []grammar.RuleDecl{
		grammar.Simple("word", `[^\s(]+(?=\()`),
	}})
	got := mustTokenize(t, "π := ψ(1)", g)
	want := token.Stream{tk("", "π := ", 0), tk("word", "ψ", 6), tk("", "(1)", 8)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func parens() *grammar.Grammar {
	return grammar.MustBuild(grammar.Decl{Name: "parens", Rules: []grammar.RuleDecl{
		grammar.Rule("group", grammar.P(`(\()[\s\S]*(?=\))`).AsLookbehind().WithInsideRef(grammar.SelfRef)),
	}})
}

func TestRecursionTerminates(t *testing.T) {
	g := parens()
	got := mustTokenize(t, "((((x))))", g)
	deepest := 0
	got.Walk(func(depth int, _ *token.Token) bool {
		deepest = max(deepest, depth)
		return true
	})
	if deepest != 4 {
		t.Errorf("deepest level = %d, want 4", deepest)
	}

	// самоссылка без сужения текста
	whole := grammar.MustBuild(grammar.Decl{Name: "whole", Rules: []grammar.RuleDecl{
		grammar.Rule("all", grammar.P(`[\s\S]+`).WithInsideRef(grammar.SelfRef)),
	}})
	got = mustTokenize(t, "abc", whole)
	want := token.Stream{tk("all", "abc", 0, tk("all", "abc", 0))}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestRecursionLimitExceeded(t *testing.T) {
	got, err := lexer.Tokenize("((((x))))", parens(), lexer.Options{MaxDepth: 2})
	if got != nil {
		t.Errorf("no tokens may be returned on error, got %v", got)
	}
	if !errors.Is(err, lexer.ErrRecursionLimit) {
		t.Fatalf("expected recursion limit error, got %v", err)
	}
	var lerr *lexer.Error
	if !errors.As(err, &lerr) {
		t.Fatalf("error %T is not *lexer.Error", err)
	}
	if diff := cmp.Diff([]string{"group", "group", "group"}, lerr.Chain); diff != "" {
		t.Errorf("chain (-want +got):\n%s", diff)
	}
	if lerr.Limit != 2 || !strings.Contains(err.Error(), "group > group > group") {
		t.Errorf("unexpected error %q", err)
	}
}

func TestIdempotentRetokenization(t *testing.T) {
	g := grammar.MustBuild(grammar.Decl{Name: "i", Rules: []grammar.RuleDecl{
		grammar.Rule("call", grammar.P(`\w+\([^)]*\)`).WithInside(
			grammar.Simple("function", `^\w+`),
			grammar.Simple("punctuation", `[()]`),
		)),
		grammar.Simple("number", `\d+`),
	}})
	text := "f(1) + g(h, 2) * 30"
	first := mustTokenize(t, text, g)
	again := mustTokenize(t, first.Leaves().Text(), g)
	if diff := cmp.Diff(first.Leaves(), again.Leaves()); diff != "" {
		t.Errorf("re-tokenization differs (-first +again):\n%s", diff)
	}
}

func TestTokenizeFileCarriesFileID(t *testing.T) {
	fs := source.NewFileSet()
	fs.AddVirtual("a.txt", []byte("zero"))
	id := fs.AddVirtual("b.txt", []byte("one two"))
	g := grammar.MustBuild(grammar.Decl{Name: "w", Rules: []grammar.RuleDecl{grammar.Simple("word", `\w+`)}})
	got, err := lexer.TokenizeFile(fs.Get(id), g, lexer.Options{})
	if err != nil {
		t.Fatal(err)
	}
	for _, tok := range got {
		if tok.Span.File != id {
			t.Errorf("token %q has file %d, want %d", tok.Text, tok.Span.File, id)
		}
	}
}

func TestConcurrentTokenizeSharesGrammar(t *testing.T) {
	g := grammar.MustBuild(grammar.Decl{Name: "c", Rules: []grammar.RuleDecl{
		grammar.Rule("comment", grammar.P(`//.*`).AsGreedy()),
		grammar.Simple("word", `\w+`),
	}})
	text := strings.Repeat("alpha // beta\ngamma ", 50)
	want := mustTokenize(t, text, g)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := lexer.Tokenize(text, g, lexer.Options{})
			if err != nil {
				errs <- err.Error()
				return
			}
			if diff := cmp.Diff(want, got); diff != "" {
				errs <- diff
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

// Anchors and word boundaries are evaluated against the whole level text, not
// against the position where the scan resumed.
func TestAnchorsSeeWholeLevel(t *testing.T) {
	tests := []struct {
		name  string
		rules []grammar.RuleDecl
		text  string
		want  token.Stream
	}{
		{
			name:  "caret matches once",
			rules: []grammar.RuleDecl{grammar.Simple("key", `^\w+`), grammar.Simple("dot", `\.`)},
			text:  "a.b.c",
			want: token.Stream{
				tk("key", "a", 0), tk("dot", ".", 1), tk("", "b", 2), tk("dot", ".", 3), tk("", "c", 4),
			},
		},
		{
			name:  "word boundary inside a word",
			rules: []grammar.RuleDecl{grammar.Simple("b", `b`), grammar.Simple("kw", `\bin\b`)},
			text:  "bin in",
			want:  token.Stream{tk("b", "b", 0), tk("", "in ", 1), tk("kw", "in", 4)},
		},
		{
			name: "lookbehind reads text before the scan position",
			rules: []grammar.RuleDecl{
				grammar.Simple("eq", `=`),
				grammar.Simple("value", `(?<==)\w+`),
			},
			text: "k=v",
			want: token.Stream{tk("", "k", 0), tk("eq", "=", 1), tk("value", "v", 2)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := grammar.MustBuild(grammar.Decl{Name: "a", Rules: tt.rules})
			got := mustTokenize(t, tt.text, g)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Many short tokens between rare matches must not rescan the tail of the text
// for every token.
func TestLongRunsStayLinear(t *testing.T) {
	g := grammar.MustBuild(grammar.Decl{Name: "run", Rules: []grammar.RuleDecl{
		grammar.Simple("keyword", `\bvar\b`),
		grammar.Simple("number", `\d+`),
		grammar.Simple("punctuation", `[,{}]`),
	}})
	text := "var t = {" + strings.Repeat("1, ", 30000) + "1}"
	start := time.Now()
	s := mustTokenize(t, text, g)
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("%d bytes took %v", len(text), elapsed)
	}
	if got := len(s); got < 90000 {
		t.Errorf("got %d tokens", got)
	}
}
