package grammar_test

import (
	"errors"
	"testing"

	"hilite/internal/grammar"
)

func TestRegistryCrossReferences(t *testing.T) {
	reg := grammar.NewRegistry()
	err := reg.Register(
		grammar.Decl{Name: "md", Rules: []grammar.RuleDecl{
			grammar.Rule("code", grammar.P("(```go\\n)[\\s\\S]*?(?=```)").AsLookbehind().AsGreedy().WithInsideRef("go")),
		}},
		grammar.Decl{Name: "go", Rules: []grammar.RuleDecl{
			grammar.Simple("keyword", `\bfunc\b`),
		}},
	)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	md, ok := reg.Lookup("MD")
	if !ok {
		t.Fatal("lookup must be case-insensitive")
	}
	goG, _ := reg.Lookup("go")
	code, _ := md.Lookup("code")
	if code.Pattern(0).Inside() != goG {
		t.Error("reference resolved to the wrong grammar")
	}

	if err := reg.Alias("golang", "go"); err != nil {
		t.Fatal(err)
	}
	if g, ok := reg.Lookup("golang"); !ok || g != goG {
		t.Error("alias lookup failed")
	}
	if got := reg.AliasesOf("go"); len(got) != 1 || got[0] != "golang" {
		t.Errorf("AliasesOf = %v", got)
	}
	if names := reg.Names(); len(names) != 2 || names[0] != "md" || names[1] != "go" {
		t.Errorf("Names = %v", names)
	}
}

func TestRegistryIsAtomic(t *testing.T) {
	reg := grammar.NewRegistry()
	err := reg.Register(
		grammar.Decl{Name: "ok", Rules: []grammar.RuleDecl{grammar.Simple("a", `a`)}},
		grammar.Decl{Name: "bad", Rules: []grammar.RuleDecl{grammar.Simple("a", `(`)}},
	)
	if !errors.Is(err, grammar.ErrInvalidPattern) {
		t.Fatalf("expected invalid pattern, got %v", err)
	}
	if _, ok := reg.Lookup("ok"); ok {
		t.Error("a failed batch must not publish any grammar")
	}
}

func TestRegistryConflicts(t *testing.T) {
	reg := grammar.NewRegistry()
	decl := grammar.Decl{Name: "go", Rules: []grammar.RuleDecl{grammar.Simple("a", `a`)}}
	if err := reg.Register(decl); err != nil {
		t.Fatal(err)
	}
	err := reg.Register(decl)
	var gerr *grammar.Error
	if !errors.As(err, &gerr) || gerr.Kind != grammar.DuplicateLanguage || gerr.Grammar != "go" {
		t.Errorf("re-registering a name: got %v", err)
	}
	if !errors.Is(err, grammar.ErrDuplicateLanguage) {
		t.Errorf("errors.Is(%v, ErrDuplicateLanguage) = false", err)
	}
	if err := reg.Alias("x", "missing"); err == nil {
		t.Error("alias to unknown grammar must fail")
	}
	if err := reg.Alias("go", "go"); !errors.Is(err, grammar.ErrDuplicateLanguage) {
		t.Errorf("alias shadowing a grammar: got %v", err)
	}
	if err := reg.Register(grammar.Decl{}); err == nil {
		t.Error("unnamed declaration must fail")
	}
}

func TestFingerprintFollowsReferences(t *testing.T) {
	build := func(digits string) (a, b *grammar.Grammar) {
		t.Helper()
		reg := grammar.NewRegistry()
		err := reg.Register(
			grammar.Decl{Name: "a", Rules: []grammar.RuleDecl{
				grammar.Rule("block", grammar.P(`\{[^}]*\}`).WithInsideRef("b")),
				grammar.Rule("group", grammar.P(`\([^)]*\)`).WithInsideRef(grammar.SelfRef)),
			}},
			grammar.Decl{Name: "b", Rules: []grammar.RuleDecl{
				grammar.Simple("num", digits),
				grammar.Rule("back", grammar.P(`<[^>]*>`).WithInsideRef("a")),
			}},
		)
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		a, _ = reg.Lookup("a")
		b, _ = reg.Lookup("b")
		return a, b
	}

	a1, b1 := build(`\d+`)
	a2, b2 := build(`\d+`)
	if a1.Fingerprint() != a2.Fingerprint() || b1.Fingerprint() != b2.Fingerprint() {
		t.Error("fingerprints of mutually referring grammars must be stable")
	}
	a3, b3 := build(`[a-z]+`)
	if b3.Fingerprint() == b1.Fingerprint() {
		t.Error("changed grammar kept its fingerprint")
	}
	if a3.Fingerprint() == a1.Fingerprint() {
		t.Error("fingerprint must change with a referenced grammar")
	}
}
