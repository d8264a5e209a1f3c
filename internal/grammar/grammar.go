package grammar

import (
	"hilite/internal/pattern"
)

// Pattern is one compiled alternative of a rule.
type Pattern struct {
	matcher    pattern.Matcher
	alias      string
	greedy     bool
	lookbehind bool
	inside     *Grammar
}

// Matcher returns the compiled expression.
func (p *Pattern) Matcher() pattern.Matcher { return p.matcher }

// Alias returns the display category override, or "".
func (p *Pattern) Alias() string { return p.alias }

// Greedy reports whether the match may extend over text claimed by
// earlier-declared rules.
func (p *Pattern) Greedy() bool { return p.greedy }

// Lookbehind reports whether capture group 1 is a non-emitted prefix.
func (p *Pattern) Lookbehind() bool { return p.lookbehind }

// Inside returns the nested grammar, or nil.
func (p *Pattern) Inside() *Grammar { return p.inside }

func (p *Pattern) String() string { return p.matcher.String() }

// CompiledRule is a named, ordered set of compiled alternatives.
type CompiledRule struct {
	name     string
	patterns []*Pattern
}

func (r *CompiledRule) Name() string { return r.name }

// Len returns the number of alternatives.
func (r *CompiledRule) Len() int { return len(r.patterns) }

// Pattern returns alternative i in declared order.
func (r *CompiledRule) Pattern(i int) *Pattern { return r.patterns[i] }

// Grammar is an immutable ordered list of rules.
type Grammar struct {
	name        string
	rules       []*CompiledRule
	index       map[string]int
	local       string     // digest of the declaration alone
	refs        []*Grammar // grammars named by InsideRef, $self excluded
	inline      []*Grammar // grammars declared by Inside
	fingerprint string
}

func (g *Grammar) Name() string { return g.name }

// Len returns the number of rules.
func (g *Grammar) Len() int { return len(g.rules) }

// At returns rule i in precedence order.
func (g *Grammar) At(i int) *CompiledRule { return g.rules[i] }

// Rules returns a copy of the rules in precedence order. Mutating the returned
// slice does not affect the grammar.
func (g *Grammar) Rules() []*CompiledRule {
	out := make([]*CompiledRule, len(g.rules))
	copy(out, g.rules)
	return out
}

// Lookup finds a rule by name.
func (g *Grammar) Lookup(name string) (*CompiledRule, bool) {
	i, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return g.rules[i], true
}

// Fingerprint is a stable digest of the declaration the grammar was built
// from, including the grammars it refers to by name.
func (g *Grammar) Fingerprint() string { return g.fingerprint }

// Build validates decl and returns the compiled grammar. References by name
// other than SelfRef are rejected; use a Registry to resolve them.
func Build(decl Decl) (*Grammar, error) {
	b := builder{resolve: func(string) (*Grammar, bool) { return nil, false }}
	g := &Grammar{}
	if err := b.fill(g, &decl, &decl, pattern.DefaultEngine); err != nil {
		return nil, err
	}
	seal(g)
	return g, nil
}

// MustBuild is like Build but panics on error.
func MustBuild(decl Decl) *Grammar {
	g, err := Build(decl)
	if err != nil {
		panic(err)
	}
	return g
}
