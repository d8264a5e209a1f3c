package grammar

import "hilite/internal/pattern"

// SelfRef used as PatternDecl.InsideRef refers to the grammar declaring the rule.
const SelfRef = "$self"

// Decl is the static declaration of a grammar.
type Decl struct {
	Name   string
	Engine pattern.Engine // empty means inherited or pattern.DefaultEngine
	Rules  []RuleDecl
}

// RuleDecl declares one named rule with ordered alternatives.
type RuleDecl struct {
	Name     string
	Patterns []PatternDecl
}

// PatternDecl declares one alternative of a rule.
type PatternDecl struct {
	Pattern string
	// Alias replaces the rule name as the display category.
	Alias string
	// Greedy lets the match extend over text claimed by earlier-declared rules.
	Greedy bool
	// Lookbehind marks the first capture group as a prefix that must match but
	// is not part of the token.
	Lookbehind bool
	// Inside is a nested grammar owned by this pattern.
	Inside *Decl
	// InsideRef names a registered grammar (or SelfRef) used as nested grammar.
	InsideRef string
}

// Rule is shorthand for a RuleDecl.
func Rule(name string, patterns ...PatternDecl) RuleDecl {
	return RuleDecl{Name: name, Patterns: patterns}
}

// P declares a plain pattern alternative.
func P(expr string) PatternDecl {
	return PatternDecl{Pattern: expr}
}

// Simple declares a rule with a single plain pattern.
func Simple(name, expr string) RuleDecl {
	return Rule(name, P(expr))
}

// WithAlias returns a copy of p with the alias set.
func (p PatternDecl) WithAlias(alias string) PatternDecl {
	p.Alias = alias
	return p
}

// AsGreedy returns a copy of p marked greedy.
func (p PatternDecl) AsGreedy() PatternDecl {
	p.Greedy = true
	return p
}

// AsLookbehind returns a copy of p whose first group is a lookbehind prefix.
func (p PatternDecl) AsLookbehind() PatternDecl {
	p.Lookbehind = true
	return p
}

// WithInside returns a copy of p that owns the nested grammar declaration.
func (p PatternDecl) WithInside(rules ...RuleDecl) PatternDecl {
	p.Inside = &Decl{Rules: rules}
	return p
}

// WithInsideRef returns a copy of p that tokenizes its match with a named grammar.
func (p PatternDecl) WithInsideRef(name string) PatternDecl {
	p.InsideRef = name
	return p
}
