package grammar

import (
	"fmt"
	"strings"

	"hilite/internal/pattern"
)

type builder struct {
	resolve func(name string) (*Grammar, bool)
	// декларации на текущем пути вложенности, для обнаружения циклов
	path []*Decl
}

// fill compiles decl into g. g is allocated by the caller so that references
// to it (SelfRef, registry entries) can be taken before it is complete. key
// identifies the declaration on the nesting path.
func (b *builder) fill(g *Grammar, decl, key *Decl, inherited pattern.Engine) error {
	b.path = append(b.path, key)
	defer func() { b.path = b.path[:len(b.path)-1] }()

	engine := decl.Engine
	if engine == "" {
		engine = inherited
	}

	g.name = decl.Name
	g.rules = make([]*CompiledRule, 0, len(decl.Rules))
	g.index = make(map[string]int, len(decl.Rules))
	g.refs, g.inline = nil, nil

	for _, rd := range decl.Rules {
		if strings.TrimSpace(rd.Name) == "" {
			return &Error{Kind: InvalidPattern, Grammar: decl.Name, Index: -1, Detail: "rule has no name"}
		}
		if _, dup := g.index[rd.Name]; dup {
			return &Error{Kind: DuplicateRule, Grammar: decl.Name, Rule: rd.Name, Index: -1}
		}
		if len(rd.Patterns) == 0 {
			return &Error{Kind: InvalidPattern, Grammar: decl.Name, Rule: rd.Name, Index: -1, Detail: "rule has no patterns"}
		}
		rule := &CompiledRule{name: rd.Name, patterns: make([]*Pattern, 0, len(rd.Patterns))}
		for i := range rd.Patterns {
			p, err := b.compilePattern(g, decl, rd.Name, i, &rd.Patterns[i], engine)
			if err != nil {
				return err
			}
			rule.patterns = append(rule.patterns, p)
		}
		g.index[rd.Name] = len(g.rules)
		g.rules = append(g.rules, rule)
	}
	g.local = fingerprint(decl, engine)
	g.fingerprint = g.local
	return nil
}

func (b *builder) compilePattern(g *Grammar, decl *Decl, rule string, idx int, pd *PatternDecl, engine pattern.Engine) (*Pattern, error) {
	m, err := pattern.Compile(pd.Pattern, engine)
	if err != nil {
		return nil, &Error{Kind: InvalidPattern, Grammar: decl.Name, Rule: rule, Index: idx, Cause: err}
	}
	if pd.Lookbehind && m.NumGroups() < 1 {
		return nil, &Error{Kind: InvalidPattern, Grammar: decl.Name, Rule: rule, Index: idx,
			Detail: fmt.Sprintf("lookbehind requires a capture group in %q", pd.Pattern)}
	}
	p := &Pattern{
		matcher:    m,
		alias:      pd.Alias,
		greedy:     pd.Greedy,
		lookbehind: pd.Lookbehind,
	}

	switch {
	case pd.Inside != nil && pd.InsideRef != "":
		return nil, &Error{Kind: InvalidNestedGrammar, Grammar: decl.Name, Rule: rule, Index: idx,
			Detail: "both Inside and InsideRef are set"}
	case pd.Inside != nil:
		nested := *pd.Inside
		if nested.Name == "" {
			nested.Name = decl.Name + "/" + rule
		}
		for _, seen := range b.path {
			if seen == pd.Inside {
				return nil, &Error{Kind: InvalidNestedGrammar, Grammar: decl.Name, Rule: rule, Index: idx,
					Detail: "declaration contains itself; use InsideRef for recursion"}
			}
		}
		inner := &Grammar{}
		if err := b.fill(inner, &nested, pd.Inside, engine); err != nil {
			return nil, &Error{Kind: InvalidNestedGrammar, Grammar: decl.Name, Rule: rule, Index: idx, Cause: err}
		}
		p.inside = inner
		g.inline = append(g.inline, inner)
	case pd.InsideRef == SelfRef:
		p.inside = g
	case pd.InsideRef != "":
		ref, ok := b.resolve(pd.InsideRef)
		if !ok {
			return nil, &Error{Kind: InvalidNestedGrammar, Grammar: decl.Name, Rule: rule, Index: idx,
				Detail: fmt.Sprintf("unknown grammar %q", pd.InsideRef)}
		}
		p.inside = ref
		if ref != g {
			g.refs = append(g.refs, ref)
		}
	}
	return p, nil
}
