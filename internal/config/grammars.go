package config

import (
	"errors"
	"fmt"
	"strings"

	"hilite/internal/diag"
	"hilite/internal/grammar"
	"hilite/internal/languages"
	"hilite/internal/pattern"
	"hilite/internal/render"
	"hilite/internal/source"
)

// Languages builds the language set: bundled grammars, then the user
// grammars, extension overrides and the fallback language. A grammar that
// fails to build, or whose name or alias is already taken, is reported and left
// out; the rest are still registered.
func (c *Config) Languages(r diag.Reporter) (*languages.Set, error) {
	v := c.validator(r)
	langs := v.userLanguages(c)

	for {
		trial, err := languages.NewSet()
		if err != nil {
			return nil, err
		}
		err = trial.Add(langs...)
		if err == nil {
			break
		}
		var gerr *grammar.Error
		if !errors.As(err, &gerr) {
			return nil, fmt.Errorf("register user grammars: %w", err)
		}
		v.grammarError(gerr)
		rest := without(langs, gerr.Grammar)
		if len(rest) == len(langs) {
			return nil, fmt.Errorf("register user grammars: %w", err)
		}
		langs = rest
	}

	set, err := languages.NewSet()
	if err != nil {
		return nil, err
	}
	if err := set.Add(langs...); err != nil {
		return nil, fmt.Errorf("register user grammars: %w", err)
	}
	for ext, lang := range c.Extensions {
		if err := set.AddExtension(ext, lang); err != nil {
			diag.ReportError(r, diag.CfgUnknownLang, v.find(0, "[extensions]", ext), err.Error())
		}
	}
	if lang := c.Highlight.DefaultLanguage; lang != "" {
		if err := set.SetFallback(lang); err != nil {
			diag.ReportError(r, diag.CfgUnknownLang, v.keySpan([]string{"highlight", "default_language", lang}),
				fmt.Sprintf("default_language: %v", err))
		}
	}
	return set, nil
}

// Theme returns the default ANSI theme with the [theme] overrides applied.
func (c *Config) Theme(r diag.Reporter) *render.Theme {
	v := c.validator(r)
	t := render.DefaultTheme()
	for category, color := range c.Colors {
		if err := t.Set(category, color); err != nil {
			diag.ReportError(r, diag.CfgInvalidColor, v.find(0, "[theme]", category), err.Error())
		}
	}
	return t
}

func (c *Config) validator(r diag.Reporter) *validator {
	return &validator{f: c.src, r: r}
}

// userLanguages converts [[grammar]] entries. Entries without a name or rules
// are reported and skipped, as are names declared twice.
func (v *validator) userLanguages(c *Config) []languages.Language {
	seen := make(map[string]bool, len(c.Grammars))
	var out []languages.Language
	for _, gc := range c.Grammars {
		name := strings.TrimSpace(gc.Name)
		switch {
		case name == "":
			diag.ReportError(v.r, diag.GrmEmpty, v.find(0, "[[grammar]]"), "grammar without a name")
			continue
		case seen[strings.ToLower(name)]:
			diag.ReportError(v.r, diag.GrmDuplicateLanguage, v.grammarSpan(name),
				fmt.Sprintf("grammar %q declared twice", name))
			continue
		case len(gc.Rules) == 0:
			diag.ReportError(v.r, diag.GrmEmpty, v.grammarSpan(name),
				fmt.Sprintf("grammar %q has no rules", name))
			continue
		}
		seen[strings.ToLower(name)] = true

		engine := gc.Engine
		if engine == "" {
			engine = c.Highlight.Engine
		}
		e, err := pattern.ParseEngine(engine)
		if err != nil {
			diag.ReportError(v.r, diag.CfgInvalidEngine, v.find(int(v.grammarSpan(name).End), "engine"), err.Error())
			continue
		}
		out = append(out, languages.Language{
			Decl:       grammar.Decl{Name: name, Engine: e, Rules: convertRules(gc.Rules)},
			Aliases:    nonBlank(gc.Aliases),
			Extensions: nonBlank(gc.Extensions),
		})
	}
	return out
}

func convertRules(rules []RuleConfig) []grammar.RuleDecl {
	out := make([]grammar.RuleDecl, 0, len(rules))
	for _, rc := range rules {
		rd := grammar.RuleDecl{Name: rc.Name, Patterns: make([]grammar.PatternDecl, 0, len(rc.Patterns))}
		for _, pc := range rc.Patterns {
			pd := grammar.PatternDecl{
				Pattern:    pc.Pattern,
				Alias:      pc.Alias,
				Greedy:     pc.Greedy,
				Lookbehind: pc.Lookbehind,
				InsideRef:  pc.InsideRef,
			}
			if len(pc.Inside) > 0 {
				pd.Inside = &grammar.Decl{Rules: convertRules(pc.Inside)}
			}
			rd.Patterns = append(rd.Patterns, pd)
		}
		out = append(out, rd)
	}
	return out
}

// grammarError reports the innermost cause of a failed user grammar and
// points at the rule that declared it.
func (v *validator) grammarError(err *grammar.Error) {
	root, chain := err.Root()
	code := diag.GrmInvalidPattern
	switch root.Kind {
	case grammar.DuplicateRule:
		code = diag.GrmDuplicateRule
	case grammar.InvalidNestedGrammar:
		code = diag.GrmInvalidNestedGrammar
	case grammar.DuplicateLanguage:
		code = diag.GrmDuplicateLanguage
	}

	sp := v.grammarSpan(err.Grammar)
	for _, rule := range chain {
		if rule == "" {
			continue
		}
		if next := v.find(int(sp.End), quote(rule)); !next.Empty() {
			sp = next
		}
	}
	msg := err.Error()
	if len(chain) > 1 {
		msg = fmt.Sprintf("%s (rule chain %s)", msg, strings.Join(chain, " > "))
	}
	diag.ReportError(v.r, code, sp, msg)
}

// grammarSpan locates the quoted grammar name.
func (v *validator) grammarSpan(name string) source.Span {
	return v.find(0, "[[grammar]]", quote(name))
}

func quote(s string) string {
	return `"` + s + `"`
}

func nonBlank(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if strings.Trim(s, ". \t") != "" {
			out = append(out, s)
		}
	}
	return out
}

func without(langs []languages.Language, name string) []languages.Language {
	out := langs[:0:0]
	for _, l := range langs {
		if !strings.EqualFold(l.Decl.Name, name) {
			out = append(out, l)
		}
	}
	return out
}
