package languages

import g "hilite/internal/grammar"

const jsonString = `"(?:\\.|[^\\"\r\n])*"`

// JSON follows the common Prism json grammar; comments are tolerated.
func JSON() Language {
	return Language{
		Decl: g.Decl{
			Name: "json",
			Rules: []g.RuleDecl{
				g.Rule("property", g.P(`(^|[^\\])`+jsonString+`(?=\s*:)`).AsLookbehind().AsGreedy()),
				g.Rule("string", g.P(`(^|[^\\])`+jsonString+`(?!\s*:)`).AsLookbehind().AsGreedy()),
				g.Rule("comment", g.P(`//.*|/\*[\s\S]*?(?:\*/|$)`).AsGreedy()),
				g.Simple("number", `(?i)-?\b\d+(?:\.\d+)?(?:e[+-]?\d+)?\b`),
				g.Simple("punctuation", `[{}[\],]`),
				g.Simple("operator", `:`),
				g.Simple("boolean", `\b(?:false|true)\b`),
				g.Rule("null", g.P(`\bnull\b`).WithAlias("keyword")),
			},
		},
		Aliases:    []string{"webmanifest"},
		Extensions: []string{".json", ".webmanifest"},
	}
}
