package languages

import g "hilite/internal/grammar"

const (
	tomlKey  = `(?:[\w-]+|'[^'\n\r]*'|"(?:\\.|[^\\"\r\n])*")`
	tomlPath = tomlKey + `(?:\s*\.\s*` + tomlKey + `)*`
)

// TOML highlights configuration files, hilite.toml included.
func TOML() Language {
	return Language{
		Decl: g.Decl{
			Name: "toml",
			Rules: []g.RuleDecl{
				g.Rule("comment", g.P(`#.*`).AsGreedy()),
				g.Rule("table", g.P(`(?m)(^[\t ]*\[\s*(?:\[\s*)?)`+tomlPath+`(?=\s*\])`).
					AsLookbehind().AsGreedy().WithAlias("class-name")),
				g.Rule("key", g.P(`(?m)(^[\t ]*|[{,]\s*)`+tomlPath+`(?=\s*=)`).
					AsLookbehind().AsGreedy().WithAlias("property")),
				g.Rule("string", g.P(`"""(?:\\[\s\S]|[^\\])*?"""|'''[\s\S]*?'''|'[^'\n\r]*'|"(?:\\.|[^\\"\r\n])*"`).AsGreedy()),
				g.Rule("date", g.P(`(?i)\b\d{4}-\d{2}-\d{2}(?:[T\s]\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})?)?\b|\b\d{2}:\d{2}:\d{2}(?:\.\d+)?\b`).
					WithAlias("number")),
				g.Simple("number", `\b0(?:x[\da-zA-Z]+(?:_[\da-zA-Z]+)*|o[0-7]+(?:_[0-7]+)*|b[10]+(?:_[10]+)*)\b|[-+]?\b\d+(?:_\d+)*(?:\.\d+(?:_\d+)*)?(?:[eE][+-]?\d+(?:_\d+)*)?\b|[-+]?\b(?:inf|nan)\b`),
				g.Simple("boolean", `\b(?:false|true)\b`),
				g.Simple("punctuation", `[.,=[\]{}]`),
			},
		},
		Extensions: []string{".toml"},
	}
}

// Text has no rules; everything is plain text.
func Text() Language {
	return Language{
		Decl:       g.Decl{Name: "text"},
		Aliases:    []string{"plain", "txt"},
		Extensions: []string{".txt"},
	}
}
