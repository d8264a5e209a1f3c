package languages

import g "hilite/internal/grammar"

const (
	goKeywords = `\b(?:break|default|func|interface|select|case|defer|go|map|struct|chan|else|goto|package|switch|const|fallthrough|if|range|type|continue|for|import|return|var|any|comparable|constraints)\b`
	goTypes    = `\b(?:bool|byte|complex64|complex128|error|float32|float64|int|int8|int16|int32|int64|rune|string|uint|uint8|uint16|uint32|uint64|uintptr)\b`
	goBuiltins = `\b(?:append|cap|close|complex|copy|delete|imag|len|make|new|panic|print|println|real|recover)\b`
	goIdent    = `[a-zA-Z_]\w*`
)

// Go is the grammar used by the site for Go code blocks.
func Go() Language {
	return Language{
		Decl: g.Decl{
			Name: "go",
			Rules: []g.RuleDecl{
				g.Rule("comment",
					g.P(`/\*[\s\S]*?\*/`).AsGreedy(),
					g.P(`//.*`).AsGreedy(),
				),
				g.Rule("string",
					g.P("`[^`]*`").AsGreedy().WithAlias("string"),
					g.P(`"(?:\\.|[^"\\])*"`).AsGreedy().WithAlias("string"),
				),
				g.Simple("keyword", goKeywords),
				g.Simple("type", goTypes),
				g.Simple("function", goBuiltins),
				g.Simple("boolean", `\b(?:true|false)\b`),
				g.Simple("nil", `\bnil\b`),
				g.Rule("number",
					g.P(`\b0[xX][\da-fA-F]+i?\b`),
					g.P(`\b0[oO]?[0-7]+i?\b`),
					g.P(`\b0[bB][01]+i?\b`),
					g.P(`\b\d+(?:\.\d+)?(?:[eE][+-]?\d+)?i?\b`),
				),
				g.Rule("operator",
					g.P(`:=`).WithAlias("operator-assignment"),
					g.P(`<-`).WithAlias("operator-channel-left"),
					g.P(`->`).WithAlias("operator-channel-right"),
					g.P(`[+\-*/%&|^!=<>]=?|&&|\|\||\.\.\.`),
				),
				g.Rule("tag", g.P("`[^`]*`").AsGreedy().WithAlias("attr-value")),
				// метод-блок идёт после токена interface, поэтому нужен настоящий lookbehind
				g.Rule("interface-method", g.P(`(?<=\binterface\s*\{)[^}]+(?=\})`).AsGreedy().WithInside(
					g.Simple("function", `\b\w+\b(?=\()`),
					g.Simple("punctuation", `[{}(),]`),
					g.Simple("type", `\b\w+\b`),
				)),
				g.Rule("map", g.P(`\bmap\s*\[[^\]]+\]\s*\w+`).WithInside(
					g.Simple("keyword", `\bmap\b`),
					g.Simple("punctuation", `[\[\]]`),
					g.Simple("type", `\b\w+\b`),
				)),
				g.Rule("slice", g.P(`\[\s*\]\s*\w+`).WithInside(
					g.Simple("punctuation", `[\[\]]`),
					g.Simple("type", `\b\w+\b`),
				)),
				g.Rule("channel", g.P(`\bchan\s*(?:<-)?\s*\w+`).WithInside(
					g.Simple("keyword", `\bchan\b`),
					g.Simple("operator", `<-?`),
					g.Simple("type", `\b\w+\b`),
				)),
				g.Rule("chained-access", g.P(`\b`+goIdent+`(?:\.`+goIdent+`){1,}`).WithInside(
					g.Simple("namespace", `^`+goIdent),
					g.Rule("structure-name", g.P(`(?:\.`+goIdent+`)(?=\.[a-zA-Z_]\w+$)`).WithAlias("class-name")),
					g.Rule("property", g.P(`\.(?=`+goIdent+`$)`+goIdent).WithAlias("property")),
					g.Simple("punctuation", `\.`),
				)),
				g.Rule("property", g.P(`\.\w+(?=[({]?)`).AsGreedy().WithAlias("property")),
				g.Simple("punctuation", `[{}[\];(),.:]`),
				g.Simple("identifier", `\b`+goIdent+`\b`),
			},
		},
		Aliases:    []string{"golang"},
		Extensions: []string{".go"},
	}
}
