package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"hilite/internal/grammar"
	"hilite/internal/pattern"
	"hilite/internal/source"
	"hilite/internal/token"
)

// Tokenize splits text into a token tree according to g. The top-level tokens
// partition text exactly; unmatched text becomes plain tokens. Empty text
// yields an empty stream. On error no tokens are returned.
func Tokenize(text string, g *grammar.Grammar, opts Options) (token.Stream, error) {
	return tokenize(text, 0, g, opts)
}

// TokenizeFile tokenizes the content of f; spans carry f.ID.
func TokenizeFile(f *source.File, g *grammar.Grammar, opts Options) (token.Stream, error) {
	return tokenize(string(f.Content), f.ID, g, opts)
}

func tokenize(text string, file source.FileID, g *grammar.Grammar, opts Options) (token.Stream, error) {
	if g == nil {
		return nil, fmt.Errorf("tokenize: nil grammar")
	}
	if _, err := safecast.Conv[uint32](len(text)); err != nil {
		return nil, fmt.Errorf("tokenize: text too large: %w", err)
	}
	if text == "" {
		return token.Stream{}, nil
	}
	sc := scanner{
		file:     file,
		maxDepth: opts.maxDepth(),
	}
	return sc.level(pattern.NewInput(text), 0, g, 0)
}
