package grammar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"slices"

	"hilite/internal/pattern"
)

// fingerprint hashes the canonical form of a declaration. Named references
// appear by name only; seal folds in the grammars they resolve to.
func fingerprint(decl *Decl, engine pattern.Engine) string {
	h := sha256.New()
	writeDecl(h, decl, engine)
	return hex.EncodeToString(h.Sum(nil))
}

// seal sets the final fingerprint of g and of its inline nested grammars once
// every reference of the batch is resolved.
func seal(g *Grammar) {
	g.fingerprint = fold(g, nil)
	for _, in := range g.inline {
		seal(in)
	}
}

// fold combines the local digest of g with the digests of the grammars it
// refers to. A reference back onto path contributes its local digest only,
// which keeps $self and mutual references finite.
func fold(g *Grammar, path []*Grammar) string {
	if len(g.refs) == 0 && len(g.inline) == 0 {
		return g.local
	}
	h := sha256.New()
	io.WriteString(h, g.local) //nolint:errcheck
	path = append(path, g)
	for _, ref := range append(slices.Clip(g.inline), g.refs...) {
		if slices.Contains(path, ref) {
			fmt.Fprintf(h, "\ncycle %s", ref.local)
			continue
		}
		fmt.Fprintf(h, "\nref %s", fold(ref, path))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeDecl(w io.Writer, decl *Decl, engine pattern.Engine) {
	if decl.Engine != "" {
		engine = decl.Engine
	}
	fmt.Fprintf(w, "grammar %q engine=%s rules=%d\n", decl.Name, engine, len(decl.Rules))
	for _, rd := range decl.Rules {
		fmt.Fprintf(w, "rule %q alts=%d\n", rd.Name, len(rd.Patterns))
		for _, pd := range rd.Patterns {
			fmt.Fprintf(w, "pattern %q alias=%q greedy=%t lookbehind=%t ref=%q\n",
				pd.Pattern, pd.Alias, pd.Greedy, pd.Lookbehind, pd.InsideRef)
			if pd.Inside != nil {
				w.Write([]byte("inside {\n")) //nolint:errcheck
				writeDecl(w, pd.Inside, engine)
				w.Write([]byte("}\n")) //nolint:errcheck
			}
		}
	}
}
