package grammar

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"hilite/internal/pattern"
)

// Registry is a set of named grammars that may refer to each other through
// PatternDecl.InsideRef. Lookups are safe for concurrent use; grammars are
// published only after their whole batch has been built.
type Registry struct {
	mu       sync.RWMutex
	grammars map[string]*Grammar
	aliases  map[string]string
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		grammars: make(map[string]*Grammar),
		aliases:  make(map[string]string),
	}
}

// Register builds decls as one batch. Declarations of the batch may reference
// each other and any grammar registered earlier. Either every declaration is
// published or none is.
func (r *Registry) Register(decls ...Decl) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make(map[string]*Grammar, len(decls))
	for _, d := range decls {
		name := normalizeName(d.Name)
		if name == "" {
			return fmt.Errorf("grammar declaration without a name")
		}
		if _, exists := r.grammars[name]; exists {
			return conflict(d.Name, "already registered")
		}
		if target, exists := r.aliases[name]; exists {
			return conflict(d.Name, fmt.Sprintf("name is an alias of %q", target))
		}
		if _, exists := pending[name]; exists {
			return conflict(d.Name, "declared twice")
		}
		pending[name] = &Grammar{}
	}

	resolve := func(ref string) (*Grammar, bool) {
		key := normalizeName(ref)
		if g, ok := pending[key]; ok {
			return g, true
		}
		return r.lookupLocked(key)
	}
	for i := range decls {
		d := &decls[i]
		b := builder{resolve: resolve}
		if err := b.fill(pending[normalizeName(d.Name)], d, d, pattern.DefaultEngine); err != nil {
			return err
		}
	}

	for _, g := range pending {
		seal(g)
	}
	for _, d := range decls {
		name := normalizeName(d.Name)
		r.grammars[name] = pending[name]
		r.order = append(r.order, name)
	}
	return nil
}

// Alias makes alias resolve to the registered grammar name.
func (r *Registry) Alias(alias, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, n := normalizeName(alias), normalizeName(name)
	if _, ok := r.grammars[n]; !ok {
		return fmt.Errorf("alias %q: unknown grammar %q", alias, name)
	}
	if _, ok := r.grammars[a]; ok {
		return conflict(name, fmt.Sprintf("alias %q shadows a grammar", alias))
	}
	if prev, ok := r.aliases[a]; ok && prev != n {
		return conflict(name, fmt.Sprintf("alias %q already points to %q", alias, prev))
	}
	r.aliases[a] = n
	return nil
}

// Lookup finds a grammar by name or alias, case-insensitively.
func (r *Registry) Lookup(name string) (*Grammar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookupLocked(normalizeName(name))
}

func (r *Registry) lookupLocked(key string) (*Grammar, bool) {
	if target, ok := r.aliases[key]; ok {
		key = target
	}
	g, ok := r.grammars[key]
	return g, ok
}

// Names returns registered grammar names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// AliasesOf returns the sorted aliases pointing to name.
func (r *Registry) AliasesOf(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := normalizeName(name)
	var out []string
	for a, target := range r.aliases {
		if target == n {
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}

// conflict reports that the grammar name, or one of its aliases, is taken.
func conflict(grammar, detail string) *Error {
	return &Error{Kind: DuplicateLanguage, Grammar: grammar, Index: -1, Detail: detail}
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
