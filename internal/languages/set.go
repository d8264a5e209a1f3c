package languages

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"hilite/internal/grammar"
)

// FallbackLanguage is used when detection finds nothing.
const FallbackLanguage = "text"

// Language is a grammar declaration together with the names and file
// extensions that select it.
type Language struct {
	Decl       grammar.Decl
	Aliases    []string
	Extensions []string
}

// Bundled returns the built-in languages in registration order.
func Bundled() []Language {
	return []Language{Go(), JSON(), TOML(), Text()}
}

// Set is a grammar registry plus extension based detection. It is safe for
// concurrent use once populated.
type Set struct {
	reg      *grammar.Registry
	mu       sync.RWMutex
	exts     map[string]string
	fallback string
}

// NewSet creates a Set holding the bundled languages.
func NewSet() (*Set, error) {
	s := &Set{
		reg:      grammar.NewRegistry(),
		exts:     make(map[string]string),
		fallback: FallbackLanguage,
	}
	if err := s.Add(Bundled()...); err != nil {
		return nil, err
	}
	return s, nil
}

var (
	defaultOnce sync.Once
	defaultSet  *Set
)

// Default returns the shared Set of bundled languages. The bundled grammars
// are static data, so a build failure is a programming error.
func Default() *Set {
	defaultOnce.Do(func() {
		s, err := NewSet()
		if err != nil {
			panic(fmt.Errorf("bundled grammars: %w", err))
		}
		defaultSet = s
	})
	return defaultSet
}

// Add registers langs as one batch, so their grammars may refer to each other.
func (s *Set) Add(langs ...Language) error {
	decls := make([]grammar.Decl, len(langs))
	for i, l := range langs {
		decls[i] = l.Decl
	}
	if err := s.reg.Register(decls...); err != nil {
		return err
	}
	for _, l := range langs {
		for _, a := range l.Aliases {
			if err := s.reg.Alias(a, l.Decl.Name); err != nil {
				return err
			}
		}
		for _, ext := range l.Extensions {
			if err := s.AddExtension(ext, l.Decl.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddExtension maps a file extension (with or without the leading dot) to a
// language. Later mappings replace earlier ones.
func (s *Set) AddExtension(ext, lang string) error {
	g, ok := s.reg.Lookup(lang)
	if !ok {
		return fmt.Errorf("extension %q: unknown language %q", ext, lang)
	}
	ext = normalizeExt(ext)
	if ext == "" {
		return fmt.Errorf("empty extension for language %q", lang)
	}
	s.mu.Lock()
	s.exts[ext] = g.Name()
	s.mu.Unlock()
	return nil
}

// SetFallback changes the language used when detection fails.
func (s *Set) SetFallback(lang string) error {
	g, ok := s.reg.Lookup(lang)
	if !ok {
		return fmt.Errorf("unknown language %q", lang)
	}
	s.mu.Lock()
	s.fallback = g.Name()
	s.mu.Unlock()
	return nil
}

// Detect returns the language name for path based on its extension.
func (s *Set) Detect(path string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if lang, ok := s.exts[normalizeExt(filepath.Ext(path))]; ok {
		return lang
	}
	return s.fallback
}

// Known reports whether the extension of path is mapped to a language.
func (s *Set) Known(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.exts[normalizeExt(filepath.Ext(path))]
	return ok
}

// Lookup finds a grammar by language name or alias.
func (s *Set) Lookup(lang string) (*grammar.Grammar, bool) {
	return s.reg.Lookup(lang)
}

// Resolve picks the grammar for a file: lang when given, otherwise the
// detected language of path.
func (s *Set) Resolve(lang, path string) (*grammar.Grammar, error) {
	if lang == "" {
		lang = s.Detect(path)
	}
	g, ok := s.reg.Lookup(lang)
	if !ok {
		return nil, fmt.Errorf("unknown language %q (known: %s)", lang, strings.Join(s.Names(), ", "))
	}
	return g, nil
}

// Names lists registered languages in registration order.
func (s *Set) Names() []string { return s.reg.Names() }

// Aliases lists the aliases of lang.
func (s *Set) Aliases(lang string) []string { return s.reg.AliasesOf(lang) }

// Extensions lists the sorted extensions mapped to lang.
func (s *Set) Extensions(lang string) []string {
	g, ok := s.reg.Lookup(lang)
	if !ok {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for ext, l := range s.exts {
		if l == g.Name() {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
