package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"hilite/internal/lexer"
	"hilite/internal/source"
)

// FileName is the config file looked up by Find.
const FileName = "hilite.toml"

// Config is the decoded content of hilite.toml.
type Config struct {
	// Path is empty for the built-in defaults.
	Path string `toml:"-"`
	// File is the config source inside the FileSet passed to Load.
	File source.FileID `toml:"-"`
	src  *source.File

	Highlight  Highlight         `toml:"highlight"`
	Extensions map[string]string `toml:"extensions"`
	Colors     map[string]string `toml:"theme"`
	// Remap renames token categories before rendering, e.g. tag = "string".
	Remap    map[string]string `toml:"remap"`
	Grammars []GrammarConfig   `toml:"grammar"`
}

// Highlight holds the [highlight] table.
type Highlight struct {
	DefaultLanguage string `toml:"default_language"`
	MaxDepth        int    `toml:"max_depth"`
	Engine          string `toml:"engine"`
	Normalize       string `toml:"normalize"`
}

// GrammarConfig is one [[grammar]] entry.
type GrammarConfig struct {
	Name       string       `toml:"name"`
	Aliases    []string     `toml:"aliases"`
	Extensions []string     `toml:"extensions"`
	Engine     string       `toml:"engine"`
	Rules      []RuleConfig `toml:"rule"`
}

// RuleConfig is one [[grammar.rule]] entry. Nested rule lists reuse it.
type RuleConfig struct {
	Name     string          `toml:"name"`
	Patterns []PatternConfig `toml:"pattern"`
}

// PatternConfig is one alternative of a rule.
type PatternConfig struct {
	Pattern    string       `toml:"pattern"`
	Alias      string       `toml:"alias"`
	Greedy     bool         `toml:"greedy"`
	Lookbehind bool         `toml:"lookbehind"`
	Inside     []RuleConfig `toml:"inside"`
	InsideRef  string       `toml:"inside_ref"`
}

// Default returns the configuration used when no hilite.toml exists.
func Default() *Config {
	return &Config{}
}

// MaxDepth returns the tokenizer recursion guard, falling back to the lexer default.
func (c *Config) MaxDepth() int {
	if c.Highlight.MaxDepth > 0 {
		return c.Highlight.MaxDepth
	}
	return lexer.DefaultMaxDepth
}

// NFC reports whether loaded sources are NFC-normalized.
func (c *Config) NFC() bool {
	return c.Highlight.Normalize == "nfc"
}

// Find walks up from startDir to locate hilite.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}
