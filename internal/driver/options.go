package driver

import (
	"hilite/internal/languages"
	"hilite/internal/lexer"
	"hilite/internal/observ"
	"hilite/internal/render"
)

// Options configures Highlight and HighlightDir.
type Options struct {
	// Lang forces a language; empty means detection by extension.
	Lang string
	// Languages defaults to languages.Default().
	Languages *languages.Set
	MaxDepth  int
	// Remap replaces the alias of tokens whose category is a key, after
	// caching; see token.Stream.Remap.
	Remap map[string]string
	// NFC normalizes sources after BOM and CRLF removal.
	NFC            bool
	MaxDiagnostics int
	// Jobs limits directory workers; <= 0 means GOMAXPROCS.
	Jobs int

	// Memory and Disk are optional caches of token trees.
	Memory *MemCache
	Disk   *DiskCache

	// Render writes an output file per source when OutDir is set.
	Render *RenderOptions

	Progress ProgressSink
	Timer    *observ.Timer
}

// RenderOptions controls the render stage of a directory run.
type RenderOptions struct {
	Format render.Format
	// OutDir receives one file per source, at the same relative path with
	// Format.Ext() appended.
	OutDir   string
	Fragment bool
	Theme    *render.Theme
	Colors   bool
}

func (o *Options) set() *languages.Set {
	if o.Languages != nil {
		return o.Languages
	}
	return languages.Default()
}

// lexerOptions resolves the depth limit; it is part of the cache key.
func (o *Options) lexerOptions() lexer.Options {
	depth := o.MaxDepth
	if depth <= 0 {
		depth = lexer.DefaultMaxDepth
	}
	return lexer.Options{MaxDepth: depth}
}

func (o *Options) maxDiagnostics() int {
	if o.MaxDiagnostics > 0 {
		return o.MaxDiagnostics
	}
	return 100
}
