package driver

import (
	"context"
	"errors"
	"fmt"

	"fortio.org/safecast"

	"hilite/internal/diag"
	"hilite/internal/grammar"
	"hilite/internal/lexer"
	"hilite/internal/source"
	"hilite/internal/token"
	"hilite/internal/trace"
)

// Result is the outcome of highlighting one file.
type Result struct {
	Path   string
	FileID source.FileID
	Lang   string
	// Tokens is nil when the file failed to load or tokenize; Bag says why.
	Tokens token.Stream
	Cached bool
	// Output is the rendered file, set by directory runs with an OutDir.
	Output string
	Bag    *diag.Bag
}

// Failed reports whether the file produced no tokens.
func (r *Result) Failed() bool {
	return r.Bag != nil && r.Bag.HasErrors()
}

// Highlight loads path and tokenizes it. Load failures and unknown languages
// are returned as errors; a tokenizer failure is reported in Result.Bag.
func Highlight(ctx context.Context, path string, opts Options) (*source.FileSet, *Result, error) {
	ctx, span := trace.Start(ctx, trace.ScopeRun, "highlight")
	defer span.End(path)

	fs := source.NewFileSet()
	done := opts.phase("load")
	_, load := trace.Start(ctx, trace.ScopePhase, "load")
	id, err := fs.Load(path, source.LoadOptions{NFC: opts.NFC})
	load.End("")
	done(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	res, err := highlightFile(ctx, fs.Get(id), &opts)
	return fs, res, err
}

// HighlightSource is Highlight for in-memory content, e.g. stdin. name is
// used for language detection and diagnostics.
func HighlightSource(ctx context.Context, name string, content []byte, opts Options) (*source.FileSet, *Result, error) {
	ctx, span := trace.Start(ctx, trace.ScopeRun, "highlight")
	defer span.End(name)

	fs := source.NewFileSet()
	id := fs.AddNormalized(name, content, source.LoadOptions{NFC: opts.NFC})
	res, err := highlightFile(ctx, fs.Get(id), &opts)
	return fs, res, err
}

func highlightFile(ctx context.Context, f *source.File, opts *Options) (*Result, error) {
	g, err := opts.set().Resolve(opts.Lang, f.Path)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Path:   f.Path,
		FileID: f.ID,
		Lang:   g.Name(),
		Bag:    diag.NewBag(opts.maxDiagnostics()),
	}

	done := opts.phase("tokenize")
	tctx, tok := trace.Start(ctx, trace.ScopePhase, "tokenize")
	s, cached, err := tokenizeCached(tctx, f, g, opts)
	tok.Attr("lang", res.Lang).Attr("cached", fmt.Sprint(cached)).End(f.Path)
	done(f.Path)

	if err != nil {
		var lerr *lexer.Error
		if !errors.As(err, &lerr) {
			return nil, err
		}
		diag.ReportError(diag.BagReporter{Bag: res.Bag}, diag.TokRecursionLimit, wholeFile(f), lerr.Error())
		return res, nil
	}
	if len(opts.Remap) > 0 {
		s = s.Remap(opts.Remap)
	}
	res.Tokens = s
	res.Cached = cached
	return res, nil
}

// tokenizeCached consults the memory cache, then the disk cache, and
// tokenizes on a miss. Cache failures are traced and otherwise ignored.
func tokenizeCached(ctx context.Context, f *source.File, g *grammar.Grammar, opts *Options) (token.Stream, bool, error) {
	lo := opts.lexerOptions()
	key := cacheKey(f.Hash, g.Name(), g.Fingerprint(), lo.MaxDepth)

	if s, ok := opts.Memory.Get(key); ok {
		trace.Point(ctx, trace.ScopeCache, "memory", "hit "+f.Path)
		return rebind(s, f.ID), true, nil
	}
	if opts.Disk != nil {
		var p DiskPayload
		ok, err := opts.Disk.Get(key, &p)
		switch {
		case err != nil:
			trace.Point(ctx, trace.ScopeCache, "disk", "unreadable: "+err.Error())
		case ok:
			s, err := p.Stream(f)
			if err == nil {
				trace.Point(ctx, trace.ScopeCache, "disk", "hit "+f.Path)
				opts.Memory.Put(key, s)
				return s, true, nil
			}
			trace.Point(ctx, trace.ScopeCache, "disk", "stale: "+err.Error())
		default:
			trace.Point(ctx, trace.ScopeCache, "disk", "miss "+f.Path)
		}
	}

	s, err := lexer.TokenizeFile(f, g, lo)
	if err != nil {
		return nil, false, err
	}
	opts.Memory.Put(key, s)
	if opts.Disk != nil {
		size, err := safecast.Conv[uint32](len(f.Content))
		if err == nil {
			err = opts.Disk.Put(key, newPayload(g.Name(), g.Fingerprint(), size, s))
		}
		if err != nil {
			trace.Point(ctx, trace.ScopeCache, "disk", "write failed: "+err.Error())
		}
	}
	return s, false, nil
}

// rebind returns s with every span moved to file. Texts are shared.
func rebind(s token.Stream, file source.FileID) token.Stream {
	if len(s) == 0 || s[0].Span.File == file {
		return s
	}
	return rebindLevel(s, file)
}

func rebindLevel(s []token.Token, file source.FileID) []token.Token {
	out := make([]token.Token, len(s))
	for i, t := range s {
		t.Span.File = file
		if t.Children != nil {
			t.Children = rebindLevel(t.Children, file)
		}
		out[i] = t
	}
	return out
}

func wholeFile(f *source.File) source.Span {
	end, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		end = 0
	}
	return source.Span{File: f.ID, End: end}
}

// phase starts a timer phase; the returned func ends it with a note.
func (o *Options) phase(name string) func(note string) {
	if o.Timer == nil {
		return func(string) {}
	}
	idx := o.Timer.Begin(name)
	return func(note string) { o.Timer.End(idx, note) }
}
