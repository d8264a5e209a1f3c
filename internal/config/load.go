package config

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"hilite/internal/diag"
	"hilite/internal/pattern"
	"hilite/internal/source"
)

// ErrInvalid is returned by Load when the file is not valid TOML.
var ErrInvalid = errors.New("invalid config")

// Load reads path into fs and decodes it. Syntax errors are reported to r and
// returned as ErrInvalid; every other problem is only reported, so the caller
// decides whether diagnostics of SevError are fatal.
func Load(fs *source.FileSet, path string, r diag.Reporter) (*Config, error) {
	id, err := fs.Load(path, source.LoadOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Decode(fs, id, r)
}

// Decode decodes a config file that is already in fs.
func Decode(fs *source.FileSet, id source.FileID, r diag.Reporter) (*Config, error) {
	f := fs.Get(id)
	cfg := &Config{Path: f.Path, File: id, src: f}
	meta, err := toml.Decode(f.Text(), cfg)
	if err != nil {
		var perr toml.ParseError
		sp := source.Span{File: id}
		if errors.As(err, &perr) {
			sp = clampSpan(f, perr.Position.Start, perr.Position.Start+max(perr.Position.Len, 1))
		}
		diag.ReportError(r, diag.CfgParse, sp, err.Error())
		return nil, fmt.Errorf("%s: %w: %w", f.Path, ErrInvalid, err)
	}

	v := validator{f: f, r: r}
	for _, key := range meta.Undecoded() {
		diag.ReportWarning(r, diag.CfgUnknownKey, v.keySpan(key), fmt.Sprintf("unknown key %q", key.String()))
	}
	v.highlight(cfg, meta)
	return cfg, nil
}

type validator struct {
	f *source.File
	r diag.Reporter
}

func (v *validator) highlight(cfg *Config, meta toml.MetaData) {
	h := &cfg.Highlight
	if meta.IsDefined("highlight", "max_depth") && h.MaxDepth <= 0 {
		diag.ReportError(v.r, diag.CfgInvalidValue, v.keySpan(toml.Key{"highlight", "max_depth"}),
			fmt.Sprintf("max_depth must be positive, got %d", h.MaxDepth))
		h.MaxDepth = 0
	}
	if meta.IsDefined("highlight", "engine") {
		engine, err := pattern.ParseEngine(h.Engine)
		if err != nil {
			diag.ReportError(v.r, diag.CfgInvalidEngine, v.keySpan(toml.Key{"highlight", "engine"}), err.Error())
			engine = pattern.DefaultEngine
		}
		h.Engine = string(engine)
	}
	switch strings.ToLower(strings.TrimSpace(h.Normalize)) {
	case "":
		h.Normalize = ""
	case "nfc":
		h.Normalize = "nfc"
	default:
		diag.ReportError(v.r, diag.CfgInvalidValue, v.keySpan(toml.Key{"highlight", "normalize"}),
			fmt.Sprintf("normalize must be \"\" or \"nfc\", got %q", h.Normalize))
		h.Normalize = ""
	}
}

// keySpan finds the last component of key in the file, searching for each
// component after the previous one. The span is empty at offset 0 when
// nothing matches.
func (v *validator) keySpan(key toml.Key) source.Span {
	return v.find(0, key...)
}

func (v *validator) find(from int, needles ...string) source.Span {
	if v.f == nil {
		return source.Span{}
	}
	text := v.f.Text()
	sp := source.Span{File: v.f.ID}
	cursor := min(from, len(text))
	for _, n := range needles {
		if n == "" {
			continue
		}
		idx := strings.Index(text[cursor:], n)
		if idx < 0 {
			break
		}
		cursor += idx
		sp = clampSpan(v.f, cursor, cursor+len(n))
		cursor += len(n)
	}
	return sp
}

func clampSpan(f *source.File, start, end int) source.Span {
	n := len(f.Content)
	start, end = min(max(start, 0), n), min(max(end, 0), n)
	s, err1 := safecast.Conv[uint32](start)
	e, err2 := safecast.Conv[uint32](end)
	if err1 != nil || err2 != nil {
		return source.Span{File: f.ID}
	}
	return source.Span{File: f.ID, Start: s, End: e}
}
