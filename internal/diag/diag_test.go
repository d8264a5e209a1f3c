package diag_test

import (
	"testing"

	"hilite/internal/diag"
	"hilite/internal/source"
)

func TestCodeIDs(t *testing.T) {
	tests := map[diag.Code]string{
		diag.CfgParse:          "CFG1001",
		diag.GrmInvalidPattern: "GRM2002",
		diag.TokRecursionLimit: "TOK3001",
		diag.IOLoadFileError:   "IO4001",
		diag.UnknownCode:       "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if diag.Code(2999).Title() != "Unknown error" {
		t.Error("unregistered codes must fall back to the unknown title")
	}
}

func TestBagLimitAndCounts(t *testing.T) {
	bag := diag.NewBag(2)
	r := diag.BagReporter{Bag: bag}
	diag.ReportError(r, diag.GrmDuplicateRule, source.Span{}, "dup")
	diag.ReportWarning(r, diag.CfgUnknownKey, source.Span{}, "unknown key")
	diag.ReportError(r, diag.GrmInvalidPattern, source.Span{}, "dropped")
	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
	if !bag.HasErrors() || bag.Count(diag.SevWarning) != 1 || bag.Count(diag.SevError) != 1 {
		t.Errorf("unexpected counts: %+v", bag.Items())
	}
	other := diag.NewBag(1)
	other.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "io"))
	bag.Merge(other)
	if bag.Len() != 3 || bag.Cap() != 3 {
		t.Errorf("Merge: len=%d cap=%d", bag.Len(), bag.Cap())
	}
	if diag.NewBag(1<<20).Cap() != 65535 {
		t.Error("large limits must clamp")
	}
}

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("conf/hilite.toml", []byte("[highlight]\nmax_depth = -1\n[[grammar]]\nname = \"ini\"\n"))
	diags := []diag.Diagnostic{
		diag.NewError(diag.GrmInvalidPattern, source.Span{File: id, Start: 42, End: 45}, "invalid pattern\n\"(\"").
			WithNote(source.Span{File: id, Start: 27, End: 38}, "declared here"),
		diag.New(diag.SevWarning, diag.CfgInvalidValue, source.Span{File: id, Start: 12, End: 21}, "max_depth must be positive"),
	}
	got := diag.FormatShort(diags, fs, true)
	want := "warning CFG1003 conf/hilite.toml:2:1 max_depth must be positive\n" +
		"note GRM2002 conf/hilite.toml:3:1 declared here\n" +
		"error GRM2002 conf/hilite.toml:4:4 invalid pattern \"(\""
	if got != want {
		t.Errorf("FormatShort =\n%s\nwant\n%s", got, want)
	}
	if diag.FormatShort(nil, fs, false) != "" {
		t.Error("no diagnostics must render empty")
	}
}
