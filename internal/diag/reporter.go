package diag

import "hilite/internal/source"

// Reporter принимает диагностики от фаз конфигурации и токенизации.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string, notes []Note)
}

// ReportError reports a SevError diagnostic; r may be nil.
func ReportError(r Reporter, code Code, primary source.Span, msg string, notes ...Note) {
	if r != nil {
		r.Report(code, SevError, primary, msg, notes)
	}
}

// ReportWarning reports a SevWarning diagnostic; r may be nil.
func ReportWarning(r Reporter, code Code, primary source.Span, msg string, notes ...Note) {
	if r != nil {
		r.Report(code, SevWarning, primary, msg, notes)
	}
}

// BagReporter пишет диагностики в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Primary: primary, Notes: notes,
	})
}
