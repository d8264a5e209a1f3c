package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"hilite/internal/source"
	"hilite/internal/token"
)

// CheckStream runs the token tree invariants on s produced from text:
// 1) every level partitions its parent (top level partitions text)
// 2) all spans point to the same file
// 3) matched tokens carry a category; plain tokens have no children
// 4) two plain tokens are never adjacent on one level
func CheckStream(s token.Stream, text string) error {
	if err := s.Validate(text, 0); err != nil {
		return err
	}
	return checkLevels(s, fileOf(s))
}

// CheckFileStream is CheckStream for a tokenized source file.
func CheckFileStream(s token.Stream, f *source.File) error {
	if f == nil {
		return fmt.Errorf("nil file")
	}
	if _, err := safecast.Conv[uint32](len(f.Content)); err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if err := s.Validate(string(f.Content), 0); err != nil {
		return err
	}
	if len(s) > 0 && fileOf(s) != f.ID {
		return fmt.Errorf("span file mismatch: got=%d want=%d", fileOf(s), f.ID)
	}
	return checkLevels(s, f.ID)
}

func fileOf(s token.Stream) source.FileID {
	if len(s) == 0 {
		return 0
	}
	return s[0].Span.File
}

func checkLevels(s []token.Token, file source.FileID) error {
	prevPlain := false
	for i, t := range s {
		if t.Span.File != file {
			return fmt.Errorf("token %d %q: span file mismatch: got=%d want=%d", i, t.Text, t.Span.File, file)
		}
		if t.IsPlain() {
			if prevPlain {
				return fmt.Errorf("token %d %q: adjacent plain tokens", i, t.Text)
			}
			if t.Alias != "" {
				return fmt.Errorf("token %d %q: plain token with alias %q", i, t.Text, t.Alias)
			}
		}
		prevPlain = t.IsPlain()
		if len(t.Children) > 0 {
			if err := checkLevels(t.Children, file); err != nil {
				return fmt.Errorf("in %s %v: %w", t.Name, t.Span, err)
			}
		}
	}
	return nil
}
