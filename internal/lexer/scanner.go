package lexer

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"fortio.org/safecast"

	"hilite/internal/grammar"
	"hilite/internal/pattern"
	"hilite/internal/source"
	"hilite/internal/token"
)

type scanner struct {
	file     source.FileID
	maxDepth int
	chain    []string // правила на пути от верхнего уровня
}

// candidate is a prospective token at one level. Offsets are relative to the
// level input.
type candidate struct {
	rule, alt  int
	matchStart int // начало совпадения вместе с префиксом lookbehind
	start, end int
}

// searchSlot caches the search result of one alternative over the whole level
// text. A match found by an earlier search stays the first acceptable one
// while it still begins at or after the new search origin and its token at or
// after the scan position. A failed search stays failed. Searches run on the
// full level input so that anchors, word boundaries and lookbehind see the
// real context.
type searchSlot struct {
	valid bool
	found bool
	c     candidate
}

// level tokenizes one nesting level. in holds exactly the text of the level;
// base is the absolute offset of its first byte.
func (sc *scanner) level(in *pattern.Input, base int, g *grammar.Grammar, depth int) (token.Stream, error) {
	text := in.Text()
	n := len(text)
	out := make(token.Stream, 0, 8)

	slots := make([][]searchSlot, g.Len())
	for i := range slots {
		slots[i] = make([]searchSlot, g.At(i).Len())
	}

	pos, back := 0, 0
	for pos < n {
		best, ok := sc.pick(in, g, pos, back, slots)
		if !ok {
			out = append(out, sc.plain(text, base, pos, n))
			break
		}
		if best.start > pos {
			out = append(out, sc.plain(text, base, pos, best.start))
		}
		tok, err := sc.emit(in, base, g, depth, best)
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		pos, back = best.end, best.start
	}
	return out, nil
}

// pick returns the earliest-starting candidate at or after pos; ties go to the
// alternative declared first. Greedy lookbehind prefixes may reach back to
// back, where the previously matched token starts.
//
// A non-greedy alternative only competes inside the gap before the best
// candidate of the alternatives declared before it. When its cached match runs
// into that candidate, the gap alone is searched again.
func (sc *scanner) pick(in *pattern.Input, g *grammar.Grammar, pos, back int, slots [][]searchSlot) (candidate, bool) {
	n := in.Len()
	var best candidate
	found := false

	for ri := range g.Len() {
		rule := g.At(ri)
		for ai := range rule.Len() {
			p := rule.Pattern(ai)
			from := pos
			if p.Greedy() && p.Lookbehind() {
				from = back
			}
			slot := &slots[ri][ai]
			if !slot.valid || (slot.found && (slot.c.matchStart < from || slot.c.start < pos)) {
				slot.c, slot.found = find(p, in, from, pos)
				slot.valid = true
			}
			if !slot.found {
				continue
			}
			c := slot.c
			if !p.Greedy() {
				limit := n
				if found {
					limit = best.start
				}
				if c.start >= limit {
					continue
				}
				if c.end > limit {
					var ok bool
					if c, ok = find(p, in.Slice(0, limit), pos, pos); !ok {
						continue
					}
				}
			}
			if !found || c.start < best.start {
				c.rule, c.alt = ri, ai
				best, found = c, true
			}
		}
	}
	return best, found
}

// find searches view from the byte offset from and reports the first match
// whose token, once the lookbehind prefix is removed, is non-empty and starts
// at or after minStart.
func find(p *grammar.Pattern, view *pattern.Input, from, minStart int) (candidate, bool) {
	m := p.Matcher()
	for from <= view.Len() {
		res, ok := m.Match(view, from)
		if !ok {
			return candidate{}, false
		}
		start := res.Start
		if p.Lookbehind() {
			if _, ge, ok := res.Group(1); ok && ge > start {
				start = min(ge, res.End)
			}
		}
		if start < res.End && start >= minStart {
			return candidate{matchStart: res.Start, start: start, end: res.End}, true
		}
		_, size := utf8.DecodeRuneInString(view.Text()[res.Start:])
		from = res.Start + max(size, 1)
	}
	return candidate{}, false
}

func (sc *scanner) emit(in *pattern.Input, base int, g *grammar.Grammar, depth int, c candidate) (token.Token, error) {
	rule := g.At(c.rule)
	p := rule.Pattern(c.alt)
	tok := token.Token{
		Name:  rule.Name(),
		Alias: p.Alias(),
		Text:  in.Text()[c.start:c.end],
		Span:  sc.span(base+c.start, base+c.end),
	}

	inside := p.Inside()
	if inside == nil {
		return tok, nil
	}
	// совпадение на весь уровень той же грамматикой не сужает текст
	if inside == g && c.start == 0 && c.end == in.Len() && depth > 0 {
		return tok, nil
	}
	if depth+1 > sc.maxDepth {
		return token.Token{}, &Error{
			Kind:  RecursionLimitExceeded,
			Chain: append(slices.Clone(sc.chain), rule.Name()),
			Limit: sc.maxDepth,
		}
	}

	sc.chain = append(sc.chain, rule.Name())
	children, err := sc.level(in.Slice(c.start, c.end), base+c.start, inside, depth+1)
	sc.chain = sc.chain[:len(sc.chain)-1]
	if err != nil {
		return token.Token{}, err
	}
	tok.Children = children
	return tok, nil
}

func (sc *scanner) plain(text string, base, from, to int) token.Token {
	return token.Token{Text: text[from:to], Span: sc.span(base+from, base+to)}
}

func (sc *scanner) span(start, end int) source.Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		panic(fmt.Errorf("token offset overflow: %w", err))
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		panic(fmt.Errorf("token offset overflow: %w", err))
	}
	return source.Span{File: sc.file, Start: s, End: e}
}
