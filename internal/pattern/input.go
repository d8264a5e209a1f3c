package pattern

import "sort"

// Input is a text prepared for matching. It keeps the rune decomposition of the
// text so rune-based engines can report byte offsets.
type Input struct {
	text  string
	runes []rune
	offs  []int // offs[i] is the absolute byte offset of runes[i]; one extra entry for the end
	base  int   // absolute byte offset of text[0]
}

// NewInput decomposes text once. Invalid UTF-8 bytes become one rune each.
func NewInput(text string) *Input {
	runes := make([]rune, 0, len(text))
	offs := make([]int, 0, len(text)+1)
	for i, r := range text {
		runes = append(runes, r)
		offs = append(offs, i)
	}
	offs = append(offs, len(text))
	return &Input{text: text, runes: runes, offs: offs}
}

// Text returns the text of the view.
func (in *Input) Text() string { return in.text }

// Len returns the byte length of the view.
func (in *Input) Len() int { return len(in.text) }

// Slice returns the view [from, to) of in. Both offsets must fall on rune
// boundaries of the view.
func (in *Input) Slice(from, to int) *Input {
	ri := in.runeIndex(from)
	rj := in.runeIndex(to)
	return &Input{
		text:  in.text[from:to],
		runes: in.runes[ri:rj],
		offs:  in.offs[ri : rj+1],
		base:  in.base + from,
	}
}

// runeIndex maps a view byte offset to the index of the rune starting there.
// Offsets inside a multi-byte rune map to the following rune.
func (in *Input) runeIndex(off int) int {
	abs := in.base + off
	return sort.SearchInts(in.offs, abs)
}

// byteOffset maps a rune index of the view to a view byte offset.
func (in *Input) byteOffset(ri int) int {
	return in.offs[ri] - in.base
}

// Result describes one match. Offsets are bytes relative to the Input view.
type Result struct {
	Start, End int
	// Groups holds [start, end) pairs for capture groups 1..n; {-1, -1} marks a
	// group that did not participate.
	Groups [][2]int
}

// Len returns the byte length of the whole match.
func (r Result) Len() int { return r.End - r.Start }

// Group returns the bounds of capture group n (1-based).
func (r Result) Group(n int) (start, end int, ok bool) {
	if n < 1 || n > len(r.Groups) {
		return -1, -1, false
	}
	g := r.Groups[n-1]
	if g[0] < 0 {
		return -1, -1, false
	}
	return g[0], g[1], true
}
