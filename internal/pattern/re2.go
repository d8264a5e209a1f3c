package pattern

import (
	"regexp"
	"unicode/utf8"
)

type re2Matcher struct {
	re *regexp.Regexp
}

func compileRE2(expr string) (*re2Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &re2Matcher{re: re}, nil
}

func (m *re2Matcher) Match(in *Input, from int) (Result, bool) {
	text := in.text
	for from <= len(text) {
		loc := m.re.FindStringSubmatchIndex(text[from:])
		if loc == nil {
			return Result{}, false
		}
		if loc[1] > loc[0] {
			return re2Result(loc, from), true
		}
		// пустое совпадение: сдвигаемся на одну руну
		next := from + loc[0]
		if next >= len(text) {
			return Result{}, false
		}
		_, size := utf8.DecodeRuneInString(text[next:])
		from = next + size
	}
	return Result{}, false
}

func re2Result(loc []int, shift int) Result {
	res := Result{Start: loc[0] + shift, End: loc[1] + shift}
	if n := len(loc)/2 - 1; n > 0 {
		res.Groups = make([][2]int, n)
		for i := range n {
			s, e := loc[2*(i+1)], loc[2*(i+1)+1]
			if s < 0 {
				res.Groups[i] = [2]int{-1, -1}
				continue
			}
			res.Groups[i] = [2]int{s + shift, e + shift}
		}
	}
	return res
}

func (m *re2Matcher) NumGroups() int { return m.re.NumSubexp() }

func (m *re2Matcher) String() string { return m.re.String() }
