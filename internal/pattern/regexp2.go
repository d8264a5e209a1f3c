package pattern

import (
	"github.com/dlclark/regexp2"
)

type regexp2Matcher struct {
	re   *regexp2.Regexp
	expr string
}

// compileRegexp2 uses ECMAScript classes: `\w`, `\d` and `\b` are ASCII and
// `.` stops at any line terminator, `\r` and U+2028 included.
func compileRegexp2(expr string) (*regexp2Matcher, error) {
	re, err := regexp2.Compile(expr, regexp2.ECMAScript)
	if err != nil {
		return nil, err
	}
	return &regexp2Matcher{re: re, expr: expr}, nil
}

func (m *regexp2Matcher) Match(in *Input, from int) (Result, bool) {
	start := in.runeIndex(from)
	for start <= len(in.runes) {
		// ошибка возможна только при MatchTimeout, который не задаётся
		mt, err := m.re.FindRunesMatchStartingAt(in.runes, start)
		if err != nil || mt == nil {
			return Result{}, false
		}
		if mt.Length > 0 {
			return m.result(in, mt), true
		}
		start = mt.Index + 1
	}
	return Result{}, false
}

func (m *regexp2Matcher) result(in *Input, mt *regexp2.Match) Result {
	res := Result{
		Start: in.byteOffset(mt.Index),
		End:   in.byteOffset(mt.Index + mt.Length),
	}
	n := mt.GroupCount()
	if n > 1 {
		res.Groups = make([][2]int, n-1)
		for i := 1; i < n; i++ {
			g := mt.GroupByNumber(i)
			if g == nil || len(g.Captures) == 0 {
				res.Groups[i-1] = [2]int{-1, -1}
				continue
			}
			res.Groups[i-1] = [2]int{in.byteOffset(g.Index), in.byteOffset(g.Index + g.Length)}
		}
	}
	return res
}

func (m *regexp2Matcher) NumGroups() int {
	// GetGroupNumbers includes group 0
	return len(m.re.GetGroupNumbers()) - 1
}

func (m *regexp2Matcher) String() string { return m.expr }
