package lexer

// DefaultMaxDepth bounds nested grammar recursion when Options.MaxDepth is unset.
const DefaultMaxDepth = 64

type Options struct {
	// MaxDepth is the deepest nested level a token may be re-tokenized at;
	// the top level is depth 0. Zero or negative means DefaultMaxDepth.
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}
