package token

// Kind is the structural shape of a token.
type Kind uint8

const (
	// Plain is text no rule matched.
	Plain Kind = iota
	// Leaf is a matched token without a nested grammar.
	Leaf
	// Nested is a matched token re-tokenized by its rule's nested grammar.
	Nested
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Leaf:
		return "leaf"
	case Nested:
		return "nested"
	default:
		return "invalid"
	}
}
