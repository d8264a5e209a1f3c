package sample

import "io"

// Reader wraps an io.Reader and counts bytes.
type Reader interface {
	Read(p []byte) (n int, err error)
}

type counting struct {
	r io.Reader
	n int64
}

func (c *counting) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

const raw = `line one
line "two"`

var table = map[string][]int{"a": {1, 2}, "b": nil}

func chained(c *counting) int64 { return c.n + int64(len(raw)) /* tail */ }
