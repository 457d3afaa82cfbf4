package page

// Capacity is the fixed upper bound of an assembled document. The worst-case
// render (every numeric field at its widest, particle section present, all
// staleness notes on) is asserted to fit in tests.
const Capacity = 6144

// Document is the single served response. Its buffer is reused every cycle
// and never grows. The zero value is the empty startup state.
type Document struct {
	buf [Capacity]byte
	n   int
}

// Bytes returns the current document. The slice aliases the buffer and is
// valid until the next Assemble.
func (d *Document) Bytes() []byte { return d.buf[:d.n] }

// Len returns the current document length.
func (d *Document) Len() int { return d.n }

// Empty reports whether nothing has been assembled yet.
func (d *Document) Empty() bool { return d.n == 0 }
