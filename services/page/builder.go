package page

import "envserve-go/x/conv"

// builder appends into a fixed buffer. With out == nil it only counts, which
// is how Assemble learns the exact size before touching the document.
type builder struct {
	out []byte
	n   int
	tmp [24]byte
}

func (b *builder) bytes(p []byte) {
	if b.out != nil && b.n+len(p) <= len(b.out) {
		copy(b.out[b.n:], p)
	}
	b.n += len(p)
}

func (b *builder) str(s string) {
	if b.out != nil && b.n+len(s) <= len(b.out) {
		copy(b.out[b.n:], s)
	}
	b.n += len(s)
}

func (b *builder) uint(v uint64) { b.bytes(conv.AppendUint(b.tmp[:0], v)) }

func (b *builder) fixed(whole uint64, frac uint32, digits int) {
	b.bytes(conv.AppendFixed(b.tmp[:0], whole, frac, digits))
}

func (b *builder) signedFixed(neg bool, whole uint64, frac uint32, digits int) {
	b.bytes(conv.AppendSignedFixed(b.tmp[:0], neg, whole, frac, digits))
}

// Table rows: label | value | unit.

func (b *builder) rowStart(label string) {
	b.str("<tr><td>")
	b.str(label)
	b.str("</td><td class='v'>")
}

func (b *builder) rowEnd(unit string) {
	b.str("</td><td>")
	b.str(unit)
	b.str("</td></tr>")
}
