// Package dispatch serves the current document to one inbound connection
// at a time. No request parsing is done beyond end-of-headers detection.
package dispatch

import (
	"envserve-go/services/diag"
	"envserve-go/types"
)

// Conn is one accepted client connection.
type Conn interface {
	// IsOpen reports whether the peer is connected or unread bytes remain.
	IsOpen() bool
	// TryReadByte returns the next byte if one is buffered; it never blocks.
	TryReadByte() (byte, bool)
	Write(p []byte) (int, error)
	Close() error
}

// Listener is a passive listening socket.
type Listener interface {
	// AcceptIfPending returns a pending connection without blocking.
	AcceptIfPending() (Conn, bool)
}

// Source is the served document (page.Document).
type Source interface {
	Bytes() []byte
}

// HeaderEnd detects the blank line ending request headers: two '\n' with
// nothing but '\r' between them.
type HeaderEnd struct {
	blank bool
}

// Feed consumes one byte and reports whether the headers just ended.
func (h *HeaderEnd) Feed(c byte) bool {
	switch c {
	case '\n':
		if h.blank {
			return true
		}
		h.blank = true
	case '\r':
		// ignored for blank-line detection
	default:
		h.blank = false
	}
	return false
}

// Dispatcher drains at most one pending connection per Service call.
type Dispatcher struct {
	ln    Listener
	doc   Source
	yield func()
	cnt   *types.Counters
	log   *diag.Logger
}

// New returns a Dispatcher. yield is called while waiting for request
// bytes; cnt and log may be nil.
func New(ln Listener, doc Source, yield func(), cnt *types.Counters, log *diag.Logger) *Dispatcher {
	if yield == nil {
		yield = func() {}
	}
	return &Dispatcher{ln: ln, doc: doc, yield: yield, cnt: cnt, log: log}
}

// Service handles one pending client, if any, and reports whether a
// response was written. It returns immediately when nothing is pending.
func (d *Dispatcher) Service() bool {
	c, ok := d.ln.AcceptIfPending()
	if !ok {
		return false
	}
	defer c.Close()

	var h HeaderEnd
	for c.IsOpen() {
		b, ok := c.TryReadByte()
		if !ok {
			d.yield()
			continue
		}
		if !h.Feed(b) {
			continue
		}
		if _, err := c.Write(d.doc.Bytes()); err != nil {
			d.log.Log("http", "write failed:", err)
			return false
		}
		if d.cnt != nil {
			d.cnt.Served.Add(1)
		}
		return true
	}
	return false
}
