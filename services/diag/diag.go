// Package diag is the one-way diagnostic text channel: serving address,
// link transitions and cycle problems. It is not needed for correctness.
package diag

import (
	"io"
	"sync"

	"envserve-go/x/conv"
)

// Logger writes "[tag] part part ..." lines. A nil *Logger discards. Lines
// from concurrent callers do not interleave.
type Logger struct {
	mu    sync.Mutex
	w     io.Writer
	eol   string
	ready func() bool
	buf   []byte
}

// New returns a Logger on w with "\n" line endings.
func New(w io.Writer) *Logger {
	return &Logger{w: w, eol: "\n", buf: make([]byte, 0, 128)}
}

// WithCRLF switches to "\r\n" line endings (serial terminals).
func (l *Logger) WithCRLF() *Logger {
	l.eol = "\r\n"
	return l
}

// SetReady installs the readiness probe of the underlying channel
// (e.g. USB CDC enumerated). Without one the channel is always ready.
func (l *Logger) SetReady(f func() bool) {
	if l != nil {
		l.ready = f
	}
}

// Ready reports whether a reader can see output yet.
func (l *Logger) Ready() bool {
	if l == nil || l.ready == nil {
		return true
	}
	return l.ready()
}

type stringer interface{ String() string }

// Log writes one line. Parts may be strings, integers, bools, errors or
// anything with a String method.
func (l *Logger) Log(tag string, parts ...any) {
	if l == nil || l.w == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.buf[:0]
	b = append(b, '[')
	b = append(b, tag...)
	b = append(b, ']')
	for _, p := range parts {
		b = append(b, ' ')
		b = appendPart(b, p)
	}
	b = append(b, l.eol...)
	_, _ = l.w.Write(b)
	l.buf = b[:0]
}

func appendPart(b []byte, p any) []byte {
	switch v := p.(type) {
	case string:
		return append(b, v...)
	case []byte:
		return append(b, v...)
	case int:
		return conv.AppendInt(b, int64(v))
	case int32:
		return conv.AppendInt(b, int64(v))
	case int64:
		return conv.AppendInt(b, v)
	case uint8:
		return conv.AppendUint(b, uint64(v))
	case uint16:
		return conv.AppendUint(b, uint64(v))
	case uint32:
		return conv.AppendUint(b, uint64(v))
	case uint64:
		return conv.AppendUint(b, v)
	case bool:
		if v {
			return append(b, "true"...)
		}
		return append(b, "false"...)
	case error:
		return append(b, v.Error()...)
	case stringer:
		return append(b, v.String()...)
	case nil:
		return append(b, "<nil>"...)
	default:
		return append(b, "<?>"...)
	}
}
