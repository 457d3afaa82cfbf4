package netio

import (
	"net"
	"sync/atomic"
	"time"

	"envserve-go/services/dispatch"
)

var _ dispatch.Conn = (*conn)(nil)

// conn reads through a goroutine into a byte queue. The queue is closed
// when the peer closes, the read deadline passes or Close is called.
type conn struct {
	c      net.Conn
	opt    Options
	rx     chan byte
	stop   chan struct{}
	closed atomic.Bool
	eof    bool // rx drained after close; touched by the polling side only
}

func newConn(c net.Conn, opt Options) *conn {
	k := &conn{
		c:    c,
		opt:  opt,
		rx:   make(chan byte, opt.RxBuf),
		stop: make(chan struct{}),
	}
	_ = c.SetReadDeadline(time.Now().Add(opt.ReadTimeout))
	go k.read()
	return k
}

func (k *conn) read() {
	defer close(k.rx)
	var buf [128]byte
	for {
		n, err := k.c.Read(buf[:])
		for _, b := range buf[:n] {
			select {
			case k.rx <- b:
			case <-k.stop:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// IsOpen reports whether more request bytes may still arrive.
func (k *conn) IsOpen() bool { return !k.closed.Load() && !k.eof }

// TryReadByte returns the next queued byte without blocking.
func (k *conn) TryReadByte() (byte, bool) {
	select {
	case b, ok := <-k.rx:
		if !ok {
			k.eof = true
			return 0, false
		}
		return b, true
	default:
		return 0, false
	}
}

func (k *conn) Write(p []byte) (int, error) {
	_ = k.c.SetWriteDeadline(time.Now().Add(k.opt.WriteTimeout))
	return k.c.Write(p)
}

func (k *conn) Close() error {
	if k.closed.Swap(true) {
		return nil
	}
	close(k.stop)
	return k.c.Close()
}
