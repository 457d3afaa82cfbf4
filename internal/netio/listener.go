// Package netio adapts a blocking net.Listener to the polled, non-blocking
// listener the dispatcher expects. Blocking calls live in small goroutines
// that feed bounded queues; the control loop only ever polls.
package netio

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"envserve-go/services/diag"
	"envserve-go/services/dispatch"
)

var _ dispatch.Listener = (*Listener)(nil)

// Options bound each connection.
type Options struct {
	// ReadTimeout closes a connection whose request stalls; 0 selects 5s.
	ReadTimeout time.Duration
	// WriteTimeout bounds the response write; 0 selects 5s.
	WriteTimeout time.Duration
	// RxBuf is the per-connection byte queue depth, clamped to 64..1024.
	RxBuf int
}

func (o Options) norm() Options {
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 5 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.RxBuf < 64 {
		o.RxBuf = 64
	}
	if o.RxBuf > 1024 {
		o.RxBuf = 1024
	}
	return o
}

// Listener queues at most one accepted connection. While one is pending
// the accept goroutine blocks and further clients wait in the stack's
// backlog.
type Listener struct {
	ln      net.Listener
	opt     Options
	log     *diag.Logger
	pending chan net.Conn
	done    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// Listen opens a TCP listener on addr and starts accepting.
func Listen(ctx context.Context, addr string, opt Options, log *diag.Logger) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return New(ctx, ln, opt, log), nil
}

// New wraps ln. The accept goroutine exits when ctx is done or the
// listener is closed.
func New(ctx context.Context, ln net.Listener, opt Options, log *diag.Logger) *Listener {
	l := &Listener{
		ln:      ln,
		opt:     opt.norm(),
		log:     log,
		pending: make(chan net.Conn, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.accept(ctx)
	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()
	return l
}

func (l *Listener) accept(ctx context.Context) {
	defer close(l.stopped)
	for {
		c, err := l.ln.Accept()
		if err != nil {
			if l.closed.Load() || ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			l.log.Log("net", "accept failed:", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}
		select {
		case l.pending <- c:
		case <-l.done:
			_ = c.Close()
			return
		case <-ctx.Done():
			_ = c.Close()
			return
		}
	}
}

// AcceptIfPending returns the queued connection, if any, without blocking.
func (l *Listener) AcceptIfPending() (dispatch.Conn, bool) {
	select {
	case c := <-l.pending:
		return newConn(c, l.opt), true
	default:
		return nil, false
	}
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Close stops accepting and drops a queued connection. It returns once the
// accept goroutine has exited, so no connection can be queued afterwards.
func (l *Listener) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	close(l.done)
	err := l.ln.Close()
	<-l.stopped
	select {
	case c := <-l.pending:
		_ = c.Close()
	default:
	}
	return err
}
