package sim

import (
	"context"
	"errors"
	"net/netip"
	"sync"
	"time"

	"envserve-go/types"
)

var (
	ErrJoin      = errors.New("sim: join refused")
	ErrNoNetwork = errors.New("sim: ssid not found")
)

// Link is a simulated WiFi co-processor. It joins any network except the
// one named in Unreachable, and can be told to drop or refuse joins.
type Link struct {
	mu     sync.Mutex
	status types.LinkStatus
	addr   netip.Addr
	next   netip.Addr
	refuse int
	joins  int
	drops  int

	// Unreachable is an SSID that is never found.
	Unreachable string
}

// NewLink returns an idle link that will lease addr on join.
func NewLink(addr netip.Addr) *Link {
	return &Link{status: types.LinkIdle, next: addr}
}

func (l *Link) Connect(ssid, pass string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.joins++
	switch {
	case ssid == "" || ssid == l.Unreachable:
		l.status = types.LinkNoSSID
		return ErrNoNetwork
	case l.refuse > 0:
		l.refuse--
		l.status = types.LinkConnectFailed
		return ErrJoin
	}
	l.status = types.LinkConnected
	l.addr = l.next
	// Each lease after a drop hands out the next address.
	l.next = l.next.Next()
	return nil
}

func (l *Link) CreateAccessPoint(ssid, pass string, addr netip.Addr) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.refuse > 0 {
		l.refuse--
		l.status = types.LinkAPFailed
		return ErrJoin
	}
	l.status = types.LinkAPListening
	l.addr = addr
	return nil
}

func (l *Link) Status() types.LinkStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

func (l *Link) Addr() netip.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addr
}

// Drop loses a joined connection.
func (l *Link) Drop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.status == types.LinkConnected {
		l.status = types.LinkConnectionLost
		l.drops++
	}
}

// RefuseJoins makes the next n join or host attempts fail.
func (l *Link) RefuseJoins(n int) {
	l.mu.Lock()
	l.refuse = n
	l.mu.Unlock()
}

// Joins returns the number of join attempts made.
func (l *Link) Joins() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.joins
}

// Drops returns the number of connections lost.
func (l *Link) Drops() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.drops
}

// DropEvery drops the link every d until ctx is done.
func (l *Link) DropEvery(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Drop()
			}
		}
	}()
}
