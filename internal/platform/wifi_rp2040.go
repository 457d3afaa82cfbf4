//go:build rp2040 && ninafw

package platform

import (
	"errors"
	"net/netip"
	"sync/atomic"
	"time"

	"envserve-go/services/diag"
	"envserve-go/services/link"
	"envserve-go/types"

	"tinygo.org/x/drivers/netdev"
	"tinygo.org/x/drivers/netlink"
	"tinygo.org/x/drivers/netlink/probe"
)

const joinTimeout = 10 * time.Second

var _ link.Link = (*wifi)(nil)

// wifi drives the co-processor through netlink. Link events arrive on the
// driver's goroutine and only touch the atomic status.
type wifi struct {
	nl     netlink.Netlinker
	dev    netdev.Netdever
	log    *diag.Logger
	status atomic.Uint32
}

func newWiFi(log *diag.Logger) *wifi {
	nl, dev := probe.Probe()
	w := &wifi{nl: nl, dev: dev, log: log}
	w.set(types.LinkIdle)
	nl.NetNotify(func(e netlink.Event) {
		switch e {
		case netlink.EventNetUp:
			if w.get() != types.LinkAPListening {
				w.set(types.LinkConnected)
			}
		case netlink.EventNetDown:
			if w.get() == types.LinkAPListening {
				w.set(types.LinkAPFailed)
			} else {
				w.set(types.LinkConnectionLost)
			}
		}
	})
	return w
}

func (w *wifi) set(s types.LinkStatus) { w.status.Store(uint32(s)) }
func (w *wifi) get() types.LinkStatus  { return types.LinkStatus(w.status.Load()) }

func (w *wifi) Connect(ssid, pass string) error {
	if w.get() != types.LinkIdle {
		w.nl.NetDisconnect()
	}
	err := w.nl.NetConnect(&netlink.ConnectParams{
		ConnectMode:    netlink.ConnectModeSTA,
		Ssid:           ssid,
		Passphrase:     pass,
		ConnectTimeout: joinTimeout,
	})
	switch {
	case err == nil, errors.Is(err, netlink.ErrConnected):
		w.set(types.LinkConnected)
		return nil
	case errors.Is(err, netlink.ErrMissingSSID):
		w.set(types.LinkNoSSID)
	default:
		w.set(types.LinkConnectFailed)
	}
	return err
}

// CreateAccessPoint starts a network. The co-processor's DHCP server hands
// out the lease range; addr is the address reported to users.
func (w *wifi) CreateAccessPoint(ssid, pass string, addr netip.Addr) error {
	w.set(types.LinkAPListening)
	err := w.nl.NetConnect(&netlink.ConnectParams{
		ConnectMode: netlink.ConnectModeAP,
		Ssid:        ssid,
		Passphrase:  pass,
	})
	if err != nil {
		w.set(types.LinkAPFailed)
		return err
	}
	w.log.Log("wifi", "access point up at", addr.String())
	return nil
}

func (w *wifi) Status() types.LinkStatus { return w.get() }

func (w *wifi) Addr() netip.Addr {
	a, err := w.dev.Addr()
	if err != nil {
		return netip.Addr{}
	}
	return a
}
