//go:build !rp2040

package platform

import (
	"context"
	"io"
	"net/netip"
	"os"
	"time"

	"envserve-go/internal/netio"
	"envserve-go/internal/sim"
	"envserve-go/services/app"
	"envserve-go/services/diag"
	"envserve-go/services/dispatch"
)

// HostOptions configure the simulated board.
type HostOptions struct {
	Listen    string        // TCP listen address
	Speedup   int           // divides the sensor cadence
	FailEvery int           // every Nth sensor read fails; 0 never
	DropEvery time.Duration // link drop interval; 0 never
	LeaseAddr netip.Addr    // first address leased in joining mode
	Out       io.Writer     // diagnostics; nil selects stdout
}

// DefaultHostOptions serve on :8080 in real time.
func DefaultHostOptions() HostOptions {
	return HostOptions{
		Listen:    ":8080",
		Speedup:   1,
		LeaseAddr: netip.MustParseAddr("127.0.0.1"),
	}
}

// Host is the simulated board plus the handles a front end can script.
type Host struct {
	Board  app.Board
	Sensor *sim.Sensor
	Link   *sim.Link

	listening chan string
}

// OpenHost builds a simulated board. Link drops start with ctx.
func OpenHost(ctx context.Context, opt HostOptions) *Host {
	out := opt.Out
	if out == nil {
		out = os.Stdout
	}
	log := diag.New(out)

	lease := opt.LeaseAddr
	if !lease.IsValid() {
		lease = netip.MustParseAddr("127.0.0.1")
	}
	h := &Host{
		Sensor:    sim.NewSensor(sim.SensorConfig{Speedup: opt.Speedup, FailEvery: opt.FailEvery}),
		Link:      sim.NewLink(lease),
		listening: make(chan string, 1),
	}
	h.Link.DropEvery(ctx, opt.DropEvery)

	h.Board = app.Board{
		I2C:   h.Sensor,
		Ready: h.Sensor.Ready(),
		Link:  h.Link,
		Log:   log,
		Listen: func(ctx context.Context) (dispatch.Listener, error) {
			l, err := netio.Listen(ctx, opt.Listen, netio.Options{}, log)
			if err != nil {
				return nil, err
			}
			a := l.Addr().String()
			log.Log("net", "listening on", a)
			select {
			case h.listening <- a:
			default:
			}
			return l, nil
		},
	}
	return h
}

// Listening delivers the bound listen address once the board is serving.
func (h *Host) Listening() <-chan string { return h.listening }

// Close stops the simulated sensor.
func (h *Host) Close() { h.Sensor.Close() }

// Open returns the default simulated board.
func Open(ctx context.Context) (app.Board, error) {
	return OpenHost(ctx, DefaultHostOptions()).Board, nil
}
