package app

import (
	"context"
	"errors"
	"io"
	"net"
	"net/netip"
	"strings"
	"testing"
	"time"

	"envserve-go/drivers/ms430"
	"envserve-go/errcode"
	"envserve-go/internal/netio"
	"envserve-go/internal/sim"
	"envserve-go/services/config"
	"envserve-go/services/diag"
	"envserve-go/services/dispatch"
	"envserve-go/types"
)

type rig struct {
	sensor *sim.Sensor
	link   *sim.Link
	board  Board
	addr   chan string
}

func newRig() *rig {
	r := &rig{
		sensor: sim.NewSensor(sim.SensorConfig{Speedup: 1000, CalibrateAfter: 1}),
		link:   sim.NewLink(netip.MustParseAddr("10.1.0.2")),
		addr:   make(chan string, 1),
	}
	log := diag.New(io.Discard)
	r.board = Board{
		I2C:   r.sensor,
		Ready: r.sensor.Ready(),
		Link:  r.link,
		Log:   log,
		Listen: func(ctx context.Context) (dispatch.Listener, error) {
			l, err := netio.Listen(ctx, "127.0.0.1:0", netio.Options{}, log)
			if err != nil {
				return nil, err
			}
			r.addr <- l.Addr().String()
			return l, nil
		},
	}
	return r
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Cycle = ms430.Cycle3s
	cfg.SSID = "lab"
	cfg.JoinRetryDelay = 100 * time.Millisecond
	return cfg
}

func fetch(t *testing.T, addr string) string {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(3 * time.Second))
	if _, err := c.Write([]byte("GET / HTTP/1.1\r\nHost: envserve\r\n\r\n")); err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(c)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(b)
}

func TestBootServesAndCycles(t *testing.T) {
	r := newRig()
	defer r.sensor.Close()
	var cnt types.Counters

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a, err := Boot(ctx, testConfig(), r.board, &cnt)
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	addr := <-r.addr

	deadline := time.Now().Add(3 * time.Second)
	for cnt.Cycles.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("only %d cycles", cnt.Cycles.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}

	got := fetch(t, addr)
	if !strings.HasPrefix(got, "HTTP/1.1 200 OK\r\n") || !strings.Contains(got, "Refresh: 3\r\n") {
		t.Fatalf("bad header: %.80q", got)
	}
	if !strings.Contains(got, "Air Quality Index") {
		t.Fatal("air quality not calibrated after several cycles")
	}
	if cnt.Served.Load() != 1 || cnt.PageBytes.Load() == 0 {
		t.Fatalf("served=%d page=%d", cnt.Served.Load(), cnt.PageBytes.Load())
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v", err)
	}
}

func TestRejoinAfterDrop(t *testing.T) {
	r := newRig()
	defer r.sensor.Close()
	var cnt types.Counters

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a, err := Boot(ctx, testConfig(), r.board, &cnt)
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	go func() { _ = a.Run(ctx) }()
	addr := <-r.addr

	r.link.Drop()
	deadline := time.Now().Add(3 * time.Second)
	for cnt.Reconnects.Load() == 0 || r.link.Status() != types.LinkConnected {
		if time.Now().After(deadline) {
			t.Fatal("link not rejoined")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if r.link.Addr() != netip.MustParseAddr("10.1.0.3") {
		t.Fatalf("addr = %v", r.link.Addr())
	}
	if got := fetch(t, addr); !strings.Contains(got, "Indoor Environment Data") {
		t.Fatal("page not served after rejoin")
	}
}

func TestBootFailures(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		cfg := testConfig()
		cfg.SSID = ""
		_, err := Boot(context.Background(), cfg, newRig().board, nil)
		if errcode.Of(err) != errcode.InvalidConfig {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("access point", func(t *testing.T) {
		r := newRig()
		r.link.RefuseJoins(1)
		cfg := testConfig()
		cfg.Mode = types.ModeHost
		_, err := Boot(context.Background(), cfg, r.board, nil)
		if errcode.Of(err) != errcode.APFailed {
			t.Fatalf("err = %v", err)
		}
		if r.link.Status() != types.LinkAPFailed {
			t.Fatalf("status = %v", r.link.Status())
		}
	})

	t.Run("sensor absent", func(t *testing.T) {
		cfg := testConfig()
		cfg.SensorAddr = ms430.AddressSBClosed
		_, err := Boot(context.Background(), cfg, newRig().board, nil)
		if !errors.Is(err, sim.ErrNoDevice) || errcode.Of(err) != errcode.BusFailure {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("join limit", func(t *testing.T) {
		r := newRig()
		r.link.RefuseJoins(5)
		cfg := testConfig()
		cfg.MaxJoinAttempts = 2
		_, err := Boot(context.Background(), cfg, r.board, nil)
		if errcode.Of(err) != errcode.JoinFailed || r.link.Joins() != 2 {
			t.Fatalf("err = %v joins = %d", err, r.link.Joins())
		}
	})
}
