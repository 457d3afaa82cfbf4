package sim

import (
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"envserve-go/drivers/ms430"
	"envserve-go/errcode"
	"envserve-go/types"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDriverSetupAgainstSim(t *testing.T) {
	s := NewSensor(SensorConfig{})
	defer s.Close()
	d := ms430.New(s, ms430.Config{Cycle: ms430.Cycle100s, Particle: ms430.ParticleSDS011})

	waits := 0
	err := d.Setup(func() error {
		waits++
		waitFor(t, "ready", s.Ready().Asserted)
		s.Ready().Clear()
		return nil
	})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if waits != 2 {
		t.Fatalf("waits = %d, want 2", waits)
	}
	if s.Particle() != ms430.ParticleSDS011 {
		t.Fatalf("particle = %v", s.Particle())
	}
	if got, want := s.Period(), 100*time.Second; got != want {
		t.Fatalf("period = %v, want %v", got, want)
	}
	cmds := s.Commands()
	want := []byte{ms430.CmdReset, ms430.RegParticleSensorSelect, ms430.RegCyclePeriod}
	if string(cmds) != string(want) {
		t.Fatalf("commands = %x, want %x", cmds, want)
	}
}

func TestCycleModeAssertsReady(t *testing.T) {
	s := NewSensor(SensorConfig{Speedup: 1000}) // 3 ms cadence
	defer s.Close()
	d := ms430.New(s, ms430.Config{})
	s.Ready().Clear()

	if err := d.StartCycle(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "first cycle", s.Ready().Asserted)
	s.Ready().Clear()
	waitFor(t, "second cycle", func() bool { return s.Cycles() >= 2 })

	if err := d.Standby(); err != nil {
		t.Fatal(err)
	}
	n := s.Cycles()
	time.Sleep(20 * time.Millisecond)
	if s.Cycles() != n {
		t.Fatal("cycles advanced in standby")
	}
}

func TestReadingsVaryAndCalibrate(t *testing.T) {
	s := NewSensor(SensorConfig{CalibrateAfter: 2})
	d := ms430.New(s, ms430.Config{})

	var first, second ms430.AirData
	var aq ms430.AirQualityData
	if err := d.ReadAir(&first); err != nil {
		t.Fatal(err)
	}
	if err := d.ReadAirQuality(&aq); err != nil {
		t.Fatal(err)
	}
	if aq.Valid() {
		t.Fatal("air quality valid before calibration")
	}

	for i := 0; i < 4; i++ {
		if err := d.MeasureOnce(); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.ReadAir(&second); err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("readings did not change between cycles")
	}
	if err := d.ReadAirQuality(&aq); err != nil {
		t.Fatal(err)
	}
	if aq.Accuracy != 2 || aq.AQIInt == 0 {
		t.Fatalf("after 4 cycles: accuracy=%d aqi=%d", aq.Accuracy, aq.AQIInt)
	}
}

func TestValueRanges(t *testing.T) {
	for n := 0; n < 500; n++ {
		r := values(n, 3, ms430.ParticlePPD42)
		if r.Air.TempInt > 127 || r.Air.TempFr1 > 9 || r.Air.HumidityInt > 100 {
			t.Fatalf("n=%d: air out of range: %+v", n, r.Air)
		}
		if r.AirQuality.Accuracy > 3 || r.AirQuality.BVOCFr2 > 99 {
			t.Fatalf("n=%d: air quality out of range: %+v", n, r.AirQuality)
		}
		if r.Light.IllumFr2 > 99 || r.Sound.PeakMPaFr2 > 99 || r.Particle.ConcFr2 > 99 {
			t.Fatalf("n=%d: fractional digits out of range", n)
		}
	}
	if r := values(1, 3, ms430.ParticleOff); r.Particle != (ms430.ParticleData{}) {
		t.Fatal("particle data without a particle sensor")
	}
}

func TestInjectedFailures(t *testing.T) {
	s := NewSensor(SensorConfig{FailEvery: 2, Address: ms430.AddressSBClosed})
	d := ms430.New(s, ms430.Config{Address: ms430.AddressSBClosed})

	var l ms430.LightData
	if err := d.ReadLight(&l); err != nil {
		t.Fatalf("first read: %v", err)
	}
	err := d.ReadLight(&l)
	if !errors.Is(err, ErrInjected) || errcode.Of(err) != errcode.BusFailure {
		t.Fatalf("second read = %v, want injected bus failure", err)
	}

	wrong := ms430.New(s, ms430.Config{Address: ms430.AddressSBOpen})
	if err := wrong.ReadLight(&l); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("wrong address = %v", err)
	}
	if err := d.Receive(ms430.RegLightData, make([]byte, 3)); !errors.Is(err, ErrBadLength) {
		t.Fatalf("short read = %v", err)
	}
}

func TestLinkScript(t *testing.T) {
	l := NewLink(netip.MustParseAddr("192.168.1.10"))
	l.Unreachable = "nowhere"
	if err := l.Connect("nowhere", ""); !errors.Is(err, ErrNoNetwork) || l.Status() != types.LinkNoSSID {
		t.Fatalf("unreachable: %v %v", err, l.Status())
	}
	l.RefuseJoins(1)
	if err := l.Connect("home", "password1"); !errors.Is(err, ErrJoin) {
		t.Fatalf("refused join = %v", err)
	}
	if err := l.Connect("home", "password1"); err != nil || l.Status() != types.LinkConnected {
		t.Fatalf("join: %v %v", err, l.Status())
	}
	if l.Addr() != netip.MustParseAddr("192.168.1.10") {
		t.Fatalf("addr = %v", l.Addr())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l.DropEvery(ctx, time.Millisecond)
	waitFor(t, "drop", func() bool { return l.Status() == types.LinkConnectionLost })
	cancel()

	if err := l.Connect("home", "password1"); err != nil {
		t.Fatal(err)
	}
	if l.Addr() != netip.MustParseAddr("192.168.1.11") {
		t.Fatalf("addr after rejoin = %v", l.Addr())
	}
	if l.Joins() != 4 || l.Drops() < 1 {
		t.Fatalf("joins=%d drops=%d", l.Joins(), l.Drops())
	}
}

func TestAccessPoint(t *testing.T) {
	l := NewLink(netip.Addr{})
	addr := netip.MustParseAddr("192.168.12.20")
	if err := l.CreateAccessPoint("envserve", "changeme-please", addr); err != nil {
		t.Fatal(err)
	}
	if l.Status() != types.LinkAPListening || l.Addr() != addr {
		t.Fatalf("status=%v addr=%v", l.Status(), l.Addr())
	}
}
