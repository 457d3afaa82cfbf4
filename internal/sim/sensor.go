// Package sim stands in for the board on a host: an MS430 answering its
// register map over drivers.I2C, the data-ready line it drives, and a WiFi
// link whose drops can be scripted.
package sim

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"envserve-go/drivers/ms430"

	"tinygo.org/x/drivers"
)

var (
	ErrNoDevice  = errors.New("sim: no device at address")
	ErrBadLength = errors.New("sim: read length does not match register")
	ErrBadWrite  = errors.New("sim: unknown register or command")
	ErrInjected  = errors.New("sim: injected bus failure")
)

var _ drivers.I2C = (*Sensor)(nil)

// Ready is a level-triggered data-ready flag. It satisfies the control
// loop's ready signal.
type Ready struct{ asserted atomic.Bool }

func (r *Ready) Asserted() bool { return r.asserted.Load() }
func (r *Ready) Clear()         { r.asserted.Store(false) }
func (r *Ready) Assert()        { r.asserted.Store(true) }

// SensorConfig tunes the simulated device.
type SensorConfig struct {
	// Address defaults to ms430.AddressDefault.
	Address uint16
	// Speedup divides the cycle period; 0 or 1 runs in real time.
	Speedup int
	// CalibrateAfter is the number of cycles per air-quality accuracy
	// step; 0 selects 3.
	CalibrateAfter int
	// FailEvery makes every Nth read transaction fail; 0 never fails.
	FailEvery int
}

// Sensor is a simulated MS430. Cycle mode runs a ticker goroutine that
// produces a new measurement and asserts Ready at every period.
type Sensor struct {
	mu   sync.Mutex
	cfg  SensorConfig
	addr uint16

	particle ms430.ParticleSensor
	cycle    ms430.CyclePeriod
	cycles   int
	reads    int
	cmds     []byte

	ready Ready
	stop  chan struct{}
}

// NewSensor returns a powered-on device with Ready already asserted.
func NewSensor(cfg SensorConfig) *Sensor {
	addr := cfg.Address
	if addr == 0 {
		addr = ms430.AddressDefault
	}
	if cfg.CalibrateAfter <= 0 {
		cfg.CalibrateAfter = 3
	}
	if cfg.Speedup <= 0 {
		cfg.Speedup = 1
	}
	s := &Sensor{cfg: cfg, addr: addr, cycle: ms430.Cycle3s}
	s.ready.Assert()
	return s
}

// Ready returns the data-ready line driven by the device.
func (s *Sensor) Ready() *Ready { return &s.ready }

// Tx implements drivers.I2C. A write-only transaction is a command or a
// setting; a transaction with a read buffer returns one record.
func (s *Sensor) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if addr != s.addr || len(w) == 0 {
		return ErrNoDevice
	}
	if len(r) > 0 {
		return s.read(w[0], r)
	}
	return s.write(w[0], w[1:])
}

// Period returns the simulated cadence after Speedup.
func (s *Sensor) Period() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period()
}

func (s *Sensor) period() time.Duration {
	var d time.Duration
	switch s.cycle {
	case ms430.Cycle100s:
		d = 100 * time.Second
	case ms430.Cycle300s:
		d = 300 * time.Second
	default:
		d = 3 * time.Second
	}
	return d / time.Duration(s.cfg.Speedup)
}

// Cycles returns the number of completed measurements.
func (s *Sensor) Cycles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles
}

// Commands returns the command and setting registers written so far.
func (s *Sensor) Commands() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.cmds...)
}

// Particle returns the selected particle sensor.
func (s *Sensor) Particle() ms430.ParticleSensor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.particle
}

// Close stops cycle mode.
func (s *Sensor) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopCycle()
}

// Measure completes one measurement and asserts Ready.
func (s *Sensor) Measure() {
	s.mu.Lock()
	s.cycles++
	s.mu.Unlock()
	s.ready.Assert()
}

func (s *Sensor) write(reg byte, data []byte) error {
	s.cmds = append(s.cmds, reg)
	switch reg {
	case ms430.CmdReset:
		s.stopCycle()
		s.particle = ms430.ParticleOff
		s.cycle = ms430.Cycle3s
		s.cycles = 0
		s.ready.Clear()
		// Re-initialisation completes shortly after the reset.
		time.AfterFunc(time.Millisecond, s.ready.Assert)
	case ms430.CmdCycleMode:
		s.startCycle()
	case ms430.CmdStandby:
		s.stopCycle()
	case ms430.CmdOnDemandMeasure:
		s.cycles++
		s.ready.Assert()
	case ms430.RegParticleSensorSelect:
		if len(data) != 1 || data[0] > byte(ms430.ParticleSDS011) {
			return ErrBadWrite
		}
		s.particle = ms430.ParticleSensor(data[0])
	case ms430.RegCyclePeriod:
		if len(data) != 1 || data[0] > byte(ms430.Cycle300s) {
			return ErrBadWrite
		}
		s.cycle = ms430.CyclePeriod(data[0])
	default:
		return ErrBadWrite
	}
	return nil
}

func (s *Sensor) startCycle() {
	if s.stop != nil {
		return
	}
	stop := make(chan struct{})
	s.stop = stop
	period := s.period()
	go func() {
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				s.Measure()
			}
		}
	}()
}

func (s *Sensor) stopCycle() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *Sensor) read(reg byte, r []byte) error {
	s.reads++
	if s.cfg.FailEvery > 0 && s.reads%s.cfg.FailEvery == 0 {
		return ErrInjected
	}
	v := values(s.cycles, s.cfg.CalibrateAfter, s.particle)
	var want int
	switch reg {
	case ms430.RegAirData:
		want = ms430.AirDataBytes
	case ms430.RegAirQualityData:
		want = ms430.AirQualityDataBytes
	case ms430.RegLightData:
		want = ms430.LightDataBytes
	case ms430.RegSoundData:
		want = ms430.SoundDataBytes
	case ms430.RegParticleData:
		want = ms430.ParticleDataBytes
	default:
		return ErrNoDevice
	}
	if len(r) != want {
		return ErrBadLength
	}
	switch reg {
	case ms430.RegAirData:
		v.Air.Encode(r)
	case ms430.RegAirQualityData:
		v.AirQuality.Encode(r)
	case ms430.RegLightData:
		v.Light.Encode(r)
	case ms430.RegSoundData:
		v.Sound.Encode(r)
	case ms430.RegParticleData:
		v.Particle.Encode(r)
	}
	return nil
}
