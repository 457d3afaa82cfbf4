// Package ms430 provides a minimal TinyGo driver for the MS430 multi-sensor
// (air, air quality, light, sound and an optional external particle sensor).
//
// Design notes:
//   - Every data category is one read transaction at a fixed register with a
//     fixed length. A record is handed back only when the whole transaction
//     succeeded; callers never observe a partially decoded record.
//   - Fixed-point fields only; no floating point on the hot path.
//   - The READY line is owned by the caller; Setup takes a wait function so
//     that the caller can keep yielding to its network stack while waiting.
package ms430

import (
	"errors"

	"envserve-go/errcode"

	"tinygo.org/x/drivers"
)

// Errors returned by the driver.
var (
	ErrNoBus      = errors.New("ms430: no bus")
	ErrBadSetting = errors.New("ms430: setting out of range")
)

// Config is applied once at startup.
type Config struct {
	// Address defaults to AddressDefault if zero.
	Address  uint16
	Cycle    CyclePeriod
	Particle ParticleSensor
}

// Device wraps an I2C connection to an MS430.
type Device struct {
	bus      drivers.I2C
	addr     uint16
	cycle    CyclePeriod
	particle ParticleSensor

	// Fixed buffers to avoid per-call heap allocations.
	w [2]byte
	r [maxRecordBytes]byte
}

// New creates a Device. The I2C bus must already be configured.
// This function does not touch the device.
func New(bus drivers.I2C, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = AddressDefault
	}
	return &Device{
		bus:      bus,
		addr:     addr,
		cycle:    cfg.Cycle,
		particle: cfg.Particle,
	}
}

// Address returns the 7-bit bus address in use.
func (d *Device) Address() uint16 { return d.addr }

// Particle returns the configured particle sensor variant.
func (d *Device) Particle() ParticleSensor { return d.particle }

// Transmit writes reg followed by data in one transaction. An empty data
// slice sends a bare command.
func (d *Device) Transmit(reg byte, data []byte) error {
	if d.bus == nil {
		return ErrNoBus
	}
	var w []byte
	if len(data) <= len(d.w)-1 {
		d.w[0] = reg
		n := copy(d.w[1:], data)
		w = d.w[:1+n]
	} else {
		w = append([]byte{reg}, data...)
	}
	if err := d.bus.Tx(d.addr, w, nil); err != nil {
		return errcode.Wrap(errcode.MapDriverErr(err), "ms430 transmit", err)
	}
	return nil
}

// Receive selects reg and reads len(buf) bytes with a repeated start.
func (d *Device) Receive(reg byte, buf []byte) error {
	if d.bus == nil {
		return ErrNoBus
	}
	d.w[0] = reg
	if err := d.bus.Tx(d.addr, d.w[:1], buf); err != nil {
		return errcode.Wrap(errcode.MapDriverErr(err), "ms430 receive", err)
	}
	return nil
}

// Reset issues a soft reset. The READY line is released until the device
// has re-initialised.
func (d *Device) Reset() error { return d.Transmit(CmdReset, nil) }

// Standby stops cycle mode.
func (d *Device) Standby() error { return d.Transmit(CmdStandby, nil) }

// Setup runs the startup sequence: wait for power-on initialisation, reset,
// wait again, then write the particle-sensor and cycle-period settings.
// waitReady must block until the READY line is asserted.
func (d *Device) Setup(waitReady func() error) error {
	if d.cycle > Cycle300s || d.particle > ParticleSDS011 {
		return ErrBadSetting
	}
	if err := waitReady(); err != nil {
		return err
	}
	if err := d.Reset(); err != nil {
		return err
	}
	if err := waitReady(); err != nil {
		return err
	}
	if err := d.Transmit(RegParticleSensorSelect, []byte{byte(d.particle)}); err != nil {
		return err
	}
	return d.Transmit(RegCyclePeriod, []byte{byte(d.cycle)})
}

// StartCycle enters cycle mode; READY is asserted at each cadence boundary.
func (d *Device) StartCycle() error { return d.Transmit(CmdCycleMode, nil) }

// MeasureOnce requests a single on-demand measurement.
func (d *Device) MeasureOnce() error { return d.Transmit(CmdOnDemandMeasure, nil) }

func (d *Device) read(reg byte, n int) ([]byte, error) {
	buf := d.r[:n]
	if err := d.Receive(reg, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadAir reads one air record into out. out is untouched on error.
func (d *Device) ReadAir(out *AirData) error {
	b, err := d.read(RegAirData, AirDataBytes)
	if err != nil {
		return err
	}
	*out = decodeAir(b)
	return nil
}

// ReadAirQuality reads one air-quality record into out. out is untouched on error.
func (d *Device) ReadAirQuality(out *AirQualityData) error {
	b, err := d.read(RegAirQualityData, AirQualityDataBytes)
	if err != nil {
		return err
	}
	*out = decodeAirQuality(b)
	return nil
}

// ReadLight reads one light record into out. out is untouched on error.
func (d *Device) ReadLight(out *LightData) error {
	b, err := d.read(RegLightData, LightDataBytes)
	if err != nil {
		return err
	}
	*out = decodeLight(b)
	return nil
}

// ReadSound reads one sound record into out. out is untouched on error.
func (d *Device) ReadSound(out *SoundData) error {
	b, err := d.read(RegSoundData, SoundDataBytes)
	if err != nil {
		return err
	}
	*out = decodeSound(b)
	return nil
}

// ReadParticle reads one particle record into out. out is untouched on
// error. With no particle sensor configured it returns errcode.Unsupported
// without touching the bus.
func (d *Device) ReadParticle(out *ParticleData) error {
	if d.particle == ParticleOff {
		return errcode.Unsupported
	}
	b, err := d.read(RegParticleData, ParticleDataBytes)
	if err != nil {
		return err
	}
	*out = decodeParticle(b)
	return nil
}
