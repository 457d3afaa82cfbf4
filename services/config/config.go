package config

import (
	"net/netip"
	"time"

	"envserve-go/drivers/ms430"
	"envserve-go/errcode"
	"envserve-go/types"
	"envserve-go/x/mathx"
)

// Config is fixed at build time and applied once at startup.
type Config struct {
	Cycle    ms430.CyclePeriod
	Mode     types.LinkMode
	SSID     string
	Password string
	HostAddr netip.Addr // host mode only

	Particle   ms430.ParticleSensor
	TempUnit   ms430.TempUnit
	SensorAddr uint16 // 0 selects ms430.AddressDefault

	// ShowStale adds a note to sections whose last read failed.
	ShowStale bool

	JoinRetryDelay  time.Duration
	MaxJoinAttempts int // 0 retries until connected

	// IdleInterval is slept on every idle poll so the network stack runs.
	IdleInterval time.Duration
}

// Default returns the embedded build-time configuration.
func Default() Config {
	return Config{
		Cycle:          defaultCycle,
		Mode:           defaultMode,
		SSID:           defaultSSID,
		Password:       defaultPassword,
		HostAddr:       netip.MustParseAddr(defaultHostAddr),
		Particle:       defaultParticle,
		TempUnit:       defaultTempUnit,
		JoinRetryDelay: defaultJoinRetryDelay,
		IdleInterval:   defaultIdleInterval,
	}
}

func invalid(msg string) error {
	return &errcode.E{C: errcode.InvalidConfig, Op: "config", Msg: msg}
}

// Validate rejects combinations the firmware cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Cycle > ms430.Cycle300s:
		return invalid("unknown cycle period")
	case c.Particle > ms430.ParticleSDS011:
		return invalid("unknown particle sensor")
	case c.TempUnit > ms430.Fahrenheit:
		return invalid("unknown temperature unit")
	case c.Mode > types.ModeHost:
		return invalid("unknown link mode")
	case c.SSID == "":
		return invalid("missing ssid")
	case c.Password != "" && len(c.Password) < 8:
		return invalid("password shorter than 8 characters")
	case c.Mode == types.ModeHost && (!c.HostAddr.IsValid() || !c.HostAddr.Is4()):
		return invalid("host mode needs a fixed IPv4 address")
	case c.SensorAddr != 0 && c.SensorAddr != ms430.AddressSBOpen && c.SensorAddr != ms430.AddressSBClosed:
		return invalid("sensor address must be 0x70 or 0x71")
	case c.MaxJoinAttempts < 0:
		return invalid("negative join attempt limit")
	}
	return nil
}

// Normalise fills zero timings and clamps the rest into workable ranges.
func (c Config) Normalise() Config {
	if c.JoinRetryDelay <= 0 {
		c.JoinRetryDelay = defaultJoinRetryDelay
	}
	c.JoinRetryDelay = mathx.Clamp(c.JoinRetryDelay, 100*time.Millisecond, time.Minute)
	c.IdleInterval = mathx.Clamp(c.IdleInterval, 0, 100*time.Millisecond)
	if c.SensorAddr == 0 {
		c.SensorAddr = ms430.AddressDefault
	}
	return c
}

// CyclePeriod returns the time between sensor updates.
func (c Config) CyclePeriod() time.Duration {
	switch c.Cycle {
	case ms430.Cycle3s:
		return 3 * time.Second
	case ms430.Cycle300s:
		return 300 * time.Second
	default:
		return 100 * time.Second
	}
}

// RefreshSeconds is the page refresh hint. Refresh is not synchronised with
// acquisition, so it grows with the cadence.
func (c Config) RefreshSeconds() int {
	switch c.Cycle {
	case ms430.Cycle3s:
		return 3
	case ms430.Cycle300s:
		return 50
	default:
		return 30
	}
}

// Sensor returns the driver configuration.
func (c Config) Sensor() ms430.Config {
	return ms430.Config{Address: c.SensorAddr, Cycle: c.Cycle, Particle: c.Particle}
}
