package types

import (
	"sync/atomic"

	"envserve-go/drivers/ms430"
)

// Records is the single authoritative copy of the latest sensor data. The
// zero value is the valid startup state.
type Records struct {
	Air        ms430.AirData
	AirQuality ms430.AirQualityData
	Light      ms430.LightData
	Sound      ms430.SoundData
	Particle   ms430.ParticleData
}

// Category identifies one record type.
type Category uint8

const (
	CatAir Category = 1 << iota
	CatAirQuality
	CatLight
	CatSound
	CatParticle
)

// Freshness records which categories were refreshed by the last cycle.
type Freshness uint8

func (f Freshness) Has(c Category) bool       { return f&Freshness(c) != 0 }
func (f Freshness) With(c Category) Freshness { return f | Freshness(c) }

// AllFresh is the freshness of a cycle in which every read succeeded.
func AllFresh(withParticle bool) Freshness {
	f := Freshness(CatAir | CatAirQuality | CatLight | CatSound)
	if withParticle {
		f = f.With(CatParticle)
	}
	return f
}

// Counters are bumped by the control loop and may be read from any
// goroutine (host metrics exporter).
type Counters struct {
	Cycles            atomic.Uint32
	TransportFailures atomic.Uint32
	Served            atomic.Uint32
	Reconnects        atomic.Uint32
	Overflows         atomic.Uint32

	// PageBytes is the size of the document currently served.
	PageBytes atomic.Uint32
}
