package acquire

import (
	"envserve-go/drivers/ms430"
	"envserve-go/services/diag"
	"envserve-go/types"
)

// Sensor reads whole records; a failed read leaves its argument untouched.
// *ms430.Device satisfies it.
type Sensor interface {
	ReadAir(out *ms430.AirData) error
	ReadAirQuality(out *ms430.AirQualityData) error
	ReadLight(out *ms430.LightData) error
	ReadSound(out *ms430.SoundData) error
	ReadParticle(out *ms430.ParticleData) error
}

var _ Sensor = (*ms430.Device)(nil)

// Readout refreshes every configured category of r. A failed category keeps
// its previous value and is left out of the returned Freshness; there is no
// retry within the cycle.
func Readout(s Sensor, r *types.Records, withParticle bool, log *diag.Logger) (fresh types.Freshness, failures int) {
	note := func(c types.Category, name string, err error) {
		if err == nil {
			fresh = fresh.With(c)
			return
		}
		failures++
		log.Log("sense", name, "read failed:", err)
	}
	note(types.CatAir, "air", s.ReadAir(&r.Air))
	note(types.CatAirQuality, "air quality", s.ReadAirQuality(&r.AirQuality))
	note(types.CatLight, "light", s.ReadLight(&r.Light))
	note(types.CatSound, "sound", s.ReadSound(&r.Sound))
	if withParticle {
		note(types.CatParticle, "particle", s.ReadParticle(&r.Particle))
	}
	return fresh, failures
}
