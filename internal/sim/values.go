package sim

import (
	"envserve-go/drivers/ms430"
	"envserve-go/types"
	"envserve-go/x/mathx"
)

// tri is a triangle wave over n: 0 up to span and back, one unit per cycle.
func tri(n, span int) int {
	if span <= 0 {
		return 0
	}
	p := n % (2 * span)
	if p > span {
		p = 2*span - p
	}
	return p
}

// values returns the readings of measurement n. Each quantity drifts on
// its own triangle wave so successive pages differ.
func values(n, calibrateAfter int, particle ms430.ParticleSensor) types.Records {
	var r types.Records

	// Temperature sweeps -2.0 .. 27.0 degC so the sign path is exercised.
	deci := -20 + tri(n, 29)*10 + n%10
	r.Air.TempNegative = deci < 0
	if deci < 0 {
		deci = -deci
	}
	r.Air.TempInt = uint8(deci / 10)
	r.Air.TempFr1 = uint8(deci % 10)
	r.Air.PressurePa = uint32(100800 + tri(n, 60)*17)
	hum := 350 + tri(n, 25)*9
	r.Air.HumidityInt = uint8(hum / 10)
	r.Air.HumidityFr1 = uint8(hum % 10)
	r.Air.GasOhm = uint32(80000 + tri(n, 50)*731)

	r.AirQuality.Accuracy = uint8(mathx.Clamp(n/calibrateAfter, 0, 3))
	if r.AirQuality.Valid() {
		aqi := 250 + tri(n, 40)*45 // 25.0 .. 205.0
		r.AirQuality.AQIInt = uint16(aqi / 10)
		r.AirQuality.AQIFr1 = uint8(aqi % 10)
		co2 := 4200 + tri(n, 30)*230
		r.AirQuality.CO2eInt = uint16(co2 / 10)
		r.AirQuality.CO2eFr1 = uint8(co2 % 10)
		voc := 50 + tri(n, 20)*13
		r.AirQuality.BVOCInt = uint16(voc / 100)
		r.AirQuality.BVOCFr2 = uint8(voc % 100)
	}

	lux := 3000 + tri(n, 24)*2571
	r.Light.IllumInt = uint16(lux / 100)
	r.Light.IllumFr2 = uint8(lux % 100)
	r.Light.White = uint16(200 + tri(n, 24)*150)

	spl := 380 + tri(n, 16)*17
	r.Sound.SPLInt = uint8(spl / 10)
	r.Sound.SPLFr1 = uint8(spl % 10)
	for i := range r.Sound.BandInt {
		b := spl - 40 - i*25 + tri(n+i*3, 8)*6
		b = mathx.Max(b, 0)
		r.Sound.BandInt[i] = uint8(b / 10)
		r.Sound.BandFr1[i] = uint8(b % 10)
	}
	peak := 1500 + tri(n, 12)*1100
	r.Sound.PeakMPaInt = uint16(peak / 100)
	r.Sound.PeakMPaFr2 = uint8(peak % 100)
	r.Sound.Stable = n > 0

	if particle != ms430.ParticleOff {
		r.Particle.Valid = n >= 2
		duty := 120 + tri(n, 15)*37
		r.Particle.DutyInt = uint8(duty / 100)
		r.Particle.DutyFr2 = uint8(duty % 100)
		conc := 1800 + tri(n, 15)*913
		r.Particle.ConcInt = uint16(conc / 100)
		r.Particle.ConcFr2 = uint8(conc % 100)
	}
	return r
}
