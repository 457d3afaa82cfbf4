// Package page assembles the served HTTP response from the current records.
package page

import (
	"envserve-go/drivers/ms430"
	"envserve-go/errcode"
	"envserve-go/types"
)

// Options are fixed per build except Fresh, which describes the last cycle.
type Options struct {
	RefreshSeconds int
	Particle       ms430.ParticleSensor
	TempUnit       ms430.TempUnit

	// ShowStale adds a note under each section not refreshed by Fresh.
	ShowStale bool
	Fresh     types.Freshness
}

const (
	headStatus = "HTTP/1.1 200 OK\r\n" +
		"Content-type: text/html\r\n" +
		"Connection: close\r\n" +
		"Refresh: "

	htmlHead = "<!DOCTYPE HTML><html><head><meta charset='UTF-8'>" +
		"<title>Indoor Environment Data</title><style>" +
		"body{font-family:Verdana,sans-serif;background:#f6f6f6;color:#222;margin:2em}" +
		"h1{font-size:1.6em}h2{font-size:1.2em;margin:1.4em 0 0.4em}" +
		"table{border-collapse:collapse}td{padding:0.3em 1em;border-bottom:1px solid #ccc}" +
		"td.v{text-align:right;font-weight:bold}p.n{font-style:italic;color:#777}" +
		"</style></head><body><h1>Indoor Environment Data</h1>"

	htmlTail = "</body></html>"

	msgAQUncalibrated = "<p>Air quality values are not yet valid: the sensor is " +
		"still self-calibrating, which takes a few minutes after power-on.</p>"
	msgParticleInit = "<p class='n'>Particle sensor is still initialising; " +
		"values may not be accurate yet.</p>"
	msgStale = "<p class='n'>Not updated in the last cycle.</p>"
)

// Size returns the exact number of bytes Assemble would produce.
func Size(r *types.Records, opt Options) int {
	var b builder
	render(&b, r, opt)
	return b.n
}

// Assemble renders r into doc. It is deterministic: equal inputs give
// byte-identical documents. When the result would exceed Capacity doc is
// left as it was and errcode.Overflow is returned.
func Assemble(doc *Document, r *types.Records, opt Options) error {
	n, err := assembleInto(doc.buf[:], r, opt)
	if err != nil {
		return err
	}
	doc.n = n
	return nil
}

// assembleInto renders into dst only if the whole document fits.
func assembleInto(dst []byte, r *types.Records, opt Options) (int, error) {
	if n := Size(r, opt); n > len(dst) {
		return 0, &errcode.E{C: errcode.Overflow, Op: "page assemble", Msg: "document exceeds capacity"}
	}
	b := builder{out: dst}
	render(&b, r, opt)
	return b.n, nil
}

func render(b *builder, r *types.Records, opt Options) {
	b.str(headStatus)
	refresh := opt.RefreshSeconds
	if refresh < 1 {
		refresh = 1
	}
	b.uint(uint64(refresh))
	b.str("\r\n\r\n")
	b.str(htmlHead)

	renderAir(b, &r.Air, opt)
	stale(b, opt, types.CatAir)
	renderAirQuality(b, &r.AirQuality)
	stale(b, opt, types.CatAirQuality)
	renderSound(b, &r.Sound)
	stale(b, opt, types.CatSound)
	renderLight(b, &r.Light)
	stale(b, opt, types.CatLight)
	if opt.Particle != ms430.ParticleOff {
		renderParticle(b, &r.Particle, opt.Particle)
		stale(b, opt, types.CatParticle)
	}

	b.str(htmlTail)
}

func stale(b *builder, opt Options, c types.Category) {
	if opt.ShowStale && !opt.Fresh.Has(c) {
		b.str(msgStale)
	}
}

func renderAir(b *builder, a *ms430.AirData, opt Options) {
	b.str("<h2>Air Data</h2><table>")
	neg, whole, fr := a.Temperature(opt.TempUnit)
	b.rowStart("Temperature")
	b.signedFixed(neg, uint64(whole), uint32(fr), 1)
	b.rowEnd(opt.TempUnit.Symbol())

	b.rowStart("Pressure")
	b.uint(uint64(a.PressurePa))
	b.rowEnd("Pa")

	b.rowStart("Humidity")
	b.fixed(uint64(a.HumidityInt), uint32(a.HumidityFr1), 1)
	b.rowEnd("%")

	b.rowStart("Gas Sensor Resistance")
	b.uint(uint64(a.GasOhm))
	b.rowEnd("&#937;")
	b.str("</table>")
}

func renderAirQuality(b *builder, q *ms430.AirQualityData) {
	b.str("<h2>Air Quality Data</h2>")
	if !q.Valid() {
		b.str(msgAQUncalibrated)
		return
	}
	b.str("<table>")
	b.rowStart("Air Quality Index")
	b.fixed(uint64(q.AQIInt), uint32(q.AQIFr1), 1)
	b.rowEnd(ms430.InterpretAQI(q.AQIInt))

	b.rowStart("Estimated CO&#8322;")
	b.fixed(uint64(q.CO2eInt), uint32(q.CO2eFr1), 1)
	b.rowEnd("ppm")

	b.rowStart("Equivalent Breath VOC")
	b.fixed(uint64(q.BVOCInt), uint32(q.BVOCFr2), 2)
	b.rowEnd("ppm")

	b.rowStart("Measurement Accuracy")
	b.str(ms430.InterpretAccuracy(q.Accuracy))
	b.rowEnd("")
	b.str("</table>")
}

func renderSound(b *builder, s *ms430.SoundData) {
	b.str("<h2>Sound Data</h2><table>")
	b.rowStart("A-weighted Sound Pressure Level")
	b.fixed(uint64(s.SPLInt), uint32(s.SPLFr1), 1)
	b.rowEnd("dBA")

	for i := 0; i < ms430.SoundBands; i++ {
		b.str("<tr><td>Frequency Band ")
		b.uint(uint64(i + 1))
		b.str(" (")
		b.uint(uint64(ms430.BandMidHz[i]))
		b.str(" Hz) SPL</td><td class='v'>")
		b.fixed(uint64(s.BandInt[i]), uint32(s.BandFr1[i]), 1)
		b.rowEnd("dB")
	}

	b.rowStart("Peak Sound Amplitude")
	b.fixed(uint64(s.PeakMPaInt), uint32(s.PeakMPaFr2), 2)
	b.rowEnd("mPa")
	b.str("</table>")
}

func renderLight(b *builder, l *ms430.LightData) {
	b.str("<h2>Light Data</h2><table>")
	b.rowStart("Illuminance")
	b.fixed(uint64(l.IllumInt), uint32(l.IllumFr2), 2)
	b.rowEnd("lux")

	b.rowStart("White Light Level")
	b.uint(uint64(l.White))
	b.rowEnd("")
	b.str("</table>")
}

func renderParticle(b *builder, p *ms430.ParticleData, sensor ms430.ParticleSensor) {
	b.str("<h2>Air Particulate Data</h2><table>")
	b.rowStart("Sensor Duty Cycle")
	b.fixed(uint64(p.DutyInt), uint32(p.DutyFr2), 2)
	b.rowEnd("%")

	b.rowStart("Particle Concentration")
	b.fixed(uint64(p.ConcInt), uint32(p.ConcFr2), 2)
	b.rowEnd(ms430.ParticleUnit(sensor))
	b.str("</table>")
	if !p.Valid {
		b.str(msgParticleInit)
	}
}
