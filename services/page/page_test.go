package page

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"envserve-go/drivers/ms430"
	"envserve-go/errcode"
	"envserve-go/types"
)

func assemble(t *testing.T, r *types.Records, opt Options) string {
	t.Helper()
	var doc Document
	if err := Assemble(&doc, r, opt); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return string(doc.Bytes())
}

// widest sets every numeric field to its widest rendering. The air-quality
// labels are chosen separately by worstCase.
func widest() types.Records {
	r := types.Records{
		Air: ms430.AirData{
			TempNegative: true, TempInt: 127, TempFr1: 9,
			PressurePa: 4294967295, HumidityInt: 255, HumidityFr1: 9, GasOhm: 4294967295,
		},
		AirQuality: ms430.AirQualityData{
			AQIInt: 65535, AQIFr1: 9, CO2eInt: 65535, CO2eFr1: 9,
			BVOCInt: 65535, BVOCFr2: 99, Accuracy: 1,
		},
		Light: ms430.LightData{IllumInt: 65535, IllumFr2: 99, White: 65535},
		Sound: ms430.SoundData{SPLInt: 255, SPLFr1: 9, PeakMPaInt: 65535, PeakMPaFr2: 99},
		Particle: ms430.ParticleData{
			DutyInt: 255, DutyFr2: 99, ConcInt: 65535, ConcFr2: 99, Valid: false,
		},
	}
	for i := range r.Sound.BandInt {
		r.Sound.BandInt[i] = 255
		r.Sound.BandFr1[i] = 9
	}
	return r
}

// Widest AQI of each interpretation band.
var aqiBandMax = []uint16{49, 99, 149, 199, 299, 65535}

// worstCase returns the largest document input for opt: widest numbers,
// with the AQI band and accuracy label that render longest.
func worstCase(opt Options) types.Records {
	best := widest()
	bestN := Size(&best, opt)
	for _, aqi := range aqiBandMax {
		for acc := uint8(1); acc <= 3; acc++ {
			r := widest()
			r.AirQuality.AQIInt = aqi
			r.AirQuality.Accuracy = acc
			if n := Size(&r, opt); n > bestN {
				best, bestN = r, n
			}
		}
	}
	return best
}

func TestZeroRecordsScenario(t *testing.T) {
	var r types.Records
	for _, ps := range []ms430.ParticleSensor{ms430.ParticleOff, ms430.ParticlePPD42, ms430.ParticleSDS011} {
		doc := assemble(t, &r, Options{RefreshSeconds: 3, Particle: ps})

		head, body, ok := strings.Cut(doc, "\r\n\r\n")
		if !ok {
			t.Fatal("no header terminator")
		}
		if !strings.HasPrefix(head, "HTTP/1.1 200 OK\r\n") {
			t.Fatalf("status line: %q", head)
		}
		for _, h := range []string{"Content-type: text/html", "Connection: close", "Refresh: 3"} {
			if !strings.Contains(head, h+"\r\n") && !strings.HasSuffix(head, h) {
				t.Fatalf("header %q missing in %q", h, head)
			}
		}
		if !strings.Contains(body, msgAQUncalibrated) {
			t.Fatal("calibration message missing for zero records")
		}
		if strings.Contains(body, "Air Quality Index") {
			t.Fatal("air quality table rendered while uncalibrated")
		}
		// Zeros render as zero values.
		if !strings.Contains(body, "<td class='v'>0.0</td><td>&deg;C</td>") {
			t.Fatal("zero temperature not rendered as 0.0")
		}
		hasParticle := strings.Contains(body, "Air Particulate Data")
		if hasParticle != (ps != ms430.ParticleOff) {
			t.Fatalf("particle sensor %v: section present = %v", ps, hasParticle)
		}
		if !strings.HasSuffix(body, htmlTail) {
			t.Fatal("document not terminated")
		}
	}
}

func TestAirQualityTableRows(t *testing.T) {
	r := types.Records{AirQuality: ms430.AirQualityData{
		AQIInt: 55, AQIFr1: 2, CO2eInt: 712, CO2eFr1: 4, BVOCInt: 1, BVOCFr2: 7, Accuracy: 3,
	}}
	doc := assemble(t, &r, Options{RefreshSeconds: 30})
	if strings.Contains(doc, msgAQUncalibrated) {
		t.Fatal("calibration message shown with accuracy > 0")
	}
	rows := []string{
		"<tr><td>Air Quality Index</td><td class='v'>55.2</td><td>Acceptable</td></tr>",
		"<tr><td>Estimated CO&#8322;</td><td class='v'>712.4</td><td>ppm</td></tr>",
		"<tr><td>Equivalent Breath VOC</td><td class='v'>1.07</td><td>ppm</td></tr>",
		"<tr><td>Measurement Accuracy</td><td class='v'>High accuracy</td><td></td></tr>",
	}
	last := -1
	for _, row := range rows {
		i := strings.Index(doc, row)
		if i < 0 {
			t.Fatalf("row missing: %s", row)
		}
		if i < last {
			t.Fatalf("row out of order: %s", row)
		}
		last = i
	}
	start := strings.Index(doc, "<h2>Air Quality Data</h2>")
	end := strings.Index(doc, "<h2>Sound Data</h2>")
	if n := strings.Count(doc[start:end], "<tr>"); n != 4 {
		t.Fatalf("air quality rows = %d, want 4", n)
	}
}

func TestSectionOrderAndBands(t *testing.T) {
	var r types.Records
	for i := range r.Sound.BandInt {
		r.Sound.BandInt[i] = uint8(40 + i)
		r.Sound.BandFr1[i] = uint8(i)
	}
	doc := assemble(t, &r, Options{RefreshSeconds: 50, Particle: ms430.ParticlePPD42})

	last := -1
	for _, h := range []string{"Air Data", "Air Quality Data", "Sound Data", "Light Data", "Air Particulate Data"} {
		i := strings.Index(doc, "<h2>"+h+"</h2>")
		if i <= last {
			t.Fatalf("section %q out of order", h)
		}
		last = i
	}
	last = -1
	for i, hz := range []string{"125", "250", "500", "1000", "2000", "4000"} {
		want := "Frequency Band " + string(rune('1'+i)) + " (" + hz + " Hz) SPL</td><td class='v'>" +
			string(rune('0'+4)) + string(rune('0'+i)) + "." + string(rune('0'+i))
		j := strings.Index(doc, want)
		if j < 0 || j < last {
			t.Fatalf("band %d row missing or out of order: %q", i+1, want)
		}
		last = j
	}
}

func TestParticleUnitLabels(t *testing.T) {
	r := types.Records{Particle: ms430.ParticleData{ConcInt: 12, ConcFr2: 5, Valid: true}}
	ppd := assemble(t, &r, Options{Particle: ms430.ParticlePPD42})
	if !strings.Contains(ppd, "<td class='v'>12.05</td><td>ppL</td>") {
		t.Fatal("PPD42 unit label missing")
	}
	sds := assemble(t, &r, Options{Particle: ms430.ParticleSDS011})
	if !strings.Contains(sds, "<td class='v'>12.05</td><td>&micro;g/m&sup3;</td>") {
		t.Fatal("SDS011 unit label missing")
	}
	if strings.Contains(sds, msgParticleInit) {
		t.Fatal("initialisation note shown for valid particle data")
	}
	r.Particle.Valid = false
	if !strings.Contains(assemble(t, &r, Options{Particle: ms430.ParticleSDS011}), msgParticleInit) {
		t.Fatal("initialisation note missing")
	}
}

func TestTemperatureUnits(t *testing.T) {
	r := types.Records{Air: ms430.AirData{TempNegative: true, TempInt: 5, TempFr1: 3}}
	if !strings.Contains(assemble(t, &r, Options{}), "<td class='v'>-5.3</td><td>&deg;C</td>") {
		t.Fatal("celsius")
	}
	if !strings.Contains(assemble(t, &r, Options{TempUnit: ms430.Fahrenheit}), "<td class='v'>22.5</td><td>&deg;F</td>") {
		t.Fatal("fahrenheit")
	}
}

func TestWorstCaseFitsCapacity(t *testing.T) {
	for _, unit := range []ms430.TempUnit{ms430.Celsius, ms430.Fahrenheit} {
		for _, ps := range []ms430.ParticleSensor{ms430.ParticleOff, ms430.ParticlePPD42, ms430.ParticleSDS011} {
			opt := Options{RefreshSeconds: 50, Particle: ps, TempUnit: unit, ShowStale: true}
			r := worstCase(opt)
			if n := Size(&r, opt); n > Capacity {
				t.Fatalf("worst case %d bytes exceeds Capacity %d (unit %d, particle %v)", n, Capacity, unit, ps)
			}
			var doc Document
			if err := Assemble(&doc, &r, opt); err != nil {
				t.Fatalf("Assemble worst case: %v", err)
			}
			if doc.Len() != Size(&r, opt) {
				t.Fatalf("Len %d != Size %d", doc.Len(), Size(&r, opt))
			}
		}
	}
}

func TestWorstCaseUsesLongestLabels(t *testing.T) {
	opt := Options{RefreshSeconds: 50, Particle: ms430.ParticleSDS011, ShowStale: true}
	r := worstCase(opt)
	if got := ms430.InterpretAccuracy(r.AirQuality.Accuracy); got != ms430.InterpretAccuracy(2) {
		t.Fatalf("accuracy label %q, want the medium-accuracy text", got)
	}
	if got := ms430.InterpretAQI(r.AirQuality.AQIInt); got != "Substandard" {
		t.Fatalf("AQI label %q, want Substandard", got)
	}
	n := Size(&r, opt)
	base := widest()
	if Size(&base, opt) >= n {
		t.Fatal("label search did not find a larger document")
	}
	for _, aqi := range aqiBandMax {
		for acc := uint8(0); acc <= 3; acc++ {
			v := widest()
			v.AirQuality.AQIInt, v.AirQuality.Accuracy = aqi, acc
			if m := Size(&v, opt); m > n {
				t.Fatalf("aqi %d accuracy %d renders %d bytes, worst case only %d", aqi, acc, m, n)
			}
		}
	}
}

func TestIdempotent(t *testing.T) {
	opt := Options{RefreshSeconds: 30, Particle: ms430.ParticleSDS011}
	r := worstCase(opt)
	var a, b Document
	if err := Assemble(&a, &r, opt); err != nil {
		t.Fatal(err)
	}
	if err := Assemble(&b, &r, opt); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("assemble is not deterministic")
	}
	// Re-assembling into the same buffer must give the same bytes too.
	first := append([]byte(nil), a.Bytes()...)
	if err := Assemble(&a, &r, opt); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, a.Bytes()) {
		t.Fatal("reassembly changed bytes")
	}
}

func TestStaleNotes(t *testing.T) {
	var r types.Records
	fresh := types.AllFresh(false)
	if strings.Contains(assemble(t, &r, Options{ShowStale: true, Fresh: fresh}), msgStale) {
		t.Fatal("stale note shown for fresh data")
	}
	doc := assemble(t, &r, Options{ShowStale: true, Fresh: fresh &^ types.Freshness(types.CatLight)})
	if n := strings.Count(doc, msgStale); n != 1 {
		t.Fatalf("stale notes = %d, want 1", n)
	}
	if strings.Contains(assemble(t, &r, Options{Fresh: 0}), msgStale) {
		t.Fatal("stale note shown with ShowStale off")
	}
}

func TestOverflowLeavesBufferUntouched(t *testing.T) {
	var r types.Records
	dst := bytes.Repeat([]byte{'x'}, 64)
	n, err := assembleInto(dst, &r, Options{RefreshSeconds: 3})
	if !errors.Is(err, errcode.Overflow) {
		t.Fatalf("err = %v, want Overflow", err)
	}
	if n != 0 {
		t.Fatalf("n = %d, want 0", n)
	}
	if !bytes.Equal(dst, bytes.Repeat([]byte{'x'}, 64)) {
		t.Fatal("buffer written despite overflow")
	}
}
