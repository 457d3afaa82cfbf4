package ms430

// Records are fixed-point: every fractional field's digit count is part of
// its name (Fr1 = tenths, Fr2 = hundredths). Multi-byte fields arrive
// little-endian.

// AirData is one air-category record.
type AirData struct {
	TempNegative bool
	TempInt      uint8 // 0..127 °C
	TempFr1      uint8
	PressurePa   uint32
	HumidityInt  uint8 // %RH
	HumidityFr1  uint8
	GasOhm       uint32
}

// AirQualityData is one air-quality record. Values are only meaningful
// when Accuracy > 0.
type AirQualityData struct {
	AQIInt   uint16
	AQIFr1   uint8
	CO2eInt  uint16 // ppm
	CO2eFr1  uint8
	BVOCInt  uint16 // ppm
	BVOCFr2  uint8
	Accuracy uint8 // 0 = not yet calibrated .. 3 = high
}

// Valid reports whether self-calibration has produced usable values.
func (a AirQualityData) Valid() bool { return a.Accuracy > 0 }

// LightData is one light-category record.
type LightData struct {
	IllumInt uint16 // lux
	IllumFr2 uint8
	White    uint16
}

// SoundData is one sound-category record.
type SoundData struct {
	SPLInt     uint8 // dBA
	SPLFr1     uint8
	BandInt    [SoundBands]uint8 // dB
	BandFr1    [SoundBands]uint8
	PeakMPaInt uint16
	PeakMPaFr2 uint8
	Stable     bool
}

// ParticleData is one particulate record. Units of Concentration depend on
// the configured ParticleSensor.
type ParticleData struct {
	DutyInt uint8 // %
	DutyFr2 uint8
	ConcInt uint16
	ConcFr2 uint8
	Valid   bool // false during the sensor's initialisation window
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func decodeAir(b []byte) AirData {
	return AirData{
		TempNegative: b[0]&tempSignMask != 0,
		TempInt:      b[0] & tempValueMask,
		TempFr1:      b[1],
		PressurePa:   le32(b[2:6]),
		HumidityInt:  b[6],
		HumidityFr1:  b[7],
		GasOhm:       le32(b[8:12]),
	}
}

func decodeAirQuality(b []byte) AirQualityData {
	return AirQualityData{
		AQIInt:   le16(b[0:2]),
		AQIFr1:   b[2],
		CO2eInt:  le16(b[3:5]),
		CO2eFr1:  b[5],
		BVOCInt:  le16(b[6:8]),
		BVOCFr2:  b[8],
		Accuracy: b[9],
	}
}

func decodeLight(b []byte) LightData {
	return LightData{
		IllumInt: le16(b[0:2]),
		IllumFr2: b[2],
		White:    le16(b[3:5]),
	}
}

func decodeSound(b []byte) SoundData {
	s := SoundData{
		SPLInt: b[0],
		SPLFr1: b[1],
	}
	copy(s.BandInt[:], b[2:2+SoundBands])
	copy(s.BandFr1[:], b[2+SoundBands:2+2*SoundBands])
	o := 2 + 2*SoundBands
	s.PeakMPaInt = le16(b[o : o+2])
	s.PeakMPaFr2 = b[o+2]
	s.Stable = b[o+3] != 0
	return s
}

func decodeParticle(b []byte) ParticleData {
	return ParticleData{
		DutyInt: b[0],
		DutyFr2: b[1],
		ConcInt: le16(b[2:4]),
		ConcFr2: b[4],
		Valid:   b[5] != 0,
	}
}

// Encoders mirror the decoders; used by simulators and tests.

func put16(b []byte, v uint16) { b[0], b[1] = byte(v), byte(v>>8) }
func put32(b []byte, v uint32) { b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24) }

// Encode writes the wire form of a into b (len AirDataBytes).
func (a AirData) Encode(b []byte) {
	t := a.TempInt & tempValueMask
	if a.TempNegative {
		t |= tempSignMask
	}
	b[0], b[1] = t, a.TempFr1
	put32(b[2:6], a.PressurePa)
	b[6], b[7] = a.HumidityInt, a.HumidityFr1
	put32(b[8:12], a.GasOhm)
}

// Encode writes the wire form of a into b (len AirQualityDataBytes).
func (a AirQualityData) Encode(b []byte) {
	put16(b[0:2], a.AQIInt)
	b[2] = a.AQIFr1
	put16(b[3:5], a.CO2eInt)
	b[5] = a.CO2eFr1
	put16(b[6:8], a.BVOCInt)
	b[8], b[9] = a.BVOCFr2, a.Accuracy
}

// Encode writes the wire form of l into b (len LightDataBytes).
func (l LightData) Encode(b []byte) {
	put16(b[0:2], l.IllumInt)
	b[2] = l.IllumFr2
	put16(b[3:5], l.White)
}

// Encode writes the wire form of s into b (len SoundDataBytes).
func (s SoundData) Encode(b []byte) {
	b[0], b[1] = s.SPLInt, s.SPLFr1
	copy(b[2:2+SoundBands], s.BandInt[:])
	copy(b[2+SoundBands:2+2*SoundBands], s.BandFr1[:])
	o := 2 + 2*SoundBands
	put16(b[o:o+2], s.PeakMPaInt)
	b[o+2] = s.PeakMPaFr2
	b[o+3] = 0
	if s.Stable {
		b[o+3] = 1
	}
}

// Encode writes the wire form of p into b (len ParticleDataBytes).
func (p ParticleData) Encode(b []byte) {
	b[0], b[1] = p.DutyInt, p.DutyFr2
	put16(b[2:4], p.ConcInt)
	b[4] = p.ConcFr2
	b[5] = 0
	if p.Valid {
		b[5] = 1
	}
}
