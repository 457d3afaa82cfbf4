package ms430

import "envserve-go/x/mathx"

// TempUnit selects the display unit for temperature.
type TempUnit uint8

const (
	Celsius TempUnit = iota
	Fahrenheit
)

// Symbol returns the HTML unit label.
func (u TempUnit) Symbol() string {
	if u == Fahrenheit {
		return "&deg;F"
	}
	return "&deg;C"
}

// DeciCelsius returns the air temperature in tenths of °C.
func (a AirData) DeciCelsius() int32 {
	v := int32(a.TempInt)*10 + int32(a.TempFr1%10)
	if a.TempNegative {
		return -v
	}
	return v
}

// DeciFahrenheit converts tenths of °C to tenths of °F, rounding half away
// from zero.
func DeciFahrenheit(deciC int32) int32 {
	return mathx.RoundDivSigned(deciC*9, 5) + 320
}

// SplitDeci splits a signed tenths value into sign, whole and tenths digit.
func SplitDeci(v int32) (neg bool, whole uint32, fr1 uint8) {
	if v < 0 {
		neg = true
		v = -v
	}
	return neg, uint32(v / 10), uint8(v % 10)
}

// Temperature returns the display parts of a's temperature in unit u.
func (a AirData) Temperature(u TempUnit) (neg bool, whole uint32, fr1 uint8) {
	v := a.DeciCelsius()
	if u == Fahrenheit {
		v = DeciFahrenheit(v)
	}
	return SplitDeci(v)
}

// InterpretAQI names the band an air-quality index falls in.
func InterpretAQI(aqi uint16) string {
	switch {
	case aqi < 50:
		return "Good"
	case aqi < 100:
		return "Acceptable"
	case aqi < 150:
		return "Substandard"
	case aqi < 200:
		return "Poor"
	case aqi < 300:
		return "Bad"
	default:
		return "Very bad"
	}
}

// InterpretAccuracy describes the self-calibration stage.
func InterpretAccuracy(acc uint8) string {
	switch acc {
	case 0:
		return "Not yet valid, self-calibration incomplete"
	case 1:
		return "Low accuracy, self-calibration ongoing"
	case 2:
		return "Medium accuracy, self-calibration ongoing"
	case 3:
		return "High accuracy"
	default:
		return "Unknown"
	}
}

// ParticleUnit returns the HTML concentration unit for sensor p, or "" when
// no sensor is configured.
func ParticleUnit(p ParticleSensor) string {
	switch p {
	case ParticlePPD42:
		return "ppL"
	case ParticleSDS011:
		return "&micro;g/m&sup3;"
	default:
		return ""
	}
}
