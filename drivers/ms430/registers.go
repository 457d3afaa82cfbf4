// Package ms430 provides constants for register addresses, command codes and
// settings used by the MS430 environment sensor.
package ms430

const (
	// 7-bit I2C address; depends on the SB (solder bridge) on the board.
	AddressSBOpen   = 0x71
	AddressSBClosed = 0x70
	AddressDefault  = AddressSBOpen

	// --- Settings registers (written once at startup) ---
	RegParticleSensorSelect = 0x07
	RegCyclePeriod          = 0x89

	// --- Read registers: one transaction returns one whole record ---
	RegAirData        = 0x10
	RegAirQualityData = 0x11
	RegLightData      = 0x12
	RegSoundData      = 0x13
	RegParticleData   = 0x14

	// --- Commands (register address only, no payload) ---
	CmdOnDemandMeasure = 0xE1
	CmdReset           = 0xE2
	CmdCycleMode       = 0xE4
	CmdStandby         = 0xE5

	// --- Record lengths (bytes) ---
	AirDataBytes        = 12
	AirQualityDataBytes = 10
	LightDataBytes      = 5
	SoundDataBytes      = 18
	ParticleDataBytes   = 6

	// Largest record; sizes the shared receive buffer.
	maxRecordBytes = SoundDataBytes

	// Temperature byte layout: bit 7 sign, bits 6:0 magnitude.
	tempSignMask  = 0x80
	tempValueMask = 0x7F
)

// SoundBands is the number of fixed frequency bands in a sound record.
const SoundBands = 6

// BandMidHz lists the mid-point frequency of each sound band, in band order.
var BandMidHz = [SoundBands]uint16{125, 250, 500, 1000, 2000, 4000}

// CyclePeriod selects the cycle-mode acquisition cadence.
type CyclePeriod uint8

const (
	Cycle3s   CyclePeriod = 0
	Cycle100s CyclePeriod = 1
	Cycle300s CyclePeriod = 2
)

// ParticleSensor selects the external particulate sensor variant.
type ParticleSensor uint8

const (
	ParticleOff    ParticleSensor = 0
	ParticlePPD42  ParticleSensor = 1
	ParticleSDS011 ParticleSensor = 2
)

func (p ParticleSensor) String() string {
	switch p {
	case ParticleOff:
		return "off"
	case ParticlePPD42:
		return "PPD42"
	case ParticleSDS011:
		return "SDS011"
	default:
		return "unknown"
	}
}

func (c CyclePeriod) String() string {
	switch c {
	case Cycle3s:
		return "3s"
	case Cycle100s:
		return "100s"
	case Cycle300s:
		return "300s"
	default:
		return "unknown"
	}
}
