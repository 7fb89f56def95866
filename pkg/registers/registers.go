package registers

import "errors"

// Codec errors.
var (
	// ErrInsufficientInput indicates fewer input bytes than a register requires.
	ErrInsufficientInput = errors.New("insufficient input")

	// ErrInvalidData indicates a register value outside the quantity's
	// valid physical range, or a malformed device response.
	ErrInvalidData = errors.New("invalid data")
)

// Holding register addresses of the SMT100.
const (
	// TemperatureReg holds the temperature measurement.
	TemperatureReg uint16 = 0x0000

	// WaterContentReg holds the volumetric water content measurement.
	WaterContentReg uint16 = 0x0001

	// PermittivityReg holds the relative permittivity measurement.
	PermittivityReg uint16 = 0x0002

	// RawCountsReg holds the raw, uncalibrated sensor signal.
	RawCountsReg uint16 = 0x0003

	// SlaveAddressReg is the write-only register used to assign a new
	// slave address during provisioning.
	SlaveAddressReg uint16 = 0x0004
)

// RegisterCount is the register count of every SMT100 quantity: one
// 16-bit word each.
const RegisterCount uint16 = 1

// RegisterBytes is the response payload size of a single register read.
const RegisterBytes = 2

// Quantity identifies a measured quantity of the sensor.
type Quantity uint8

const (
	// QuantityTemperature is the temperature in °C.
	QuantityTemperature Quantity = iota

	// QuantityWaterContent is the volumetric water content in %.
	QuantityWaterContent

	// QuantityPermittivity is the relative permittivity ratio.
	QuantityPermittivity

	// QuantityRawCounts is the uncalibrated sensor signal.
	QuantityRawCounts
)

// String returns the quantity name.
func (q Quantity) String() string {
	switch q {
	case QuantityTemperature:
		return "temperature"
	case QuantityWaterContent:
		return "water_content"
	case QuantityPermittivity:
		return "permittivity"
	case QuantityRawCounts:
		return "raw_counts"
	default:
		return "unknown"
	}
}

// Block returns the holding register block of a quantity as
// (start address, register count). The count is always RegisterCount.
func Block(q Quantity) (start, count uint16) {
	switch q {
	case QuantityTemperature:
		return TemperatureReg, RegisterCount
	case QuantityWaterContent:
		return WaterContentReg, RegisterCount
	case QuantityPermittivity:
		return PermittivityReg, RegisterCount
	case QuantityRawCounts:
		return RawCountsReg, RegisterCount
	default:
		return 0, 0
	}
}
