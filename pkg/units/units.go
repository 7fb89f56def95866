package units

import "fmt"

// Temperature is a (thermodynamic) temperature in degrees Celsius.
type Temperature float64

// Device measuring range of the SMT100 (analog version up to +60 °C).
// Informational only; temperature values are never rejected.
const (
	MinTemperatureCelsius = -40.0
	MaxTemperatureCelsius = 80.0
)

// TemperatureFromDegreeCelsius creates a Temperature from degrees Celsius.
func TemperatureFromDegreeCelsius(celsius float64) Temperature {
	return Temperature(celsius)
}

// DegreeCelsius returns the temperature in degrees Celsius.
func (t Temperature) DegreeCelsius() float64 {
	return float64(t)
}

// String returns the temperature as "23.45 °C".
func (t Temperature) String() string {
	return fmt.Sprintf("%.2f °C", float64(t))
}

// VolumetricWaterContent is the water content of the medium (soil) around
// the sensor, as a volumetric percentage (VWC).
type VolumetricWaterContent float64

// Valid range of volumetric water content.
const (
	MinWaterContentPercent = 0.0
	MaxWaterContentPercent = 100.0
)

// WaterContentFromPercent creates a VolumetricWaterContent from a percentage.
func WaterContentFromPercent(percent float64) VolumetricWaterContent {
	return VolumetricWaterContent(percent)
}

// Percent returns the water content as a percentage.
func (v VolumetricWaterContent) Percent() float64 {
	return float64(v)
}

// Valid returns true if the water content is within the physical range
// of 0 % to 100 %.
func (v VolumetricWaterContent) Valid() bool {
	return float64(v) >= MinWaterContentPercent && float64(v) <= MaxWaterContentPercent
}

// String returns the water content as "34.40 %".
func (v VolumetricWaterContent) String() string {
	return fmt.Sprintf("%.2f %%", float64(v))
}

// RelativePermittivity is the relative permittivity or dielectric
// constant (DK) of the medium around the sensor.
type RelativePermittivity float64

// MinPermittivityRatio is the lowest physically possible relative
// permittivity (vacuum).
const MinPermittivityRatio = 1.0

// PermittivityFromRatio creates a RelativePermittivity from a ratio.
func PermittivityFromRatio(ratio float64) RelativePermittivity {
	return RelativePermittivity(ratio)
}

// Ratio returns the permittivity as a dimensionless ratio.
func (p RelativePermittivity) Ratio() float64 {
	return float64(p)
}

// Valid returns true if the permittivity is at least that of vacuum.
func (p RelativePermittivity) Valid() bool {
	return float64(p) >= MinPermittivityRatio
}

// String returns the permittivity as "15.20".
func (p RelativePermittivity) String() string {
	return fmt.Sprintf("%.2f", float64(p))
}

// MinPermittivity returns the lowest valid relative permittivity.
func MinPermittivity() RelativePermittivity {
	return RelativePermittivity(MinPermittivityRatio)
}

// RawCounts is the raw, uncalibrated signal of the sensor.
type RawCounts uint16

// String returns the raw counts as a decimal number.
func (c RawCounts) String() string {
	return fmt.Sprintf("%d", uint16(c))
}
