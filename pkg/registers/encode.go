package registers

import (
	"fmt"
	"math"

	"github.com/truebner/smt100-go/pkg/units"
)

// Encoders are the inverse of the word decoders at the fixed 2-decimal
// precision of the device. They are used by tests and by simulated
// devices; the driver itself never writes measurement registers.

// EncodeTemperature converts a Temperature into its raw register word.
// Temperatures outside the representable range [-100.00, 555.35] fail
// with ErrInvalidData.
func EncodeTemperature(t units.Temperature) (uint16, error) {
	raw := math.Round(t.DegreeCelsius()*100) + 10000
	if raw < 0 || raw > math.MaxUint16 {
		return 0, fmt.Errorf("temperature %s not representable: %w", t, ErrInvalidData)
	}
	return uint16(raw), nil
}

// EncodeWaterContent converts a VolumetricWaterContent into its raw
// register word. Invalid water contents fail with ErrInvalidData.
func EncodeWaterContent(v units.VolumetricWaterContent) (uint16, error) {
	if !v.Valid() {
		return 0, fmt.Errorf("water content %s out of range: %w", v, ErrInvalidData)
	}
	return uint16(math.Round(v.Percent() * 100)), nil
}

// EncodePermittivity converts a RelativePermittivity into its raw
// register word. Invalid or unrepresentable ratios fail with
// ErrInvalidData.
func EncodePermittivity(p units.RelativePermittivity) (uint16, error) {
	if !p.Valid() {
		return 0, fmt.Errorf("permittivity %s out of range: %w", p, ErrInvalidData)
	}
	raw := math.Round(p.Ratio() * 100)
	if raw > math.MaxUint16 {
		return 0, fmt.Errorf("permittivity %s not representable: %w", p, ErrInvalidData)
	}
	return uint16(raw), nil
}

// EncodeRawCounts converts RawCounts into its raw register word.
func EncodeRawCounts(c units.RawCounts) uint16 {
	return uint16(c)
}
