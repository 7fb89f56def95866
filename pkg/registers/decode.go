package registers

import (
	"encoding/binary"
	"fmt"

	"github.com/truebner/smt100-go/pkg/units"
)

// DecodeTemperature converts a raw temperature register word into a
// Temperature. The conversion is total: every 16-bit input maps to a
// celsius value in [-100.00, 555.35].
func DecodeTemperature(raw uint16) units.Temperature {
	celsius := float64(int32(raw)-10000) / 100
	return units.TemperatureFromDegreeCelsius(celsius)
}

// DecodeWaterContent converts a raw water content register word into a
// VolumetricWaterContent. Values above 100 % fail with ErrInvalidData;
// the raw word is unsigned, so the lower bound cannot be violated.
func DecodeWaterContent(raw uint16) (units.VolumetricWaterContent, error) {
	vwc := units.WaterContentFromPercent(float64(raw) / 100)
	if !vwc.Valid() {
		return 0, fmt.Errorf("water content %s out of range: %w", vwc, ErrInvalidData)
	}
	return vwc, nil
}

// DecodePermittivity converts a raw permittivity register word into a
// RelativePermittivity. Ratios below 1.0 fail with ErrInvalidData.
func DecodePermittivity(raw uint16) (units.RelativePermittivity, error) {
	ratio := units.PermittivityFromRatio(float64(raw) / 100)
	if !ratio.Valid() {
		return 0, fmt.Errorf("permittivity %s out of range: %w", ratio, ErrInvalidData)
	}
	return ratio, nil
}

// DecodeRawCounts converts a raw counts register word into RawCounts.
func DecodeRawCounts(raw uint16) units.RawCounts {
	return units.RawCounts(raw)
}

// readWord interprets the first two bytes of b as a big-endian register
// word and returns the unconsumed remainder.
func readWord(b []byte) (uint16, []byte, error) {
	if len(b) < RegisterBytes {
		return 0, nil, fmt.Errorf("register word needs %d bytes, got %d: %w",
			RegisterBytes, len(b), ErrInsufficientInput)
	}
	return binary.BigEndian.Uint16(b), b[RegisterBytes:], nil
}

// DecodeTemperatureBytes decodes a temperature from the first register
// word of b and returns the unconsumed remainder.
func DecodeTemperatureBytes(b []byte) (units.Temperature, []byte, error) {
	raw, rest, err := readWord(b)
	if err != nil {
		return 0, nil, err
	}
	return DecodeTemperature(raw), rest, nil
}

// DecodeWaterContentBytes decodes a water content from the first register
// word of b and returns the unconsumed remainder.
func DecodeWaterContentBytes(b []byte) (units.VolumetricWaterContent, []byte, error) {
	raw, rest, err := readWord(b)
	if err != nil {
		return 0, nil, err
	}
	vwc, err := DecodeWaterContent(raw)
	if err != nil {
		return 0, nil, err
	}
	return vwc, rest, nil
}

// DecodePermittivityBytes decodes a permittivity from the first register
// word of b and returns the unconsumed remainder.
func DecodePermittivityBytes(b []byte) (units.RelativePermittivity, []byte, error) {
	raw, rest, err := readWord(b)
	if err != nil {
		return 0, nil, err
	}
	ratio, err := DecodePermittivity(raw)
	if err != nil {
		return 0, nil, err
	}
	return ratio, rest, nil
}

// DecodeRawCountsBytes decodes raw counts from the first register word
// of b and returns the unconsumed remainder.
func DecodeRawCountsBytes(b []byte) (units.RawCounts, []byte, error) {
	raw, rest, err := readWord(b)
	if err != nil {
		return 0, nil, err
	}
	return DecodeRawCounts(raw), rest, nil
}
