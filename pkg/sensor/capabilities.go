package sensor

import (
	"context"

	"github.com/truebner/smt100-go/pkg/units"
)

// Capabilities is the asynchronous measurement contract of the SMT100.
// Each read round-trips to the device; nothing is cached. The context
// deadline, if any, bounds the request.
type Capabilities interface {
	// ReadTemperature measures the current temperature. The device
	// measures -40 °C to +80 °C (analog version up to +60 °C).
	ReadTemperature(ctx context.Context) (units.Temperature, error)

	// ReadWaterContent measures the current volumetric water content of
	// the medium (soil) around the sensor, 0 % to 60 % (up to 100 %
	// with limited accuracy).
	ReadWaterContent(ctx context.Context) (units.VolumetricWaterContent, error)

	// ReadPermittivity measures the current relative permittivity of
	// the medium around the sensor.
	ReadPermittivity(ctx context.Context) (units.RelativePermittivity, error)

	// ReadRawCounts retrieves the current raw, uncalibrated signal of
	// the sensor.
	ReadRawCounts(ctx context.Context) (units.RawCounts, error)
}
