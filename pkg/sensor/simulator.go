package sensor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/truebner/smt100-go/pkg/bus"
	"github.com/truebner/smt100-go/pkg/units"
)

// Simulator default values.
const (
	DefaultTemperatureCelsius  = 20.0
	DefaultWaterContentPercent = 30.0
)

// Simulator is an offline Capabilities implementation for driving a
// control loop without hardware. Reads return configurable canned
// values, optionally after an artificial delay; FailNext injects one
// error into the next read before reverting to success.
// Simulator is safe for concurrent use.
type Simulator struct {
	mu sync.Mutex

	temperature  units.Temperature
	waterContent units.VolumetricWaterContent
	permittivity units.RelativePermittivity
	rawCounts    units.RawCounts

	delay   time.Duration
	nextErr error
}

// NewSimulator creates a Simulator with plausible defaults:
// 20.0 °C, 30.0 % water content, minimum permittivity, zero raw counts.
func NewSimulator() *Simulator {
	return &Simulator{
		temperature:  units.TemperatureFromDegreeCelsius(DefaultTemperatureCelsius),
		waterContent: units.WaterContentFromPercent(DefaultWaterContentPercent),
		permittivity: units.MinPermittivity(),
	}
}

// SetTemperature sets the canned temperature.
func (s *Simulator) SetTemperature(t units.Temperature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.temperature = t
}

// SetWaterContent sets the canned water content.
func (s *Simulator) SetWaterContent(v units.VolumetricWaterContent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waterContent = v
}

// SetPermittivity sets the canned permittivity.
func (s *Simulator) SetPermittivity(p units.RelativePermittivity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permittivity = p
}

// SetRawCounts sets the canned raw counts.
func (s *Simulator) SetRawCounts(c units.RawCounts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawCounts = c
}

// SetDelay makes every subsequent read take at least d. A context
// deadline expiring during the delay yields bus.ErrTimedOut, like a
// slow device on a real link.
func (s *Simulator) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// FailNext injects err into the next read only. Subsequent reads
// succeed again.
func (s *Simulator) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextErr = err
}

// read applies the artificial delay and the one-shot injected error.
func (s *Simulator) read(ctx context.Context) error {
	s.mu.Lock()
	delay := s.delay
	nextErr := s.nextErr
	s.nextErr = nil
	s.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("simulated read: %w", bus.ErrTimedOut)
			}
			return ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		if err == context.DeadlineExceeded {
			return fmt.Errorf("simulated read: %w", bus.ErrTimedOut)
		}
		return err
	}

	return nextErr
}

// ReadTemperature implements Capabilities.
func (s *Simulator) ReadTemperature(ctx context.Context) (units.Temperature, error) {
	if err := s.read(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temperature, nil
}

// ReadWaterContent implements Capabilities.
func (s *Simulator) ReadWaterContent(ctx context.Context) (units.VolumetricWaterContent, error) {
	if err := s.read(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waterContent, nil
}

// ReadPermittivity implements Capabilities.
func (s *Simulator) ReadPermittivity(ctx context.Context) (units.RelativePermittivity, error) {
	if err := s.read(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permittivity, nil
}

// ReadRawCounts implements Capabilities.
func (s *Simulator) ReadRawCounts(ctx context.Context) (units.RawCounts, error) {
	if err := s.read(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawCounts, nil
}

// Compile-time interface satisfaction check.
var _ Capabilities = (*Simulator)(nil)
