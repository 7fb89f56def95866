// Package units defines the physical quantities measured by the TRUEBNER
// SMT100 soil moisture sensor.
//
// Each quantity is a small value type with unit-safe constructors and
// accessors. Quantities with a bounded physical range (volumetric water
// content, relative permittivity) carry a Valid predicate; temperature and
// raw counts are unconstrained.
//
// # Validity
//
// Validity reflects the sensor's physical model, not the wire format:
//
//   - Volumetric water content: 0 % to 100 %
//   - Relative permittivity: at least 1.0 (vacuum)
//
// Temperature is intentionally never rejected even outside the device's
// measuring range. The sensor firmware guarantees well-formed temperature
// registers, and the asymmetry is preserved here.
package units
