// Package sensor exposes the measurement capabilities of the TRUEBNER
// SMT100 soil moisture sensor.
//
// Capabilities is the sole integration surface for control loops. It is
// implemented by SlaveProxy, the device-facing façade over the shared
// bus session, and by Simulator, an offline double with configurable
// canned values, artificial latency, and error injection.
//
// # Failure Policy
//
// A proxy never retries and never reconnects on its own. Every failure
// - link unavailable, timeout, protocol mismatch, out-of-range data,
// transport I/O - is returned to the caller on the single error channel
// of the read. The driving control loop is expected to log the failure,
// call Reconnect, and continue its measurement cycle regardless of the
// reconnect outcome.
//
// # Timeouts
//
// The per-call timeout is the context deadline. A read without a
// deadline is bounded only by the link's default request timeout.
// Exceeding the deadline yields an error wrapping bus.ErrTimedOut,
// distinct from protocol and data errors.
package sensor
