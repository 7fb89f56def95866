package bus

import (
	"context"
	"errors"
)

// Bus errors.
var (
	// ErrNotConnected indicates there is no live link; the caller must
	// reconnect before retrying.
	ErrNotConnected = errors.New("not connected")

	// ErrClosed indicates the manager has been closed for good.
	ErrClosed = errors.New("bus closed")

	// ErrTimedOut indicates a call exceeded its deadline.
	ErrTimedOut = errors.New("timed out")
)

// SlaveAddress identifies a device on the RTU bus.
type SlaveAddress uint8

const (
	// MinDeviceAddress is the lowest assignable device address.
	MinDeviceAddress SlaveAddress = 1

	// MaxDeviceAddress is the highest assignable device address.
	MaxDeviceAddress SlaveAddress = 247

	// BroadcastAddress is the reserved provisioning address. Writes to
	// it are accepted by every device on the bus simultaneously.
	BroadcastAddress SlaveAddress = 0xFD
)

// Device returns true if the address is a regular device address.
func (a SlaveAddress) Device() bool {
	return a >= MinDeviceAddress && a <= MaxDeviceAddress
}

// Conn is the request/response primitive over one physical serial link.
// Implementations must serialize exchanges internally - the bus is
// half-duplex - and must select the target slave immediately before the
// request under the same critical section, so a concurrent caller
// cannot misroute it.
type Conn interface {
	// ReadHoldingRegisters reads quantity holding registers starting at
	// address from the given slave. The result contains two big-endian
	// bytes per register. A ctx deadline bounds the exchange; exceeding
	// it yields an error wrapping ErrTimedOut.
	ReadHoldingRegisters(ctx context.Context, slave SlaveAddress, address, quantity uint16) ([]byte, error)

	// WriteSingleRegister writes one holding register at address on the
	// given slave.
	WriteSingleRegister(ctx context.Context, slave SlaveAddress, address, value uint16) error

	// Close releases the underlying link.
	Close() error
}

// ConnectFunc is the connection factory invoked by Manager.Reconnect.
// It returns a live link or an I/O error.
type ConnectFunc func(ctx context.Context) (Conn, error)
