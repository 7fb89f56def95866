package rtu

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/goburrow/serial"

	"github.com/truebner/smt100-go/pkg/bus"
	"github.com/truebner/smt100-go/pkg/registers"
)

// Serial framing of the SMT100 Modbus variant. Fixed by the device;
// flow control is not used.
const (
	BaudRate = 9600
	DataBits = 8
	Parity   = "E"
	StopBits = 1
)

// DefaultTimeout bounds requests whose context carries no deadline.
const DefaultTimeout = 500 * time.Millisecond

// Config describes how to open the serial link.
type Config struct {
	// Path is the serial device, e.g. "/dev/ttyUSB0".
	Path string

	// Timeout is the default per-request timeout. Zero means
	// DefaultTimeout. A context deadline shorter than this wins.
	Timeout time.Duration
}

// conn adapts a goburrow RTU client to bus.Conn.
type conn struct {
	handler *modbus.RTUClientHandler
	client  modbus.Client
	timeout time.Duration

	// goburrow clients are not safe for concurrent use. opMu serializes
	// every exchange and keeps slave selection atomic with the request.
	opMu sync.Mutex
}

// Dial opens the serial device and returns a live link.
func Dial(ctx context.Context, cfg Config) (bus.Conn, error) {
	if cfg.Path == "" {
		return nil, errors.New("rtu: serial device path required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	handler := modbus.NewRTUClientHandler(cfg.Path)
	handler.BaudRate = BaudRate
	handler.DataBits = DataBits
	handler.Parity = Parity
	handler.StopBits = StopBits
	handler.SlaveId = byte(bus.BroadcastAddress)
	handler.Timeout = timeout

	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.Path, err)
	}

	return &conn{
		handler: handler,
		client:  modbus.NewClient(handler),
		timeout: timeout,
	}, nil
}

// Connector returns a connection factory for bus.NewManager.
func Connector(cfg Config) bus.ConnectFunc {
	return func(ctx context.Context) (bus.Conn, error) {
		return Dial(ctx, cfg)
	}
}

// ReadHoldingRegisters implements bus.Conn.
func (c *conn) ReadHoldingRegisters(ctx context.Context, slave bus.SlaveAddress, address, quantity uint16) ([]byte, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.prepare(ctx, slave); err != nil {
		return nil, err
	}

	results, err := c.client.ReadHoldingRegisters(address, quantity)
	if err != nil {
		return nil, classify(err)
	}
	if len(results) != int(quantity)*registers.RegisterBytes {
		return nil, fmt.Errorf("read returned %d bytes for %d registers: %w",
			len(results), quantity, registers.ErrInvalidData)
	}
	return results, nil
}

// WriteSingleRegister implements bus.Conn.
func (c *conn) WriteSingleRegister(ctx context.Context, slave bus.SlaveAddress, address, value uint16) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.prepare(ctx, slave); err != nil {
		return err
	}

	if _, err := c.client.WriteSingleRegister(address, value); err != nil {
		return classify(err)
	}
	return nil
}

// Close implements bus.Conn.
func (c *conn) Close() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.handler.Close()
}

// prepare selects the target slave and applies the effective timeout for
// the next exchange. Must be called with opMu held.
func (c *conn) prepare(ctx context.Context, slave bus.SlaveAddress) error {
	if err := ctx.Err(); err != nil {
		return classify(err)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("deadline already passed: %w", bus.ErrTimedOut)
		}
		if remaining < timeout {
			timeout = remaining
		}
	}

	c.handler.SlaveId = byte(slave)
	c.handler.Timeout = timeout
	return nil
}

// classify maps timeout-shaped transport errors onto bus.ErrTimedOut.
// Everything else propagates unchanged.
func classify(err error) error {
	if errors.Is(err, serial.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, bus.ErrTimedOut)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%v: %w", err, bus.ErrTimedOut)
	}
	return err
}

// Compile-time interface satisfaction check.
var _ bus.Conn = (*conn)(nil)
