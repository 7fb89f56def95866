// Package mockbus provides a scripted, in-memory bus.Conn for tests.
//
// Register contents are seeded per slave, and failures are injected via
// FailNext, SetDelay, and SetResponseLength. All operations are
// deterministic and mutex-guarded.
package mockbus

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/truebner/smt100-go/pkg/bus"
)

// Write records one single-register write observed by the fake link.
type Write struct {
	Slave    bus.SlaveAddress
	Register uint16
	Value    uint16
}

// Conn is a scripted fake implementing bus.Conn.
type Conn struct {
	mu sync.Mutex

	regs   map[bus.SlaveAddress]map[uint16]uint16
	writes []Write

	delay   time.Duration
	nextErr error

	// respLen overrides the read response length; -1 means no override.
	respLen int

	reads  int
	closed bool
}

// New creates an empty fake link.
func New() *Conn {
	return &Conn{
		regs:    make(map[bus.SlaveAddress]map[uint16]uint16),
		respLen: -1,
	}
}

// SetRegister seeds a holding register of a slave.
func (c *Conn) SetRegister(slave bus.SlaveAddress, register, value uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.regs[slave] == nil {
		c.regs[slave] = make(map[uint16]uint16)
	}
	c.regs[slave][register] = value
}

// SetDelay makes every subsequent exchange take at least d.
func (c *Conn) SetDelay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = d
}

// FailNext injects err into the next exchange only.
func (c *Conn) FailNext(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextErr = err
}

// SetResponseLength overrides the byte length of read responses, to
// simulate a protocol mismatch. Pass -1 to restore normal responses.
func (c *Conn) SetResponseLength(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.respLen = n
}

// Reads returns the number of read exchanges attempted.
func (c *Conn) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Writes returns all single-register writes in order.
func (c *Conn) Writes() []Write {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Write, len(c.writes))
	copy(out, c.writes)
	return out
}

// Closed returns true after Close.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// wait sleeps for the configured delay, honoring the ctx deadline the
// way a real link classifies timeouts.
func (c *Conn) wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("mockbus: %w", bus.ErrTimedOut)
		}
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ReadHoldingRegisters implements bus.Conn.
func (c *Conn) ReadHoldingRegisters(ctx context.Context, slave bus.SlaveAddress, address, quantity uint16) ([]byte, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("mockbus: %w", bus.ErrClosed)
	}
	c.reads++
	delay := c.delay
	nextErr := c.nextErr
	c.nextErr = nil
	respLen := c.respLen
	slaveRegs := c.regs[slave]
	c.mu.Unlock()

	if err := c.wait(ctx, delay); err != nil {
		return nil, err
	}
	if nextErr != nil {
		return nil, nextErr
	}

	out := make([]byte, 0, int(quantity)*2)
	for i := uint16(0); i < quantity; i++ {
		out = binary.BigEndian.AppendUint16(out, slaveRegs[address+i])
	}
	if respLen >= 0 {
		out = make([]byte, respLen)
	}
	return out, nil
}

// WriteSingleRegister implements bus.Conn.
func (c *Conn) WriteSingleRegister(ctx context.Context, slave bus.SlaveAddress, address, value uint16) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("mockbus: %w", bus.ErrClosed)
	}
	delay := c.delay
	nextErr := c.nextErr
	c.nextErr = nil
	c.mu.Unlock()

	if err := c.wait(ctx, delay); err != nil {
		return err
	}
	if nextErr != nil {
		return nextErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.regs[slave] == nil {
		c.regs[slave] = make(map[uint16]uint16)
	}
	c.regs[slave][address] = value
	c.writes = append(c.writes, Write{Slave: slave, Register: address, Value: value})
	return nil
}

// Close implements bus.Conn.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Connector returns a factory that always hands out this fake link,
// reopening it if a previous session closed it.
func (c *Conn) Connector() bus.ConnectFunc {
	return func(ctx context.Context) (bus.Conn, error) {
		c.mu.Lock()
		c.closed = false
		c.mu.Unlock()
		return c, nil
	}
}

// Compile-time interface satisfaction check.
var _ bus.Conn = (*Conn)(nil)
