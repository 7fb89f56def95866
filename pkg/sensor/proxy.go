package sensor

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/truebner/smt100-go/pkg/bus"
	"github.com/truebner/smt100-go/pkg/buslog"
	"github.com/truebner/smt100-go/pkg/registers"
	"github.com/truebner/smt100-go/pkg/units"
)

// SlaveProxy implements Capabilities for one device on the shared bus.
// It binds a slave address to a bus.Manager and is otherwise stateless.
type SlaveProxy struct {
	slave   bus.SlaveAddress
	session *bus.Manager
	logger  buslog.Logger
}

// ProxyOption configures a SlaveProxy.
type ProxyOption func(*SlaveProxy)

// WithLogger sets the trace event sink. Defaults to NoopLogger.
func WithLogger(logger buslog.Logger) ProxyOption {
	return func(p *SlaveProxy) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewSlaveProxy creates a proxy for the given slave address on the
// shared session. The address must be a regular device address.
func NewSlaveProxy(slave bus.SlaveAddress, session *bus.Manager, opts ...ProxyOption) (*SlaveProxy, error) {
	if !slave.Device() {
		return nil, fmt.Errorf("slave address %d outside device range %d..%d",
			slave, bus.MinDeviceAddress, bus.MaxDeviceAddress)
	}

	p := &SlaveProxy{
		slave:   slave,
		session: session,
		logger:  buslog.NoopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Slave returns the proxy's slave address.
func (p *SlaveProxy) Slave() bus.SlaveAddress {
	return p.slave
}

// Reconnect replaces the shared link via the session manager. It does
// not change the proxy's address, and it affects every proxy sharing
// the session.
func (p *SlaveProxy) Reconnect(ctx context.Context) error {
	return p.session.Reconnect(ctx)
}

// BroadcastSlaveAddress writes the proxy's configured slave address into
// the address assignment register, addressed to the reserved broadcast
// identifier. Every device on the bus adopts the address, so this must
// only be used for initial provisioning with a single device attached.
func (p *SlaveProxy) BroadcastSlaveAddress(ctx context.Context) error {
	const op = "broadcast slave address"

	conn, err := p.session.Acquire()
	if err != nil {
		return p.fail(op, err)
	}

	began := time.Now()
	if err := conn.WriteSingleRegister(ctx, bus.BroadcastAddress, registers.SlaveAddressReg, uint16(p.slave)); err != nil {
		return p.fail(op, fmt.Errorf("broadcasting slave address: %w", err))
	}

	p.logger.Log(buslog.Event{
		Timestamp: time.Now(),
		SessionID: p.session.SessionID(),
		Category:  buslog.CategoryRequest,
		Slave:     uint8(bus.BroadcastAddress),
		Request: &buslog.RequestEvent{
			Op:       buslog.OpWrite,
			Register: registers.SlaveAddressReg,
			Value:    uint16(p.slave),
			Latency:  time.Since(began),
		},
	})
	return nil
}

// ReadTemperature implements Capabilities.
func (p *SlaveProxy) ReadTemperature(ctx context.Context) (units.Temperature, error) {
	raw, err := p.readRegister(ctx, registers.QuantityTemperature)
	if err != nil {
		return 0, p.fail("read temperature", err)
	}
	return registers.DecodeTemperature(raw), nil
}

// ReadWaterContent implements Capabilities.
func (p *SlaveProxy) ReadWaterContent(ctx context.Context) (units.VolumetricWaterContent, error) {
	raw, err := p.readRegister(ctx, registers.QuantityWaterContent)
	if err != nil {
		return 0, p.fail("read water_content", err)
	}
	vwc, err := registers.DecodeWaterContent(raw)
	if err != nil {
		return 0, p.fail("read water_content", err)
	}
	return vwc, nil
}

// ReadPermittivity implements Capabilities.
func (p *SlaveProxy) ReadPermittivity(ctx context.Context) (units.RelativePermittivity, error) {
	raw, err := p.readRegister(ctx, registers.QuantityPermittivity)
	if err != nil {
		return 0, p.fail("read permittivity", err)
	}
	ratio, err := registers.DecodePermittivity(raw)
	if err != nil {
		return 0, p.fail("read permittivity", err)
	}
	return ratio, nil
}

// ReadRawCounts implements Capabilities.
func (p *SlaveProxy) ReadRawCounts(ctx context.Context) (units.RawCounts, error) {
	raw, err := p.readRegister(ctx, registers.QuantityRawCounts)
	if err != nil {
		return 0, p.fail("read raw_counts", err)
	}
	return registers.DecodeRawCounts(raw), nil
}

// readRegister acquires the link and reads the quantity's single
// holding register. A response that does not carry exactly one register
// is a protocol error of the invalid-data class.
func (p *SlaveProxy) readRegister(ctx context.Context, q registers.Quantity) (uint16, error) {
	conn, err := p.session.Acquire()
	if err != nil {
		return 0, err
	}

	start, count := registers.Block(q)
	began := time.Now()
	data, err := conn.ReadHoldingRegisters(ctx, p.slave, start, count)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", q, err)
	}
	if len(data) != int(count)*registers.RegisterBytes {
		return 0, fmt.Errorf("response carries %d bytes for %d registers: %w",
			len(data), count, registers.ErrInvalidData)
	}
	raw := binary.BigEndian.Uint16(data)

	p.logger.Log(buslog.Event{
		Timestamp: time.Now(),
		SessionID: p.session.SessionID(),
		Category:  buslog.CategoryRequest,
		Slave:     uint8(p.slave),
		Request: &buslog.RequestEvent{
			Op:       buslog.OpRead,
			Quantity: q.String(),
			Register: start,
			Value:    raw,
			Latency:  time.Since(began),
		},
	})
	return raw, nil
}

// fail emits an error event and passes the error through.
func (p *SlaveProxy) fail(op string, err error) error {
	p.logger.Log(buslog.Event{
		Timestamp: time.Now(),
		SessionID: p.session.SessionID(),
		Category:  buslog.CategoryError,
		Slave:     uint8(p.slave),
		Error: &buslog.ErrorEvent{
			Op:      op,
			Message: err.Error(),
		},
	})
	return err
}

// Compile-time interface satisfaction check.
var _ Capabilities = (*SlaveProxy)(nil)
