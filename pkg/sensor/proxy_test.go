package sensor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truebner/smt100-go/internal/mockbus"
	"github.com/truebner/smt100-go/pkg/bus"
	"github.com/truebner/smt100-go/pkg/registers"
	"github.com/truebner/smt100-go/pkg/sensor"
)

// newTestProxy returns a connected proxy over a fresh fake link.
func newTestProxy(t *testing.T, slave bus.SlaveAddress) (*sensor.SlaveProxy, *mockbus.Conn, *bus.Manager) {
	t.Helper()

	link := mockbus.New()
	session := bus.NewManager(link.Connector())
	require.NoError(t, session.Reconnect(context.Background()))

	proxy, err := sensor.NewSlaveProxy(slave, session)
	require.NoError(t, err)
	return proxy, link, session
}

func TestNewSlaveProxyRejectsNonDeviceAddress(t *testing.T) {
	session := bus.NewManager(mockbus.New().Connector())

	for _, slave := range []bus.SlaveAddress{0, 248, bus.BroadcastAddress} {
		if _, err := sensor.NewSlaveProxy(slave, session); err == nil {
			t.Errorf("slave %d: expected error", slave)
		}
	}

	proxy, err := sensor.NewSlaveProxy(1, session)
	require.NoError(t, err)
	assert.Equal(t, bus.SlaveAddress(1), proxy.Slave())
}

func TestProxyReadsAllQuantities(t *testing.T) {
	proxy, link, _ := newTestProxy(t, 1)
	link.SetRegister(1, registers.TemperatureReg, 0x1770)  // -40.0 °C
	link.SetRegister(1, registers.WaterContentReg, 0x0D70) // 34.4 %
	link.SetRegister(1, registers.PermittivityReg, 0x05F0) // 15.2
	link.SetRegister(1, registers.RawCountsReg, 0xABCD)

	ctx := context.Background()

	temp, err := proxy.ReadTemperature(ctx)
	require.NoError(t, err)
	assert.Equal(t, -40.0, temp.DegreeCelsius())

	vwc, err := proxy.ReadWaterContent(ctx)
	require.NoError(t, err)
	assert.Equal(t, 34.4, vwc.Percent())

	ratio, err := proxy.ReadPermittivity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15.2, ratio.Ratio())

	counts, err := proxy.ReadRawCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xABCD), uint16(counts))
}

func TestProxyDisconnectedReturnsNotConnected(t *testing.T) {
	link := mockbus.New()
	session := bus.NewManager(link.Connector())

	proxy, err := sensor.NewSlaveProxy(1, session)
	require.NoError(t, err)

	_, err = proxy.ReadTemperature(context.Background())
	assert.ErrorIs(t, err, bus.ErrNotConnected)

	// No I/O may be attempted without a link.
	assert.Equal(t, 0, link.Reads())
}

func TestProxyDecodeFailure(t *testing.T) {
	proxy, link, _ := newTestProxy(t, 1)
	link.SetRegister(1, registers.WaterContentReg, 0x2711) // 100.01 %
	link.SetRegister(1, registers.PermittivityReg, 0x0063) // 0.99

	_, err := proxy.ReadWaterContent(context.Background())
	assert.ErrorIs(t, err, registers.ErrInvalidData)

	_, err = proxy.ReadPermittivity(context.Background())
	assert.ErrorIs(t, err, registers.ErrInvalidData)
}

func TestProxyProtocolMismatch(t *testing.T) {
	proxy, link, _ := newTestProxy(t, 1)
	link.SetResponseLength(4) // two registers instead of one

	_, err := proxy.ReadTemperature(context.Background())
	assert.ErrorIs(t, err, registers.ErrInvalidData)
}

func TestProxyTimeout(t *testing.T) {
	proxy, link, _ := newTestProxy(t, 1)
	link.SetDelay(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := proxy.ReadTemperature(ctx)
	assert.ErrorIs(t, err, bus.ErrTimedOut)
}

func TestProxyTransportErrorPropagates(t *testing.T) {
	proxy, link, _ := newTestProxy(t, 1)
	ioErr := errors.New("read: input/output error")
	link.FailNext(ioErr)

	_, err := proxy.ReadRawCounts(context.Background())
	assert.ErrorIs(t, err, ioErr)

	// One-shot injection: the next read succeeds again.
	_, err = proxy.ReadRawCounts(context.Background())
	assert.NoError(t, err)
}

func TestProxyNoAutoReconnect(t *testing.T) {
	proxy, link, session := newTestProxy(t, 1)
	link.SetRegister(1, registers.TemperatureReg, 0x2710)

	require.NoError(t, session.Close())

	_, err := proxy.ReadTemperature(context.Background())
	assert.ErrorIs(t, err, bus.ErrClosed)
}

func TestProxyReconnectRestoresReads(t *testing.T) {
	proxy, link, _ := newTestProxy(t, 1)
	link.SetRegister(1, registers.TemperatureReg, 0x2710)
	link.FailNext(errors.New("device unplugged"))

	ctx := context.Background()

	_, err := proxy.ReadTemperature(ctx)
	require.Error(t, err)

	require.NoError(t, proxy.Reconnect(ctx))

	temp, err := proxy.ReadTemperature(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, temp.DegreeCelsius())
}

func TestBroadcastSlaveAddress(t *testing.T) {
	proxy, link, _ := newTestProxy(t, 42)

	require.NoError(t, proxy.BroadcastSlaveAddress(context.Background()))

	writes := link.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, bus.BroadcastAddress, writes[0].Slave)
	assert.Equal(t, registers.SlaveAddressReg, writes[0].Register)
	assert.Equal(t, uint16(42), writes[0].Value)
}

func TestBroadcastSlaveAddressDisconnected(t *testing.T) {
	session := bus.NewManager(mockbus.New().Connector())
	proxy, err := sensor.NewSlaveProxy(7, session)
	require.NoError(t, err)

	err = proxy.BroadcastSlaveAddress(context.Background())
	assert.ErrorIs(t, err, bus.ErrNotConnected)
}

func TestProxiesShareOneLink(t *testing.T) {
	link := mockbus.New()
	session := bus.NewManager(link.Connector())
	require.NoError(t, session.Reconnect(context.Background()))

	link.SetRegister(1, registers.TemperatureReg, 0x1770)
	link.SetRegister(2, registers.TemperatureReg, 0x4650)

	first, err := sensor.NewSlaveProxy(1, session)
	require.NoError(t, err)
	second, err := sensor.NewSlaveProxy(2, session)
	require.NoError(t, err)

	ctx := context.Background()

	t1, err := first.ReadTemperature(ctx)
	require.NoError(t, err)
	t2, err := second.ReadTemperature(ctx)
	require.NoError(t, err)

	assert.Equal(t, -40.0, t1.DegreeCelsius())
	assert.Equal(t, 80.0, t2.DegreeCelsius())
}
