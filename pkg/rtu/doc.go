// Package rtu implements the bus.Conn link over a Modbus RTU serial
// line, backed by github.com/goburrow/modbus.
//
// The SMT100 Modbus variant uses fixed framing: 9600 baud, 8 data bits,
// even parity, 1 stop bit, no flow control. Only the serial device path
// and the default request timeout are configurable.
//
// A goburrow client is not safe for concurrent use, so every exchange
// runs under a single mutex. Slave selection and the per-call timeout
// are applied to the handler inside that critical section, immediately
// before the request.
package rtu
