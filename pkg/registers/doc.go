// Package registers defines the SMT100 Modbus holding register map and the
// codec between raw 16-bit register words and typed measurement values.
//
// # Register Map
//
// All measured quantities occupy exactly one big-endian 16-bit holding
// register:
//
//	0x0000  Temperature       (raw - 10000) / 100 -> °C
//	0x0001  Water content     raw / 100 -> %
//	0x0002  Permittivity      raw / 100 -> ratio
//	0x0003  Raw counts        raw (identity)
//	0x0004  Slave address     write-only, provisioning
//
// The map is fixed device firmware configuration and never changes at
// runtime.
//
// # Validation
//
// Decoding validates the physical range where one exists: water content
// above 100 % and permittivity below 1.0 fail with ErrInvalidData.
// Temperature and raw counts decode from any 16-bit input. Byte-level
// decoders additionally fail with ErrInsufficientInput when fewer than
// two bytes are supplied.
package registers
