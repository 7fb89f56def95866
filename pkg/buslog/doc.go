// Package buslog captures driver-level events on the Modbus serial bus.
//
// Events are produced by the session manager (connection state changes)
// and by slave proxies (register reads/writes and their failures). They
// carry the session ID minted on each successful reconnect, so traces
// from several reconnect cycles can be told apart.
//
// # Loggers
//
//   - NoopLogger discards everything (logging disabled)
//   - SlogAdapter forwards events to a log/slog logger at debug level
//   - FileLogger appends CBOR-encoded events to a trace file
//   - MultiLogger fans out to several loggers
//
// # Trace Files
//
// Trace files start with a header record naming the trace format version
// (version.TraceFormat). Reader refuses files written with an
// incompatible major version. Events use CBOR integer keys for
// compactness; the smt100-log tool views, exports, and summarizes them.
package buslog
