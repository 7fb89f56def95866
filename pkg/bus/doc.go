// Package bus manages the shared serial link to the Modbus RTU bus.
//
// Multiple sensors share one physical wire, so all slave proxies for one
// serial port hold the same Manager. The Manager owns the single live
// link and replaces it wholesale on reconnect; proxies observe either
// the old or the new link in full, never a partially updated one.
//
// # Lifecycle
//
// A Manager starts disconnected. Acquire returns the current link or
// fails immediately with ErrNotConnected; it never blocks and never
// reconnects implicitly. Reconnect discards any previous link, invokes
// the connection factory, and on success installs the new link and mints
// a fresh session ID. A failed reconnect leaves the manager
// disconnected - it does not resurrect the stale link.
//
// # Concurrency
//
// The bus is half-duplex: a Conn implementation must serialize its
// exchanges internally and address the target slave immediately before
// the request inside the same critical section. Reconnecting while a
// call is outstanding is not supported; control loops reconnect only
// after observing a failure, when no call is in flight.
package bus
