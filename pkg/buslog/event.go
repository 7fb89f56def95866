package buslog

import "time"

// Event represents a driver event on the serial bus.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the bus session (UUID, minted per reconnect).
	SessionID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Port is the serial device path, if known.
	Port string `cbor:"4,keyasint,omitempty"`

	// Slave is the addressed slave, for request and error events.
	Slave uint8 `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	StateChange *StateChangeEvent `cbor:"6,keyasint,omitempty"`
	Request     *RequestEvent     `cbor:"7,keyasint,omitempty"`
	Error       *ErrorEvent       `cbor:"8,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a session state change.
	CategoryState Category = 0
	// CategoryRequest indicates a completed register read or write.
	CategoryRequest Category = 1
	// CategoryError indicates a failed operation.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryRequest:
		return "REQUEST"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Op indicates the register operation kind.
type Op uint8

const (
	// OpRead indicates a holding register read.
	OpRead Op = 0
	// OpWrite indicates a single register write.
	OpWrite Op = 1
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpRead:
		return "READ"
	case OpWrite:
		return "WRITE"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures session lifecycle transitions.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// RequestEvent captures a completed register read or write.
type RequestEvent struct {
	// Op is the operation kind.
	Op Op `cbor:"1,keyasint"`

	// Quantity is the measured quantity name, for reads.
	Quantity string `cbor:"2,keyasint,omitempty"`

	// Register is the holding register address.
	Register uint16 `cbor:"3,keyasint"`

	// Value is the raw register word read or written.
	Value uint16 `cbor:"4,keyasint"`

	// Latency is the request round-trip time. Stored as nanoseconds.
	Latency time.Duration `cbor:"5,keyasint,omitempty"`
}

// ErrorEvent captures a failed operation.
type ErrorEvent struct {
	// Op describes what was being attempted (e.g. "read temperature").
	Op string `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`
}

// Header is the first record of every trace file.
type Header struct {
	// Format is the trace format version ("major.minor").
	Format string `cbor:"1,keyasint"`
}
