package buslog

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/truebner/smt100-go/pkg/version"
)

// Filter specifies criteria for filtering trace events.
// Empty/nil fields match all events for that criterion.
type Filter struct {
	// SessionID filters by exact session ID match.
	SessionID string

	// Category filters by event category.
	Category *Category

	// Slave filters by slave address.
	Slave *uint8

	// TimeStart filters events at or after this time.
	TimeStart *time.Time

	// TimeEnd filters events before this time.
	TimeEnd *time.Time
}

// matches returns true if the event matches all filter criteria.
func (f *Filter) matches(event Event) bool {
	if f.SessionID != "" && event.SessionID != f.SessionID {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.Slave != nil && event.Slave != *f.Slave {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	return true
}

// Reader reads bus events from a CBOR-encoded trace file.
// It provides an iterator interface for streaming large files.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter
	format  version.SpecVersion
}

// NewReader creates a Reader that reads all events from the specified trace file.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader creates a Reader that reads events matching the filter.
// It fails if the file's header names a trace format with a different
// major version than version.TraceFormat.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	decoder := NewDecoder(f)

	var header Header
	if err := decoder.Decode(&header); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading trace header: %w", err)
	}

	format, err := version.Parse(header.Format)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("invalid trace format version: %w", err)
	}

	supported, _ := version.Parse(version.TraceFormat)
	if !supported.Compatible(format) {
		f.Close()
		return nil, fmt.Errorf("unsupported trace format %s (supported: %s)",
			format, version.TraceFormat)
	}

	return &Reader{
		file:    f,
		decoder: decoder,
		filter:  filter,
		format:  format,
	}, nil
}

// Format returns the trace format version of the file.
func (r *Reader) Format() version.SpecVersion {
	return r.format
}

// Next returns the next event that matches the filter.
// Returns io.EOF when no more events are available.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.decoder.Decode(&event); err != nil {
			if err == io.EOF {
				return Event{}, io.EOF
			}
			return Event{}, err
		}

		if r.filter.matches(event) {
			return event, nil
		}
		// Event doesn't match filter, continue to next
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
