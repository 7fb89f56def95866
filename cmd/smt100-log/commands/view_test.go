package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/truebner/smt100-go/pkg/buslog"
)

// createTestTraceFile writes the events to a trace file and returns its path.
func createTestTraceFile(t *testing.T, events []buslog.Event) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.strace")
	logger, err := buslog.NewFileLogger(path)
	if err != nil {
		t.Fatalf("creating trace file: %v", err)
	}
	defer logger.Close()

	for _, e := range events {
		logger.Log(e)
	}
	return path
}

func TestViewFormatsRequestEvent(t *testing.T) {
	ts := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	events := []buslog.Event{
		{
			Timestamp: ts,
			SessionID: "11112222-0000-0000-0000-000000000000",
			Category:  buslog.CategoryRequest,
			Slave:     3,
			Request: &buslog.RequestEvent{
				Op:       buslog.OpRead,
				Quantity: "temperature",
				Register: 0x0000,
				Value:    0x2710,
				Latency:  12 * time.Millisecond,
			},
		},
	}

	path := createTestTraceFile(t, events)

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"[session:11112222]",
		"REQUEST",
		"READ",
		"Slave: 3",
		"Register: 0x0000",
		"Quantity: temperature",
		"Value: 0x2710 (10000)",
		"Latency: 12.000ms",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestViewFormatsStateChangeEvent(t *testing.T) {
	ts := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	events := []buslog.Event{
		{
			Timestamp: ts,
			SessionID: "abc",
			Category:  buslog.CategoryState,
			Port:      "/dev/ttyUSB0",
			StateChange: &buslog.StateChangeEvent{
				OldState: "DISCONNECTED",
				NewState: "CONNECTED",
			},
		},
	}

	path := createTestTraceFile(t, events)

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "DISCONNECTED -> CONNECTED") {
		t.Errorf("output missing state transition:\n%s", output)
	}
	if !strings.Contains(output, "Port: /dev/ttyUSB0") {
		t.Errorf("output missing port:\n%s", output)
	}
}

func TestViewFormatsErrorEvent(t *testing.T) {
	ts := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	events := []buslog.Event{
		{
			Timestamp: ts,
			SessionID: "abc",
			Category:  buslog.CategoryError,
			Slave:     1,
			Error: &buslog.ErrorEvent{
				Op:      "read temperature",
				Message: "reading temperature: timed out",
			},
		},
	}

	path := createTestTraceFile(t, events)

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "ERROR") {
		t.Errorf("output missing category:\n%s", output)
	}
	if !strings.Contains(output, "Message: reading temperature: timed out") {
		t.Errorf("output missing message:\n%s", output)
	}
}

func TestViewFiltersByCategory(t *testing.T) {
	ts := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	events := []buslog.Event{
		{Timestamp: ts, SessionID: "a", Category: buslog.CategoryState,
			StateChange: &buslog.StateChangeEvent{NewState: "CONNECTED"}},
		{Timestamp: ts, SessionID: "a", Category: buslog.CategoryError, Slave: 1,
			Error: &buslog.ErrorEvent{Op: "read temperature", Message: "boom"}},
	}

	path := createTestTraceFile(t, events)

	errors := buslog.CategoryError
	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Category: &errors}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "CONNECTED") {
		t.Errorf("state event not filtered out:\n%s", output)
	}
	if !strings.Contains(output, "boom") {
		t.Errorf("error event missing:\n%s", output)
	}
}

func TestParseCategoryFlag(t *testing.T) {
	tests := []struct {
		input   string
		want    buslog.Category
		wantErr bool
	}{
		{"state", buslog.CategoryState, false},
		{"REQUEST", buslog.CategoryRequest, false},
		{"Error", buslog.CategoryError, false},
		{"bogus", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCategoryFlag(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: got %v, want %v", tt.input, got, tt.want)
		}
	}
}
