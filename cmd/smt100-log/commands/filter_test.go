package commands

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/truebner/smt100-go/pkg/buslog"
)

// readAll reads every event from a trace file.
func readAll(t *testing.T, path string) []buslog.Event {
	t.Helper()

	reader, err := buslog.NewReader(path)
	if err != nil {
		t.Fatalf("opening trace: %v", err)
	}
	defer reader.Close()

	var events []buslog.Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading trace: %v", err)
		}
		events = append(events, event)
	}
	return events
}

func TestFilterBySession(t *testing.T) {
	ts := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	events := []buslog.Event{
		{Timestamp: ts, SessionID: "keep", Category: buslog.CategoryRequest,
			Request: &buslog.RequestEvent{Op: buslog.OpRead, Quantity: "temperature"}},
		{Timestamp: ts, SessionID: "drop", Category: buslog.CategoryRequest,
			Request: &buslog.RequestEvent{Op: buslog.OpRead, Quantity: "temperature"}},
		{Timestamp: ts, SessionID: "keep", Category: buslog.CategoryError,
			Error: &buslog.ErrorEvent{Op: "read temperature", Message: "boom"}},
	}

	path := createTestTraceFile(t, events)
	out := filepath.Join(t.TempDir(), "filtered.strace")

	if err := RunFilter(path, FilterOptions{Output: out, SessionID: "keep"}); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	filtered := readAll(t, out)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 events, got %d", len(filtered))
	}
	for _, e := range filtered {
		if e.SessionID != "keep" {
			t.Errorf("event with session %q survived the filter", e.SessionID)
		}
	}
}

func TestFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	events := []buslog.Event{
		{Timestamp: base, SessionID: "s", Category: buslog.CategoryRequest,
			Request: &buslog.RequestEvent{Op: buslog.OpRead}},
		{Timestamp: base.Add(time.Hour), SessionID: "s", Category: buslog.CategoryRequest,
			Request: &buslog.RequestEvent{Op: buslog.OpRead}},
		{Timestamp: base.Add(2 * time.Hour), SessionID: "s", Category: buslog.CategoryRequest,
			Request: &buslog.RequestEvent{Op: buslog.OpRead}},
	}

	path := createTestTraceFile(t, events)
	out := filepath.Join(t.TempDir(), "filtered.strace")

	opts := FilterOptions{
		Output:    out,
		TimeStart: base.Add(30 * time.Minute).Format(time.RFC3339),
		TimeEnd:   base.Add(90 * time.Minute).Format(time.RFC3339),
	}
	if err := RunFilter(path, opts); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	filtered := readAll(t, out)
	if len(filtered) != 1 {
		t.Fatalf("expected 1 event, got %d", len(filtered))
	}
}

func TestFilterRejectsBadTime(t *testing.T) {
	path := createTestTraceFile(t, nil)
	out := filepath.Join(t.TempDir(), "filtered.strace")

	err := RunFilter(path, FilterOptions{Output: out, TimeStart: "yesterday"})
	if err == nil {
		t.Error("expected error for invalid time")
	}
}

func TestFilteredOutputIsReadableTrace(t *testing.T) {
	ts := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	events := []buslog.Event{
		{Timestamp: ts, SessionID: "s", Category: buslog.CategoryState,
			StateChange: &buslog.StateChangeEvent{NewState: "CONNECTED"}},
	}

	path := createTestTraceFile(t, events)
	out := filepath.Join(t.TempDir(), "filtered.strace")

	if err := RunFilter(path, FilterOptions{Output: out}); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	// The output must carry its own header and round-trip cleanly.
	filtered := readAll(t, out)
	if len(filtered) != 1 || filtered[0].StateChange == nil {
		t.Fatalf("unexpected filtered contents: %+v", filtered)
	}
}
