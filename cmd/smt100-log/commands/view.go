// Package commands implements the smt100-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/truebner/smt100-go/pkg/buslog"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	SessionID string
	Category  *buslog.Category
	Slave     *uint8
}

// ParseCategoryFlag parses a category string from a command-line flag
// (case-insensitive).
func ParseCategoryFlag(s string) (buslog.Category, error) {
	switch strings.ToLower(s) {
	case "state":
		return buslog.CategoryState, nil
	case "request":
		return buslog.CategoryRequest, nil
	case "error":
		return buslog.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be state, request, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := buslog.NewFilteredReader(path, buslog.Filter{
		SessionID: filter.SessionID,
		Category:  filter.Category,
		Slave:     filter.Slave,
	})
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event buslog.Event) {
	// Header line: timestamp [session:id] CATEGORY label
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	session := shortenSessionID(event.SessionID)

	var label string
	switch {
	case event.StateChange != nil:
		label = event.StateChange.NewState
	case event.Request != nil:
		label = event.Request.Op.String()
	case event.Error != nil:
		label = event.Error.Op
	default:
		label = "Unknown"
	}

	fmt.Fprintf(w, "%s [session:%s] %-7s %s\n", ts, session, event.Category.String(), label)

	switch {
	case event.StateChange != nil:
		formatStateChangeDetails(w, event)
	case event.Request != nil:
		formatRequestDetails(w, event)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatStateChangeDetails(w io.Writer, event buslog.Event) {
	sc := event.StateChange
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if event.Port != "" {
		fmt.Fprintf(w, "  Port: %s\n", event.Port)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatRequestDetails(w io.Writer, event buslog.Event) {
	req := event.Request
	fmt.Fprintf(w, "  Slave: %d  Register: 0x%04X", event.Slave, req.Register)
	if req.Quantity != "" {
		fmt.Fprintf(w, "  Quantity: %s", req.Quantity)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Value: 0x%04X (%d)\n", req.Value, req.Value)
	if req.Latency > 0 {
		fmt.Fprintf(w, "  Latency: %s\n", formatDuration(req.Latency))
	}
}

func formatErrorDetails(w io.Writer, ev *buslog.ErrorEvent) {
	fmt.Fprintf(w, "  Message: %s\n", ev.Message)
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}
