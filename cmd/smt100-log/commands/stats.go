package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/truebner/smt100-go/pkg/buslog"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[buslog.Category]int
	ReadsByQuantity  map[string]int
	Writes           int
	Sessions         map[string]*SessionStats
	Errors           int
	Latency          LatencyStats
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single bus session.
type SessionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Requests  int
	Errors    int
	Port      string
}

// LatencyStats aggregates request round-trip times.
type LatencyStats struct {
	Count int
	Min   time.Duration
	Max   time.Duration
	Total time.Duration
}

// Mean returns the average latency, or zero without samples.
func (l LatencyStats) Mean() time.Duration {
	if l.Count == 0 {
		return 0
	}
	return l.Total / time.Duration(l.Count)
}

func (l *LatencyStats) observe(d time.Duration) {
	if l.Count == 0 || d < l.Min {
		l.Min = d
	}
	if d > l.Max {
		l.Max = d
	}
	l.Count++
	l.Total += d
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := buslog.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[buslog.Category]int),
		ReadsByQuantity:  make(map[string]int),
		Sessions:         make(map[string]*SessionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		session, ok := stats.Sessions[event.SessionID]
		if !ok {
			session = &SessionStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
			}
			stats.Sessions[event.SessionID] = session
		}
		session.Events++
		if event.Timestamp.After(session.LastSeen) {
			session.LastSeen = event.Timestamp
		}
		if event.Port != "" && session.Port == "" {
			session.Port = event.Port
		}

		if event.Request != nil {
			session.Requests++
			if event.Request.Op == buslog.OpWrite {
				stats.Writes++
			} else if event.Request.Quantity != "" {
				stats.ReadsByQuantity[event.Request.Quantity]++
			}
			if event.Request.Latency > 0 {
				stats.Latency.observe(event.Request.Latency)
			}
		}

		if event.Error != nil {
			stats.Errors++
			session.Errors++
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== SMT100 Bus Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []buslog.Category{buslog.CategoryState, buslog.CategoryRequest, buslog.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-9s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.ReadsByQuantity) > 0 || stats.Writes > 0 {
		fmt.Fprintln(w, "Requests:")
		quantities := make([]string, 0, len(stats.ReadsByQuantity))
		for q := range stats.ReadsByQuantity {
			quantities = append(quantities, q)
		}
		sort.Strings(quantities)
		for _, q := range quantities {
			fmt.Fprintf(w, "  read %-14s %d\n", q+":", stats.ReadsByQuantity[q])
		}
		if stats.Writes > 0 {
			fmt.Fprintf(w, "  %-19s %d\n", "writes:", stats.Writes)
		}
		fmt.Fprintln(w)
	}

	if stats.Latency.Count > 0 {
		fmt.Fprintln(w, "Request Latency:")
		fmt.Fprintf(w, "  min:  %s\n", formatDuration(stats.Latency.Min))
		fmt.Fprintf(w, "  mean: %s\n", formatDuration(stats.Latency.Mean()))
		fmt.Fprintf(w, "  max:  %s\n", formatDuration(stats.Latency.Max))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		type sessionInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessionInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessionInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w, "")
		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, %d requests, duration %s\n",
				shortenSessionID(s.id), s.stats.Events, s.stats.Requests, duration)
			if s.stats.Port != "" {
				fmt.Fprintf(w, "           Port: %s\n", s.stats.Port)
			}
			if s.stats.Errors > 0 {
				fmt.Fprintf(w, "           Errors: %d\n", s.stats.Errors)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
