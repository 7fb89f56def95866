package bus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/truebner/smt100-go/pkg/buslog"
)

// State strings for trace events.
const (
	stateConnected    = "CONNECTED"
	stateDisconnected = "DISCONNECTED"
	stateClosed       = "CLOSED"
)

// Manager owns the single shared link to one serial bus.
type Manager struct {
	mu sync.Mutex

	// Connection factory
	connect ConnectFunc

	// Current link; nil while disconnected
	conn Conn

	// Session ID minted on each successful reconnect
	sessionID string

	closed bool

	// Trace event sink
	logger buslog.Logger

	// Serial device path, for trace events only
	port string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the trace event sink. Defaults to NoopLogger.
func WithLogger(logger buslog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithPort annotates trace events with the serial device path.
func WithPort(port string) ManagerOption {
	return func(m *Manager) {
		m.port = port
	}
}

// NewManager creates a Manager in the disconnected state.
// Call Reconnect to establish the first link.
func NewManager(connect ConnectFunc, opts ...ManagerOption) *Manager {
	m := &Manager{
		connect: connect,
		logger:  buslog.NoopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire returns the current link. It fails immediately with
// ErrNotConnected if there is none; it never blocks and never
// reconnects implicitly.
func (m *Manager) Acquire() (Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	if m.conn == nil {
		return nil, ErrNotConnected
	}
	return m.conn, nil
}

// Connected returns true if a live link is installed.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil && !m.closed
}

// SessionID returns the ID of the current session, or the empty string
// while disconnected.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return ""
	}
	return m.sessionID
}

// Reconnect discards any previous link and invokes the connection
// factory. On success the new link is installed atomically, so all
// proxies observe it on their next Acquire. On failure the manager
// stays disconnected and the factory error propagates.
func (m *Manager) Reconnect(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}

	// Take the old link out first. A failed reconnect must not
	// resurrect a stale handle.
	old := m.conn
	m.conn = nil
	oldState := stateDisconnected
	if old != nil {
		oldState = stateConnected
	}
	sessionID := m.sessionID
	m.mu.Unlock()

	if old != nil {
		_ = old.Close()
		m.emitState(sessionID, stateConnected, stateDisconnected, "reconnecting")
	}

	conn, err := m.connect(ctx)
	if err != nil {
		m.emitState(sessionID, oldState, stateDisconnected, err.Error())
		return err
	}

	newSessionID := uuid.NewString()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = conn.Close()
		return ErrClosed
	}
	m.conn = conn
	m.sessionID = newSessionID
	m.mu.Unlock()

	m.emitState(newSessionID, stateDisconnected, stateConnected, "")
	return nil
}

// Close discards the link and closes the manager for good. Subsequent
// Acquire and Reconnect calls fail with ErrClosed. It is safe to call
// Close multiple times.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	conn := m.conn
	m.conn = nil
	sessionID := m.sessionID
	m.mu.Unlock()

	oldState := stateDisconnected
	var err error
	if conn != nil {
		oldState = stateConnected
		err = conn.Close()
	}
	m.emitState(sessionID, oldState, stateClosed, "")
	return err
}

func (m *Manager) emitState(sessionID, oldState, newState, reason string) {
	m.logger.Log(buslog.Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Category:  buslog.CategoryState,
		Port:      m.port,
		StateChange: &buslog.StateChangeEvent{
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}
