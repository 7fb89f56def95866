package bus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/truebner/smt100-go/pkg/buslog"
)

// fakeConn is a minimal Conn for manager lifecycle tests.
type fakeConn struct {
	mu     sync.Mutex
	closed bool
}

func (c *fakeConn) ReadHoldingRegisters(ctx context.Context, slave SlaveAddress, address, quantity uint16) ([]byte, error) {
	return make([]byte, int(quantity)*2), nil
}

func (c *fakeConn) WriteSingleRegister(ctx context.Context, slave SlaveAddress, address, value uint16) error {
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestAcquireBeforeConnect(t *testing.T) {
	m := NewManager(func(ctx context.Context) (Conn, error) {
		return &fakeConn{}, nil
	})

	if _, err := m.Acquire(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Acquire before connect: got %v, want ErrNotConnected", err)
	}
	if m.Connected() {
		t.Error("Connected should be false before first reconnect")
	}
	if m.SessionID() != "" {
		t.Errorf("SessionID before connect: got %q, want empty", m.SessionID())
	}
}

func TestReconnectInstallsLink(t *testing.T) {
	conn := &fakeConn{}
	m := NewManager(func(ctx context.Context) (Conn, error) {
		return conn, nil
	})

	if err := m.Reconnect(context.Background()); err != nil {
		t.Fatalf("Reconnect failed: %v", err)
	}

	got, err := m.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if got != conn {
		t.Error("Acquire returned a different link than the factory produced")
	}
	if !m.Connected() {
		t.Error("Connected should be true after reconnect")
	}
	if m.SessionID() == "" {
		t.Error("SessionID should be set after reconnect")
	}
}

func TestReconnectReplacesLink(t *testing.T) {
	conns := []*fakeConn{{}, {}}
	i := 0
	m := NewManager(func(ctx context.Context) (Conn, error) {
		c := conns[i]
		i++
		return c, nil
	})

	if err := m.Reconnect(context.Background()); err != nil {
		t.Fatalf("first Reconnect failed: %v", err)
	}
	firstSession := m.SessionID()

	if err := m.Reconnect(context.Background()); err != nil {
		t.Fatalf("second Reconnect failed: %v", err)
	}

	if !conns[0].isClosed() {
		t.Error("old link was not closed on reconnect")
	}
	got, err := m.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if got != conns[1] {
		t.Error("Acquire did not return the new link")
	}
	if m.SessionID() == firstSession {
		t.Error("session ID should change on reconnect")
	}
}

func TestFailedReconnectStaysDisconnected(t *testing.T) {
	conn := &fakeConn{}
	connectErr := errors.New("open /dev/ttyUSB0: no such device")
	fail := false
	m := NewManager(func(ctx context.Context) (Conn, error) {
		if fail {
			return nil, connectErr
		}
		return conn, nil
	})

	if err := m.Reconnect(context.Background()); err != nil {
		t.Fatalf("Reconnect failed: %v", err)
	}

	fail = true
	if err := m.Reconnect(context.Background()); !errors.Is(err, connectErr) {
		t.Fatalf("failed Reconnect: got %v, want factory error", err)
	}

	// A failed reconnect must not resurrect the stale link.
	if !conn.isClosed() {
		t.Error("previous link was not discarded before the failed attempt")
	}
	if _, err := m.Acquire(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Acquire after failed reconnect: got %v, want ErrNotConnected", err)
	}
	if m.Connected() {
		t.Error("Connected should be false after failed reconnect")
	}
}

func TestClose(t *testing.T) {
	conn := &fakeConn{}
	m := NewManager(func(ctx context.Context) (Conn, error) {
		return conn, nil
	})

	if err := m.Reconnect(context.Background()); err != nil {
		t.Fatalf("Reconnect failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if !conn.isClosed() {
		t.Error("link was not closed")
	}
	if _, err := m.Acquire(); !errors.Is(err, ErrClosed) {
		t.Errorf("Acquire after close: got %v, want ErrClosed", err)
	}
	if err := m.Reconnect(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Reconnect after close: got %v, want ErrClosed", err)
	}

	// Double close is fine.
	if err := m.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

// captureLogger records trace events for assertions.
type captureLogger struct {
	mu     sync.Mutex
	events []buslog.Event
}

func (c *captureLogger) Log(event buslog.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureLogger) stateChanges() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, e := range c.events {
		if e.StateChange != nil {
			out = append(out, e.StateChange.NewState)
		}
	}
	return out
}

func TestManagerEmitsStateEvents(t *testing.T) {
	logger := &captureLogger{}
	fail := false
	m := NewManager(func(ctx context.Context) (Conn, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return &fakeConn{}, nil
	}, WithLogger(logger), WithPort("/dev/ttyUSB0"))

	if err := m.Reconnect(context.Background()); err != nil {
		t.Fatalf("Reconnect failed: %v", err)
	}
	fail = true
	_ = m.Reconnect(context.Background())
	_ = m.Close()

	states := logger.stateChanges()
	want := []string{"CONNECTED", "DISCONNECTED", "DISCONNECTED", "CLOSED"}
	if len(states) != len(want) {
		t.Fatalf("state events: got %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("state event %d: got %q, want %q", i, states[i], want[i])
		}
	}

	logger.mu.Lock()
	defer logger.mu.Unlock()
	for _, e := range logger.events {
		if e.Port != "/dev/ttyUSB0" {
			t.Errorf("event port: got %q, want /dev/ttyUSB0", e.Port)
		}
	}
}
