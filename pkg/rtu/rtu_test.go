package rtu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goburrow/serial"

	"github.com/truebner/smt100-go/pkg/bus"
)

func TestDialRequiresPath(t *testing.T) {
	if _, err := Dial(context.Background(), Config{}); err == nil {
		t.Error("expected error for empty serial device path")
	}
}

func TestDialMissingDevice(t *testing.T) {
	_, err := Dial(context.Background(), Config{Path: "/dev/null/does-not-exist"})
	if err == nil {
		t.Error("expected error for nonexistent serial device")
	}
}

func TestDialCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Dial(ctx, Config{Path: "/dev/ttyUSB0"}); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestConnectorWrapsDial(t *testing.T) {
	connect := Connector(Config{})
	if _, err := connect(context.Background()); err == nil {
		t.Error("expected error from factory with empty path")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		timeout bool
	}{
		{"serial timeout", serial.ErrTimeout, true},
		{"context deadline", context.DeadlineExceeded, true},
		{"net timeout", &timeoutNetError{}, true},
		{"context cancelled", context.Canceled, false},
		{"io error", errors.New("write: input/output error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if tt.timeout {
				if !errors.Is(got, bus.ErrTimedOut) {
					t.Errorf("got %v, want ErrTimedOut wrap", got)
				}
			} else {
				if errors.Is(got, bus.ErrTimedOut) {
					t.Errorf("got %v, should not be ErrTimedOut", got)
				}
				if !errors.Is(got, tt.err) {
					t.Errorf("original error not preserved: %v", got)
				}
			}
		})
	}
}

// timeoutNetError is a net.Error that reports a timeout.
type timeoutNetError struct{}

func (*timeoutNetError) Error() string   { return "i/o timeout" }
func (*timeoutNetError) Timeout() bool   { return true }
func (*timeoutNetError) Temporary() bool { return true }

func TestPrepareExpiredDeadline(t *testing.T) {
	c := &conn{timeout: DefaultTimeout}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	err := c.prepare(ctx, bus.SlaveAddress(1))
	if !errors.Is(err, bus.ErrTimedOut) {
		t.Errorf("got %v, want ErrTimedOut", err)
	}
}
