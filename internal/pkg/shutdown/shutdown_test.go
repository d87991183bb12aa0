package shutdown

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ggmarts04/LTX-Video/internal/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json", Output: io.Discard})
}

func TestShutdownRunsHandlers(t *testing.T) {
	m := NewManager(testLogger(), time.Second)

	var ran atomic.Int32
	m.Register("first", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})
	m.Register("second", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	m.Shutdown()

	if got := ran.Load(); got != 2 {
		t.Errorf("expected 2 handlers to run, got %d", got)
	}

	select {
	case <-m.Done():
	default:
		t.Error("expected Done channel to be closed after Shutdown")
	}
}

func TestShutdownHandlerError(t *testing.T) {
	m := NewManager(testLogger(), time.Second)

	var ran atomic.Int32
	m.Register("failing", func(ctx context.Context) error {
		ran.Add(1)
		return errors.New("close failed")
	})
	m.Register("ok", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	// A failing handler must not prevent the others from running.
	m.Shutdown()

	if got := ran.Load(); got != 2 {
		t.Errorf("expected 2 handlers to run despite failure, got %d", got)
	}
}

func TestShutdownTimeout(t *testing.T) {
	m := NewManager(testLogger(), 50*time.Millisecond)

	m.Register("slow", func(ctx context.Context) error {
		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
		}
		return nil
	})

	start := time.Now()
	m.Shutdown()
	elapsed := time.Since(start)

	if elapsed > 2*time.Second {
		t.Errorf("expected shutdown to give up after timeout, took %s", elapsed)
	}
}

func TestRegisterSimple(t *testing.T) {
	m := NewManager(testLogger(), time.Second)

	called := false
	m.RegisterSimple("simple", func() { called = true })

	m.Shutdown()

	if !called {
		t.Error("expected simple handler to be called")
	}
}

func TestDefaultTimeout(t *testing.T) {
	m := NewManager(testLogger(), 0)
	if m.timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %s", m.timeout)
	}
}
