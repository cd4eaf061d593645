package ratelimit

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

// TestNewLimiter tests the Limiter constructor
func TestNewLimiter(t *testing.T) {
	t.Run("ValidBytesPerSecond", func(t *testing.T) {
		limiter := NewLimiter(1024 * 1024) // 1 MB/s
		if limiter == nil {
			t.Fatal("NewLimiter() returned nil for valid input")
		}
		if limiter.BytesPerSecond() != 1024*1024 {
			t.Errorf("BytesPerSecond() = %d, want %d", limiter.BytesPerSecond(), 1024*1024)
		}
	})

	t.Run("ZeroBytesPerSecond", func(t *testing.T) {
		if limiter := NewLimiter(0); limiter != nil {
			t.Error("NewLimiter(0) should return nil (no limiting)")
		}
	})

	t.Run("NegativeBytesPerSecond", func(t *testing.T) {
		if limiter := NewLimiter(-100); limiter != nil {
			t.Error("NewLimiter(-100) should return nil (no limiting)")
		}
	})

	t.Run("SmallBytesPerSecond", func(t *testing.T) {
		limiter := NewLimiter(1000)
		if limiter.burst < minBurst {
			t.Errorf("burst = %d, want at least %d", limiter.burst, minBurst)
		}
	})

	t.Run("LargeBytesPerSecond", func(t *testing.T) {
		limiter := NewLimiter(100 * 1024 * 1024)
		if limiter.burst != 100*1024*1024 {
			t.Errorf("burst = %d, want %d", limiter.burst, 100*1024*1024)
		}
	})

	t.Run("NilLimiterBytesPerSecond", func(t *testing.T) {
		var limiter *Limiter
		if limiter.BytesPerSecond() != 0 {
			t.Error("nil limiter should report 0 bytes per second")
		}
	})
}

// TestNewReader tests the Reader constructor
func TestNewReader(t *testing.T) {
	t.Run("WithLimiter", func(t *testing.T) {
		reader := NewReader(context.Background(), strings.NewReader("x"), NewLimiter(1024*1024))
		if _, ok := reader.(*Reader); !ok {
			t.Error("NewReader() should return *Reader when limiter is provided")
		}
	})

	t.Run("NilLimiter", func(t *testing.T) {
		base := strings.NewReader("x")
		if reader := NewReader(context.Background(), base, nil); reader != base {
			t.Error("NewReader() with nil limiter should return the original reader")
		}
	})
}

// TestReaderRead tests reading through the limiter
func TestReaderRead(t *testing.T) {
	t.Run("ReadsAllContent", func(t *testing.T) {
		content := bytes.Repeat([]byte("a"), 10000)
		reader := NewReader(context.Background(), bytes.NewReader(content), NewLimiter(10*1024*1024))

		got, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Errorf("read %d bytes, want %d", len(got), len(content))
		}
	})

	t.Run("ReadCappedAtBurst", func(t *testing.T) {
		limiter := NewLimiter(1000)
		content := make([]byte, minBurst*2)
		reader := NewReader(context.Background(), bytes.NewReader(content), limiter)

		buf := make([]byte, len(content))
		n, err := reader.Read(buf)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if n > minBurst {
			t.Errorf("Read() = %d bytes, want at most %d", n, minBurst)
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		reader := NewReader(ctx, strings.NewReader("data"), NewLimiter(1024))
		if _, err := reader.Read(make([]byte, 4)); err != context.Canceled {
			t.Errorf("Read() error = %v, want %v", err, context.Canceled)
		}
	})

	t.Run("ThrottlesBeyondBurst", func(t *testing.T) {
		if testing.Short() {
			t.Skip("skipping timing test in short mode")
		}

		// 64KB burst at 128KB/s: reading 128KB needs roughly half a second
		limiter := NewLimiter(128 * 1024)
		content := make([]byte, 256*1024)
		reader := NewReader(context.Background(), bytes.NewReader(content), limiter)

		start := time.Now()
		if _, err := io.ReadAll(reader); err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if elapsed := time.Since(start); elapsed < 500*time.Millisecond {
			t.Errorf("read took %v, expected throttling", elapsed)
		}
	})
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

// TestReadCloser tests the ReadCloser wrapper
func TestReadCloser(t *testing.T) {
	base := &closeTracker{Reader: strings.NewReader("payload")}
	rc := NewReadCloser(context.Background(), base, NewLimiter(1024*1024))

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("content = %q, want %q", got, "payload")
	}
	if err := rc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !base.closed {
		t.Error("Close() should close the underlying reader")
	}
}
