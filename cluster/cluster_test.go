package cluster

import (
	"context"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	for _, s := range []string{"d", "i", "w", "e", "s"} {
		if _, err := ParseLogLevel(s); err != nil {
			t.Fatalf("ParseLogLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLogLevel("x"); err == nil {
		t.Fatal("expected error for invalid log level")
	}
	if _, err := ParseLogLevel(""); err == nil {
		t.Fatal("expected error for empty log level")
	}
}

func TestPollUntilReadySucceedsAfterRetries(t *testing.T) {
	attempts := 0
	err := PollUntilReady(context.Background(), time.Now().Add(5*time.Second), func() (bool, error) {
		attempts++
		return attempts >= 3, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestPollUntilReadyDeadlineExceeded(t *testing.T) {
	err := PollUntilReady(context.Background(), time.Now().Add(-1*time.Second), func() (bool, error) {
		return false, nil
	})
	if err == nil {
		t.Fatal("expected deadline-exceeded error")
	}
}

func TestPollUntilReadyPropagatesCheckError(t *testing.T) {
	sentinel := context.Canceled
	err := PollUntilReady(context.Background(), time.Now().Add(time.Second), func() (bool, error) {
		return false, sentinel
	})
	if err != sentinel {
		t.Fatalf("expected sentinel error, got %v", err)
	}
}

func TestPollUntilReadyRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := PollUntilReady(ctx, time.Now().Add(time.Second), func() (bool, error) {
		return false, nil
	})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
}
