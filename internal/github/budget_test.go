package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func rateHeaders(remaining, reset, retryAfter string) *http.Response {
	resp := &http.Response{Header: make(http.Header)}
	if remaining != "" {
		resp.Header.Set("X-RateLimit-Remaining", remaining)
	}
	if reset != "" {
		resp.Header.Set("X-RateLimit-Reset", reset)
	}
	if retryAfter != "" {
		resp.Header.Set("Retry-After", retryAfter)
	}
	return resp
}

func TestRateBudget(t *testing.T) {
	fixedNow := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("unknown budget does not block", func(t *testing.T) {
		b := NewRateBudget()
		if err := b.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		if b.Remaining() != -1 {
			t.Fatalf("expected unknown remaining, got %d", b.Remaining())
		}
	})

	t.Run("observe then acquire decrements", func(t *testing.T) {
		b := NewRateBudget()
		b.now = func() time.Time { return fixedNow }
		b.Observe(rateHeaders("10", "1700000000", ""))

		if err := b.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		if b.Remaining() != 9 {
			t.Fatalf("want 9 remaining, got %d", b.Remaining())
		}
	})

	t.Run("exhausted budget waits for reset", func(t *testing.T) {
		b := NewRateBudget()
		b.now = func() time.Time { return fixedNow }
		b.Observe(rateHeaders("0", "1900000000", ""))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if err := b.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("want DeadlineExceeded, got %v", err)
		}
	})

	t.Run("exhausted budget past reset allows a probe", func(t *testing.T) {
		b := NewRateBudget()
		b.now = func() time.Time { return fixedNow }
		b.Observe(rateHeaders("0", "1700000000", ""))

		if err := b.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		if b.Remaining() != -1 {
			t.Fatalf("probe should reset remaining to unknown, got %d", b.Remaining())
		}
	})

	t.Run("retry-after sets a cooldown", func(t *testing.T) {
		b := NewRateBudget()
		b.now = func() time.Time { return fixedNow }
		b.Observe(rateHeaders("", "", "60"))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if err := b.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("want DeadlineExceeded, got %v", err)
		}
	})

	t.Run("garbage headers are ignored", func(t *testing.T) {
		b := NewRateBudget()
		b.Observe(rateHeaders("lots", "soon", "never"))
		if b.Remaining() != -1 {
			t.Fatalf("expected unknown remaining, got %d", b.Remaining())
		}
		b.Observe(nil)
	})

	t.Run("nil budget", func(t *testing.T) {
		var b *RateBudget
		if err := b.Acquire(context.Background()); err == nil {
			t.Fatalf("expected error")
		}
		b.Observe(rateHeaders("1", "", ""))
	})
}

func TestNewClient_TracksRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "41")
		w.Header().Set("X-RateLimit-Reset", "1900000000")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	t.Cleanup(server.Close)

	budget := NewRateBudget()
	c, err := NewClient(context.Background(), "", WithBaseURL(server.URL), WithRateBudget(budget))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if c.Budget != budget {
		t.Fatalf("expected shared budget")
	}

	req, err := c.Client.NewRequest(http.MethodGet, "rate_limit", nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if _, err := c.Client.Do(context.Background(), req, nil); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if budget.Remaining() != 41 {
		t.Fatalf("want 41 remaining, got %d", budget.Remaining())
	}
}
