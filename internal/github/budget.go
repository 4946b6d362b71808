package github

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateBudget tracks the REST rate limit reported by GitHub and holds requests
// back once it is exhausted, until the reset time or a Retry-After cooldown
// has passed. The zero value is not usable; call NewRateBudget.
type RateBudget struct {
	mu sync.Mutex

	// remaining is -1 until the first response reports a limit.
	remaining int
	reset     time.Time
	cooldown  time.Time

	now func() time.Time
}

func NewRateBudget() *RateBudget {
	return &RateBudget{remaining: -1, now: time.Now}
}

// Remaining returns the last observed request allowance, or -1 if unknown.
func (b *RateBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

// Acquire reserves one request, blocking while the budget is exhausted.
func (b *RateBudget) Acquire(ctx context.Context) error {
	if b == nil {
		return errors.New("Acquire: nil RateBudget")
	}
	for {
		b.mu.Lock()
		now := b.now()
		var until time.Time
		switch {
		case now.Before(b.cooldown):
			until = b.cooldown
		case b.remaining > 0:
			b.remaining--
		case b.remaining == 0 && now.Before(b.reset):
			until = b.reset
		case b.remaining == 0:
			// Past the reset: let one probe through and learn the new limit
			// from its response.
			b.remaining = -1
		}
		b.mu.Unlock()

		if until.IsZero() {
			return nil
		}
		if err := sleepCtx(ctx, until.Sub(now)); err != nil {
			return err
		}
	}
}

// Observe updates the budget from the rate limit headers of resp.
func (b *RateBudget) Observe(resp *http.Response) {
	if b == nil || resp == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if v, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && v > 0 {
		if until := b.now().Add(time.Duration(v) * time.Second); until.After(b.cooldown) {
			b.cooldown = until
		}
	}
	if v, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining")); err == nil && v >= 0 {
		b.remaining = v
	}
	if v, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil && v > 0 {
		b.reset = time.Unix(v, 0)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type budgetRoundTripper struct {
	base   http.RoundTripper
	budget *RateBudget
}

func (t *budgetRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.budget.Acquire(req.Context()); err != nil {
		return nil, err
	}
	resp, err := t.base.RoundTrip(req)
	if err == nil {
		t.budget.Observe(resp)
	}
	return resp, err
}
