package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/go-github/v81/github"
	"golang.org/x/oauth2"
)

// Client bundles the REST client with the HTTP client behind it; the latter
// is reused for raw blob downloads so they carry the same auth and logging.
type Client struct {
	Client *github.Client
	HTTP   *http.Client
	Budget *RateBudget
}

type options struct {
	verbose bool
	// writer receives verbose HTTP logs (typically stderr) so a document
	// written to stdout stays clean.
	writer    io.Writer
	baseURL   string
	userAgent string
	budget    *RateBudget
}

type Option func(*options)

func WithVerbose(enabled bool, writer io.Writer) Option {
	return func(o *options) {
		o.verbose = enabled
		o.writer = writer
	}
}

// WithBaseURL points the client at a GitHub Enterprise Server API root, e.g.
// https://ghe.example.com/api/v3/. Empty keeps api.github.com.
func WithBaseURL(raw string) Option {
	return func(o *options) {
		o.baseURL = strings.TrimSpace(raw)
	}
}

// WithRateBudget shares b between clients. By default every client gets its
// own budget.
func WithRateBudget(b *RateBudget) Option {
	return func(o *options) {
		o.budget = b
	}
}

func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// loggingRoundTripper emits one line per request and per response (with
// latency) when verbose logging is enabled.
type loggingRoundTripper struct {
	base http.RoundTripper
	w    io.Writer
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	if t.w != nil {
		_, _ = fmt.Fprintf(t.w, "[verbose] github: %s %s\n", req.Method, req.URL.Redacted())
	}
	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start)
	if t.w != nil {
		if err != nil {
			_, _ = fmt.Fprintf(t.w, "[verbose] github: error after %s: %v\n", dur.Truncate(time.Millisecond), err)
		} else {
			_, _ = fmt.Fprintf(t.w, "[verbose] github: %d %s (%s)\n", resp.StatusCode, http.StatusText(resp.StatusCode), dur.Truncate(time.Millisecond))
		}
	}
	return resp, err
}

func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	if ctx == nil {
		return nil, fmt.Errorf("github client: ctx is nil")
	}

	o := &options{}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
	if o.verbose && o.writer == nil {
		o.writer = os.Stderr
	}
	if o.budget == nil {
		o.budget = NewRateBudget()
	}

	var transport http.RoundTripper = &budgetRoundTripper{base: http.DefaultTransport, budget: o.budget}
	if o.verbose {
		transport = &loggingRoundTripper{base: transport, w: o.writer}
	}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}
	tc := &http.Client{Transport: transport}

	client := github.NewClient(tc)
	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("github client: invalid base url %q: %w", o.baseURL, err)
		}
		client.BaseURL = u
	}
	if o.userAgent != "" {
		client.UserAgent = o.userAgent
	}

	return &Client{
		Client: client,
		HTTP:   tc,
		Budget: o.budget,
	}, nil
}
