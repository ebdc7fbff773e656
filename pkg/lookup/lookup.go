// Package lookup provides the availability verdict sources the checker calls
// on a cache miss: DNS-over-HTTPS, a WHOIS JSON API and the Loopia API.
package lookup

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/uberswe/domaingen/pkg/api"
	"github.com/uberswe/domaingen/pkg/domain"
)

// Lookup returns an availability verdict for a fully-qualified name.
// Failures are *domain.LookupError values.
type Lookup interface {
	Lookup(ctx context.Context, fqdn string) (domain.Verdict, error)
}

// Func adapts a function to the Lookup interface
type Func func(ctx context.Context, fqdn string) (domain.Verdict, error)

func (f Func) Lookup(ctx context.Context, fqdn string) (domain.Verdict, error) {
	return f(ctx, fqdn)
}

const defaultHTTPTimeout = 15 * time.Second

// New builds the lookup selected by cfg.Backend
func New(cfg domain.Config) (Lookup, error) {
	httpClient := &http.Client{Timeout: defaultHTTPTimeout}
	limiter := newLimiter(cfg.LookupQPS)

	switch cfg.Backend {
	case "", "dns":
		return NewDoH(cfg.DoHEndpoint, WithHTTPClient(httpClient), WithRateLimit(limiter)), nil
	case "whois":
		if cfg.WhoisAPIKey == "" {
			return nil, &domain.ConfigError{Field: "whois_api_key", Reason: "required for the whois backend"}
		}
		return NewWhoisXML(cfg.WhoisAPIKey, WithHTTPClient(httpClient), WithRateLimit(limiter)), nil
	case "loopia":
		if cfg.Username == "" || cfg.Password == "" {
			return nil, &domain.ConfigError{Field: "username", Reason: "Loopia credentials are required for the loopia backend"}
		}
		client, err := api.NewClient(cfg.Username, cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("create Loopia client: %w", err)
		}
		return NewLoopia(client), nil
	default:
		return nil, &domain.ConfigError{Field: "backend", Reason: fmt.Sprintf("unknown backend %q", cfg.Backend)}
	}
}

// HTTPOption configures the HTTP based lookups
type HTTPOption func(*httpLookup)

// WithHTTPClient sets the client used for requests
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *httpLookup) { h.client = c }
}

// WithRateLimit smooths requests through a token bucket. A nil limiter disables it.
func WithRateLimit(l *rate.Limiter) HTTPOption {
	return func(h *httpLookup) { h.limiter = l }
}

func newLimiter(qps float64) *rate.Limiter {
	if qps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(qps), max(1, int(qps)))
}

// httpLookup holds what the HTTP backends share
type httpLookup struct {
	client  *http.Client
	limiter *rate.Limiter
}

func newHTTPLookup(opts []HTTPOption) httpLookup {
	h := httpLookup{client: &http.Client{Timeout: defaultHTTPTimeout}}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// do sends req and classifies transport failures and throttling
func (h httpLookup) do(req *http.Request, name string) (*http.Response, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(req.Context()); err != nil {
			return nil, domain.NewLookupError(domain.KindNetwork, name, err)
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, domain.NewLookupError(domain.KindNetwork, name, err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, domain.NewLookupError(domain.KindRateLimited, name, fmt.Errorf("HTTP %d", resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, domain.NewLookupError(domain.KindProtocol, name, fmt.Errorf("HTTP error status %d", resp.StatusCode))
	}
	return resp, nil
}
