// Package api provides a client for interacting with the Loopia API
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kolo/xmlrpc"
	"github.com/rs/zerolog/log"
)

const (
	loopiaEndpoint = "https://api.loopia.se/RPCSERV"

	// DefaultTimeout bounds dialing, the TLS handshake and the wait for a response
	DefaultTimeout = 15 * time.Second
)

// Status strings returned by domainIsFree
const (
	StatusFree        = "FREE"
	StatusOccupied    = "OCCUPIED"
	StatusRateLimited = "RATE_LIMITED"
	StatusAuthError   = "AUTH_ERROR"
	StatusBadIndata   = "BAD_INDATA"
	StatusUnknown     = "UNKNOWN_ERROR"
)

// ErrUnauthorized is returned for every call after Loopia rejected the credentials
var ErrUnauthorized = errors.New("loopia rejected the API credentials")

// Client wraps an xmlrpc.Client and automatically inserts
// username + password as the first two parameters of every call.
type Client struct {
	username string
	password string
	endpoint string
	rpc      *xmlrpc.Client
	dryRun   bool // if true, no RPC is executed and every domain is reported free
	timeout  time.Duration

	mu           sync.Mutex
	unauthorized bool
	calls        int
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithEndpoint points the client at another XML-RPC endpoint
func WithEndpoint(url string) ClientOption {
	return func(c *Client) { c.endpoint = url }
}

// WithDryRun makes the client answer locally without calling Loopia
func WithDryRun(dry bool) ClientOption {
	return func(c *Client) { c.dryRun = dry }
}

// WithTimeout replaces DefaultTimeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a new Loopia API client
func NewClient(username, password string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		username: username,
		password: password,
		endpoint: loopiaEndpoint,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	// xmlrpc builds its own http.Client around the transport, so the
	// deadlines have to live on the transport
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: c.timeout, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = c.timeout
	transport.ResponseHeaderTimeout = c.timeout

	rpc, err := xmlrpc.NewClient(c.endpoint, transport)
	if err != nil {
		return nil, fmt.Errorf("create xmlrpc client: %w", err)
	}
	c.rpc = rpc
	return c, nil
}

// Call invokes an XML-RPC method with authentication prepended.
// The call honours ctx only before it is sent.
func (c *Client) Call(ctx context.Context, method string, params ...interface{}) (interface{}, error) {
	reqLogger := log.With().
		Str("method", method).
		Str("operation", "api_call").
		Logger()

	if c.dryRun {
		reqLogger.Debug().
			Interface("params", params).
			Msg("[DRY-RUN] API call simulated")
		return StatusFree, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.unauthorized {
		c.mu.Unlock()
		return nil, ErrUnauthorized
	}
	c.calls++
	callNumber := c.calls
	c.mu.Unlock()

	all := append([]interface{}{c.username, c.password}, params...)

	start := time.Now()
	var reply interface{}
	err := c.rpc.Call(method, all, &reply)
	duration := time.Since(start)

	if err != nil {
		reqLogger.Error().
			Err(err).
			Int("call", callNumber).
			Dur("duration", duration).
			Msg("API call failed")

		if err.Error() == "401 Unauthorized" {
			c.markUnauthorized()
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	reqLogger.Debug().
		Int("call", callNumber).
		Dur("duration", duration).
		Interface("response", reply).
		Msg("API call successful")

	return reply, nil
}

func (c *Client) markUnauthorized() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unauthorized {
		log.Error().Msg("Loopia rejected the credentials, stopping further API calls")
	}
	c.unauthorized = true
}

// DomainIsFree asks Loopia whether the fully-qualified domain can be
// registered. It returns one of the Status constants.
func (c *Client) DomainIsFree(ctx context.Context, domain string) (string, error) {
	reply, err := c.Call(ctx, "domainIsFree", domain)
	if err != nil {
		return "", err
	}

	status, ok := reply.(string)
	if !ok {
		return "", fmt.Errorf("unexpected response format from domainIsFree: %T", reply)
	}
	if status == StatusAuthError {
		c.markUnauthorized()
	}
	return status, nil
}

// Calls is the number of requests sent so far
func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Close releases the underlying connection
func (c *Client) Close() error {
	return c.rpc.Close()
}
