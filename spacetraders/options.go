package spacetraders

import (
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the public SpaceTraders API
	DefaultBaseURL = "https://api.spacetraders.io"
	// DefaultMinInterval keeps the client under the API's two requests per second
	DefaultMinInterval = 500 * time.Millisecond
	// DefaultTimeout bounds a single HTTP exchange
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent when no other user agent is configured
	DefaultUserAgent = "tradingpost"
)

// DefaultSystems are the systems loaded during bootstrap
var DefaultSystems = []string{"OE", "XV", "NA7", "ZY1"}

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	minInterval time.Duration
	concurrency int
	systems     []string
	userAgent   string
}

func defaultOptions() clientOptions {
	return clientOptions{
		baseURL:     DefaultBaseURL,
		timeout:     DefaultTimeout,
		minInterval: DefaultMinInterval,
		concurrency: 1,
		systems:     DefaultSystems,
		userAgent:   DefaultUserAgent,
	}
}

// WithBaseURL points the client at another API host.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets a custom HTTP client. Its own timeout is kept.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithMinInterval sets the minimum spacing between outbound requests.
func WithMinInterval(interval time.Duration) Option {
	return func(o *clientOptions) {
		if interval >= 0 {
			o.minInterval = interval
		}
	}
}

// WithConcurrency sets how many requests may be in flight at once.
func WithConcurrency(n int) Option {
	return func(o *clientOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithSystems sets the systems loaded during bootstrap.
func WithSystems(systems ...string) Option {
	return func(o *clientOptions) {
		if len(systems) > 0 {
			o.systems = systems
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}
