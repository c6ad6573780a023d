package httpclient

import (
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/postforge/internal/errorwrapper"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout             time.Duration     // Request timeout
	FollowRedirects     bool              // Whether to follow redirects
	MaxRedirects        int               // Maximum number of redirects to follow
	CustomHeaders       map[string]string // Custom headers to add to all requests
	UserAgent           string            // User-Agent header
	MaxIdleConns        int               // Maximum idle connections
	MaxIdleConnsPerHost int               // Maximum idle connections per host
	IdleConnTimeout     time.Duration     // Idle connection timeout
	TLSHandshakeTimeout time.Duration     // TLS handshake timeout
	DialTimeout         time.Duration     // Connection dial timeout
	KeepAlive           time.Duration     // Keep-alive duration
}

// DefaultHTTPClientConfig returns a default HTTP client configuration
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:             30 * time.Second,
		FollowRedirects:     true,
		MaxRedirects:        10,
		CustomHeaders:       make(map[string]string),
		UserAgent:           "Postforge/1.0",
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialTimeout:         30 * time.Second,
		KeepAlive:           30 * time.Second,
	}
}

// NewHTTPClient creates a new HTTP client with the given configuration
func NewHTTPClient(config HTTPClientConfig, logger zerolog.Logger) (*http.Client, error) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		TLSHandshakeTimeout: config.TLSHandshakeTimeout,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	if !config.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if config.MaxRedirects > 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= config.MaxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		}
	}

	logger.Debug().
		Dur("timeout", config.Timeout).
		Bool("follow_redirects", config.FollowRedirects).
		Int("max_redirects", config.MaxRedirects).
		Msg("HTTP client created")

	return client, nil
}

// ValidateHTTPClientConfig validates an HTTP client configuration
func ValidateHTTPClientConfig(config HTTPClientConfig) error {
	if config.Timeout <= 0 {
		return errorwrapper.NewValidationError("timeout", config.Timeout, "must be positive")
	}
	if config.MaxRedirects < 0 {
		return errorwrapper.NewValidationError("max_redirects", config.MaxRedirects, "must be non-negative")
	}
	return nil
}

// HTTPClientBuilder provides a fluent interface for building HTTP clients
type HTTPClientBuilder struct {
	config HTTPClientConfig
	logger zerolog.Logger
}

// NewHTTPClientBuilder creates a new HTTP client builder
func NewHTTPClientBuilder(logger zerolog.Logger) *HTTPClientBuilder {
	return &HTTPClientBuilder{
		config: DefaultHTTPClientConfig(),
		logger: logger,
	}
}

// WithTimeout sets the request timeout
func (b *HTTPClientBuilder) WithTimeout(timeout time.Duration) *HTTPClientBuilder {
	b.config.Timeout = timeout
	return b
}

// WithFollowRedirects sets whether to follow redirects
func (b *HTTPClientBuilder) WithFollowRedirects(follow bool) *HTTPClientBuilder {
	b.config.FollowRedirects = follow
	return b
}

// WithMaxRedirects sets the maximum number of redirects
func (b *HTTPClientBuilder) WithMaxRedirects(max int) *HTTPClientBuilder {
	b.config.MaxRedirects = max
	return b
}

// WithUserAgent sets the User-Agent header
func (b *HTTPClientBuilder) WithUserAgent(userAgent string) *HTTPClientBuilder {
	b.config.UserAgent = userAgent
	return b
}

// WithCustomHeader adds a custom header
func (b *HTTPClientBuilder) WithCustomHeader(key, value string) *HTTPClientBuilder {
	if b.config.CustomHeaders == nil {
		b.config.CustomHeaders = make(map[string]string)
	}
	b.config.CustomHeaders[key] = value
	return b
}

// Build creates the HTTP client with the configured settings
func (b *HTTPClientBuilder) Build() (*http.Client, error) {
	if err := ValidateHTTPClientConfig(b.config); err != nil {
		return nil, err
	}
	return NewHTTPClient(b.config, b.logger)
}

// Config returns the effective configuration, useful for propagating the
// User-Agent and custom headers to per-request construction
func (b *HTTPClientBuilder) Config() HTTPClientConfig {
	return b.config
}

// HTTPClientTransport wraps an HTTP client to apply default headers and
// request/response logging
type HTTPClientTransport struct {
	client         *http.Client
	defaultHeaders map[string]string
	logger         zerolog.Logger
}

// NewHTTPClientTransport creates a transport wrapper around an HTTP client
func NewHTTPClientTransport(client *http.Client, defaultHeaders map[string]string, logger zerolog.Logger) *HTTPClientTransport {
	return &HTTPClientTransport{
		client:         client,
		defaultHeaders: defaultHeaders,
		logger:         logger,
	}
}

// Do executes an HTTP request with default headers applied
func (t *HTTPClientTransport) Do(req *http.Request) (*http.Response, error) {
	for key, value := range t.defaultHeaders {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}

	t.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("Executing HTTP request")

	start := time.Now()
	resp, err := t.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		t.logger.Error().
			Err(err).
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Dur("duration", duration).
			Msg("HTTP request failed")
		return nil, errorwrapper.WrapError(err, "HTTP request failed")
	}

	t.logger.Debug().
		Int("status_code", resp.StatusCode).
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Dur("duration", duration).
		Msg("HTTP request completed")

	return resp, nil
}

// GetClient returns the underlying HTTP client
func (t *HTTPClientTransport) GetClient() *http.Client {
	return t.client
}

// ParseBaseURL validates and normalizes a service base URL
func ParseBaseURL(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", errorwrapper.WrapError(err, "failed to parse base URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errorwrapper.NewValidationError("base_url", raw, "must use http or https")
	}
	return parsed.String(), nil
}
