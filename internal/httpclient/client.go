package httpclient

import (
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	retry "github.com/appleboy/go-httpretry"
)

const (
	defaultTimeout       = 5 * time.Second
	defaultRetryDelay    = 200 * time.Millisecond
	defaultMaxRetryDelay = 2 * time.Second
)

// Config describes the transport used for a single outbound dependency.
// Nothing here touches process-wide TLS or proxy state.
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// InsecureSkipVerify disables certificate validation for this client only.
	// Intended for test environments.
	InsecureSkipVerify bool
	// TLSConfig, when set, is cloned as the base TLS configuration.
	TLSConfig          *tls.Config
}

func (c Config) normalize() Config {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
	return c
}

// NewHTTPClient builds a plain *http.Client with its own transport.
func NewHTTPClient(cfg Config) *http.Client {
	cfg = cfg.normalize()

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.TLSConfig != nil {
		tlsConfig = cfg.TLSConfig.Clone()
		if tlsConfig.MinVersion == 0 {
			tlsConfig.MinVersion = tls.VersionTLS12
		}
	}
	if cfg.InsecureSkipVerify {
		tlsConfig.InsecureSkipVerify = true // #nosec G402 -- opt-in, scoped to this client
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   cfg.Timeout,
		ResponseHeaderTimeout: cfg.Timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
}

// New returns a retrying client on top of NewHTTPClient.
func New(cfg Config) (*retry.Client, error) {
	cfg = cfg.normalize()
	if cfg.RetryDelay > defaultMaxRetryDelay {
		return nil, errors.New("retry delay exceeds the maximum retry delay")
	}

	return retry.NewClient(
		retry.WithHTTPClient(NewHTTPClient(cfg)),
		retry.WithMaxRetries(cfg.MaxRetries),
		retry.WithInitialRetryDelay(cfg.RetryDelay),
		retry.WithMaxRetryDelay(defaultMaxRetryDelay),
	)
}
