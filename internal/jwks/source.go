package jwks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

const maxDocumentSize = 1 << 20

var (
	// ErrFetch indicates the key set could not be retrieved or decoded
	ErrFetch = errors.New("jwks: fetch failed")

	// ErrInsecureEndpoint indicates a key set URL that does not use https
	ErrInsecureEndpoint = errors.New("jwks: endpoint must use https")
)

// Source yields the identity provider's current signing key set.
type Source interface {
	KeySet(ctx context.Context) (jwk.Set, error)
}

// Invalidator is implemented by caching sources that can drop their state.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// RawSource yields the undecoded key set document.
type RawSource interface {
	Raw(ctx context.Context) ([]byte, error)
}

// Doer is satisfied by *http.Client and the retrying client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSource fetches the key set on every call.
type HTTPSource struct {
	endpoint string
	client   Doer
	timeout  time.Duration
	observe  func(time.Duration, error)
}

// Option configures an HTTPSource.
type Option func(*httpOptions)

type httpOptions struct {
	timeout   time.Duration
	plainHTTP bool
	observe   func(time.Duration, error)
}

// WithTimeout bounds every fetch, including retries.
func WithTimeout(d time.Duration) Option {
	return func(o *httpOptions) { o.timeout = d }
}

// AllowPlainHTTP accepts http:// endpoints. Test environments only.
func AllowPlainHTTP() Option {
	return func(o *httpOptions) { o.plainHTTP = true }
}

// WithObserver is called after each fetch with its duration and outcome.
func WithObserver(fn func(time.Duration, error)) Option {
	return func(o *httpOptions) { o.observe = fn }
}

// NewHTTPSource validates the endpoint and returns a fetching source.
func NewHTTPSource(endpoint string, client Doer, opts ...Option) (*HTTPSource, error) {
	o := httpOptions{timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("jwks: invalid endpoint %q", endpoint)
	}
	if u.Scheme != "https" && !(o.plainHTTP && u.Scheme == "http") {
		return nil, ErrInsecureEndpoint
	}
	if client == nil {
		return nil, errors.New("jwks: http client is required")
	}

	return &HTTPSource{
		endpoint: endpoint,
		client:   client,
		timeout:  o.timeout,
		observe:  o.observe,
	}, nil
}

// Endpoint returns the configured key set URL.
func (s *HTTPSource) Endpoint() string { return s.endpoint }

// KeySet fetches and decodes the key set.
func (s *HTTPSource) KeySet(ctx context.Context) (jwk.Set, error) {
	raw, err := s.Raw(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Raw fetches the key set document without decoding the keys.
func (s *HTTPSource) Raw(ctx context.Context) (body []byte, err error) {
	start := time.Now()
	if s.observe != nil {
		defer func() { s.observe(time.Since(start), err) }()
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDocumentSize))
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}
	if len(body) > maxDocumentSize {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", ErrFetch, maxDocumentSize)
	}
	if err := checkDocument(body); err != nil {
		return nil, err
	}
	return body, nil
}

// Parse decodes a {"keys": [...]} document.
func Parse(raw []byte) (jwk.Set, error) {
	if err := checkDocument(raw); err != nil {
		return nil, err
	}
	set, err := jwk.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decode keys: %v", ErrFetch, err)
	}
	return set, nil
}

func checkDocument(raw []byte) error {
	var doc struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: invalid json: %v", ErrFetch, err)
	}
	if doc.Keys == nil {
		return fmt.Errorf("%w: document has no keys member", ErrFetch)
	}
	return nil
}
