package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_Defaults(t *testing.T) {
	client := NewHTTPClient(Config{})

	assert.Equal(t, defaultTimeout, client.Timeout)
	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.False(t, transport.TLSClientConfig.InsecureSkipVerify)
	assert.NotSame(t, http.DefaultTransport, client.Transport)
}

func TestNewHTTPClient_InsecureIsScoped(t *testing.T) {
	insecure := NewHTTPClient(Config{InsecureSkipVerify: true})
	secure := NewHTTPClient(Config{})

	assert.True(t, insecure.Transport.(*http.Transport).TLSClientConfig.InsecureSkipVerify)
	assert.False(t, secure.Transport.(*http.Transport).TLSClientConfig.InsecureSkipVerify)
}

func TestNewHTTPClient_RejectsSelfSignedByDefault(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"keys":[]}`))
	}))
	defer server.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	_, err = NewHTTPClient(Config{Timeout: time.Second}).Do(req)
	assert.Error(t, err)

	resp, err := NewHTTPClient(Config{Timeout: time.Second, InsecureSkipVerify: true}).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNew_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"keys":[]}`))
	}))
	defer server.Close()

	client, err := New(Config{Timeout: time.Second, MaxRetries: 3, RetryDelay: 10 * time.Millisecond})
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNew_InvalidRetryDelay(t *testing.T) {
	client, err := New(Config{RetryDelay: time.Minute})
	assert.Error(t, err)
	assert.Nil(t, client)
}
