package httpclient

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SendsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	res, err := New(Options{UserAgent: "newswatch-test/2.0"}).R().Get(srv.URL)
	require.NoError(t, err)
	assert.True(t, res.IsSuccess())
	assert.Equal(t, "newswatch-test/2.0", got)
}

func TestNew_AppliesTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := New(Options{Timeout: 50 * time.Millisecond})
	assert.Equal(t, 50*time.Millisecond, client.GetClient().Timeout)

	start := time.Now()
	_, err := client.R().Get(srv.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNew_ZeroTimeoutKeepsDefault(t *testing.T) {
	client := New(Options{})
	assert.Equal(t, time.Duration(0), client.GetClient().Timeout)
}

func TestNew_DoesNotRetry(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	res, err := New(Options{}).R().Get(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode())
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
