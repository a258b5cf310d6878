package httpfetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOptions() Options {
	return Options{
		Timeout:     2 * time.Second,
		MaxAttempts: 5,
		BackoffMin:  time.Millisecond,
		BackoffMax:  5 * time.Millisecond,
		UserAgent:   "praio-test",
	}
}

func TestFetcher_Get(t *testing.T) {
	t.Run("retries transient status then succeeds", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			assert.Equal(t, "praio-test", r.Header.Get("User-Agent"))
			assert.Equal(t, "-22.9", r.URL.Query().Get("latitude"))
			w.Write([]byte("ok"))
		}))
		defer server.Close()

		f := New(testOptions(), zap.NewNop())
		body, err := f.Get(context.Background(), server.URL, url.Values{"latitude": {"-22.9"}})
		require.NoError(t, err)
		assert.Equal(t, "ok", string(body))
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		f := New(testOptions(), zap.NewNop())
		_, err := f.Get(context.Background(), server.URL, nil)
		require.Error(t, err)

		var fetchErr *FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, http.StatusBadGateway, fetchErr.StatusCode)
		assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		f := New(testOptions(), zap.NewNop())
		_, err := f.Get(context.Background(), server.URL, nil)

		var fetchErr *FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("connection error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		addr := server.URL
		server.Close()

		opts := testOptions()
		opts.MaxAttempts = 2
		f := New(opts, zap.NewNop())
		_, err := f.Get(context.Background(), addr, nil)

		var fetchErr *FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Zero(t, fetchErr.StatusCode)
	})
}

func TestFetcher_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value": 3}`))
	}))
	defer server.Close()

	f := New(testOptions(), zap.NewNop())

	var out struct {
		Value int `json:"value"`
	}
	require.NoError(t, f.GetJSON(context.Background(), server.URL, nil, &out))
	assert.Equal(t, 3, out.Value)
}
