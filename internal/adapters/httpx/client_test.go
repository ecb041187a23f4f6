package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bluabaleno/premarket-tracker/internal/adapters/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient() *httpx.Client {
	return httpx.NewClient(time.Second).WithRetryWait(time.Millisecond)
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := newClient().Get(context.Background(), httpx.NewLimiter(100, 10), srv.URL, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_RetriesTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	var out []any
	require.NoError(t, newClient().Get(context.Background(), nil, srv.URL, &out))
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such market"))
	}))
	defer srv.Close()

	var out any
	err := newClient().Get(context.Background(), nil, srv.URL, &out)
	require.Error(t, err)

	var statusErr *httpx.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Contains(t, statusErr.Body, "no such market")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGet_GivesUpAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var out any
	err := newClient().Get(context.Background(), nil, srv.URL, &out)
	assert.ErrorContains(t, err, "server error 500")
}

func TestGet_GivesUpOnRepeatedRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var out any
	err := newClient().Get(context.Background(), nil, srv.URL, &out)
	assert.ErrorContains(t, err, "rate limited")
	assert.Equal(t, int32(4), calls.Load(), "first attempt plus three retries")
}

func TestGet_CancelDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	var out any
	err := httpx.NewClient(time.Second).WithRetryWait(time.Hour).Get(ctx, nil, srv.URL, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPost_SendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"echo": "ok"}`))
	}))
	defer srv.Close()

	var out map[string]string
	err := newClient().Post(context.Background(), nil, srv.URL, []map[string]string{{"token_id": "1"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out["echo"])
}
