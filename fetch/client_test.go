package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wirvsvirus/landingzone/rate_limiter"
)

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "landingzone", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	c := NewClient(WithRetries(0))
	body, err := c.Get(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, `{"features":[]}`, string(body))
}

func TestClient_Get_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(WithRetries(0))
	_, err := c.Get(context.Background(), srv.URL+"/data.csv")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "boom", statusErr.Body)
}

func TestClient_Get_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("a,b\n1,2\n"))
	}))
	defer srv.Close()

	c := NewClient(WithRetries(2), WithRetryWait(time.Millisecond, 5*time.Millisecond))
	body, err := c.Get(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Get_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(WithRetries(3), WithRetryWait(time.Millisecond, time.Millisecond))
	_, err := c.Get(context.Background(), srv.URL)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Get_LimiterCanceled(t *testing.T) {
	l := rate_limiter.NewAPILimiter(&rate_limiter.Definition{Name: "test", MaxConcurrency: 1})
	require.NoError(t, l.Wait(context.Background()))
	defer l.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	c := NewClient(WithLimiter(l))
	_, err := c.Get(ctx, "http://127.0.0.1:1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
