package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(Options{Timeout: 5 * time.Second, MaxRetries: 2, BackoffMin: time.Millisecond})
	require.NoError(t, err)
	return c
}

func TestGetJSON_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	body, err := newClient(t).GetJSON(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(body))
}

func TestGetJSON_NonJSON200_IsFailure(t *testing.T) {
	// Steam rate limiting returns HTML with a 200 status; that must not pass.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>try again later</html>"))
	}))
	defer srv.Close()

	_, err := newClient(t).GetJSON(context.Background(), srv.URL, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "non-JSON")
}

func TestGetJSON_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newClient(t).GetJSON(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestGetJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("private inventory"))
	}))
	defer srv.Close()

	c, err := New(Options{Timeout: time.Second, MaxRetries: 0})
	require.NoError(t, err)
	_, err = c.GetJSON(context.Background(), srv.URL, nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusForbidden, se.Status)
}

func TestGetJSON_ProxyFallsBackToDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"via":"direct"}`))
	}))
	defer srv.Close()

	// Proxy points at a closed port, so every proxied attempt fails and the
	// single direct fallback attempt must carry the request.
	c, err := New(Options{Timeout: time.Second, ProxyURL: "http://127.0.0.1:1", MaxRetries: 1, BackoffMin: time.Millisecond})
	require.NoError(t, err)

	body, err := c.GetJSON(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"via":"direct"}`, string(body))
}

func TestGetJSON_ContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newClient(t).GetJSON(ctx, srv.URL, nil)
	require.Error(t, err)
}
