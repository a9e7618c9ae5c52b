// Package middleware holds the HTTP middleware stack.
package middleware

import (
	"context"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"opnskin/pkg/apierror"
	"opnskin/pkg/response"
	"opnskin/pkg/uid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	steamIDKey   contextKey = "steam_id"
)

// RequestID attaches a unique request id to each request.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uid.New()
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID)))
	})
}

// GetRequestID retrieves the request id from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Logging logs method, path, status and duration for each request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Printf("[%s] %s %d %s", r.Method, r.URL.Path, wrapped.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Recovery converts handler panics into 500 responses.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("PANIC: %v\n%s", rec, debug.Stack())
				response.Error(w, apierror.InternalError("internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// SteamSession requires an authenticated Steam id on the request. The
// OpenID handshake happens upstream of this service; the session layer
// forwards the verified id in X-Steam-ID.
func SteamSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		steamID := r.Header.Get("X-Steam-ID")
		if steamID == "" {
			response.Error(w, apierror.Unauthorized("sign in through Steam first"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), steamIDKey, steamID)))
	})
}

// GetSteamID retrieves the authenticated Steam id from context.
func GetSteamID(ctx context.Context) string {
	if id, ok := ctx.Value(steamIDKey).(string); ok {
		return id
	}
	return ""
}
