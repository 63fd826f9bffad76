package testutil

import (
	"net/http"
	"time"

	"rollcall/pkg/requestcontext"
)

// WithRequestID stamps a request id on the request context, simulating the
// request middleware.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithRequestTime pins the request-scoped clock, simulating the requesttime
// middleware. Handlers and services read this instant instead of time.Now so
// tests stay deterministic.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// FreezeTime returns a middleware that pins the request clock for every
// request passing through a test router.
func FreezeTime(t time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, WithRequestTime(r, t))
		})
	}
}
