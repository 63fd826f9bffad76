// Package request provides request-ID middleware. Every request gets a
// correlation ID (propagated from X-Request-ID when the caller supplies one)
// that flows through logs and audit events.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"rollcall/pkg/requestcontext"
)

const headerRequestID = "X-Request-ID"

// Middleware assigns a request ID and stores it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(headerRequestID, requestID)

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
