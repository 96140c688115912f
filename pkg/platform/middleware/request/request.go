// Package request assigns each request a correlation ID. The ID flows through
// requestcontext into logs, audit events, and the X-Request-ID response
// header so one staff action can be traced across all three.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"origo/pkg/requestcontext"
)

const headerName = "X-Request-ID"

// Middleware reuses an inbound X-Request-ID when the caller supplied one and
// generates a fresh UUID otherwise. The chosen ID is echoed on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerName)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(headerName, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the correlation ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
