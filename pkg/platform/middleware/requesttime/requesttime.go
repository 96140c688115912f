// Package requesttime pins one "now" per HTTP request. Aggregate updates,
// timeline entries, and audit events written by a single request all carry
// the same instant, so one operation cannot end up with inverted timestamps
// across its writes.
package requesttime

import (
	"net/http"
	"time"

	"origo/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and
// stores it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
