// Package admin guards operator-only endpoints with a shared token. These
// routes (recent audit feed, outbox inspection) bypass the tenant-scoped
// staff auth, so the token is checked in constant time and never logged.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "origo/pkg/domain-errors"
	"origo/pkg/platform/httputil"
	request "origo/pkg/platform/middleware/request"
)

func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Admin-Token")
			if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
