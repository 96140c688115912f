// Package auth authenticates staff requests. Tokens identify an actor, the
// tenant they work for, and their role; the middleware turns valid tokens
// into a permission.Actor in the context and everything downstream trusts
// that value instead of re-reading headers.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"origo/internal/permission"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
	"origo/pkg/platform/httputil"
	request "origo/pkg/platform/middleware/request"
)

// Claims are the token fields the middleware needs. The validator owns
// signature and expiry checks; the middleware only interprets identity.
type Claims struct {
	ActorID  string
	TenantID string
	Role     string
}

// Validator checks a raw bearer token and returns its claims.
type Validator interface {
	ValidateToken(token string) (*Claims, error)
}

type actorKey struct{}

// ActorFrom retrieves the authenticated actor from the context.
func ActorFrom(ctx context.Context) (permission.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(permission.Actor)
	return actor, ok
}

// WithActor injects an actor into a context. Useful for handler tests that
// skip the middleware chain.
func WithActor(ctx context.Context, actor permission.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved actor in the context for handlers.
func RequireAuth(validator Validator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", request.GetRequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			actor, err := actorFromClaims(claims)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed claims",
					"request_id", request.GetRequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(ctx, actor)))
		})
	}
}

func actorFromClaims(claims *Claims) (permission.Actor, error) {
	actorID, err := id.ParseActorID(claims.ActorID)
	if err != nil {
		return permission.Actor{}, err
	}
	tenantID, err := id.ParseTenantID(claims.TenantID)
	if err != nil {
		return permission.Actor{}, err
	}
	role, ok := permission.ParseRole(claims.Role)
	if !ok {
		return permission.Actor{}, dErrors.Newf(dErrors.CodeUnauthorized, "unknown role %q", claims.Role)
	}
	return permission.Actor{ID: actorID, Role: role, Tenant: tenantID}, nil
}
