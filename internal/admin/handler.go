// Package admin exposes operator-only endpoints: the recent audit feed and
// a token minting helper for bootstrapping staff credentials. All routes sit
// behind the shared admin token, outside the tenant-scoped staff auth.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"origo/internal/audit"
	jwttoken "origo/internal/jwt_token"
	dErrors "origo/pkg/domain-errors"
	"origo/pkg/platform/httputil"
	request "origo/pkg/platform/middleware/request"
)

const defaultRecentLimit = 50

// AuditReader provides the recent-events feed backing GET /admin/audit/recent.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler serves the admin surface.
type Handler struct {
	auditReader AuditReader
	tokens      *jwttoken.JWTService
	tokenTTL    time.Duration
	logger      *slog.Logger
}

// New creates an admin handler. tokenTTL is the default lifetime for minted
// tokens when the request does not specify one.
func New(auditReader AuditReader, tokens *jwttoken.JWTService, tokenTTL time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		auditReader: auditReader,
		tokens:      tokens,
		tokenTTL:    tokenTTL,
		logger:      logger,
	}
}

// Register mounts the admin routes on the given router. The caller is
// expected to have wrapped the router with the admin token middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/audit/recent", h.HandleRecentAudit)
	r.Post("/admin/tokens", h.HandleMintToken)
}

// HandleRecentAudit returns the newest audit events across all tenants.
func (h *Handler) HandleRecentAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	start := time.Now()

	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	events, err := h.auditReader.ListRecent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "recent audit feed failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "recent audit feed served",
		"request_id", requestID,
		"events", len(events),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromEvents(events))
}

// HandleMintToken issues a staff access token for the requested actor, tenant
// and role.
func (h *Handler) HandleMintToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[MintTokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	ttl := req.ParsedTTL()
	if ttl == 0 {
		ttl = h.tokenTTL
	}

	token, err := h.tokens.GenerateAccessToken(req.ParsedActor(), req.ParsedTenant(), req.ParsedRole(), ttl)
	if err != nil {
		h.logger.ErrorContext(ctx, "token minting failed",
			"request_id", requestID,
			"actor_id", req.ParsedActor().String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "staff token minted",
		"request_id", requestID,
		"actor_id", req.ParsedActor().String(),
		"tenant_id", req.ParsedTenant().String(),
		"role", string(req.ParsedRole()),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, TokenResponse{
		Token:     token,
		ExpiresIn: int64(ttl.Seconds()),
	})
}
