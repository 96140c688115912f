package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"origo/internal/application/models"
	"origo/internal/application/service"
	"origo/internal/permission"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
	"origo/pkg/platform/httputil"
	authmw "origo/pkg/platform/middleware/auth"
	"origo/pkg/requestcontext"
)

const defaultListLimit = 50

// Service defines the interface for application lifecycle operations.
type Service interface {
	Submit(ctx context.Context, actor permission.Actor, tenantID id.TenantID, req service.SubmitRequest) (*models.Application, error)
	Get(ctx context.Context, tenantID id.TenantID, applicationID id.ApplicationID) (*models.Application, error)
	ListByTenant(ctx context.Context, tenantID id.TenantID, limit int) ([]models.Application, error)
	Timeline(ctx context.Context, tenantID id.TenantID, applicationID id.ApplicationID) ([]models.TimelineEntry, error)
	ReviewBundle(ctx context.Context, tenantID id.TenantID, applicationID id.ApplicationID) (*service.Bundle, error)
	Transition(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, target models.Status, reason, disbursementRef string) (*models.Application, error)
	AppendEvent(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, action string, payload map[string]string) (*models.TimelineEntry, error)
	CreateCounterOffer(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, amount decimal.Decimal, termMonths int, rate decimal.Decimal, frequency, reason string) (*models.Application, error)
	AssignReviewer(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, reviewer id.ActorID) (*models.Application, error)
}

// Handler wires application lifecycle endpoints to the application service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an application handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts application endpoints on the router. Registrations stay
// flat so the verification handler can add its own routes under the same
// application subtree.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications", h.HandleSubmit)
	r.Get("/applications", h.HandleList)
	r.Get("/applications/{applicationID}", h.HandleGet)
	r.Get("/applications/{applicationID}/bundle", h.HandleReviewBundle)
	r.Get("/applications/{applicationID}/timeline", h.HandleTimeline)
	r.Post("/applications/{applicationID}/transition", h.HandleTransition)
	r.Post("/applications/{applicationID}/events", h.HandleAppendEvent)
	r.Post("/applications/{applicationID}/counter-offer", h.HandleCounterOffer)
	r.Post("/applications/{applicationID}/reviewer", h.HandleAssignReviewer)
}

// HandleSubmit handles POST /applications requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitApplicationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	app, err := h.service.Submit(ctx, actor, actor.Tenant, req.Parsed())
	if err != nil {
		h.logger.ErrorContext(ctx, "application submission failed",
			"request_id", requestID,
			"tenant_id", actor.Tenant,
			"actor_id", actor.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "application submitted",
		"request_id", requestID,
		"tenant_id", actor.Tenant,
		"application_id", app.ID,
		"amount", app.Terms.RequestedAmount,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusCreated, app)
}

// HandleList handles GET /applications requests. The optional limit query
// parameter caps the page size.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	apps, err := h.service.ListByTenant(ctx, actor.Tenant, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "application list failed",
			"request_id", requestcontext.RequestID(ctx),
			"tenant_id", actor.Tenant,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ApplicationsResponse{Applications: apps})
}

// HandleGet handles GET /applications/{applicationID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	applicationID, err := applicationIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.Get(ctx, actor.Tenant, applicationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, app)
}

// HandleReviewBundle handles GET /applications/{applicationID}/bundle
// requests.
func (h *Handler) HandleReviewBundle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	applicationID, err := applicationIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bundle, err := h.service.ReviewBundle(ctx, actor.Tenant, applicationID)
	if err != nil {
		h.logger.ErrorContext(ctx, "review bundle assembly failed",
			"request_id", requestID,
			"tenant_id", actor.Tenant,
			"application_id", applicationID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "review bundle assembled",
		"request_id", requestID,
		"application_id", applicationID,
		"documents", len(bundle.Documents),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, bundle)
}

// HandleTimeline handles GET /applications/{applicationID}/timeline requests.
func (h *Handler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	applicationID, err := applicationIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.Timeline(ctx, actor.Tenant, applicationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, TimelineResponse{
		ApplicationID: applicationID,
		Entries:       entries,
	})
}

// HandleTransition handles POST /applications/{applicationID}/transition
// requests.
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	applicationID, err := applicationIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	app, err := h.service.Transition(ctx, actor, actor.Tenant, applicationID, req.ParsedTarget(), req.Reason, req.DisbursementReference)
	if err != nil {
		h.logger.ErrorContext(ctx, "status transition failed",
			"request_id", requestID,
			"application_id", applicationID,
			"target", req.Target,
			"actor_id", actor.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "status transition applied",
		"request_id", requestID,
		"application_id", applicationID,
		"status", app.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, app)
}

// HandleAppendEvent handles POST /applications/{applicationID}/events
// requests.
func (h *Handler) HandleAppendEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	applicationID, err := applicationIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[AppendEventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, err := h.service.AppendEvent(ctx, actor, actor.Tenant, applicationID, req.Action, req.Payload)
	if err != nil {
		h.logger.ErrorContext(ctx, "timeline append failed",
			"request_id", requestID,
			"application_id", applicationID,
			"action", req.Action,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, entry)
}

// HandleCounterOffer handles POST /applications/{applicationID}/counter-offer
// requests.
func (h *Handler) HandleCounterOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	applicationID, err := applicationIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[CounterOfferRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	app, err := h.service.CreateCounterOffer(ctx, actor, actor.Tenant, applicationID, req.Amount, req.TermMonths, req.InterestRate, req.Frequency, req.Reason)
	if err != nil {
		h.logger.ErrorContext(ctx, "counter-offer failed",
			"request_id", requestID,
			"application_id", applicationID,
			"actor_id", actor.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "counter-offer issued",
		"request_id", requestID,
		"application_id", applicationID,
		"amount", req.Amount,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, app)
}

// HandleAssignReviewer handles POST /applications/{applicationID}/reviewer
// requests.
func (h *Handler) HandleAssignReviewer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	applicationID, err := applicationIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[AssignReviewerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	app, err := h.service.AssignReviewer(ctx, actor, actor.Tenant, applicationID, req.ParsedReviewer())
	if err != nil {
		h.logger.ErrorContext(ctx, "reviewer assignment failed",
			"request_id", requestID,
			"application_id", applicationID,
			"reviewer_id", req.ReviewerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, app)
}

// requireActor pulls the authenticated actor from the context. The auth
// middleware guarantees it on protected routes; a miss means the route was
// mounted without it.
func (h *Handler) requireActor(w http.ResponseWriter, ctx context.Context) (permission.Actor, bool) {
	actor, ok := authmw.ActorFrom(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return permission.Actor{}, false
	}
	return actor, true
}

func applicationIDFromPath(r *http.Request) (id.ApplicationID, error) {
	return id.ParseApplicationID(chi.URLParam(r, "applicationID"))
}
