package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"origo/internal/audit"
	"origo/internal/permission"
	"origo/internal/verification/models"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
	"origo/pkg/platform/httputil"
	authmw "origo/pkg/platform/middleware/auth"
	"origo/pkg/requestcontext"
)

// Service defines the interface for verification workflow operations.
type Service interface {
	AddDocument(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, docType, fileName string, metadata map[string]string) (*models.Document, error)
	ListDocuments(ctx context.Context, tenantID id.TenantID, applicationID id.ApplicationID) ([]models.Document, error)
	ApproveDocument(ctx context.Context, actor permission.Actor, tenantID id.TenantID, documentID id.DocumentID) (*models.Document, error)
	RejectDocument(ctx context.Context, actor permission.Actor, tenantID id.TenantID, documentID id.DocumentID, reason, comment string) (*models.Document, error)
	UnapproveDocument(ctx context.Context, actor permission.Actor, tenantID id.TenantID, documentID id.DocumentID) (*models.Document, error)
	DocumentHistory(ctx context.Context, tenantID id.TenantID, documentID id.DocumentID) ([]audit.Event, error)

	AddReference(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, name, relationship, phone string) (*models.Reference, error)
	ListReferences(ctx context.Context, tenantID id.TenantID, applicationID id.ApplicationID) ([]models.Reference, error)
	VerifyReference(ctx context.Context, actor permission.Actor, tenantID id.TenantID, referenceID id.ReferenceID, result models.ReferenceResult, notes string) (*models.Reference, error)

	AddBankAccount(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, bankName, accountNumber, holderName string) (*models.BankAccount, error)
	ListBankAccounts(ctx context.Context, tenantID id.TenantID, applicationID id.ApplicationID) ([]models.BankAccount, error)
	VerifyBankAccount(ctx context.Context, actor permission.Actor, tenantID id.TenantID, accountID id.BankAccountID) (*models.BankAccount, error)
	UnverifyBankAccount(ctx context.Context, actor permission.Actor, tenantID id.TenantID, accountID id.BankAccountID) (*models.BankAccount, error)

	VerifyData(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, field string, action models.VerifyAction, method, notes, rejectionReason string) (*models.DataVerification, error)
	ListVerifications(ctx context.Context, tenantID id.TenantID, applicantID id.ApplicantID) ([]models.DataVerification, error)
	LegacyFlags(ctx context.Context, tenantID id.TenantID, applicantID id.ApplicantID) (models.LegacyFlags, error)
}

// Handler wires verification endpoints to the verification service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a verification handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts verification endpoints on the router. The application
// handler shares the /applications/{applicationID} subtree, so registrations
// stay flat.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications/{applicationID}/documents", h.HandleAddDocument)
	r.Get("/applications/{applicationID}/documents", h.HandleListDocuments)
	r.Post("/applications/{applicationID}/references", h.HandleAddReference)
	r.Get("/applications/{applicationID}/references", h.HandleListReferences)
	r.Post("/applications/{applicationID}/bank-accounts", h.HandleAddBankAccount)
	r.Get("/applications/{applicationID}/bank-accounts", h.HandleListBankAccounts)
	r.Post("/applications/{applicationID}/verifications", h.HandleVerifyData)

	r.Post("/documents/{documentID}/approve", h.HandleApproveDocument)
	r.Post("/documents/{documentID}/reject", h.HandleRejectDocument)
	r.Post("/documents/{documentID}/unapprove", h.HandleUnapproveDocument)
	r.Get("/documents/{documentID}/history", h.HandleDocumentHistory)

	r.Post("/references/{referenceID}/verify", h.HandleVerifyReference)
	r.Post("/bank-accounts/{accountID}/verify", h.HandleVerifyBankAccount)
	r.Post("/bank-accounts/{accountID}/unverify", h.HandleUnverifyBankAccount)

	r.Get("/applicants/{applicantID}/verifications", h.HandleListVerifications)
	r.Get("/applicants/{applicantID}/verification-flags", h.HandleLegacyFlags)
}

// HandleAddDocument handles POST /applications/{applicationID}/documents
// requests.
func (h *Handler) HandleAddDocument(w http.ResponseWriter, r *http.Request) {
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

	req, ok := httputil.DecodeAndPrepare[AddDocumentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	doc, err := h.service.AddDocument(ctx, actor, actor.Tenant, applicationID, req.Type, req.FileName, req.Metadata)
	if err != nil {
		h.logger.ErrorContext(ctx, "document upload failed",
			"request_id", requestID,
			"application_id", applicationID,
			"type", req.Type,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, doc)
}

// HandleListDocuments handles GET /applications/{applicationID}/documents
// requests.
func (h *Handler) HandleListDocuments(w http.ResponseWriter, r *http.Request) {
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

	docs, err := h.service.ListDocuments(ctx, actor.Tenant, applicationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, DocumentsResponse{Documents: docs})
}

// HandleApproveDocument handles POST /documents/{documentID}/approve
// requests.
func (h *Handler) HandleApproveDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	documentID, err := documentIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc, err := h.service.ApproveDocument(ctx, actor, actor.Tenant, documentID)
	if err != nil {
		h.logger.ErrorContext(ctx, "document approval failed",
			"request_id", requestID,
			"document_id", documentID,
			"actor_id", actor.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document approved",
		"request_id", requestID,
		"document_id", documentID,
		"type", doc.Type,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, doc)
}

// HandleRejectDocument handles POST /documents/{documentID}/reject requests.
func (h *Handler) HandleRejectDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	documentID, err := documentIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[RejectDocumentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	doc, err := h.service.RejectDocument(ctx, actor, actor.Tenant, documentID, req.Reason, req.Comment)
	if err != nil {
		h.logger.ErrorContext(ctx, "document rejection failed",
			"request_id", requestID,
			"document_id", documentID,
			"actor_id", actor.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document rejected",
		"request_id", requestID,
		"document_id", documentID,
		"type", doc.Type,
		"reason", req.Reason,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, doc)
}

// HandleUnapproveDocument handles POST /documents/{documentID}/unapprove
// requests.
func (h *Handler) HandleUnapproveDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	documentID, err := documentIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc, err := h.service.UnapproveDocument(ctx, actor, actor.Tenant, documentID)
	if err != nil {
		h.logger.ErrorContext(ctx, "document unapproval failed",
			"request_id", requestID,
			"document_id", documentID,
			"actor_id", actor.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, doc)
}

// HandleDocumentHistory handles GET /documents/{documentID}/history requests.
func (h *Handler) HandleDocumentHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	documentID, err := documentIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.DocumentHistory(ctx, actor.Tenant, documentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDocumentEvents(documentID, events))
}

// HandleAddReference handles POST /applications/{applicationID}/references
// requests.
func (h *Handler) HandleAddReference(w http.ResponseWriter, r *http.Request) {
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

	req, ok := httputil.DecodeAndPrepare[AddReferenceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	ref, err := h.service.AddReference(ctx, actor, actor.Tenant, applicationID, req.Name, req.Relationship, req.Phone)
	if err != nil {
		h.logger.ErrorContext(ctx, "reference creation failed",
			"request_id", requestID,
			"application_id", applicationID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, ref)
}

// HandleListReferences handles GET /applications/{applicationID}/references
// requests.
func (h *Handler) HandleListReferences(w http.ResponseWriter, r *http.Request) {
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

	refs, err := h.service.ListReferences(ctx, actor.Tenant, applicationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ReferencesResponse{References: refs})
}

// HandleVerifyReference handles POST /references/{referenceID}/verify
// requests.
func (h *Handler) HandleVerifyReference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	referenceID, err := id.ParseReferenceID(chi.URLParam(r, "referenceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[VerifyReferenceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	ref, err := h.service.VerifyReference(ctx, actor, actor.Tenant, referenceID, req.ParsedResult(), req.Notes)
	if err != nil {
		h.logger.ErrorContext(ctx, "reference verification failed",
			"request_id", requestID,
			"reference_id", referenceID,
			"result", req.Result,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "reference verified",
		"request_id", requestID,
		"reference_id", referenceID,
		"result", ref.Result,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, ref)
}

// HandleAddBankAccount handles POST
// /applications/{applicationID}/bank-accounts requests.
func (h *Handler) HandleAddBankAccount(w http.ResponseWriter, r *http.Request) {
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

	req, ok := httputil.DecodeAndPrepare[AddBankAccountRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	account, err := h.service.AddBankAccount(ctx, actor, actor.Tenant, applicationID, req.BankName, req.AccountNumber, req.HolderName)
	if err != nil {
		h.logger.ErrorContext(ctx, "bank account creation failed",
			"request_id", requestID,
			"application_id", applicationID,
			"bank", req.BankName,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, account)
}

// HandleListBankAccounts handles GET
// /applications/{applicationID}/bank-accounts requests.
func (h *Handler) HandleListBankAccounts(w http.ResponseWriter, r *http.Request) {
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

	accounts, err := h.service.ListBankAccounts(ctx, actor.Tenant, applicationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, BankAccountsResponse{BankAccounts: accounts})
}

// HandleVerifyBankAccount handles POST /bank-accounts/{accountID}/verify
// requests.
func (h *Handler) HandleVerifyBankAccount(w http.ResponseWriter, r *http.Request) {
	h.setBankAccountVerification(w, r, true)
}

// HandleUnverifyBankAccount handles POST /bank-accounts/{accountID}/unverify
// requests.
func (h *Handler) HandleUnverifyBankAccount(w http.ResponseWriter, r *http.Request) {
	h.setBankAccountVerification(w, r, false)
}

func (h *Handler) setBankAccountVerification(w http.ResponseWriter, r *http.Request, verify bool) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	accountID, err := id.ParseBankAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var account *models.BankAccount
	if verify {
		account, err = h.service.VerifyBankAccount(ctx, actor, actor.Tenant, accountID)
	} else {
		account, err = h.service.UnverifyBankAccount(ctx, actor, actor.Tenant, accountID)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "bank account verification failed",
			"request_id", requestID,
			"account_id", accountID,
			"verify", verify,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "bank account verification updated",
		"request_id", requestID,
		"account_id", accountID,
		"verified", account.Verified,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, account)
}

// HandleVerifyData handles POST /applications/{applicationID}/verifications
// requests.
func (h *Handler) HandleVerifyData(w http.ResponseWriter, r *http.Request) {
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

	req, ok := httputil.DecodeAndPrepare[VerifyDataRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, err := h.service.VerifyData(ctx, actor, actor.Tenant, applicationID, req.Field, req.ParsedAction(), req.Method, req.Notes, req.RejectionReason)
	if err != nil {
		h.logger.ErrorContext(ctx, "data verification failed",
			"request_id", requestID,
			"application_id", applicationID,
			"field", req.Field,
			"action", req.Action,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "data verification recorded",
		"request_id", requestID,
		"application_id", applicationID,
		"field", entry.Field,
		"status", entry.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusCreated, entry)
}

// HandleListVerifications handles GET /applicants/{applicantID}/verifications
// requests.
func (h *Handler) HandleListVerifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	applicantID, err := applicantIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.ListVerifications(ctx, actor.Tenant, applicantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, VerificationsResponse{
		ApplicantID:   applicantID,
		Verifications: entries,
	})
}

// HandleLegacyFlags handles GET /applicants/{applicantID}/verification-flags
// requests.
func (h *Handler) HandleLegacyFlags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	applicantID, err := applicantIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	flags, err := h.service.LegacyFlags(ctx, actor.Tenant, applicantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, flags)
}

// requireActor pulls the authenticated actor from the context. The auth
// middleware guarantees it on protected routes.
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

func documentIDFromPath(r *http.Request) (id.DocumentID, error) {
	return id.ParseDocumentID(chi.URLParam(r, "documentID"))
}

func applicantIDFromPath(r *http.Request) (id.ApplicantID, error) {
	return id.ParseApplicantID(chi.URLParam(r, "applicantID"))
}
