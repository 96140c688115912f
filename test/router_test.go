package test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"origo/internal/admin"
	applicantstore "origo/internal/applicant/store"
	apphandler "origo/internal/application/handler"
	applicationsvc "origo/internal/application/service"
	appstore "origo/internal/application/store"
	"origo/internal/audit"
	httpapi "origo/internal/http"
	jwttoken "origo/internal/jwt_token"
	"origo/internal/permission"
	"origo/internal/platform/metrics"
	verhandler "origo/internal/verification/handler"
	verificationsvc "origo/internal/verification/service"
	verstore "origo/internal/verification/store"
	id "origo/pkg/domain"
	"origo/pkg/testutil"
)

const adminToken = "router-test-admin-token"

// TestRouterSurface assembles the full router the way main does, with
// in-memory stores, and walks its public surface: probes, metrics, the
// authenticated staff API, and the operator routes.
func TestRouterSurface(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	apps := appstore.NewInMemory()
	applicants := applicantstore.NewInMemory()
	verifications := verstore.NewInMemory()
	auditStore := audit.NewInMemoryStore()
	publisher := audit.NewPublisher(auditStore)
	gate := permission.NewRoleGate()

	appSvc := applicationsvc.New(apps, applicants, gate,
		applicationsvc.WithLogger(logger),
		applicationsvc.WithAuditPublisher(publisher),
		applicationsvc.WithVerificationReader(verifications),
	)
	verSvc := verificationsvc.New(verifications, applicants, apps, appSvc, gate,
		verificationsvc.WithLogger(logger),
		verificationsvc.WithAuditPublisher(publisher),
		verificationsvc.WithAuditReader(auditStore),
	)

	tokens := jwttoken.NewJWTService("router-test-key", "origo", "origo-backoffice")

	var probeErr error
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:       logger,
		Metrics:      metrics.New(),
		Applications: apphandler.New(appSvc, logger),
		Verification: verhandler.New(verSvc, logger),
		Admin:        admin.New(auditStore, tokens, time.Hour, logger),
		Validator:    jwttoken.NewJWTServiceAdapter(tokens),
		AdminToken:   adminToken,
		Checks: []httpapi.Check{
			{Name: "postgres", Probe: func(context.Context) error { return probeErr }},
		},
	})

	testutil.Given(t, "the assembled backoffice router", func(t *testing.T) {
		testutil.When(t, "probing liveness", func(t *testing.T) {
			rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
			testutil.AssertStatus(t, rec, http.StatusOK)
		})

		testutil.When(t, "probing readiness with healthy dependencies", func(t *testing.T) {
			rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/readyz"))
			testutil.AssertStatus(t, rec, http.StatusOK)
			body := testutil.UnmarshalResponse[struct {
				Status       string            `json:"status"`
				Dependencies map[string]string `json:"dependencies"`
			}](t, rec)
			if body.Status != "ok" || body.Dependencies["postgres"] != "ok" {
				t.Fatalf("unexpected readiness body %+v", body)
			}
		})

		testutil.When(t, "probing readiness with a failing dependency", func(t *testing.T) {
			probeErr = errors.New("connection refused")
			defer func() { probeErr = nil }()

			rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/readyz"))
			testutil.AssertStatus(t, rec, http.StatusServiceUnavailable)
			body := testutil.UnmarshalResponse[struct {
				Status string `json:"status"`
			}](t, rec)
			if body.Status != "degraded" {
				t.Fatalf("expected degraded status, got %q", body.Status)
			}
		})

		testutil.When(t, "scraping metrics", func(t *testing.T) {
			rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
			testutil.AssertStatus(t, rec, http.StatusOK)
		})

		testutil.When(t, "calling the staff API without a token", func(t *testing.T) {
			rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/applications"))
			testutil.AssertStatusAndError(t, rec, http.StatusUnauthorized, "unauthorized")
		})

		testutil.When(t, "calling the staff API with a minted token", func(t *testing.T) {
			token, err := tokens.GenerateAccessToken(id.NewActorID(), id.NewTenantID(), permission.RoleViewer, time.Hour)
			if err != nil {
				t.Fatalf("mint token: %v", err)
			}
			req := testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/applications"), token)
			rec := testutil.DoRequest(router, req)
			testutil.AssertStatus(t, rec, http.StatusOK)
			body := testutil.UnmarshalResponse[struct {
				Applications []struct{} `json:"applications"`
			}](t, rec)
			if len(body.Applications) != 0 {
				t.Fatalf("expected empty tenant, got %d applications", len(body.Applications))
			}
		})

		testutil.When(t, "calling operator routes without the admin header", func(t *testing.T) {
			rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/admin/audit/recent"))
			testutil.AssertStatus(t, rec, http.StatusUnauthorized)
		})

		testutil.When(t, "calling operator routes with the admin header", func(t *testing.T) {
			req := testutil.NewRequest(t, http.MethodGet, "/admin/audit/recent")
			req.Header.Set("X-Admin-Token", adminToken)
			rec := testutil.DoRequest(router, req)
			testutil.AssertStatus(t, rec, http.StatusOK)
		})
	})
}
