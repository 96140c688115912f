// Package httpapi assembles the HTTP surface: the middleware chain, public
// probes, and the authenticated staff API. Handlers stay in their domain
// packages; this package only wires them together.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"origo/internal/admin"
	apphandler "origo/internal/application/handler"
	"origo/internal/platform/metrics"
	verhandler "origo/internal/verification/handler"
	"origo/pkg/platform/httputil"
	adminmw "origo/pkg/platform/middleware/admin"
	"origo/pkg/platform/middleware/auth"
	"origo/pkg/platform/middleware/device"
	"origo/pkg/platform/middleware/metadata"
	request "origo/pkg/platform/middleware/request"
	"origo/pkg/platform/middleware/requesttime"
)

const requestTimeout = 60 * time.Second

// Check probes the health of one dependency for the readiness endpoint.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Deps carries everything the router wires together. Admin routes are only
// mounted when AdminToken is set.
type Deps struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	Applications *apphandler.Handler
	Verification *verhandler.Handler
	Admin        *admin.Handler
	Validator    auth.Validator
	AdminToken   string
	Checks       []Check
}

// NewRouter builds the full HTTP handler tree.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(device.Middleware)
	r.Use(metrics.Middleware(deps.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/healthz", handleLiveness)
	r.Get("/readyz", handleReadiness(deps.Checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Validator, deps.Logger))
		deps.Applications.Register(r)
		deps.Verification.Register(r)
	})

	if deps.Admin != nil && deps.AdminToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(adminmw.RequireAdminToken(deps.AdminToken, deps.Logger))
			deps.Admin.Register(r)
		})
	}

	return r
}

func handleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadiness probes each registered dependency with a short deadline.
// Any failure flips the response to 503 so load balancers stop routing here.
func handleReadiness(checks []Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for _, check := range checks {
			if err := check.Probe(ctx); err != nil {
				status = http.StatusServiceUnavailable
				deps[check.Name] = err.Error()
				continue
			}
			deps[check.Name] = "ok"
		}

		body := map[string]any{"status": "ok"}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		if len(deps) > 0 {
			body["dependencies"] = deps
		}
		httputil.WriteJSON(w, status, body)
	}
}
