package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

// TestFeatures runs the black-box suite against a deployed instance. It is
// gated on ORIGO_E2E_BASE_URL so ordinary test runs never require a server.
// ORIGO_E2E_ADMIN_TOKEN must match the server's admin token so scenarios can
// mint their own credentials.
func TestFeatures(t *testing.T) {
	baseURL := os.Getenv("ORIGO_E2E_BASE_URL")
	if baseURL == "" {
		t.Skip("ORIGO_E2E_BASE_URL not set; skipping end-to-end suite")
	}
	adminToken := os.Getenv("ORIGO_E2E_ADMIN_TOKEN")
	if adminToken == "" {
		t.Skip("ORIGO_E2E_ADMIN_TOKEN not set; skipping end-to-end suite")
	}

	tc := NewTestContext(baseURL, adminToken)

	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
				tc.Reset()
				return ctx, nil
			})
			RegisterSteps(ctx, tc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("end-to-end suite failed")
	}
}
