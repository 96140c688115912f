package e2e

import (
	"github.com/cucumber/godog"

	"origo/e2e/steps/common"
	"origo/e2e/steps/verification"
	"origo/e2e/steps/workflow"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (background, generic assertions)
	common.RegisterSteps(ctx, tc)

	// Register loan-lifecycle steps
	workflow.RegisterSteps(ctx, tc)

	// Register verification steps (documents, references, accounts, fields)
	verification.RegisterSteps(ctx, tc)
}
