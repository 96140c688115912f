package common

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	SignInAs(role string) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetResponseField(field string) (interface{}, error)
}

// RegisterSteps registers background and generic assertion step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	// Background steps
	ctx.Step(`^the back office is running$`, steps.backOfficeIsRunning)
	ctx.Step(`^I am signed in as an? (agent|supervisor|viewer)$`, steps.signedInAs)
	ctx.Step(`^I sign in as an? (agent|supervisor|viewer)$`, steps.signedInAs)

	// Generic response assertions
	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should be present$`, steps.responseFieldShouldBePresent)
	ctx.Step(`^the response error should be "([^"]*)"$`, steps.responseErrorShouldBe)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) backOfficeIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/healthz", nil); err != nil {
		return fmt.Errorf("back office not reachable: %w", err)
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("back office not healthy: status %d", status)
	}
	return nil
}

func (s *commonSteps) signedInAs(ctx context.Context, role string) error {
	return s.tc.SignInAs(role)
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, expected int) error {
	if status := s.tc.GetLastResponseStatus(); status != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, status, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqual(ctx context.Context, field, expected string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	// Compare through %v so numbers and booleans match their literal
	// spelling in the feature file.
	if got := fmt.Sprintf("%v", value); got != expected {
		return fmt.Errorf("expected field %q to equal %q, got %q", field, expected, got)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldBePresent(ctx context.Context, field string) error {
	if _, err := s.tc.GetResponseField(field); err != nil {
		return err
	}
	return nil
}

func (s *commonSteps) responseErrorShouldBe(ctx context.Context, expected string) error {
	return s.responseFieldShouldEqual(ctx, "error", expected)
}
