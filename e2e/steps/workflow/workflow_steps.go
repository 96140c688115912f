package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	SetApplicationID(id string)
	GetApplicationID() string
}

// RegisterSteps registers loan-lifecycle step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &workflowSteps{tc: tc}

	// Application lifecycle steps
	ctx.Step(`^I submit a loan application for "([^"]*)" requesting (\d+) over (\d+) months$`, steps.submitApplication)
	ctx.Step(`^a submitted application under review$`, steps.submittedApplicationUnderReview)
	ctx.Step(`^I save the application id$`, steps.saveApplicationID)
	ctx.Step(`^I move the application to "([^"]*)"$`, steps.moveApplication)
	ctx.Step(`^I move the application to "([^"]*)" with reason "([^"]*)"$`, steps.moveApplicationWithReason)
	ctx.Step(`^I disburse the loan with reference "([^"]*)"$`, steps.disburseLoan)
	ctx.Step(`^I issue a counter-offer of (\d+) over (\d+) months$`, steps.issueCounterOffer)

	// Lifecycle assertion steps
	ctx.Step(`^the application status should be "([^"]*)"$`, steps.applicationStatusShouldBe)
	ctx.Step(`^the timeline should contain the action "([^"]*)"$`, steps.timelineShouldContainAction)
}

type workflowSteps struct {
	tc TestContext
}

func (s *workflowSteps) submitApplication(ctx context.Context, fullName string, amount, months int) error {
	first, last := splitName(fullName)
	email := strings.ToLower(first) + "." + strings.ToLower(last) + "@example.com"
	body := map[string]interface{}{
		"applicant": map[string]interface{}{
			"first_name":    first,
			"last_name":     last,
			"date_of_birth": "1992-05-14",
			"phone":         "+27 82 555 0184",
			"email":         email,
			"address": map[string]string{
				"line1":       "12 Marula Road",
				"city":        "Durban",
				"region":      "KwaZulu-Natal",
				"postal_code": "4001",
				"country":     "ZA",
			},
			"employment": map[string]interface{}{
				"employer_name":  "Umhlanga Retail Group",
				"position":       "Branch Assistant",
				"monthly_income": "17250.00",
			},
		},
		"terms": map[string]interface{}{
			"amount":        strconv.Itoa(amount),
			"term_months":   months,
			"interest_rate": "16.75",
			"frequency":     "monthly",
		},
	}
	return s.tc.POST("/applications", body)
}

// submittedApplicationUnderReview is the background shortcut for features
// that exercise verification rather than the lifecycle itself.
func (s *workflowSteps) submittedApplicationUnderReview(ctx context.Context) error {
	if err := s.submitApplication(ctx, "Naledi Khumalo", 20000, 18); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 201 {
		return fmt.Errorf("submitting application: status %d: %s", status, s.tc.GetLastResponseBody())
	}
	if err := s.saveApplicationID(ctx); err != nil {
		return err
	}
	if err := s.moveApplication(ctx, "in_review"); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("moving application to in_review: status %d: %s", status, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *workflowSteps) saveApplicationID(ctx context.Context) error {
	value, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	id, ok := value.(string)
	if !ok || id == "" {
		return fmt.Errorf("response carried no application id: %s", s.tc.GetLastResponseBody())
	}
	s.tc.SetApplicationID(id)
	return nil
}

func (s *workflowSteps) moveApplication(ctx context.Context, target string) error {
	return s.tc.POST("/applications/"+s.tc.GetApplicationID()+"/transition", map[string]string{
		"target": target,
	})
}

func (s *workflowSteps) moveApplicationWithReason(ctx context.Context, target, reason string) error {
	return s.tc.POST("/applications/"+s.tc.GetApplicationID()+"/transition", map[string]string{
		"target": target,
		"reason": reason,
	})
}

func (s *workflowSteps) disburseLoan(ctx context.Context, reference string) error {
	return s.tc.POST("/applications/"+s.tc.GetApplicationID()+"/transition", map[string]string{
		"target":                 "disbursed",
		"disbursement_reference": reference,
	})
}

func (s *workflowSteps) issueCounterOffer(ctx context.Context, amount, months int) error {
	return s.tc.POST("/applications/"+s.tc.GetApplicationID()+"/counter-offer", map[string]interface{}{
		"amount":        strconv.Itoa(amount),
		"term_months":   months,
		"interest_rate": "17.25",
		"frequency":     "monthly",
		"reason":        "affordability review",
	})
}

func (s *workflowSteps) applicationStatusShouldBe(ctx context.Context, expected string) error {
	if err := s.tc.GET("/applications/"+s.tc.GetApplicationID(), nil); err != nil {
		return err
	}
	value, err := s.tc.GetResponseField("status")
	if err != nil {
		return err
	}
	if got := fmt.Sprintf("%v", value); got != expected {
		return fmt.Errorf("expected application status %q, got %q", expected, got)
	}
	return nil
}

func (s *workflowSteps) timelineShouldContainAction(ctx context.Context, action string) error {
	if err := s.tc.GET("/applications/"+s.tc.GetApplicationID()+"/timeline", nil); err != nil {
		return err
	}
	var timeline struct {
		Entries []struct {
			Action string `json:"action"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &timeline); err != nil {
		return fmt.Errorf("decoding timeline: %w", err)
	}
	for _, entry := range timeline.Entries {
		if entry.Action == action {
			return nil
		}
	}
	return fmt.Errorf("timeline has no %q entry: %s", action, s.tc.GetLastResponseBody())
}

func splitName(fullName string) (first, last string) {
	parts := strings.SplitN(fullName, " ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], "Applicant"
}
