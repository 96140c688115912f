package handler

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	applicantmodels "origo/internal/applicant/models"
	"origo/internal/application/models"
	"origo/internal/application/service"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
)

// SubmitApplicationRequest is the HTTP request body for POST /applications.
type SubmitApplicationRequest struct {
	Applicant ApplicantPayload `json:"applicant"`
	Terms     TermsPayload     `json:"terms"`

	// Parsed values (populated by Validate)
	parsed service.SubmitRequest
}

// ApplicantPayload carries the applicant profile captured at submission.
type ApplicantPayload struct {
	FirstName   string                  `json:"first_name"`
	LastName    string                  `json:"last_name"`
	DateOfBirth string                  `json:"date_of_birth"`
	Phone       string                  `json:"phone"`
	Email       string                  `json:"email"`
	Address     applicantmodels.Address `json:"address"`
	Employment  EmploymentPayload       `json:"employment"`
}

// EmploymentPayload carries the applicant's declared employment.
type EmploymentPayload struct {
	EmployerName  string          `json:"employer_name"`
	Position      string          `json:"position"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	StartDate     string          `json:"start_date"`
}

// TermsPayload carries the requested loan shape.
type TermsPayload struct {
	Amount       decimal.Decimal `json:"amount"`
	TermMonths   int             `json:"term_months"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Frequency    string          `json:"frequency"`
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SubmitApplicationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}

	r.Applicant.FirstName = strings.TrimSpace(r.Applicant.FirstName)
	r.Applicant.LastName = strings.TrimSpace(r.Applicant.LastName)
	if r.Applicant.FirstName == "" {
		return dErrors.New(dErrors.CodeValidation, "applicant.first_name is required")
	}
	if r.Applicant.LastName == "" {
		return dErrors.New(dErrors.CodeValidation, "applicant.last_name is required")
	}

	dob, err := time.Parse(time.DateOnly, r.Applicant.DateOfBirth)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "applicant.date_of_birth must be formatted YYYY-MM-DD")
	}

	employment := applicantmodels.Employment{
		EmployerName:  strings.TrimSpace(r.Applicant.Employment.EmployerName),
		Position:      strings.TrimSpace(r.Applicant.Employment.Position),
		MonthlyIncome: r.Applicant.Employment.MonthlyIncome,
	}
	if r.Applicant.Employment.StartDate != "" {
		start, err := time.Parse(time.DateOnly, r.Applicant.Employment.StartDate)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "applicant.employment.start_date must be formatted YYYY-MM-DD")
		}
		employment.StartDate = start
	}

	r.Terms.Frequency = strings.TrimSpace(r.Terms.Frequency)
	if r.Terms.Frequency == "" {
		return dErrors.New(dErrors.CodeValidation, "terms.frequency is required")
	}
	if r.Terms.TermMonths < 1 {
		return dErrors.New(dErrors.CodeValidation, "terms.term_months must be at least 1")
	}

	r.parsed = service.SubmitRequest{
		FirstName:   r.Applicant.FirstName,
		LastName:    r.Applicant.LastName,
		DateOfBirth: dob,
		Phone:       strings.TrimSpace(r.Applicant.Phone),
		Email:       strings.TrimSpace(r.Applicant.Email),
		Address:     r.Applicant.Address,
		Employment:  employment,

		Amount:       r.Terms.Amount,
		TermMonths:   r.Terms.TermMonths,
		InterestRate: r.Terms.InterestRate,
		Frequency:    r.Terms.Frequency,
	}
	return nil
}

// Parsed returns the validated submission for the service layer.
func (r *SubmitApplicationRequest) Parsed() service.SubmitRequest {
	return r.parsed
}

// TransitionRequest is the HTTP request body for POST
// /applications/{applicationID}/transition.
type TransitionRequest struct {
	Target                string `json:"target"`
	Reason                string `json:"reason"`
	DisbursementReference string `json:"disbursement_reference"`

	parsedTarget models.Status
}

// Validate validates and parses the request.
func (r *TransitionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}
	r.Target = strings.TrimSpace(r.Target)
	if r.Target == "" {
		return dErrors.New(dErrors.CodeValidation, "target is required")
	}
	target, err := models.ParseStatus(r.Target)
	if err != nil {
		return err
	}
	r.parsedTarget = target
	r.Reason = strings.TrimSpace(r.Reason)
	r.DisbursementReference = strings.TrimSpace(r.DisbursementReference)
	return nil
}

// ParsedTarget returns the validated target status.
func (r *TransitionRequest) ParsedTarget() models.Status {
	return r.parsedTarget
}

// AppendEventRequest is the HTTP request body for POST
// /applications/{applicationID}/events.
type AppendEventRequest struct {
	Action  string            `json:"action"`
	Payload map[string]string `json:"payload"`
}

// Validate validates the request.
func (r *AppendEventRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}
	r.Action = strings.TrimSpace(r.Action)
	if r.Action == "" {
		return dErrors.New(dErrors.CodeValidation, "action is required")
	}
	return nil
}

// CounterOfferRequest is the HTTP request body for POST
// /applications/{applicationID}/counter-offer.
type CounterOfferRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	TermMonths   int             `json:"term_months"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Frequency    string          `json:"frequency"`
	Reason       string          `json:"reason"`
}

// Validate validates the request. Offer-level rules (minimum amount, the
// frequency enum) belong to the domain model and surface from the service.
func (r *CounterOfferRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}
	r.Frequency = strings.TrimSpace(r.Frequency)
	if r.Frequency == "" {
		return dErrors.New(dErrors.CodeValidation, "frequency is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	return nil
}

// AssignReviewerRequest is the HTTP request body for POST
// /applications/{applicationID}/reviewer.
type AssignReviewerRequest struct {
	ReviewerID string `json:"reviewer_id"`

	parsedReviewer id.ActorID
}

// Validate validates and parses the request.
func (r *AssignReviewerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}
	reviewer, err := id.ParseActorID(r.ReviewerID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "reviewer_id must be a valid uuid")
	}
	r.parsedReviewer = reviewer
	return nil
}

// ParsedReviewer returns the validated reviewer id.
func (r *AssignReviewerRequest) ParsedReviewer() id.ActorID {
	return r.parsedReviewer
}
