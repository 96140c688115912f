package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
)

// Frequency is the repayment cadence offered on a loan.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// ParseFrequency validates a payment frequency against the closed set.
func ParseFrequency(raw string) (Frequency, error) {
	switch Frequency(raw) {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return Frequency(raw), nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unsupported payment frequency %q", raw)
}

// MinimumOfferAmount is the smallest loan principal the back office accepts,
// for both initial requests and counter-offers.
var MinimumOfferAmount = decimal.NewFromInt(100)

// Terms carries the financial shape of the loan. RequestedAmount is what the
// applicant asked for; the offered fields start as a copy of the request and
// are overwritten by counter-offers or the approval decision.
// DisbursementReference is only meaningful once the application has reached
// the disbursed status.
type Terms struct {
	RequestedAmount       decimal.Decimal `json:"requested_amount"`
	ApprovedAmount        decimal.Decimal `json:"approved_amount"`
	TermMonths            int             `json:"term_months"`
	InterestRate          decimal.Decimal `json:"interest_rate"`
	PaymentFrequency      Frequency       `json:"payment_frequency"`
	DisbursementReference string          `json:"disbursement_reference,omitempty"`
}

// Offer is the subset of terms a counter-offer replaces.
type Offer struct {
	Amount       decimal.Decimal `json:"amount"`
	TermMonths   int             `json:"term_months"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Frequency    Frequency       `json:"frequency"`
}

// NewOffer validates counter-offer inputs.
func NewOffer(amount decimal.Decimal, termMonths int, interestRate decimal.Decimal, frequency Frequency) (Offer, error) {
	if amount.LessThan(MinimumOfferAmount) {
		return Offer{}, dErrors.Newf(dErrors.CodeValidation, "offer amount must be at least %s", MinimumOfferAmount.StringFixed(2))
	}
	if termMonths < 1 {
		return Offer{}, dErrors.New(dErrors.CodeValidation, "offer term must be at least one month")
	}
	if interestRate.IsNegative() {
		return Offer{}, dErrors.New(dErrors.CodeValidation, "interest rate cannot be negative")
	}
	if _, err := ParseFrequency(string(frequency)); err != nil {
		return Offer{}, err
	}
	return Offer{Amount: amount, TermMonths: termMonths, InterestRate: interestRate, Frequency: frequency}, nil
}

// Application is the aggregate root for one credit request.
//
// Invariants:
//   - Status is always one of the defined enum values and changes only
//     through the guarded transition operation
//   - Terms.DisbursementReference is set at disbursement and never cleared
//   - The timeline is stored separately as an append-only ledger; the
//     aggregate never carries it as a mutable field
type Application struct {
	ID               id.ApplicationID `json:"id"`
	TenantID         id.TenantID      `json:"tenant_id"`
	ApplicantID      id.ApplicantID   `json:"applicant_id"`
	Status           Status           `json:"status"`
	AssignedReviewer id.ActorID       `json:"assigned_reviewer,omitempty"`
	Terms            Terms            `json:"terms"`
	ApprovedAt       *time.Time       `json:"approved_at,omitempty"`
	DisbursedAt      *time.Time       `json:"disbursed_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// CanTransition checks the predecessor table for a requested target status.
// disbursementRef is the reference supplied with this request; a reference
// already stored on the terms also satisfies the disbursement precondition.
// Use with ApplyTransition inside the per-application lock.
func (a *Application) CanTransition(target Status, disbursementRef string) error {
	hasRef := disbursementRef != "" || a.Terms.DisbursementReference != ""
	return a.Status.CanTransitionTo(target, hasRef)
}

// ApplyTransition sets the new status and stamps decision timestamps.
// Call CanTransition first to validate the transition.
func (a *Application) ApplyTransition(target Status, disbursementRef string, now time.Time) {
	a.Status = target
	switch target {
	case StatusApproved:
		a.ApprovedAt = &now
	case StatusDisbursed:
		if disbursementRef != "" {
			a.Terms.DisbursementReference = disbursementRef
		}
		a.DisbursedAt = &now
	}
	a.UpdatedAt = now
}

// CanCounterOffer checks that the application is still in a reviewable state.
func (a *Application) CanCounterOffer() error {
	if a.Status != StatusInReview && a.Status != StatusDocsPending {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"counter-offers require an application in review, not %s", a.Status)
	}
	return nil
}

// ApplyCounterOffer overwrites the offered terms. Call CanCounterOffer first.
func (a *Application) ApplyCounterOffer(offer Offer, now time.Time) {
	a.Terms.ApprovedAmount = offer.Amount
	a.Terms.TermMonths = offer.TermMonths
	a.Terms.InterestRate = offer.InterestRate
	a.Terms.PaymentFrequency = offer.Frequency
	a.UpdatedAt = now
}

// ApplyAssignment records the reviewer now responsible for the application.
func (a *Application) ApplyAssignment(reviewer id.ActorID, now time.Time) {
	a.AssignedReviewer = reviewer
	a.UpdatedAt = now
}

func NewApplication(applicationID id.ApplicationID, tenantID id.TenantID, applicantID id.ApplicantID, requested Offer, now time.Time) (*Application, error) {
	if applicantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "application requires an applicant")
	}
	if requested.Amount.LessThan(MinimumOfferAmount) {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "requested amount must be at least %s", MinimumOfferAmount.StringFixed(2))
	}
	if requested.TermMonths < 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "requested term must be at least one month")
	}
	if _, err := ParseFrequency(string(requested.Frequency)); err != nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "requested payment frequency is not supported")
	}

	return &Application{
		ID:          applicationID,
		TenantID:    tenantID,
		ApplicantID: applicantID,
		Status:      StatusSubmitted,
		Terms: Terms{
			RequestedAmount:  requested.Amount,
			ApprovedAmount:   requested.Amount,
			TermMonths:       requested.TermMonths,
			InterestRate:     requested.InterestRate,
			PaymentFrequency: requested.Frequency,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
