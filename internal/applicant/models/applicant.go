package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
)

// Applicant is the borrower profile attached to loan applications.
//
// Invariants:
//   - FirstName and LastName are non-empty
//   - DateOfBirth is in the past
//   - Phone and Email may be empty until collected, but never whitespace-only
//
// Profile fields are verified individually through the data verification
// ledger; the applicant record itself stays mutable so staff can correct
// typos, while every verification snapshots the value it saw.
type Applicant struct {
	ID          id.ApplicantID `json:"id"`
	TenantID    id.TenantID    `json:"tenant_id"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	DateOfBirth time.Time      `json:"date_of_birth"`
	Phone       string         `json:"phone"`
	Email       string         `json:"email"`
	Address     Address        `json:"address"`
	Employment  Employment     `json:"employment"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Address is the applicant's declared residence.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (a Address) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.Region, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Employment is the applicant's declared income source.
type Employment struct {
	EmployerName  string          `json:"employer_name"`
	Position      string          `json:"position"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	StartDate     time.Time       `json:"start_date"`
}

// Field names accepted by the data verification ledger. "address" and
// "employment" resolve their composite value as a single snapshot.
const (
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldDateOfBirth = "date_of_birth"
	FieldPhone       = "phone"
	FieldEmail       = "email"
	FieldAddress     = "address"
	FieldEmployment  = "employment"
)

// VerifiableFields lists every field name the ledger accepts, in display order.
var VerifiableFields = []string{
	FieldFirstName,
	FieldLastName,
	FieldDateOfBirth,
	FieldPhone,
	FieldEmail,
	FieldAddress,
	FieldEmployment,
}

// FieldValue resolves the current value of a named profile field so the
// verification ledger can snapshot what the verifier saw. Unknown field
// names are a validation error.
func (a *Applicant) FieldValue(field string) (string, error) {
	switch field {
	case FieldFirstName:
		return a.FirstName, nil
	case FieldLastName:
		return a.LastName, nil
	case FieldDateOfBirth:
		return a.DateOfBirth.Format("2006-01-02"), nil
	case FieldPhone:
		return a.Phone, nil
	case FieldEmail:
		return a.Email, nil
	case FieldAddress:
		return a.Address.String(), nil
	case FieldEmployment:
		// The snapshot captures who employs the applicant; income and
		// position are reviewed as part of the same conversation but are
		// not the verified value.
		return a.Employment.EmployerName, nil
	default:
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown verifiable field %q", field)
	}
}

// FullName joins the applicant's names for display and timeline entries.
func (a *Applicant) FullName() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", a.FirstName, a.LastName))
}

func NewApplicant(applicantID id.ApplicantID, tenantID id.TenantID, firstName, lastName string, dateOfBirth time.Time, now time.Time) (*Applicant, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if firstName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "applicant first name cannot be empty")
	}
	if lastName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "applicant last name cannot be empty")
	}
	if dateOfBirth.IsZero() || !dateOfBirth.Before(now) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "applicant date of birth must be in the past")
	}

	return &Applicant{
		ID:          applicantID,
		TenantID:    tenantID,
		FirstName:   firstName,
		LastName:    lastName,
		DateOfBirth: dateOfBirth,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
