package models

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/crypto/blake2b"

	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
)

// VerificationMethod records how a bank account was confirmed. Only manual
// confirmation exists today; the column is an enum so an instant-verification
// provider can be added without a migration.
type VerificationMethod string

const MethodManual VerificationMethod = "manual"

// BankAccount is a disbursement destination owned by the applicant. The
// ApplicationID links it to the application whose review registered it, so
// timeline entries land in the right place.
//
// The full account number is PII: it lives on this struct for the store and
// the disbursement integration, but timeline entries, audit events, and logs
// only ever see Last4 and the fingerprint.
type BankAccount struct {
	ID            id.BankAccountID   `json:"id"`
	TenantID      id.TenantID        `json:"tenant_id"`
	ApplicantID   id.ApplicantID     `json:"applicant_id"`
	ApplicationID id.ApplicationID   `json:"application_id"`
	BankName      string             `json:"bank_name"`
	AccountNumber string             `json:"-"`
	HolderName    string             `json:"holder_name"`
	Verified      bool               `json:"verified"`
	Method        VerificationMethod `json:"method,omitempty"`
	VerifiedBy    string             `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time         `json:"verified_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Last4 returns the displayable tail of the account number.
func (b *BankAccount) Last4() string {
	if len(b.AccountNumber) <= 4 {
		return b.AccountNumber
	}
	return b.AccountNumber[len(b.AccountNumber)-4:]
}

// Fingerprint returns a stable non-reversible identifier for the account
// number, safe to put in audit events and dedup checks.
func (b *BankAccount) Fingerprint() string {
	sum := blake2b.Sum256([]byte(b.AccountNumber))
	return hex.EncodeToString(sum[:8])
}

// MarshalJSON adds the displayable account tail; the full number never
// appears in JSON output.
func (b BankAccount) MarshalJSON() ([]byte, error) {
	type alias BankAccount
	return json.Marshal(struct {
		alias
		AccountNumberLast4 string `json:"account_number_last4"`
	}{alias(b), b.Last4()})
}

// CanVerify rejects re-verification of an already verified account.
func (b *BankAccount) CanVerify() error {
	if b.Verified {
		return dErrors.New(dErrors.CodeInvalidTransition, "bank account is already verified")
	}
	return nil
}

// ApplyVerification marks the account manually confirmed. Call CanVerify first.
func (b *BankAccount) ApplyVerification(verifier string, now time.Time) {
	b.Verified = true
	b.Method = MethodManual
	b.VerifiedBy = verifier
	b.VerifiedAt = &now
	b.UpdatedAt = now
}

// CanUnverify rejects unverifying an account that is not verified.
func (b *BankAccount) CanUnverify() error {
	if !b.Verified {
		return dErrors.New(dErrors.CodeInvalidTransition, "bank account is not verified")
	}
	return nil
}

// ApplyUnverification clears the confirmation. Call CanUnverify first.
func (b *BankAccount) ApplyUnverification(now time.Time) {
	b.Verified = false
	b.Method = ""
	b.VerifiedBy = ""
	b.VerifiedAt = nil
	b.UpdatedAt = now
}

// NewBankAccount registers a disbursement account in unverified state.
func NewBankAccount(accountID id.BankAccountID, tenantID id.TenantID, applicantID id.ApplicantID, applicationID id.ApplicationID, bankName, accountNumber, holderName string, now time.Time) (*BankAccount, error) {
	if bankName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "bank name cannot be empty")
	}
	if len(accountNumber) < 4 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account number is too short")
	}
	if holderName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account holder name cannot be empty")
	}
	return &BankAccount{
		ID:            accountID,
		TenantID:      tenantID,
		ApplicantID:   applicantID,
		ApplicationID: applicationID,
		BankName:      bankName,
		AccountNumber: accountNumber,
		HolderName:    holderName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
