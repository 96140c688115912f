// Package domain defines the typed identifiers shared across features.
//
// Every entity gets its own uuid-backed ID type so that a document id can
// never be passed where an application id is expected. Parsing happens at
// trust boundaries (HTTP, queue consumers); everything below works with the
// typed values.
package domain

import (
	"github.com/google/uuid"

	dErrors "origo/pkg/domain-errors"
)

type (
	// TenantID identifies the lending organization that owns an application.
	TenantID uuid.UUID
	// ApplicationID identifies one credit application.
	ApplicationID uuid.UUID
	// ApplicantID identifies the person applying for credit.
	ApplicantID uuid.UUID
	// DocumentID identifies one uploaded document under review.
	DocumentID uuid.UUID
	// ReferenceID identifies a personal reference attached to an application.
	ReferenceID uuid.UUID
	// BankAccountID identifies an applicant's bank account.
	BankAccountID uuid.UUID
	// VerificationID identifies one row in the data-verification ledger.
	VerificationID uuid.UUID
	// ActorID identifies the staff member (or system actor) performing an action.
	ActorID uuid.UUID
)

func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "id must not be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "id is not a valid uuid")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "id must not be the nil uuid")
	}
	return parsed, nil
}

func ParseTenantID(raw string) (TenantID, error) {
	parsed, err := parseUUID(raw)
	return TenantID(parsed), err
}

func ParseApplicationID(raw string) (ApplicationID, error) {
	parsed, err := parseUUID(raw)
	return ApplicationID(parsed), err
}

func ParseApplicantID(raw string) (ApplicantID, error) {
	parsed, err := parseUUID(raw)
	return ApplicantID(parsed), err
}

func ParseDocumentID(raw string) (DocumentID, error) {
	parsed, err := parseUUID(raw)
	return DocumentID(parsed), err
}

func ParseReferenceID(raw string) (ReferenceID, error) {
	parsed, err := parseUUID(raw)
	return ReferenceID(parsed), err
}

func ParseBankAccountID(raw string) (BankAccountID, error) {
	parsed, err := parseUUID(raw)
	return BankAccountID(parsed), err
}

func ParseActorID(raw string) (ActorID, error) {
	parsed, err := parseUUID(raw)
	return ActorID(parsed), err
}

func NewTenantID() TenantID             { return TenantID(uuid.New()) }
func NewApplicationID() ApplicationID   { return ApplicationID(uuid.New()) }
func NewApplicantID() ApplicantID       { return ApplicantID(uuid.New()) }
func NewDocumentID() DocumentID         { return DocumentID(uuid.New()) }
func NewReferenceID() ReferenceID       { return ReferenceID(uuid.New()) }
func NewBankAccountID() BankAccountID   { return BankAccountID(uuid.New()) }
func NewVerificationID() VerificationID { return VerificationID(uuid.New()) }
func NewActorID() ActorID               { return ActorID(uuid.New()) }

func (id TenantID) String() string       { return uuid.UUID(id).String() }
func (id ApplicationID) String() string  { return uuid.UUID(id).String() }
func (id ApplicantID) String() string    { return uuid.UUID(id).String() }
func (id DocumentID) String() string     { return uuid.UUID(id).String() }
func (id ReferenceID) String() string    { return uuid.UUID(id).String() }
func (id BankAccountID) String() string  { return uuid.UUID(id).String() }
func (id VerificationID) String() string { return uuid.UUID(id).String() }
func (id ActorID) String() string        { return uuid.UUID(id).String() }

func (id TenantID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ApplicantID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ReferenceID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id BankAccountID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id VerificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ActorID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
