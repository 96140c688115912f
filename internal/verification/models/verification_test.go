package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applicantmodels "origo/internal/applicant/models"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
)

var ledgerNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func ledgerEntry(t *testing.T, field string, action VerifyAction, at time.Time) DataVerification {
	t.Helper()
	reason := ""
	if action == ActionReject {
		reason = "did not match"
	}
	entry, err := NewDataVerification(id.NewVerificationID(), id.NewTenantID(), id.NewApplicantID(), id.NewApplicationID(),
		field, "snapshot", action, "phone_call", "", reason, "agent-1", at)
	require.NoError(t, err)
	return *entry
}

func TestNewDataVerification(t *testing.T) {
	t.Run("verify sets verified status", func(t *testing.T) {
		entry, err := NewDataVerification(id.NewVerificationID(), id.NewTenantID(), id.NewApplicantID(), id.NewApplicationID(),
			applicantmodels.FieldPhone, "+55 11 91234-5678", ActionVerify, "phone_call", "answered", "", "agent-1", ledgerNow)
		require.NoError(t, err)
		assert.Equal(t, StatusVerified, entry.Status)
		assert.Equal(t, "+55 11 91234-5678", entry.Value)
		assert.Empty(t, entry.RejectionReason)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		_, err := NewDataVerification(id.NewVerificationID(), id.NewTenantID(), id.NewApplicantID(), id.NewApplicationID(),
			applicantmodels.FieldPhone, "+55 11 91234-5678", ActionReject, "phone_call", "", "", "agent-1", ledgerNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("reject keeps the reason", func(t *testing.T) {
		entry, err := NewDataVerification(id.NewVerificationID(), id.NewTenantID(), id.NewApplicantID(), id.NewApplicationID(),
			applicantmodels.FieldPhone, "+55 11 91234-5678", ActionReject, "phone_call", "", "number out of service", "agent-1", ledgerNow)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, entry.Status)
		assert.Equal(t, "number out of service", entry.RejectionReason)
	})

	t.Run("unverify resets the field to pending", func(t *testing.T) {
		entry, err := NewDataVerification(id.NewVerificationID(), id.NewTenantID(), id.NewApplicantID(), id.NewApplicationID(),
			applicantmodels.FieldEmail, "ana@example.com", ActionUnverify, "", "", "", "agent-1", ledgerNow)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, entry.Status)
	})

	t.Run("unknown action is a validation error", func(t *testing.T) {
		_, err := NewDataVerification(id.NewVerificationID(), id.NewTenantID(), id.NewApplicantID(), id.NewApplicationID(),
			applicantmodels.FieldEmail, "ana@example.com", VerifyAction("archive"), "", "", "", "agent-1", ledgerNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestComputeLegacyFlags_LatestEntryWins(t *testing.T) {
	entries := []DataVerification{
		ledgerEntry(t, applicantmodels.FieldPhone, ActionVerify, ledgerNow),
		ledgerEntry(t, applicantmodels.FieldEmail, ActionVerify, ledgerNow.Add(time.Minute)),
		ledgerEntry(t, applicantmodels.FieldAddress, ActionVerify, ledgerNow.Add(2*time.Minute)),
		// phone later unverified: the flag must drop
		ledgerEntry(t, applicantmodels.FieldPhone, ActionUnverify, ledgerNow.Add(3*time.Minute)),
		// address later rejected: the flag must drop
		ledgerEntry(t, applicantmodels.FieldAddress, ActionReject, ledgerNow.Add(4*time.Minute)),
	}

	flags := ComputeLegacyFlags(entries)

	assert.Nil(t, flags.PhoneVerifiedAt)
	require.NotNil(t, flags.EmailVerifiedAt)
	assert.Equal(t, ledgerNow.Add(time.Minute), *flags.EmailVerifiedAt)
	assert.False(t, flags.AddressVerified)
	assert.False(t, flags.EmploymentVerified)
}

func TestComputeLegacyFlags_EmptyLedger(t *testing.T) {
	flags := ComputeLegacyFlags(nil)
	assert.Nil(t, flags.PhoneVerifiedAt)
	assert.Nil(t, flags.EmailVerifiedAt)
	assert.False(t, flags.AddressVerified)
}

func TestSummarize(t *testing.T) {
	appID := id.NewApplicationID()
	tenantID := id.NewTenantID()

	doc1, err := NewDocument(id.NewDocumentID(), tenantID, appID, "id_card", "front.jpg", nil, ledgerNow)
	require.NoError(t, err)
	doc1.ApplyApproval("agent-1", ledgerNow)
	doc2, err := NewDocument(id.NewDocumentID(), tenantID, appID, "payslip", "march.pdf", nil, ledgerNow)
	require.NoError(t, err)
	doc2.ApplyRejection("illegible", "", "agent-1", ledgerNow)
	doc3, err := NewDocument(id.NewDocumentID(), tenantID, appID, "proof_of_address", "bill.pdf", nil, ledgerNow)
	require.NoError(t, err)

	ref1, err := NewReference(id.NewReferenceID(), tenantID, appID, "Carlos", "brother", "+55 11 98888-0001", ledgerNow)
	require.NoError(t, err)
	ref1.ApplyResult(ReferenceVerified, "confirmed employment", "agent-1", ledgerNow)
	ref2, err := NewReference(id.NewReferenceID(), tenantID, appID, "Marta", "colleague", "+55 11 98888-0002", ledgerNow)
	require.NoError(t, err)
	ref2.ApplyResult(ReferenceNoAnswer, "", "agent-1", ledgerNow)

	acct, err := NewBankAccount(id.NewBankAccountID(), tenantID, id.NewApplicantID(), appID, "Banco Azul", "000123456789", "Ana Souza", ledgerNow)
	require.NoError(t, err)
	acct.ApplyVerification("agent-1", ledgerNow)

	ledger := []DataVerification{
		ledgerEntry(t, applicantmodels.FieldPhone, ActionVerify, ledgerNow),
		ledgerEntry(t, applicantmodels.FieldEmail, ActionReject, ledgerNow.Add(time.Minute)),
	}

	s := Summarize([]Document{*doc1, *doc2, *doc3}, []Reference{*ref1, *ref2}, []BankAccount{*acct}, ledger)

	assert.Equal(t, 3, s.DocumentsTotal)
	assert.Equal(t, 1, s.DocumentsPending)
	assert.Equal(t, 1, s.DocumentsApproved)
	assert.Equal(t, 1, s.DocumentsRejected)
	assert.Equal(t, 2, s.ReferencesTotal)
	assert.Equal(t, 1, s.ReferencesVerified)
	assert.Equal(t, 1, s.AccountsTotal)
	assert.Equal(t, 1, s.AccountsVerified)
	assert.Equal(t, []string{applicantmodels.FieldPhone}, s.VerifiedFields)
	assert.Equal(t, []string{applicantmodels.FieldEmail}, s.RejectedFields)
	require.NotNil(t, s.Legacy.PhoneVerifiedAt)
}

func TestBankAccount_StateGuards(t *testing.T) {
	acct, err := NewBankAccount(id.NewBankAccountID(), id.NewTenantID(), id.NewApplicantID(), id.NewApplicationID(), "Banco Azul", "000123456789", "Ana Souza", ledgerNow)
	require.NoError(t, err)

	t.Run("unverify before verify is rejected", func(t *testing.T) {
		err := acct.CanUnverify()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	require.NoError(t, acct.CanVerify())
	acct.ApplyVerification("agent-1", ledgerNow)
	assert.True(t, acct.Verified)
	assert.Equal(t, MethodManual, acct.Method)

	t.Run("second verify is rejected and the flag stays set", func(t *testing.T) {
		err := acct.CanVerify()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		assert.True(t, acct.Verified)
	})

	require.NoError(t, acct.CanUnverify())
	acct.ApplyUnverification(ledgerNow.Add(time.Hour))
	assert.False(t, acct.Verified)
	assert.Empty(t, acct.Method)
	assert.Nil(t, acct.VerifiedAt)
}

func TestBankAccount_PIIHelpers(t *testing.T) {
	acct, err := NewBankAccount(id.NewBankAccountID(), id.NewTenantID(), id.NewApplicantID(), id.NewApplicationID(), "Banco Azul", "000123456789", "Ana Souza", ledgerNow)
	require.NoError(t, err)

	assert.Equal(t, "6789", acct.Last4())
	assert.NotContains(t, acct.Fingerprint(), "123456789")
	assert.Len(t, acct.Fingerprint(), 16)
	assert.Equal(t, acct.Fingerprint(), acct.Fingerprint())
}

func TestReference_ApplyResultOverwrites(t *testing.T) {
	ref, err := NewReference(id.NewReferenceID(), id.NewTenantID(), id.NewApplicationID(), "Carlos", "brother", "+55 11 98888-0001", ledgerNow)
	require.NoError(t, err)
	assert.False(t, ref.Verified)

	ref.ApplyResult(ReferenceNoAnswer, "voicemail", "agent-1", ledgerNow)
	assert.False(t, ref.Verified)
	assert.Equal(t, ReferenceNoAnswer, ref.Result)

	ref.ApplyResult(ReferenceVerified, "answered on second try", "agent-2", ledgerNow.Add(time.Hour))
	assert.True(t, ref.Verified)
	assert.Equal(t, "agent-2", ref.VerifiedBy)

	// a later failed call drops the flag again
	ref.ApplyResult(ReferenceNotVerified, "disputed the relationship", "agent-1", ledgerNow.Add(2*time.Hour))
	assert.False(t, ref.Verified)
}

func TestParseReferenceResult(t *testing.T) {
	for _, valid := range []string{"verified", "not_verified", "no_answer"} {
		_, err := ParseReferenceResult(valid)
		assert.NoError(t, err, valid)
	}
	_, err := ParseReferenceResult("maybe")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
