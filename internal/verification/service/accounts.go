package service

import (
	"context"
	"errors"

	appmodels "origo/internal/application/models"
	"origo/internal/audit"
	"origo/internal/permission"
	"origo/internal/verification/models"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
	"origo/pkg/platform/sentinel"
	"origo/pkg/requestcontext"
)

// AddBankAccount registers a disbursement account. Accounts are deduplicated
// by number fingerprint within the application so the same account cannot be
// registered twice under different ids.
func (s *Service) AddBankAccount(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, bankName, accountNumber, holderName string) (*models.BankAccount, error) {
	if err := s.requireCapability(ctx, actor, permission.CapabilityAccountVerify, tenantID, audit.EntityBankAccount, ""); err != nil {
		return nil, err
	}
	app, err := s.lifecycle.Get(ctx, tenantID, applicationID)
	if err != nil {
		return nil, err
	}

	acct, err := models.NewBankAccount(id.NewBankAccountID(), tenantID, app.ApplicantID, applicationID, bankName, accountNumber, holderName, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, dErrors.Message(err))
	}

	existing, err := s.store.ListBankAccounts(ctx, applicationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list bank accounts")
	}
	for i := range existing {
		if existing[i].Fingerprint() == acct.Fingerprint() {
			return nil, dErrors.New(dErrors.CodeConflict, "bank account is already registered for this application")
		}
	}

	if err := s.store.CreateBankAccount(ctx, acct); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "bank account already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create bank account")
	}
	return acct, nil
}

// VerifyBankAccount marks an account manually confirmed. Verifying an
// already verified account is an invalid transition, not a no-op.
func (s *Service) VerifyBankAccount(ctx context.Context, actor permission.Actor, tenantID id.TenantID, accountID id.BankAccountID) (*models.BankAccount, error) {
	return s.setAccountVerification(ctx, actor, tenantID, accountID, true)
}

// UnverifyBankAccount clears a confirmation, symmetrically to VerifyBankAccount.
func (s *Service) UnverifyBankAccount(ctx context.Context, actor permission.Actor, tenantID id.TenantID, accountID id.BankAccountID) (*models.BankAccount, error) {
	return s.setAccountVerification(ctx, actor, tenantID, accountID, false)
}

func (s *Service) setAccountVerification(ctx context.Context, actor permission.Actor, tenantID id.TenantID, accountID id.BankAccountID, verify bool) (*models.BankAccount, error) {
	if err := s.requireCapability(ctx, actor, permission.CapabilityAccountVerify, tenantID, audit.EntityBankAccount, accountID.String()); err != nil {
		return nil, err
	}
	acct, err := s.store.FindBankAccount(ctx, tenantID, accountID)
	if err != nil {
		return nil, translateNotFound(err, "bank account")
	}

	now := requestcontext.Now(ctx)
	action := appmodels.ActionAccountVerified
	auditAction := audit.EventAccountVerified
	metricAction := "verify"
	if verify {
		if err := acct.CanVerify(); err != nil {
			return nil, err
		}
		acct.ApplyVerification(actor.ID.String(), now)
	} else {
		if err := acct.CanUnverify(); err != nil {
			return nil, err
		}
		acct.ApplyUnverification(now)
		action = appmodels.ActionAccountUnverified
		auditAction = audit.EventAccountUnverified
		metricAction = "unverify"
	}

	if err := s.store.UpdateBankAccount(ctx, acct); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update bank account")
	}

	// Only the account tail may appear on the timeline; the full number
	// never leaves the store layer.
	if err := s.appendTimeline(ctx, acct.ApplicationID, action, actor, map[string]string{
		"bank":  acct.BankName,
		"last4": acct.Last4(),
	}); err != nil {
		return nil, err
	}

	oldValue, newValue := "verified", "unverified"
	if verify {
		oldValue, newValue = "unverified", "verified"
	}
	s.logAudit(ctx, actor, audit.Event{
		TenantID:      tenantID,
		ApplicationID: acct.ApplicationID,
		EntityType:    audit.EntityBankAccount,
		EntityID:      acct.ID.String(),
		Action:        string(auditAction),
		OldValue:      oldValue,
		NewValue:      newValue,
	})
	if s.metrics != nil {
		s.metrics.IncrementAccountCheck(metricAction)
	}
	return acct, nil
}

// ListBankAccounts returns an application's accounts in creation order.
func (s *Service) ListBankAccounts(ctx context.Context, tenantID id.TenantID, applicationID id.ApplicationID) ([]models.BankAccount, error) {
	if _, err := s.lifecycle.Get(ctx, tenantID, applicationID); err != nil {
		return nil, err
	}
	accounts, err := s.store.ListBankAccounts(ctx, applicationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list bank accounts")
	}
	return accounts, nil
}
