package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	applicantmodels "origo/internal/applicant/models"
	"origo/internal/application/models"
	vermodels "origo/internal/verification/models"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
	"origo/pkg/platform/sentinel"
)

// VerificationReader is the read side of the verification store consumed by
// ReviewBundle. The verification store satisfies it directly.
type VerificationReader interface {
	ListDocuments(ctx context.Context, applicationID id.ApplicationID) ([]vermodels.Document, error)
	ListReferences(ctx context.Context, applicationID id.ApplicationID) ([]vermodels.Reference, error)
	ListBankAccounts(ctx context.Context, applicationID id.ApplicationID) ([]vermodels.BankAccount, error)
	ListVerificationsByApplication(ctx context.Context, applicationID id.ApplicationID) ([]vermodels.DataVerification, error)
}

// Bundle is everything a reviewer needs on one screen: the application, its
// applicant, the timeline, and the state of every verification workflow.
type Bundle struct {
	Application *models.Application        `json:"application"`
	Applicant   *applicantmodels.Applicant `json:"applicant"`
	Timeline    []models.TimelineEntry     `json:"timeline"`

	Documents    []vermodels.Document         `json:"documents"`
	References   []vermodels.Reference        `json:"references"`
	BankAccounts []vermodels.BankAccount      `json:"bank_accounts"`
	Ledger       []vermodels.DataVerification `json:"ledger"`
	Summary      vermodels.Summary            `json:"summary"`
}

// ReviewBundle assembles the reviewer's view of one application. The reads
// are independent and fan out in parallel; the first failure cancels the
// rest. When no verification reader is wired the verification sections stay
// empty.
func (s *Service) ReviewBundle(ctx context.Context, tenantID id.TenantID, applicationID id.ApplicationID) (*Bundle, error) {
	start := time.Now()

	app, err := s.load(ctx, tenantID, applicationID)
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{Application: app}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		applicant, err := s.applicants.FindByTenantAndID(ctx, tenantID, app.ApplicantID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "applicant not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load applicant")
		}
		bundle.Applicant = applicant
		return nil
	})

	g.Go(func() error {
		entries, err := s.apps.ListTimeline(ctx, applicationID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load timeline")
		}
		bundle.Timeline = entries
		return nil
	})

	if s.verification != nil {
		g.Go(func() error {
			docs, err := s.verification.ListDocuments(ctx, applicationID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load documents")
			}
			bundle.Documents = docs
			return nil
		})
		g.Go(func() error {
			refs, err := s.verification.ListReferences(ctx, applicationID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load references")
			}
			bundle.References = refs
			return nil
		})
		g.Go(func() error {
			accounts, err := s.verification.ListBankAccounts(ctx, applicationID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load bank accounts")
			}
			bundle.BankAccounts = accounts
			return nil
		})
		g.Go(func() error {
			ledger, err := s.verification.ListVerificationsByApplication(ctx, applicationID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification ledger")
			}
			bundle.Ledger = ledger
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	bundle.Summary = vermodels.Summarize(bundle.Documents, bundle.References, bundle.BankAccounts, bundle.Ledger)

	if s.metrics != nil {
		s.metrics.ObserveBundle(start)
	}
	return bundle, nil
}
