// Package store persists verification records: documents, references, bank
// accounts, and the append-only data-verification ledger.
package store

import (
	"context"
	"sort"
	"sync"

	"origo/internal/verification/models"
	id "origo/pkg/domain"
	"origo/pkg/platform/sentinel"
)

// InMemory backs tests and local development. All methods copy on the way in
// and out so callers can never alias store state.
type InMemory struct {
	mu        sync.RWMutex
	documents map[id.DocumentID]models.Document
	refs      map[id.ReferenceID]models.Reference
	accounts  map[id.BankAccountID]models.BankAccount
	ledger    []models.DataVerification
}

func NewInMemory() *InMemory {
	return &InMemory{
		documents: make(map[id.DocumentID]models.Document),
		refs:      make(map[id.ReferenceID]models.Reference),
		accounts:  make(map[id.BankAccountID]models.BankAccount),
	}
}

func (s *InMemory) CreateDocument(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.documents[doc.ID]; exists {
		return sentinel.ErrConflict
	}
	s.documents[doc.ID] = copyDocument(*doc)
	return nil
}

func (s *InMemory) FindDocument(_ context.Context, tenantID id.TenantID, documentID id.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[documentID]
	if !ok || doc.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	out := copyDocument(doc)
	return &out, nil
}

func (s *InMemory) UpdateDocument(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.documents[doc.ID] = copyDocument(*doc)
	return nil
}

func (s *InMemory) ListDocuments(_ context.Context, applicationID id.ApplicationID) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Document
	for _, doc := range s.documents {
		if doc.ApplicationID == applicationID {
			out = append(out, copyDocument(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.Before(out[j].UploadedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *InMemory) CreateReference(_ context.Context, ref *models.Reference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.refs[ref.ID]; exists {
		return sentinel.ErrConflict
	}
	s.refs[ref.ID] = *ref
	return nil
}

func (s *InMemory) FindReference(_ context.Context, tenantID id.TenantID, referenceID id.ReferenceID) (*models.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.refs[referenceID]
	if !ok || ref.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	out := ref
	return &out, nil
}

func (s *InMemory) UpdateReference(_ context.Context, ref *models.Reference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refs[ref.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.refs[ref.ID] = *ref
	return nil
}

func (s *InMemory) ListReferences(_ context.Context, applicationID id.ApplicationID) ([]models.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Reference
	for _, ref := range s.refs {
		if ref.ApplicationID == applicationID {
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *InMemory) CreateBankAccount(_ context.Context, acct *models.BankAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[acct.ID]; exists {
		return sentinel.ErrConflict
	}
	s.accounts[acct.ID] = *acct
	return nil
}

func (s *InMemory) FindBankAccount(_ context.Context, tenantID id.TenantID, accountID id.BankAccountID) (*models.BankAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[accountID]
	if !ok || acct.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	out := acct
	return &out, nil
}

func (s *InMemory) UpdateBankAccount(_ context.Context, acct *models.BankAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[acct.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.accounts[acct.ID] = *acct
	return nil
}

func (s *InMemory) ListBankAccounts(_ context.Context, applicationID id.ApplicationID) ([]models.BankAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.BankAccount
	for _, acct := range s.accounts {
		if acct.ApplicationID == applicationID {
			out = append(out, acct)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// AppendVerification adds one immutable ledger entry.
func (s *InMemory) AppendVerification(_ context.Context, entry *models.DataVerification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = append(s.ledger, *entry)
	return nil
}

func (s *InMemory) ListVerificationsByApplicant(_ context.Context, applicantID id.ApplicantID) ([]models.DataVerification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.DataVerification
	for _, e := range s.ledger {
		if e.ApplicantID == applicantID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *InMemory) ListVerificationsByApplication(_ context.Context, applicationID id.ApplicationID) ([]models.DataVerification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.DataVerification
	for _, e := range s.ledger {
		if e.ApplicationID == applicationID {
			out = append(out, e)
		}
	}
	return out, nil
}

func copyDocument(doc models.Document) models.Document {
	if doc.Metadata != nil {
		meta := make(map[string]string, len(doc.Metadata))
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		doc.Metadata = meta
	}
	return doc
}
