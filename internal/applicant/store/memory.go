package store

import (
	"context"
	"sync"

	"origo/internal/applicant/models"
	id "origo/pkg/domain"
	"origo/pkg/platform/sentinel"
)

type InMemory struct {
	mu         sync.RWMutex
	applicants map[id.ApplicantID]models.Applicant
}

func NewInMemory() *InMemory {
	return &InMemory{applicants: make(map[id.ApplicantID]models.Applicant)}
}

func (s *InMemory) Create(_ context.Context, applicant *models.Applicant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.applicants[applicant.ID]; exists {
		return sentinel.ErrConflict
	}
	s.applicants[applicant.ID] = *applicant
	return nil
}

func (s *InMemory) FindByID(_ context.Context, applicantID id.ApplicantID) (*models.Applicant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	applicant, ok := s.applicants[applicantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copy := applicant
	return &copy, nil
}

func (s *InMemory) FindByTenantAndID(_ context.Context, tenantID id.TenantID, applicantID id.ApplicantID) (*models.Applicant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	applicant, ok := s.applicants[applicantID]
	if !ok || applicant.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	copy := applicant
	return &copy, nil
}

func (s *InMemory) Update(_ context.Context, applicant *models.Applicant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applicants[applicant.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.applicants[applicant.ID] = *applicant
	return nil
}
