package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"origo/internal/applicant/models"
	id "origo/pkg/domain"
	"origo/pkg/platform/sentinel"
)

type ApplicantStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *ApplicantStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestApplicantStoreSuite(t *testing.T) {
	suite.Run(t, new(ApplicantStoreSuite))
}

func (s *ApplicantStoreSuite) newApplicant(tenantID id.TenantID) *models.Applicant {
	a, err := models.NewApplicant(
		id.NewApplicantID(),
		tenantID,
		"Ana", "Souza",
		time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
		time.Now(),
	)
	s.Require().NoError(err)
	return a
}

func (s *ApplicantStoreSuite) TestCreationAndLookups() {
	tenantID := id.NewTenantID()

	s.Run("creates and finds applicant by ID", func() {
		applicant := s.newApplicant(tenantID)
		s.Require().NoError(s.store.Create(s.ctx, applicant))

		found, err := s.store.FindByID(s.ctx, applicant.ID)
		s.Require().NoError(err)
		s.Equal(applicant.FirstName, found.FirstName)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.NewApplicantID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate ID", func() {
		applicant := s.newApplicant(tenantID)
		s.Require().NoError(s.store.Create(s.ctx, applicant))
		s.ErrorIs(s.store.Create(s.ctx, applicant), sentinel.ErrConflict)
	})
}

func (s *ApplicantStoreSuite) TestTenantScoping() {
	tenantID := id.NewTenantID()
	applicant := s.newApplicant(tenantID)
	s.Require().NoError(s.store.Create(s.ctx, applicant))

	s.Run("finds applicant within its tenant", func() {
		found, err := s.store.FindByTenantAndID(s.ctx, tenantID, applicant.ID)
		s.Require().NoError(err)
		s.Equal(applicant.ID, found.ID)
	})

	s.Run("hides applicant from other tenants", func() {
		_, err := s.store.FindByTenantAndID(s.ctx, id.NewTenantID(), applicant.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ApplicantStoreSuite) TestUpdates() {
	s.Run("persists profile changes", func() {
		applicant := s.newApplicant(id.NewTenantID())
		s.Require().NoError(s.store.Create(s.ctx, applicant))

		applicant.Phone = "+55 11 95555-0000"
		s.Require().NoError(s.store.Update(s.ctx, applicant))

		found, err := s.store.FindByID(s.ctx, applicant.ID)
		s.Require().NoError(err)
		s.Equal("+55 11 95555-0000", found.Phone)
	})

	s.Run("returns ErrNotFound for non-existent applicant", func() {
		err := s.store.Update(s.ctx, s.newApplicant(id.NewTenantID()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned values are copies", func() {
		applicant := s.newApplicant(id.NewTenantID())
		s.Require().NoError(s.store.Create(s.ctx, applicant))

		found, err := s.store.FindByID(s.ctx, applicant.ID)
		s.Require().NoError(err)
		found.FirstName = "mutated"

		again, err := s.store.FindByID(s.ctx, applicant.ID)
		s.Require().NoError(err)
		s.Equal("Ana", again.FirstName)
	})
}
