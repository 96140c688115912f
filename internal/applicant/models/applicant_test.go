package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
)

func validApplicant(t *testing.T) *Applicant {
	t.Helper()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	dob := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)

	a, err := NewApplicant(id.NewApplicantID(), id.NewTenantID(), "Ana", "Souza", dob, now)
	require.NoError(t, err)
	a.Phone = "+55 11 91234-5678"
	a.Email = "ana.souza@example.com"
	a.Address = Address{
		Line1:      "Rua das Flores 123",
		City:       "São Paulo",
		Region:     "SP",
		PostalCode: "01001-000",
		Country:    "BR",
	}
	a.Employment = Employment{
		EmployerName:  "Acme Ltda",
		Position:      "Analyst",
		MonthlyIncome: decimal.RequireFromString("5400.00"),
		StartDate:     time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	return a
}

func TestNewApplicant_Invariants(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	dob := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)

	t.Run("trims names", func(t *testing.T) {
		a, err := NewApplicant(id.NewApplicantID(), id.NewTenantID(), "  Ana ", " Souza ", dob, now)
		require.NoError(t, err)
		assert.Equal(t, "Ana", a.FirstName)
		assert.Equal(t, "Souza", a.LastName)
		assert.Equal(t, "Ana Souza", a.FullName())
	})

	t.Run("rejects empty first name", func(t *testing.T) {
		_, err := NewApplicant(id.NewApplicantID(), id.NewTenantID(), "  ", "Souza", dob, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects empty last name", func(t *testing.T) {
		_, err := NewApplicant(id.NewApplicantID(), id.NewTenantID(), "Ana", "", dob, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects future date of birth", func(t *testing.T) {
		_, err := NewApplicant(id.NewApplicantID(), id.NewTenantID(), "Ana", "Souza", now.AddDate(1, 0, 0), now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects zero date of birth", func(t *testing.T) {
		_, err := NewApplicant(id.NewApplicantID(), id.NewTenantID(), "Ana", "Souza", time.Time{}, now)
		require.Error(t, err)
	})
}

func TestApplicant_FieldValue(t *testing.T) {
	a := validApplicant(t)

	tests := []struct {
		field string
		want  string
	}{
		{FieldFirstName, "Ana"},
		{FieldLastName, "Souza"},
		{FieldDateOfBirth, "1990-06-15"},
		{FieldPhone, "+55 11 91234-5678"},
		{FieldEmail, "ana.souza@example.com"},
		{FieldAddress, "Rua das Flores 123, São Paulo, SP, 01001-000, BR"},
		{FieldEmployment, "Acme Ltda"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := a.FieldValue(tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown field is a validation error", func(t *testing.T) {
		_, err := a.FieldValue("national_id")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("every verifiable field resolves", func(t *testing.T) {
		for _, field := range VerifiableFields {
			_, err := a.FieldValue(field)
			assert.NoError(t, err, field)
		}
	})
}

func TestAddress_String_SkipsEmptyParts(t *testing.T) {
	addr := Address{Line1: "Rua A", City: "Recife", Country: "BR"}
	assert.Equal(t, "Rua A, Recife, BR", addr.String())

	assert.Empty(t, Address{}.String())
}
