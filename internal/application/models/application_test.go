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

var appNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func requestedOffer() Offer {
	return Offer{
		Amount:       decimal.NewFromInt(5000),
		TermMonths:   12,
		InterestRate: decimal.NewFromFloat(2.5),
		Frequency:    FrequencyMonthly,
	}
}

func newSubmitted(t *testing.T) *Application {
	t.Helper()
	app, err := NewApplication(id.NewApplicationID(), id.NewTenantID(), id.NewApplicantID(), requestedOffer(), appNow)
	require.NoError(t, err)
	return app
}

func atStatus(t *testing.T, status Status) *Application {
	t.Helper()
	app := newSubmitted(t)
	app.Status = status
	return app
}

func TestParseFrequency(t *testing.T) {
	for _, raw := range []string{"weekly", "biweekly", "monthly"} {
		f, err := ParseFrequency(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, Frequency(raw), f)
	}

	_, err := ParseFrequency("quarterly")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestNewOffer_Validation(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
		term   int
		rate   decimal.Decimal
		freq   Frequency
	}{
		{"amount below minimum", decimal.NewFromInt(99), 12, decimal.NewFromFloat(2.5), FrequencyMonthly},
		{"zero term", decimal.NewFromInt(5000), 0, decimal.NewFromFloat(2.5), FrequencyMonthly},
		{"negative rate", decimal.NewFromInt(5000), 12, decimal.NewFromInt(-1), FrequencyMonthly},
		{"unknown frequency", decimal.NewFromInt(5000), 12, decimal.NewFromFloat(2.5), Frequency("daily")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOffer(tt.amount, tt.term, tt.rate, tt.freq)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}

	t.Run("exactly the minimum amount is accepted", func(t *testing.T) {
		offer, err := NewOffer(MinimumOfferAmount, 1, decimal.Zero, FrequencyWeekly)
		require.NoError(t, err)
		assert.True(t, offer.Amount.Equal(MinimumOfferAmount))
	})
}

func TestNewApplication(t *testing.T) {
	t.Run("starts submitted with offered terms mirroring the request", func(t *testing.T) {
		app := newSubmitted(t)

		assert.Equal(t, StatusSubmitted, app.Status)
		assert.True(t, app.Terms.ApprovedAmount.Equal(app.Terms.RequestedAmount))
		assert.Equal(t, 12, app.Terms.TermMonths)
		assert.Empty(t, app.Terms.DisbursementReference)
		assert.Nil(t, app.ApprovedAt)
		assert.Nil(t, app.DisbursedAt)
	})

	t.Run("requires an applicant", func(t *testing.T) {
		_, err := NewApplication(id.NewApplicationID(), id.NewTenantID(), id.ApplicantID{}, requestedOffer(), appNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects terms below the floor", func(t *testing.T) {
		offer := requestedOffer()
		offer.Amount = decimal.NewFromInt(50)
		_, err := NewApplication(id.NewApplicationID(), id.NewTenantID(), id.NewApplicantID(), offer, appNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects an unknown frequency", func(t *testing.T) {
		offer := requestedOffer()
		offer.Frequency = Frequency("daily")
		_, err := NewApplication(id.NewApplicationID(), id.NewTenantID(), id.NewApplicantID(), offer, appNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestApplication_DisbursementGuards(t *testing.T) {
	t.Run("only approved applications can be disbursed", func(t *testing.T) {
		err := newSubmitted(t).CanTransition(StatusDisbursed, "TRX-001")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	t.Run("disbursement without a reference is refused", func(t *testing.T) {
		err := atStatus(t, StatusApproved).CanTransition(StatusDisbursed, "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	t.Run("a reference supplied with the request satisfies the guard", func(t *testing.T) {
		assert.NoError(t, atStatus(t, StatusApproved).CanTransition(StatusDisbursed, "TRX-001"))
	})

	t.Run("a reference already stored on the terms satisfies the guard", func(t *testing.T) {
		app := atStatus(t, StatusApproved)
		app.Terms.DisbursementReference = "TRX-001"
		assert.NoError(t, app.CanTransition(StatusDisbursed, ""))
	})
}

func TestApplication_ApplyTransition(t *testing.T) {
	t.Run("approval stamps approved_at", func(t *testing.T) {
		app := atStatus(t, StatusInReview)
		app.ApplyTransition(StatusApproved, "", appNow)

		assert.Equal(t, StatusApproved, app.Status)
		require.NotNil(t, app.ApprovedAt)
		assert.Equal(t, appNow, *app.ApprovedAt)
		assert.Nil(t, app.DisbursedAt)
	})

	t.Run("disbursement stamps disbursed_at and stores the reference", func(t *testing.T) {
		app := atStatus(t, StatusApproved)
		app.ApplyTransition(StatusDisbursed, "TRX-001", appNow)

		assert.Equal(t, StatusDisbursed, app.Status)
		assert.Equal(t, "TRX-001", app.Terms.DisbursementReference)
		require.NotNil(t, app.DisbursedAt)
	})

	t.Run("a stored reference is never cleared", func(t *testing.T) {
		app := atStatus(t, StatusApproved)
		app.Terms.DisbursementReference = "TRX-001"
		app.ApplyTransition(StatusDisbursed, "", appNow)

		assert.Equal(t, "TRX-001", app.Terms.DisbursementReference)
	})
}

func TestApplication_CounterOffers(t *testing.T) {
	offer := Offer{
		Amount:       decimal.NewFromInt(3500),
		TermMonths:   18,
		InterestRate: decimal.NewFromFloat(3.1),
		Frequency:    FrequencyBiweekly,
	}

	t.Run("allowed while in review", func(t *testing.T) {
		assert.NoError(t, atStatus(t, StatusInReview).CanCounterOffer())
		assert.NoError(t, atStatus(t, StatusDocsPending).CanCounterOffer())
	})

	t.Run("refused before and after review", func(t *testing.T) {
		for _, status := range []Status{StatusSubmitted, StatusApproved, StatusRejected, StatusDisbursed} {
			err := atStatus(t, status).CanCounterOffer()
			require.Error(t, err, status)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition), status)
		}
	})

	t.Run("overwrites the offered terms but not the request", func(t *testing.T) {
		app := atStatus(t, StatusInReview)
		app.ApplyCounterOffer(offer, appNow.Add(time.Hour))

		assert.True(t, app.Terms.ApprovedAmount.Equal(offer.Amount))
		assert.Equal(t, 18, app.Terms.TermMonths)
		assert.Equal(t, FrequencyBiweekly, app.Terms.PaymentFrequency)
		assert.True(t, app.Terms.RequestedAmount.Equal(decimal.NewFromInt(5000)))
		assert.Equal(t, appNow.Add(time.Hour), app.UpdatedAt)
	})
}

func TestApplication_ApplyAssignment(t *testing.T) {
	app := newSubmitted(t)
	reviewer := id.NewActorID()

	app.ApplyAssignment(reviewer, appNow.Add(time.Minute))

	assert.Equal(t, reviewer, app.AssignedReviewer)
	assert.Equal(t, appNow.Add(time.Minute), app.UpdatedAt)
}
