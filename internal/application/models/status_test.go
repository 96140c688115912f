package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "origo/pkg/domain-errors"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"submitted", "in_review", "docs_pending", "corrections_pending",
		"counter_offered", "approved", "rejected", "cancelled", "disbursed", "active",
		"completed", "default"} {
		status, err := ParseStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, Status(raw), status)
	}

	_, err := ParseStatus("funded")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestStatus_PredecessorTable(t *testing.T) {
	tests := []struct {
		name   string
		from   Status
		target Status
		hasRef bool
		ok     bool
	}{
		{"review states move freely", StatusSubmitted, StatusInReview, false, true},
		{"review can go backwards", StatusDocsPending, StatusInReview, false, true},
		{"approval has no predecessor constraint", StatusSubmitted, StatusApproved, false, true},
		{"rejection has no predecessor constraint", StatusCounterOffered, StatusRejected, false, true},
		{"disbursed requires approved", StatusInReview, StatusDisbursed, true, false},
		{"disbursed requires a reference", StatusApproved, StatusDisbursed, false, false},
		{"disbursed from approved with reference", StatusApproved, StatusDisbursed, true, true},
		{"active requires disbursed", StatusApproved, StatusActive, false, false},
		{"active from disbursed", StatusDisbursed, StatusActive, false, true},
		{"completed requires active", StatusDisbursed, StatusCompleted, false, false},
		{"completed from active", StatusActive, StatusCompleted, false, true},
		{"default requires active", StatusCompleted, StatusDefault, false, false},
		{"default from active", StatusActive, StatusDefault, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.from.CanTransitionTo(tt.target, tt.hasRef)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		})
	}
}

func TestStatus_Classification(t *testing.T) {
	t.Run("decision and post-decision states are restricted", func(t *testing.T) {
		for _, status := range []Status{StatusApproved, StatusRejected, StatusCancelled,
			StatusDisbursed, StatusActive, StatusCompleted, StatusDefault} {
			assert.True(t, status.IsRestricted(), status)
		}
		for _, status := range []Status{StatusSubmitted, StatusInReview, StatusDocsPending,
			StatusCorrectionsPending, StatusCounterOffered} {
			assert.False(t, status.IsRestricted(), status)
		}
	})

	t.Run("terminal states", func(t *testing.T) {
		for _, status := range []Status{StatusRejected, StatusCancelled, StatusCompleted, StatusDefault} {
			assert.True(t, status.IsTerminal(), status)
		}
		for _, status := range []Status{StatusSubmitted, StatusApproved, StatusDisbursed, StatusActive} {
			assert.False(t, status.IsTerminal(), status)
		}
	})
}

func TestTimelineAction(t *testing.T) {
	assert.Equal(t, ActionApplicationApproved, TimelineAction(StatusApproved))
	assert.Equal(t, ActionLoanDisbursed, TimelineAction(StatusDisbursed))
	assert.Equal(t, ActionLoanDefaulted, TimelineAction(StatusDefault))

	// Pipeline movement collapses to the generic tag.
	assert.Equal(t, ActionStatusChanged, TimelineAction(StatusInReview))
	assert.Equal(t, ActionStatusChanged, TimelineAction(StatusDocsPending))
}
