package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "origo/pkg/domain"
)

func TestRoleGate_Has(t *testing.T) {
	gate := NewRoleGate()
	actor := func(role Role) Actor {
		return Actor{ID: id.NewActorID(), Role: role, Tenant: id.NewTenantID()}
	}

	tests := []struct {
		name       string
		role       Role
		capability Capability
		want       bool
	}{
		{"viewer has nothing", RoleViewer, CapabilityDocumentReview, false},
		{"viewer cannot write", RoleViewer, CapabilityApplicationWrite, false},
		{"agent reviews documents", RoleAgent, CapabilityDocumentReview, true},
		{"agent verifies references", RoleAgent, CapabilityReferenceVerify, true},
		{"agent verifies accounts", RoleAgent, CapabilityAccountVerify, true},
		{"agent verifies data", RoleAgent, CapabilityDataVerify, true},
		{"agent counter-offers", RoleAgent, CapabilityCounterOffer, true},
		{"agent cannot approve", RoleAgent, CapabilityApplicationApprove, false},
		{"agent cannot assign", RoleAgent, CapabilityApplicationAssign, false},
		{"supervisor approves", RoleSupervisor, CapabilityApplicationApprove, true},
		{"supervisor assigns", RoleSupervisor, CapabilityApplicationAssign, true},
		{"admin approves", RoleAdmin, CapabilityApplicationApprove, true},
		{"admin reviews documents", RoleAdmin, CapabilityDocumentReview, true},
		{"unknown role denied", Role("auditor"), CapabilityDocumentReview, false},
		{"unknown capability denied", RoleAdmin, Capability("application:delete"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.Has(actor(tt.role), tt.capability))
		})
	}
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"viewer", "agent", "supervisor", "admin"} {
		role, ok := ParseRole(valid)
		assert.True(t, ok, valid)
		assert.Equal(t, Role(valid), role)
	}

	for _, invalid := range []string{"", "root", "Agent", "superuser"} {
		_, ok := ParseRole(invalid)
		assert.False(t, ok, invalid)
	}
}
