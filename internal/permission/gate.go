// Package permission decides whether an actor may perform a restricted
// action.
//
// Capabilities form a closed, tagged set. Callers ask for a constant, never a
// caller-supplied string resolved at runtime, which closes the
// method-injection hole a dynamic dispatch would open.
package permission

import (
	id "origo/pkg/domain"
)

// Capability names one restricted action. The set below is exhaustive.
type Capability string

const (
	CapabilityApplicationWrite   Capability = "application:write"
	CapabilityApplicationApprove Capability = "application:approve"
	CapabilityApplicationAssign  Capability = "application:assign"
	CapabilityCounterOffer       Capability = "application:counter-offer"
	CapabilityDocumentReview     Capability = "document:review"
	CapabilityReferenceVerify    Capability = "reference:verify"
	CapabilityAccountVerify      Capability = "account:verify"
	CapabilityDataVerify         Capability = "data:verify"
)

// Role is the coarse staff role carried in the actor's token.
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleAgent      Role = "agent"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// ParseRole validates a role string against the closed set.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleViewer, RoleAgent, RoleSupervisor, RoleAdmin:
		return Role(raw), true
	}
	return "", false
}

// Actor is the authenticated staff member performing an action.
type Actor struct {
	ID     id.ActorID
	Role   Role
	Tenant id.TenantID
}

// Gate answers capability checks. Implementations must treat unknown
// capabilities as denied.
type Gate interface {
	Has(actor Actor, capability Capability) bool
}

// roleCapabilities maps each role onto the capabilities it holds. Approval
// power is deliberately reserved to supervisors and admins; agents handle the
// day-to-day verification work.
var roleCapabilities = map[Role]map[Capability]bool{
	RoleViewer: {},
	RoleAgent: {
		CapabilityApplicationWrite: true,
		CapabilityCounterOffer:     true,
		CapabilityDocumentReview:   true,
		CapabilityReferenceVerify:  true,
		CapabilityAccountVerify:    true,
		CapabilityDataVerify:       true,
	},
	RoleSupervisor: {
		CapabilityApplicationWrite:   true,
		CapabilityApplicationApprove: true,
		CapabilityApplicationAssign:  true,
		CapabilityCounterOffer:       true,
		CapabilityDocumentReview:     true,
		CapabilityReferenceVerify:    true,
		CapabilityAccountVerify:      true,
		CapabilityDataVerify:         true,
	},
	RoleAdmin: {
		CapabilityApplicationWrite:   true,
		CapabilityApplicationApprove: true,
		CapabilityApplicationAssign:  true,
		CapabilityCounterOffer:       true,
		CapabilityDocumentReview:     true,
		CapabilityReferenceVerify:    true,
		CapabilityAccountVerify:      true,
		CapabilityDataVerify:         true,
	},
}

// RoleGate grants capabilities from the static role map.
type RoleGate struct{}

// NewRoleGate constructs the default gate.
func NewRoleGate() *RoleGate {
	return &RoleGate{}
}

func (g *RoleGate) Has(actor Actor, capability Capability) bool {
	caps, ok := roleCapabilities[actor.Role]
	if !ok {
		return false
	}
	return caps[capability]
}
