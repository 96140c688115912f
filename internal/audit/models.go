package audit

import (
	"time"

	"github.com/google/uuid"

	id "origo/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// These require tamper-proof storage and long retention (e.g., 7 years).
	// Examples: status changes, document decisions, verification outcomes.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring and forensics.
	// These feed into SIEM systems and alerting pipelines.
	// Examples: permission denials, unauthorized access attempts.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational visibility.
	// These can be sampled or aggregated with shorter retention.
	// Examples: reviewer assignment, routine access patterns.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID            uuid.UUID
	Category      EventCategory
	Timestamp     time.Time
	TenantID      id.TenantID
	ApplicationID id.ApplicationID
	// EntityType and EntityID identify the record the action touched when it
	// is narrower than the application itself: "document", "reference",
	// "bank_account", "verification".
	EntityType string
	EntityID   string
	Action     string
	// ActorID tracks who performed the action. Workflows triggered by the
	// system itself (cascades, automated checks) record the reserved actor
	// "system".
	ActorID     string
	ActorRole   string
	ActorDevice string
	RequestID   string
	// OldValue/NewValue capture the before/after of the changed attribute,
	// e.g. statuses for a transition or document states for a review.
	OldValue string
	NewValue string
	Reason   string
}

type AuditAction string

const (
	// Application lifecycle events
	EventApplicationSubmitted  AuditAction = "application_submitted"
	EventStatusChanged         AuditAction = "status_changed"
	EventCounterOfferCreated   AuditAction = "counter_offer_created"
	EventReviewerAssigned      AuditAction = "reviewer_assigned"
	EventTimelineEventRecorded AuditAction = "timeline_event_recorded"

	// Document review events
	EventDocumentApproved   AuditAction = "document_approved"
	EventDocumentRejected   AuditAction = "document_rejected"
	EventDocumentUnapproved AuditAction = "document_unapproved"

	// Reference and bank account events
	EventReferenceVerified AuditAction = "reference_verified"
	EventAccountVerified   AuditAction = "account_verified"
	EventAccountUnverified AuditAction = "account_unverified"

	// Data verification ledger events
	EventDataVerified   AuditAction = "data_verified"
	EventDataRejected   AuditAction = "data_rejected"
	EventDataUnverified AuditAction = "data_unverified"

	// Permission events
	EventPermissionDenied AuditAction = "permission_denied"
)

// eventCategories maps each audit action to its category.
// Compliance: legal/regulatory significance, long retention required.
// Security: security monitoring, SIEM integration, alerting.
// Operations: debugging, operational visibility, can be sampled.
var eventCategories = map[AuditAction]EventCategory{
	// Compliance events - require tamper-proof storage
	EventApplicationSubmitted: CategoryCompliance,
	EventStatusChanged:        CategoryCompliance,
	EventCounterOfferCreated:  CategoryCompliance,
	EventDocumentApproved:     CategoryCompliance,
	EventDocumentRejected:     CategoryCompliance,
	EventDocumentUnapproved:   CategoryCompliance,
	EventReferenceVerified:    CategoryCompliance,
	EventAccountVerified:      CategoryCompliance,
	EventAccountUnverified:    CategoryCompliance,
	EventDataVerified:         CategoryCompliance,
	EventDataRejected:         CategoryCompliance,
	EventDataUnverified:       CategoryCompliance,

	// Security events - feed into SIEM and alerting
	EventPermissionDenied: CategorySecurity,

	// Operations events - routine activity, can be sampled
	EventReviewerAssigned:      CategoryOperations,
	EventTimelineEventRecorded: CategoryOperations,
}

// Category returns the EventCategory for this audit action.
// Unknown actions default to CategoryOperations.
func (a AuditAction) Category() EventCategory {
	if cat, ok := eventCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// SystemActor is recorded on events emitted by automated workflows rather
// than a staff member, such as status cascades after a document rejection.
const SystemActor = "system"

// Entity type tags recorded on events scoped below the application.
const (
	EntityApplication  = "application"
	EntityDocument     = "document"
	EntityReference    = "reference"
	EntityBankAccount  = "bank_account"
	EntityVerification = "verification"
)
