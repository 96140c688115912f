package admin

import (
	"time"

	"origo/internal/audit"
)

// AuditEventResponse is the HTTP response DTO for a single audit event.
type AuditEventResponse struct {
	ID            string    `json:"id"`
	Category      string    `json:"category"`
	Timestamp     time.Time `json:"timestamp"`
	TenantID      string    `json:"tenant_id,omitempty"`
	ApplicationID string    `json:"application_id,omitempty"`
	EntityType    string    `json:"entity_type,omitempty"`
	EntityID      string    `json:"entity_id,omitempty"`
	Action        string    `json:"action"`
	ActorID       string    `json:"actor_id"`
	ActorRole     string    `json:"actor_role,omitempty"`
	ActorDevice   string    `json:"actor_device,omitempty"`
	RequestID     string    `json:"request_id,omitempty"`
	OldValue      string    `json:"old_value,omitempty"`
	NewValue      string    `json:"new_value,omitempty"`
	Reason        string    `json:"reason,omitempty"`
}

// RecentAuditResponse wraps the recent audit feed for HTTP response.
type RecentAuditResponse struct {
	Events []AuditEventResponse `json:"events"`
	Total  int                  `json:"total"`
}

// FromEvents maps store events to response DTOs, newest last.
func FromEvents(events []audit.Event) RecentAuditResponse {
	out := RecentAuditResponse{Events: make([]AuditEventResponse, 0, len(events))}
	for _, ev := range events {
		resp := AuditEventResponse{
			ID:          ev.ID.String(),
			Category:    string(ev.Category),
			Timestamp:   ev.Timestamp,
			EntityType:  ev.EntityType,
			EntityID:    ev.EntityID,
			Action:      ev.Action,
			ActorID:     ev.ActorID,
			ActorRole:   ev.ActorRole,
			ActorDevice: ev.ActorDevice,
			RequestID:   ev.RequestID,
			OldValue:    ev.OldValue,
			NewValue:    ev.NewValue,
			Reason:      ev.Reason,
		}
		if !ev.TenantID.IsNil() {
			resp.TenantID = ev.TenantID.String()
		}
		if !ev.ApplicationID.IsNil() {
			resp.ApplicationID = ev.ApplicationID.String()
		}
		out.Events = append(out.Events, resp)
	}
	out.Total = len(out.Events)
	return out
}

// TokenResponse carries a freshly minted staff access token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}
