package handler

import (
	"origo/internal/application/models"
	id "origo/pkg/domain"
)

// Domain models carry their wire tags, so single-entity endpoints return
// them directly. Responses here exist for list envelopes only.

// ApplicationsResponse is the HTTP response for GET /applications.
type ApplicationsResponse struct {
	Applications []models.Application `json:"applications"`
}

// TimelineResponse is the HTTP response for GET
// /applications/{applicationID}/timeline.
type TimelineResponse struct {
	ApplicationID id.ApplicationID       `json:"application_id"`
	Entries       []models.TimelineEntry `json:"entries"`
}
