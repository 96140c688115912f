package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"origo/internal/application/models"
	id "origo/pkg/domain"
	"origo/pkg/platform/sentinel"
)

// InMemory keeps applications and their timelines in process memory.
// Timeline appends take the store mutex and assign the next sequence number
// atomically, matching the insert semantics of the PostgreSQL store.
type InMemory struct {
	mu           sync.RWMutex
	applications map[id.ApplicationID]models.Application
	timelines    map[id.ApplicationID][]models.TimelineEntry
	nextSeq      int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		applications: make(map[id.ApplicationID]models.Application),
		timelines:    make(map[id.ApplicationID][]models.TimelineEntry),
	}
}

func (s *InMemory) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.applications[app.ID]; exists {
		return sentinel.ErrConflict
	}
	s.applications[app.ID] = *app
	return nil
}

func (s *InMemory) FindByID(_ context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.applications[applicationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copy := app
	return &copy, nil
}

func (s *InMemory) FindByTenantAndID(_ context.Context, tenantID id.TenantID, applicationID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.applications[applicationID]
	if !ok || app.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	copy := app
	return &copy, nil
}

func (s *InMemory) Update(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[app.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.applications[app.ID] = *app
	return nil
}

// ListByTenant returns a tenant's applications, newest first.
func (s *InMemory) ListByTenant(_ context.Context, tenantID id.TenantID, limit int) ([]models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Application
	for _, app := range s.applications {
		if app.TenantID == tenantID {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AppendTimeline inserts one entry and assigns its sequence number. The
// assigned Seq is written back to the entry.
func (s *InMemory) AppendTimeline(_ context.Context, entry *models.TimelineEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.applications[entry.ApplicationID]; !ok {
		return sentinel.ErrNotFound
	}

	s.nextSeq++
	entry.Seq = s.nextSeq
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.timelines[entry.ApplicationID] = append(s.timelines[entry.ApplicationID], *entry)
	return nil
}

// ListTimeline returns an application's entries in append order.
func (s *InMemory) ListTimeline(_ context.Context, applicationID id.ApplicationID) ([]models.TimelineEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.TimelineEntry{}, s.timelines[applicationID]...), nil
}
