package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"origo/internal/audit"
	"origo/internal/audit/store/postgres"
)

type fakeOutbox struct {
	entries []postgres.OutboxEntry
	marked  []uuid.UUID
}

func (f *fakeOutbox) FetchUnpublished(_ context.Context, limit int) ([]postgres.OutboxEntry, error) {
	if limit > len(f.entries) {
		limit = len(f.entries)
	}
	return f.entries[:limit], nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	f.marked = append(f.marked, ids...)
	remaining := f.entries[:0]
	for _, e := range f.entries {
		published := false
		for _, id := range ids {
			if e.ID == id {
				published = true
				break
			}
		}
		if !published {
			remaining = append(remaining, e)
		}
	}
	f.entries = remaining
	return nil
}

type fakeSink struct {
	published []audit.EventCategory
	failAfter int
}

func (f *fakeSink) Publish(_ context.Context, category audit.EventCategory, _ string, _ []byte) error {
	if f.failAfter > 0 && len(f.published) >= f.failAfter {
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, category)
	return nil
}

func entry(category string) postgres.OutboxEntry {
	return postgres.OutboxEntry{
		ID:          uuid.New(),
		AggregateID: uuid.NewString(),
		Payload:     []byte(`{"ID":"` + uuid.NewString() + `","Category":"` + category + `"}`),
		CreatedAt:   time.Now(),
	}
}

func TestRelay_PublishesAndMarks(t *testing.T) {
	outbox := &fakeOutbox{entries: []postgres.OutboxEntry{
		entry("compliance"),
		entry("security"),
		entry("operations"),
	}}
	sink := &fakeSink{}
	relay := NewRelay(outbox, sink)

	n, err := relay.relayOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []audit.EventCategory{
		audit.CategoryCompliance,
		audit.CategorySecurity,
		audit.CategoryOperations,
	}, sink.published)
	assert.Len(t, outbox.marked, 3)
	assert.Empty(t, outbox.entries, "published entries should leave the outbox")
}

func TestRelay_StopsBatchOnPublishFailure(t *testing.T) {
	outbox := &fakeOutbox{entries: []postgres.OutboxEntry{
		entry("compliance"),
		entry("compliance"),
		entry("compliance"),
	}}
	sink := &fakeSink{failAfter: 1}
	relay := NewRelay(outbox, sink)

	n, err := relay.relayOnce(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, n, "entries before the failure stay published")
	assert.Len(t, outbox.marked, 1)
	assert.Len(t, outbox.entries, 2, "unpublished entries remain for the next pass")
}

func TestRelay_EmptyOutbox(t *testing.T) {
	outbox := &fakeOutbox{}
	sink := &fakeSink{}
	relay := NewRelay(outbox, sink)

	n, err := relay.relayOnce(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, sink.published)
}

func TestRelay_RunStopsOnContextCancel(t *testing.T) {
	outbox := &fakeOutbox{}
	sink := &fakeSink{}
	relay := NewRelay(outbox, sink, WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := relay.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCategoryOf_MalformedPayload(t *testing.T) {
	assert.Equal(t, audit.CategoryOperations, categoryOf([]byte("not json")))
	assert.Equal(t, audit.CategoryOperations, categoryOf([]byte(`{}`)))
	assert.Equal(t, audit.CategoryCompliance, categoryOf([]byte(`{"Category":"compliance"}`)))
}
