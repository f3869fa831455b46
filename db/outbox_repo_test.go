package db

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/chatlyhq/chatly/models"
)

func TestOutboxFetchMarkCycle(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewOutboxRepo(gdb)

	first := models.OutboxEvent{ID: uuid.New(), Channel: "chat.a", Payload: []byte(`{"n":1}`),
		CreatedAt: time.Now().Add(-2 * time.Minute)}
	second := models.OutboxEvent{ID: uuid.New(), Channel: "chat.b", Payload: []byte(`{"n":2}`),
		CreatedAt: time.Now().Add(-time.Minute)}
	for _, ev := range []models.OutboxEvent{first, second} {
		if err := gdb.DB.Create(&ev).Error; err != nil {
			t.Fatalf("could not enqueue event: %v", err)
		}
	}

	events, err := repo.FetchUnpublished(10)
	if err != nil {
		t.Fatalf("could not fetch: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 unpublished events, got %d", len(events))
	}
	if events[0].ID != first.ID {
		t.Errorf("oldest event must come first, got %s", events[0].Channel)
	}

	if err := repo.MarkPublished(first.ID); err != nil {
		t.Fatalf("could not mark published: %v", err)
	}
	if err := repo.MarkFailed(second.ID); err != nil {
		t.Fatalf("could not mark failed: %v", err)
	}

	// a published event leaves the queue, a failed one stays for retry
	events, err = repo.FetchUnpublished(10)
	if err != nil {
		t.Fatalf("could not refetch: %v", err)
	}
	if len(events) != 1 || events[0].ID != second.ID {
		t.Fatalf("expected only the failed event pending, got %+v", events)
	}
	if events[0].Attempts != 1 {
		t.Errorf("failed event attempts = %d, want 1", events[0].Attempts)
	}

	var published models.OutboxEvent
	if err := gdb.DB.First(&published, "id = ?", first.ID).Error; err != nil {
		t.Fatalf("could not reload published event: %v", err)
	}
	if published.PublishedAt == nil || published.Attempts != 1 {
		t.Errorf("published event not stamped: published_at=%v attempts=%d",
			published.PublishedAt, published.Attempts)
	}
}

func TestOutboxFetchRespectsLimit(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewOutboxRepo(gdb)

	for i := 0; i < 5; i++ {
		ev := models.OutboxEvent{ID: uuid.New(), Channel: "chat.a", Payload: []byte(`{}`)}
		if err := gdb.DB.Create(&ev).Error; err != nil {
			t.Fatalf("could not enqueue event: %v", err)
		}
	}
	events, err := repo.FetchUnpublished(3)
	if err != nil {
		t.Fatalf("could not fetch: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected batch of 3, got %d", len(events))
	}
}
