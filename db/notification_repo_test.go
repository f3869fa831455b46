package db

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/chatlyhq/chatly/models"
)

func TestNotificationListAndMarkRead(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewNotificationRepo(gdb)
	alice := seedUser(t, gdb, "alice", "alice@test.io")
	bob := seedUser(t, gdb, "bob", "bob@test.io")

	convID := uuid.New()
	older := models.Notification{
		UserID: bob.ID, SenderID: alice.ID, MessageID: uuid.New(),
		Content: "first", ConversationID: convID,
	}
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := models.Notification{
		UserID: bob.ID, SenderID: alice.ID, MessageID: uuid.New(),
		Content: "second", ConversationID: convID,
	}
	foreign := models.Notification{
		UserID: alice.ID, SenderID: bob.ID, MessageID: uuid.New(),
		Content: "not bob's", ConversationID: convID,
	}
	for _, n := range []*models.Notification{&older, &newer, &foreign} {
		if err := gdb.DB.Create(n).Error; err != nil {
			t.Fatalf("could not seed notification: %v", err)
		}
	}

	notifs, err := repo.ListForUser(bob.ID, 50)
	if err != nil {
		t.Fatalf("could not list: %v", err)
	}
	if len(notifs) != 2 {
		t.Fatalf("expected 2 notifications for bob, got %d", len(notifs))
	}
	if notifs[0].Content != "second" {
		t.Errorf("newest first, got %q", notifs[0].Content)
	}
	if notifs[0].IsRead {
		t.Error("notifications start unread")
	}

	if err := repo.MarkRead(bob.ID, notifs[0].ID); err != nil {
		t.Fatalf("could not mark read: %v", err)
	}
	var reloaded models.Notification
	if err := gdb.DB.First(&reloaded, notifs[0].ID).Error; err != nil {
		t.Fatalf("could not reload: %v", err)
	}
	if !reloaded.IsRead {
		t.Error("notification should be read")
	}

	// marking someone else's notification is a no-op
	if err := repo.MarkRead(bob.ID, foreign.ID); err != nil {
		t.Fatalf("cross-user mark errored: %v", err)
	}
	var reloadedForeign models.Notification
	if err := gdb.DB.First(&reloadedForeign, foreign.ID).Error; err != nil {
		t.Fatalf("could not reload: %v", err)
	}
	if reloadedForeign.IsRead {
		t.Error("bob must not mark alice's notification read")
	}
}
