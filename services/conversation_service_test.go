package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	apiError "github.com/chatlyhq/chatly/errors"
	"github.com/chatlyhq/chatly/models"
)

func TestCreatePrivateConversationDedup(t *testing.T) {
	env := newTestEnv(t)
	svc := env.conversationService()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	conv, created, err := svc.CreatePrivateConversation(alice.ID, bob.ID, "")
	if err != nil {
		t.Fatalf("could not create conversation: %v", err)
	}
	if !created {
		t.Error("first call should create")
	}
	if conv.Name != "bob" {
		t.Errorf("name defaults to the target's name, got %q", conv.Name)
	}
	if conv.Type != models.ConversationTypePrivate {
		t.Errorf("type = %q, want private", conv.Type)
	}

	// the same pair from the other side resolves to the same conversation
	again, created, err := svc.CreatePrivateConversation(bob.ID, alice.ID, "whatever")
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if created {
		t.Error("second call must reuse the existing conversation")
	}
	if again.ID != conv.ID {
		t.Errorf("resolved %s, want %s", again.ID, conv.ID)
	}
}

func TestCreatePrivateConversationRejectsSelf(t *testing.T) {
	env := newTestEnv(t)
	svc := env.conversationService()
	alice := env.seedUser(t, "alice")

	_, _, err := svc.CreatePrivateConversation(alice.ID, alice.ID, "")
	apiErr, ok := err.(*apiError.Error)
	if !ok || apiErr.Status != 400 {
		t.Fatalf("expected a 400 for self-conversation, got %v", err)
	}
}

func TestCreatePrivateConversationRejectsUnknownTarget(t *testing.T) {
	env := newTestEnv(t)
	svc := env.conversationService()
	alice := env.seedUser(t, "alice")

	_, _, err := svc.CreatePrivateConversation(alice.ID, 9999, "")
	apiErr, ok := err.(*apiError.Error)
	if !ok || apiErr.Status != 400 {
		t.Fatalf("expected a 400 for unknown target, got %v", err)
	}
}

func TestCreateGroupConversationDedup(t *testing.T) {
	env := newTestEnv(t)
	svc := env.conversationService()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")
	carol := env.seedUser(t, "carol")
	dave := env.seedUser(t, "dave")

	conv, created, err := svc.CreateGroupConversation(alice.ID, "team", []uint{bob.ID, carol.ID})
	if err != nil {
		t.Fatalf("could not create group: %v", err)
	}
	if !created || conv.Type != models.ConversationTypeGroup {
		t.Fatalf("expected a new group, got created=%v type=%q", created, conv.Type)
	}

	// same member set, dupes and requester in the list make no difference
	again, created, err := svc.CreateGroupConversation(alice.ID, "other name",
		[]uint{bob.ID, carol.ID, carol.ID, alice.ID})
	if err != nil {
		t.Fatalf("dedup resolve failed: %v", err)
	}
	if created || again.ID != conv.ID {
		t.Errorf("expected reuse of %s, got created=%v id=%s", conv.ID, created, again.ID)
	}

	// a different member set is a different group
	other, created, err := svc.CreateGroupConversation(alice.ID, "bigger",
		[]uint{bob.ID, carol.ID, dave.ID})
	if err != nil {
		t.Fatalf("could not create second group: %v", err)
	}
	if !created || other.ID == conv.ID {
		t.Errorf("superset member set must create a new group")
	}
}

func TestCreateGroupConversationValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.conversationService()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	// fewer than 2 others after removing the requester
	_, _, err := svc.CreateGroupConversation(alice.ID, "tiny", []uint{bob.ID, alice.ID})
	apiErr, ok := err.(*apiError.Error)
	if !ok || apiErr.Status != 400 {
		t.Fatalf("expected a 400 for undersized group, got %v", err)
	}

	// an id that does not resolve to a user
	_, _, err = svc.CreateGroupConversation(alice.ID, "ghosts", []uint{bob.ID, 9999})
	apiErr, ok = err.(*apiError.Error)
	if !ok || apiErr.Status != 400 {
		t.Fatalf("expected a 400 for invalid member, got %v", err)
	}
}

func TestListConversations(t *testing.T) {
	env := newTestEnv(t)
	svc := env.conversationService()
	msgSvc := env.messageService()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	conv, _, err := svc.CreatePrivateConversation(alice.ID, bob.ID, "")
	if err != nil {
		t.Fatalf("could not create conversation: %v", err)
	}
	if _, err := msgSvc.SendMessage(bob.ID, conv.ID, "hey alice", nil); err != nil {
		t.Fatalf("could not send message: %v", err)
	}

	items, err := svc.ListConversations(alice.ID)
	if err != nil {
		t.Fatalf("could not list conversations: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(items))
	}
	item := items[0]
	if item.OtherUser == nil || item.OtherUser.ID != bob.ID {
		t.Errorf("other user should be bob, got %+v", item.OtherUser)
	}
	if item.OtherUser != nil && item.OtherUser.ProfilePicture != "/default-avatar.png" {
		t.Errorf("missing picture falls back to the default avatar, got %q", item.OtherUser.ProfilePicture)
	}
	if item.LastMessage == nil || item.LastMessage.Content != "hey alice" {
		t.Errorf("last message = %+v, want 'hey alice'", item.LastMessage)
	}
}

func TestGetMessagesRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	svc := env.conversationService()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")
	eve := env.seedUser(t, "eve")

	conv, _, err := svc.CreatePrivateConversation(alice.ID, bob.ID, "")
	if err != nil {
		t.Fatalf("could not create conversation: %v", err)
	}

	_, err = svc.GetMessages(eve.ID, conv.ID)
	apiErr, ok := err.(*apiError.Error)
	if !ok || apiErr.Status != 403 {
		t.Fatalf("expected a 403 for non-member, got %v", err)
	}
}

func TestGetMessagesFormatsResources(t *testing.T) {
	env := newTestEnv(t)
	svc := env.conversationService()
	msgSvc := env.messageService()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	conv, _, err := svc.CreatePrivateConversation(alice.ID, bob.ID, "")
	if err != nil {
		t.Fatalf("could not create conversation: %v", err)
	}
	sent, err := msgSvc.SendMessage(alice.ID, conv.ID, "hello there", nil)
	if err != nil {
		t.Fatalf("could not send message: %v", err)
	}

	resources, err := svc.GetMessages(bob.ID, conv.ID)
	if err != nil {
		t.Fatalf("could not read messages: %v", err)
	}
	if len(resources) != 1 {
		t.Fatalf("expected 1 message, got %d", len(resources))
	}
	res := resources[0]
	if res.ID != sent.ID || res.Body != "hello there" || res.UserID != alice.ID {
		t.Errorf("unexpected resource: %+v", res)
	}
	if res.User.Name != "alice" {
		t.Errorf("sender name = %q, want alice", res.User.Name)
	}
	if _, err := time.Parse("2006-01-02 15:04:05", res.CreatedAt); err != nil {
		t.Errorf("created_at %q not in expected format: %v", res.CreatedAt, err)
	}
	if len(res.Attachments) != 0 {
		t.Errorf("text message should have no attachments, got %+v", res.Attachments)
	}
}

func TestGetMessagesUnknownConversation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.conversationService()
	alice := env.seedUser(t, "alice")

	_, err := svc.GetMessages(alice.ID, uuid.New())
	apiErr, ok := err.(*apiError.Error)
	if !ok || apiErr.Status != 403 {
		t.Fatalf("a conversation that does not exist reads as non-membership, got %v", err)
	}
}
