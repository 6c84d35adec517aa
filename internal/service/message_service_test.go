package service

import (
	"testing"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
)

func newMessageService(env *testEnv) *MessageService {
	return NewMessageService(env.messageRepo, env.userRepo, NewNotificationService(env.notificationRepo))
}

func TestSendMessageRecipientsAreRosterMinusSender(t *testing.T) {
	env := newTestEnv(t)
	family := env.createFamily(t, "Smith")
	alice := env.createUser(t, family.ID, models.RoleParent, "alice")
	bob := env.createUser(t, family.ID, models.RoleChild, "bob")
	carol := env.createUser(t, family.ID, models.RoleChild, "carol")

	svc := newMessageService(env)
	msg, err := svc.SendMessage(alice, "movie night on friday")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	if len(msg.RecipientIDs) != 2 {
		t.Fatalf("got %d recipients, want 2", len(msg.RecipientIDs))
	}
	got := map[int64]bool{}
	for _, id := range msg.RecipientIDs {
		got[id] = true
	}
	if !got[bob.ID] || !got[carol.ID] || got[alice.ID] {
		t.Errorf("recipients = %v, want bob and carol only", msg.RecipientIDs)
	}

	// The sender has implicitly read their own message
	if !msg.ReadByUser(alice.ID) {
		t.Error("sender should count as having read the message")
	}
}

func TestSendMessageMentionNotifications(t *testing.T) {
	env := newTestEnv(t)
	family := env.createFamily(t, "Smith")
	alice := env.createUser(t, family.ID, models.RoleParent, "alice")
	bob := env.createUser(t, family.ID, models.RoleChild, "bob")

	svc := newMessageService(env)
	if _, err := svc.SendMessage(alice, "@bob please set the table @bob"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	// Duplicate mentions collapse to one notification
	count, err := env.notificationRepo.CountUnread(bob.ID)
	if err != nil {
		t.Fatalf("CountUnread() error = %v", err)
	}
	if count != 1 {
		t.Errorf("mentioned user unread = %d, want 1", count)
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	family := env.createFamily(t, "Smith")
	alice := env.createUser(t, family.ID, models.RoleParent, "alice")
	bob := env.createUser(t, family.ID, models.RoleChild, "bob")

	svc := newMessageService(env)
	msg, err := svc.SendMessage(alice, "hello")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.MarkRead(bob, msg.ID); err != nil {
			t.Fatalf("MarkRead() pass %d error = %v", i, err)
		}
	}

	messages, err := svc.ListMessages(family.ID)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}

	reads := 0
	for _, id := range messages[0].ReadBy {
		if id == bob.ID {
			reads++
		}
	}
	if reads != 1 {
		t.Errorf("bob appears %d times in read_by, want 1", reads)
	}

	count, err := svc.UnreadCount(bob)
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("unread count after read = %d, want 0", count)
	}
}

func TestMarkReadKeepsEarlierReceipts(t *testing.T) {
	env := newTestEnv(t)
	family := env.createFamily(t, "Smith")
	alice := env.createUser(t, family.ID, models.RoleParent, "alice")
	bob := env.createUser(t, family.ID, models.RoleChild, "bob")
	carol := env.createUser(t, family.ID, models.RoleChild, "carol")

	svc := newMessageService(env)
	msg, err := svc.SendMessage(alice, "dinner at six")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	if err := svc.MarkRead(bob, msg.ID); err != nil {
		t.Fatalf("MarkRead(bob) error = %v", err)
	}
	if err := svc.MarkRead(carol, msg.ID); err != nil {
		t.Fatalf("MarkRead(carol) error = %v", err)
	}

	messages, err := svc.ListMessages(family.ID)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}

	// Carol's later receipt must not displace bob's
	for _, reader := range []*models.User{alice, bob, carol} {
		if !messages[0].ReadByUser(reader.ID) {
			t.Errorf("read_by missing %s", reader.Username)
		}
	}
}

func TestListMessagesChronological(t *testing.T) {
	env := newTestEnv(t)
	family := env.createFamily(t, "Smith")
	alice := env.createUser(t, family.ID, models.RoleParent, "alice")

	svc := newMessageService(env)
	for _, content := range []string{"first", "second", "third"} {
		if _, err := svc.SendMessage(alice, content); err != nil {
			t.Fatalf("SendMessage(%q) error = %v", content, err)
		}
	}

	messages, err := svc.ListMessages(family.ID)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(messages))
	}
	// Same-timestamp rows keep insertion order via id
	if messages[0].Content != "first" || messages[2].Content != "third" {
		t.Errorf("messages out of order: %q, %q, %q",
			messages[0].Content, messages[1].Content, messages[2].Content)
	}
}
