package service

import (
	"errors"
	"testing"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
)

func TestNotifyCreatesOneRecordPerRecipient(t *testing.T) {
	env := newTestEnv(t)
	family := env.createFamily(t, "Smith")
	alice := env.createUser(t, family.ID, models.RoleParent, "alice")
	bob := env.createUser(t, family.ID, models.RoleChild, "bob")

	svc := NewNotificationService(env.notificationRepo)
	if err := svc.Notify([]int64{alice.ID, bob.ID}, "dinner at 6"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	for _, user := range []*models.User{alice, bob} {
		notifications, err := svc.ListNotifications(user.ID)
		if err != nil {
			t.Fatalf("ListNotifications(%s) error = %v", user.Username, err)
		}
		if len(notifications) != 1 {
			t.Fatalf("got %d notifications for %s, want 1", len(notifications), user.Username)
		}
		if notifications[0].Message != "dinner at 6" {
			t.Errorf("message = %q, want %q", notifications[0].Message, "dinner at 6")
		}
		if notifications[0].Read {
			t.Errorf("new notification for %s should be unread", user.Username)
		}
	}
}

func TestNotifyDeliversDespitePerRecipientFailure(t *testing.T) {
	env := newTestEnv(t)
	family := env.createFamily(t, "Smith")
	alice := env.createUser(t, family.ID, models.RoleParent, "alice")
	bob := env.createUser(t, family.ID, models.RoleChild, "bob")

	svc := NewNotificationService(env.notificationRepo)

	// The middle recipient does not exist; the foreign key rejects it.
	// Delivery to the recipients around it must still happen.
	err := svc.Notify([]int64{alice.ID, 99999, bob.ID}, "chore time")
	if err == nil {
		t.Fatal("Notify() should report the failed recipient")
	}

	for _, user := range []*models.User{alice, bob} {
		count, err := svc.CountUnread(user.ID)
		if err != nil {
			t.Fatalf("CountUnread(%s) error = %v", user.Username, err)
		}
		if count != 1 {
			t.Errorf("unread count for %s = %d, want 1", user.Username, count)
		}
	}
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	env := newTestEnv(t)
	family := env.createFamily(t, "Smith")
	alice := env.createUser(t, family.ID, models.RoleParent, "alice")
	bob := env.createUser(t, family.ID, models.RoleChild, "bob")

	svc := NewNotificationService(env.notificationRepo)
	if err := svc.Notify([]int64{alice.ID}, "hello"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	notifications, err := svc.ListNotifications(alice.ID)
	if err != nil || len(notifications) != 1 {
		t.Fatalf("expected one notification, got %d (err %v)", len(notifications), err)
	}
	id := notifications[0].ID

	// Bob cannot acknowledge Alice's notification
	if err := svc.MarkRead(bob.ID, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkRead as wrong user = %v, want ErrNotFound", err)
	}

	if err := svc.MarkRead(alice.ID, id); err != nil {
		t.Errorf("MarkRead as owner error = %v", err)
	}

	count, err := svc.CountUnread(alice.ID)
	if err != nil {
		t.Fatalf("CountUnread() error = %v", err)
	}
	if count != 0 {
		t.Errorf("unread count after mark read = %d, want 0", count)
	}
}
