package service

import (
	"testing"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
)

func newFamilyService(t *testing.T, env *testEnv) *FamilyService {
	t.Helper()
	emailService, err := NewEmailService("", "", "", "", false)
	if err != nil {
		t.Fatalf("NewEmailService() error = %v", err)
	}
	return NewFamilyService(env.familyRepo, env.userRepo, emailService)
}

func TestJoinFamilyAndReturnHomeRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	home := env.createFamily(t, "Smith")
	away := env.createFamily(t, "Jones")
	alice := env.createUser(t, home.ID, models.RoleParent, "alice")

	svc := newFamilyService(t, env)

	joined, err := svc.JoinFamily(alice, away.InviteCode)
	if err != nil {
		t.Fatalf("JoinFamily() error = %v", err)
	}
	if joined.ID != away.ID {
		t.Fatalf("joined family = %d, want %d", joined.ID, away.ID)
	}

	switched, err := env.userRepo.GetUserByID(alice.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if switched.FamilyID != away.ID {
		t.Errorf("family after join = %d, want %d", switched.FamilyID, away.ID)
	}
	if switched.Role != models.RoleChild {
		t.Errorf("role after join = %q, want %q", switched.Role, models.RoleChild)
	}
	if switched.OriginalFamilyID != home.ID {
		t.Errorf("original family = %d, want %d", switched.OriginalFamilyID, home.ID)
	}

	if err := svc.ReturnHome(switched); err != nil {
		t.Fatalf("ReturnHome() error = %v", err)
	}

	returned, err := env.userRepo.GetUserByID(alice.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if returned.FamilyID != home.ID {
		t.Errorf("family after return = %d, want %d", returned.FamilyID, home.ID)
	}
	if returned.Role != models.RoleParent {
		t.Errorf("role after return = %q, want %q", returned.Role, models.RoleParent)
	}
}

func TestJoinFamilyRejectsUnknownCode(t *testing.T) {
	env := newTestEnv(t)
	home := env.createFamily(t, "Smith")
	alice := env.createUser(t, home.ID, models.RoleParent, "alice")

	svc := newFamilyService(t, env)
	if _, err := svc.JoinFamily(alice, "NOPE42"); err != ErrInvalidInviteCode {
		t.Errorf("JoinFamily() error = %v, want ErrInvalidInviteCode", err)
	}
}

func TestReturnHomeWithoutSwitchIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	home := env.createFamily(t, "Smith")
	alice := env.createUser(t, home.ID, models.RoleParent, "alice")

	svc := newFamilyService(t, env)
	if err := svc.ReturnHome(alice); err != ErrNotFound {
		t.Errorf("ReturnHome() error = %v, want ErrNotFound", err)
	}
}
