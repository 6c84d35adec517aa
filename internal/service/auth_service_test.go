package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
)

func newAuthService(env *testEnv) *AuthService {
	email, _ := NewEmailService("", "", "", "", false)
	return NewAuthService(env.userRepo, env.familyRepo, email, "test-secret", time.Hour)
}

func TestRegisterCreatesFamilyAndParent(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)

	user, err := svc.Register(context.Background(), "alice", "alice@example.com", "password123", "Alice", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.Role != models.RoleParent {
		t.Errorf("role = %q, want %q", user.Role, models.RoleParent)
	}
	if user.FamilyID == 0 {
		t.Error("user should belong to a freshly created family")
	}

	family, err := env.familyRepo.GetFamilyByID(user.FamilyID)
	if err != nil || family == nil {
		t.Fatalf("family lookup failed: %v", err)
	}
	if family.InviteCode == "" {
		t.Error("new family should carry an invite code")
	}
}

func TestRegisterWithInviteCodeJoinsAsChild(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)

	parent, err := svc.Register(context.Background(), "alice", "alice@example.com", "password123", "Alice", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	family, err := env.familyRepo.GetFamilyByID(parent.FamilyID)
	if err != nil || family == nil {
		t.Fatalf("family lookup failed: %v", err)
	}

	child, err := svc.Register(context.Background(), "bob", "bob@example.com", "password123", "Bob", family.InviteCode)
	if err != nil {
		t.Fatalf("Register() with invite code error = %v", err)
	}
	if child.FamilyID != parent.FamilyID {
		t.Errorf("child familyID = %d, want %d", child.FamilyID, parent.FamilyID)
	}
	if child.Role != models.RoleChild {
		t.Errorf("joiner role = %q, want %q", child.Role, models.RoleChild)
	}
}

func TestRegisterRejectsBadInviteCode(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)

	_, err := svc.Register(context.Background(), "bob", "bob@example.com", "password123", "Bob", "no-such-code")
	if !errors.Is(err, ErrInvalidInviteCode) {
		t.Errorf("Register() = %v, want ErrInvalidInviteCode", err)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)

	if _, err := svc.Register(context.Background(), "alice", "alice@example.com", "password123", "Alice", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := svc.Register(context.Background(), "alice2", "alice@example.com", "password123", "Alice", "")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email = %v, want ErrEmailTaken", err)
	}

	_, err = svc.Register(context.Background(), "alice", "other@example.com", "password123", "Alice", "")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate username = %v, want ErrUsernameTaken", err)
	}
}

func TestLoginAndSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)

	if _, err := svc.Register(context.Background(), "alice", "alice@example.com", "password123", "Alice", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, _, err := svc.Login("alice@example.com", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login with wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login("nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login with unknown email = %v, want ErrInvalidCredentials", err)
	}

	session, user, err := svc.Login("alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	validated, err := svc.ValidateSession(session.ID)
	if err != nil {
		t.Fatalf("ValidateSession() error = %v", err)
	}
	if validated.ID != user.ID {
		t.Errorf("session resolves to user %d, want %d", validated.ID, user.ID)
	}

	if err := svc.Logout(session.ID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := svc.ValidateSession(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("ValidateSession after logout = %v, want ErrSessionNotFound", err)
	}
}

func TestPasswordResetRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)

	if _, err := svc.Register(context.Background(), "alice", "alice@example.com", "password123", "Alice", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// The reset email carries a signed token; build one the same way
	user, err := env.userRepo.GetUserByEmail("alice@example.com")
	if err != nil || user == nil {
		t.Fatalf("user lookup failed: %v", err)
	}

	if err := svc.RequestPasswordReset(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	// Unknown addresses never error, to avoid account enumeration
	if err := svc.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset(unknown) error = %v", err)
	}
}
