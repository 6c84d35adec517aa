package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/database"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/repository"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/security"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/service"
)

// newTestMiddleware builds a middleware stack backed by a migrated
// SQLite database and returns it with an auth service for creating
// sessions and the family repository for invite code lookups
func newTestMiddleware(t *testing.T) (*Middleware, *service.AuthService, *repository.FamilyRepository) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database-backed test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	emailService, _ := service.NewEmailService("", "", "", "", false)
	authService := service.NewAuthService(userRepo, familyRepo, emailService, "test-secret", time.Hour)

	csrfStore := security.NewCSRFTokenStore(time.Hour)
	rateLimiter := security.NewRateLimiter(100, time.Minute)

	return NewMiddleware(authService, csrfStore, rateLimiter), authService, familyRepo
}

// loginAs registers an account and returns its session ID and user
func loginAs(t *testing.T, authService *service.AuthService, username, inviteCode string) (string, *models.User) {
	t.Helper()

	email := username + "@example.com"
	if _, err := authService.Register(t.Context(), username, email, "password123", username, inviteCode); err != nil {
		t.Fatalf("Register(%s) error = %v", username, err)
	}
	session, user, err := authService.Login(email, "password123")
	if err != nil {
		t.Fatalf("Login(%s) error = %v", username, err)
	}
	return session.ID, user
}

func TestRequireAuthRedirectsWithoutSession(t *testing.T) {
	m, _, _ := newTestMiddleware(t)

	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a session")
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect = %q, want /login", loc)
	}
}

func TestRequireAuthPassesUserToContext(t *testing.T) {
	m, authService, _ := newTestMiddleware(t)
	sessionID, user := loginAs(t, authService, "alice", "")

	var got *models.User
	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})
	rec := httptest.NewRecorder()
	handler(rec, req)

	if got == nil || got.ID != user.ID {
		t.Fatalf("context user = %+v, want user %d", got, user.ID)
	}
}

func TestRequireParentForbidsChild(t *testing.T) {
	m, authService, familyRepo := newTestMiddleware(t)

	// First registration creates the family, making alice a parent
	parentSession, parent := loginAs(t, authService, "alice", "")

	family, err := familyRepo.GetFamilyByID(parent.FamilyID)
	if err != nil || family == nil {
		t.Fatalf("family lookup failed: %v", err)
	}
	childSession, _ := loginAs(t, authService, "bob", family.InviteCode)

	handler := m.RequireParent(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/family/rename", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: childSession})
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("child status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	req = httptest.NewRequest(http.MethodPost, "/family/rename", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: parentSession})
	rec = httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("parent status = %d, want %d, user role %q", rec.Code, http.StatusOK, parent.Role)
	}
}

func TestCSRFProtectRejectsMissingToken(t *testing.T) {
	m, authService, _ := newTestMiddleware(t)
	sessionID, _ := loginAs(t, authService, "alice", "")

	handler := m.CSRFProtect(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a CSRF token")
	})

	form := url.Values{"name": {"New Name"}}
	req := httptest.NewRequest(http.MethodPost, "/family/rename", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestCSRFProtectAcceptsValidToken(t *testing.T) {
	m, authService, _ := newTestMiddleware(t)
	sessionID, _ := loginAs(t, authService, "alice", "")

	token, err := m.GetCSRFToken(sessionID)
	if err != nil {
		t.Fatalf("GetCSRFToken error = %v", err)
	}

	called := false
	handler := m.CSRFProtect(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	form := url.Values{CSRFFormField: {token}}
	req := httptest.NewRequest(http.MethodPost, "/family/rename", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})
	rec := httptest.NewRecorder()
	handler(rec, req)

	if !called {
		t.Fatalf("handler not called, status = %d", rec.Code)
	}
}
