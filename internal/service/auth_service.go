package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/repository"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/security"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/validation"
)

const (
	verifyEmailTokenTTL   = 24 * time.Hour
	passwordResetTokenTTL = 1 * time.Hour
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo        *repository.UserRepository
	familyRepo      *repository.FamilyRepository
	emailService    *EmailService
	tokenSecret     string
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, familyRepo *repository.FamilyRepository, emailService *EmailService, tokenSecret string, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		familyRepo:      familyRepo,
		emailService:    emailService,
		tokenSecret:     tokenSecret,
		sessionDuration: sessionDuration,
	}
}

// Register creates a new user account. An invite code joins the
// matching family as a child; without one a fresh family is created
// with the new user as its parent.
func (s *AuthService) Register(ctx context.Context, username, email, password, name, inviteCode string) (*models.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	existingUser, err = s.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing username: %w", err)
	}
	if existingUser != nil {
		return nil, ErrUsernameTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	familyID, role, err := s.resolveFamily(name, inviteCode)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.CreateUser(familyID, role, username, email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.emailService != nil && s.emailService.IsEnabled() {
		if err := s.sendVerificationEmail(ctx, user); err != nil {
			// Registration stands, the user can request another email
			log.Printf("Warning: failed to send verification email to user %d: %v", user.ID, err)
		}
	}

	return user, nil
}

// resolveFamily picks the family and role for a new account
func (s *AuthService) resolveFamily(name, inviteCode string) (int64, string, error) {
	if inviteCode != "" {
		family, err := s.familyRepo.GetFamilyByInviteCode(inviteCode)
		if err != nil {
			return 0, "", fmt.Errorf("failed to check invite code: %w", err)
		}
		if family == nil {
			return 0, "", ErrInvalidInviteCode
		}
		return family.ID, models.RoleChild, nil
	}

	family, err := s.familyRepo.CreateFamily(name + "'s Family")
	if err != nil {
		return 0, "", fmt.Errorf("failed to create family: %w", err)
	}
	return family.ID, models.RoleParent, nil
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (s *AuthService) createSession(userID int64) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.userRepo.CreateSession(sessionID, userID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession checks if a session is valid and returns the
// associated user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}

	return user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.userRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() error {
	if err := s.userRepo.DeleteExpiredSessions(); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return nil
}

// ResendVerificationEmail sends a fresh verification link to an
// unverified account. Already verified or unknown accounts are a
// silent no-op so the endpoint reveals nothing.
func (s *AuthService) ResendVerificationEmail(ctx context.Context, email string) error {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.EmailVerified {
		return nil
	}
	return s.sendVerificationEmail(ctx, user)
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, user *models.User) error {
	token, err := security.SignActionToken(s.tokenSecret, user.ID, security.PurposeVerifyEmail, verifyEmailTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to sign verification token: %w", err)
	}
	if err := s.emailService.SendVerificationEmail(ctx, user.Email, user.Name, token); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// VerifyEmail marks the account in a verification token as verified
func (s *AuthService) VerifyEmail(token string) error {
	userID, err := security.ParseActionToken(s.tokenSecret, token, security.PurposeVerifyEmail)
	if err != nil {
		return err
	}
	if err := s.userRepo.SetEmailVerified(userID); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return nil
}

// RequestPasswordReset emails a reset link. An unknown email is a
// silent no-op so the endpoint reveals nothing.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}

	// OAuth-only accounts have no password to reset
	if user.OAuthProvider != "" && user.PasswordHash == "" {
		return nil
	}

	token, err := security.SignActionToken(s.tokenSecret, user.ID, security.PurposePasswordReset, passwordResetTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to sign reset token: %w", err)
	}

	if s.emailService != nil && s.emailService.IsEnabled() {
		if err := s.emailService.SendPasswordResetEmail(ctx, user.Email, user.Name, token); err != nil {
			return fmt.Errorf("failed to send reset email: %w", err)
		}
	}
	return nil
}

// ResetPassword sets a new password using a valid reset token
func (s *AuthService) ResetPassword(token, newPassword string) error {
	userID, err := security.ParseActionToken(s.tokenSecret, token, security.PurposePasswordReset)
	if err != nil {
		return err
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// OAuthLogin authenticates or creates a user using an OAuth provider
func (s *AuthService) OAuthLogin(provider, subject, email, name, inviteCode string) (*models.Session, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		existingUser, err := s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existingUser != nil {
			if existingUser.OAuthProvider != "" && existingUser.OAuthProvider != provider {
				return nil, nil, ErrEmailTaken
			}
			if err := s.userRepo.LinkOAuthProvider(existingUser.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = existingUser
		} else {
			user, err = s.createOAuthUser(provider, subject, email, name, inviteCode)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	session, err := s.createSession(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (s *AuthService) createOAuthUser(provider, subject, email, name, inviteCode string) (*models.User, error) {
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	username := strings.Split(email, "@")[0]
	if existing, err := s.userRepo.GetUserByUsername(username); err != nil {
		return nil, fmt.Errorf("failed to check existing username: %w", err)
	} else if existing != nil {
		username = fmt.Sprintf("%s_%s", username, security.GenerateSessionID()[:8])
	}

	randomPasswordHash, err := security.HashPassword(security.GenerateSessionID())
	if err != nil {
		return nil, fmt.Errorf("failed to generate oauth password hash: %w", err)
	}

	familyID, role, err := s.resolveFamily(name, inviteCode)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.CreateUser(familyID, role, username, email, randomPasswordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth user: %w", err)
	}
	if err := s.userRepo.LinkOAuthProvider(user.ID, provider, subject); err != nil {
		return nil, fmt.Errorf("failed to link oauth provider: %w", err)
	}

	// The provider already verified this address
	if err := s.userRepo.SetEmailVerified(user.ID); err != nil {
		return nil, fmt.Errorf("failed to mark email verified: %w", err)
	}
	user.EmailVerified = true

	return user, nil
}
