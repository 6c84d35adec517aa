package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/database"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
)

// UserRepository handles database operations for users and sessions
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, family_id, COALESCE(original_family_id, 0), role, username, email,
	password_hash, name, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''),
	email_verified, share_tasks, share_meals, share_budget,
	dietary_restrictions, dietary_likes, dietary_dislikes, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var restrictions, likes, dislikes string
	err := row.Scan(
		&user.ID,
		&user.FamilyID,
		&user.OriginalFamilyID,
		&user.Role,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.OAuthProvider,
		&user.OAuthSubject,
		&user.EmailVerified,
		&user.SharedFeatures.Tasks,
		&user.SharedFeatures.Meals,
		&user.SharedFeatures.Budget,
		&restrictions,
		&likes,
		&dislikes,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Dietary.Restrictions = splitList(restrictions)
	user.Dietary.Likes = splitList(likes)
	user.Dietary.Dislikes = splitList(dislikes)
	return user, nil
}

// CreateUser inserts a new user into the database
func (r *UserRepository) CreateUser(familyID int64, role, username, email, passwordHash, name string) (*models.User, error) {
	query := `
		INSERT INTO users (family_id, role, username, email, password_hash, name,
			dietary_restrictions, dietary_likes, dietary_dislikes)
		VALUES (?, ?, ?, ?, ?, ?, '', '', '')
	`
	id, err := r.db.ExecReturningID(query, familyID, role, username, email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{
		ID:             id,
		FamilyID:       familyID,
		Role:           role,
		Username:       username,
		Email:          email,
		PasswordHash:   passwordHash,
		Name:           name,
		SharedFeatures: models.SharedFeatures{Tasks: true, Meals: true, Budget: true},
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	query := "SELECT" + userColumns + "FROM users WHERE id = ?"
	user, err := scanUser(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := "SELECT" + userColumns + "FROM users WHERE email = ?"
	user, err := scanUser(r.db.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username
func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	query := "SELECT" + userColumns + "FROM users WHERE username = ?"
	user, err := scanUser(r.db.QueryRow(query, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByOAuth retrieves a user by OAuth provider and subject
func (r *UserRepository) GetUserByOAuth(provider, subject string) (*models.User, error) {
	query := "SELECT" + userColumns + "FROM users WHERE oauth_provider = ? AND oauth_subject = ?"
	user, err := scanUser(r.db.QueryRow(query, provider, subject))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by oauth: %w", err)
	}
	return user, nil
}

// LinkOAuthProvider links an existing user to an OAuth provider
func (r *UserRepository) LinkOAuthProvider(userID int64, provider, subject string) error {
	query := `
		UPDATE users
		SET oauth_provider = ?, oauth_subject = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		AND (oauth_provider IS NULL OR oauth_provider = '')
	`
	result, err := r.db.Exec(query, provider, subject, userID)
	if err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read link result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("oauth provider already linked")
	}
	return nil
}

// GetFamilyRoster retrieves all members of a family
func (r *UserRepository) GetFamilyRoster(familyID int64) ([]models.User, error) {
	query := "SELECT" + userColumns + "FROM users WHERE family_id = ? ORDER BY created_at ASC"
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family roster: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// UpdateSharedFeatures updates a user's feature sharing toggles
func (r *UserRepository) UpdateSharedFeatures(userID int64, features models.SharedFeatures) error {
	query := `
		UPDATE users
		SET share_tasks = ?, share_meals = ?, share_budget = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, features.Tasks, features.Meals, features.Budget, userID)
	if err != nil {
		return fmt.Errorf("failed to update shared features: %w", err)
	}
	return nil
}

// UpdateDietaryPreferences updates a user's dietary preferences
func (r *UserRepository) UpdateDietaryPreferences(userID int64, prefs models.DietaryPreferences) error {
	query := `
		UPDATE users
		SET dietary_restrictions = ?, dietary_likes = ?, dietary_dislikes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, joinList(prefs.Restrictions), joinList(prefs.Likes), joinList(prefs.Dislikes), userID)
	if err != nil {
		return fmt.Errorf("failed to update dietary preferences: %w", err)
	}
	return nil
}

// SetEmailVerified marks a user's email address as verified
func (r *UserRepository) SetEmailVerified(userID int64) error {
	query := "UPDATE users SET email_verified = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, true, userID)
	if err != nil {
		return fmt.Errorf("failed to set email verified: %w", err)
	}
	return nil
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(userID int64, passwordHash string) error {
	query := "UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// UpdateRole changes a user's role within the family
func (r *UserRepository) UpdateRole(userID int64, role string) error {
	query := "UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, role, userID)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}

// SwitchFamily moves a user to a new family with the given role,
// remembering the original family the first time they switch
func (r *UserRepository) SwitchFamily(userID, newFamilyID int64, role string) error {
	query := `
		UPDATE users
		SET original_family_id = CASE
				WHEN original_family_id IS NULL OR original_family_id = 0 THEN family_id
				ELSE original_family_id
			END,
			family_id = ?,
			role = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, newFamilyID, role, userID)
	if err != nil {
		return fmt.Errorf("failed to switch family: %w", err)
	}
	return nil
}

// CreateSession creates a new session for a user
func (r *UserRepository) CreateSession(sessionID string, userID int64, expiresAt time.Time) (*models.Session, error) {
	query := "INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)"
	if _, err := r.db.Exec(query, sessionID, userID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// GetSession retrieves a session by ID
func (r *UserRepository) GetSession(sessionID string) (*models.Session, error) {
	query := "SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = ?"
	session := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// DeleteSession removes a session from the database
func (r *UserRepository) DeleteSession(sessionID string) error {
	query := "DELETE FROM sessions WHERE id = ?"
	if _, err := r.db.Exec(query, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all expired sessions
func (r *UserRepository) DeleteExpiredSessions() error {
	query := "DELETE FROM sessions WHERE expires_at < ?"
	if _, err := r.db.Exec(query, time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
