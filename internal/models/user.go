package models

import "time"

// Member roles within a family.
const (
	RoleParent = "parent"
	RoleChild  = "child"
)

// User represents a family member account
type User struct {
	ID               int64
	FamilyID         int64
	OriginalFamilyID int64 // first family, remembered when switching
	Role             string
	Username         string
	Email            string
	PasswordHash     string
	Name             string
	OAuthProvider    string
	OAuthSubject     string
	EmailVerified    bool
	SharedFeatures   SharedFeatures
	Dietary          DietaryPreferences
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsParent reports whether the user holds the parent role.
// A missing role counts as child.
func (u *User) IsParent() bool {
	return u.Role == RoleParent
}

// SharedFeatures controls which family features a user shares in
type SharedFeatures struct {
	Tasks  bool
	Meals  bool
	Budget bool
}

// DietaryPreferences holds per-user food preferences used for meal planning
type DietaryPreferences struct {
	Restrictions []string
	Likes        []string
	Dislikes     []string
}

// Session represents an authenticated session
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
