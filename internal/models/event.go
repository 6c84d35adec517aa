package models

import "time"

// Event visibility values.
const (
	VisibilityFamily   = "family"
	VisibilityPersonal = "personal"
)

// Event represents a calendar entry belonging to a family
type Event struct {
	ID          int64
	FamilyID    int64
	CreatedBy   int64
	Title       string
	Description string
	Date        time.Time
	Time        string // HH:MM, optional
	Category    string
	Visibility  string
	Recurrence  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
