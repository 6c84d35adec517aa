package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/database"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
)

// EventRepository handles database operations for calendar events
type EventRepository struct {
	db *database.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `
	id, family_id, created_by, title, description, event_date, event_time,
	category, visibility, recurrence, created_at, updated_at
`

func scanEvent(row rowScanner) (*models.Event, error) {
	event := &models.Event{}
	err := row.Scan(
		&event.ID,
		&event.FamilyID,
		&event.CreatedBy,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Time,
		&event.Category,
		&event.Visibility,
		&event.Recurrence,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// CreateEvent inserts a new calendar event
func (r *EventRepository) CreateEvent(event *models.Event) (int64, error) {
	query := `
		INSERT INTO events (family_id, created_by, title, description, event_date, event_time, category, visibility, recurrence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		event.FamilyID, event.CreatedBy, event.Title, event.Description,
		event.Date, event.Time, event.Category, event.Visibility, event.Recurrence)
	if err != nil {
		return 0, fmt.Errorf("failed to create event: %w", err)
	}
	return id, nil
}

// GetEvent retrieves an event scoped to a family
func (r *EventRepository) GetEvent(familyID, eventID int64) (*models.Event, error) {
	query := "SELECT" + eventColumns + "FROM events WHERE id = ? AND family_id = ?"
	event, err := scanEvent(r.db.QueryRow(query, eventID, familyID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// ListEvents retrieves events visible to a user: everything shared with
// the family plus the user's own personal events, in date order.
func (r *EventRepository) ListEvents(familyID, userID int64) ([]models.Event, error) {
	query := "SELECT" + eventColumns + `
		FROM events
		WHERE family_id = ? AND (visibility = ? OR created_by = ?)
		ORDER BY event_date ASC, event_time ASC
	`
	return r.queryEvents(query, familyID, models.VisibilityFamily, userID)
}

// ListUpcoming retrieves up to limit events visible to a user from a
// given date forward
func (r *EventRepository) ListUpcoming(familyID, userID int64, from time.Time, limit int) ([]models.Event, error) {
	query := "SELECT" + eventColumns + `
		FROM events
		WHERE family_id = ? AND (visibility = ? OR created_by = ?) AND event_date >= ?
		ORDER BY event_date ASC, event_time ASC
		LIMIT ?
	`
	return r.queryEvents(query, familyID, models.VisibilityFamily, userID, from, limit)
}

// SearchEvents retrieves visible events whose title or description
// contains the term, case-insensitively
func (r *EventRepository) SearchEvents(familyID, userID int64, term string) ([]models.Event, error) {
	pattern := "%" + term + "%"
	query := "SELECT" + eventColumns + `
		FROM events
		WHERE family_id = ? AND (visibility = ? OR created_by = ?)
		  AND (LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?))
		ORDER BY event_date ASC, event_time ASC
	`
	return r.queryEvents(query, familyID, models.VisibilityFamily, userID, pattern, pattern)
}

func (r *EventRepository) queryEvents(query string, args ...interface{}) ([]models.Event, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

// UpdateEvent updates an event's editable fields, scoped to a family.
// Returns the number of rows updated.
func (r *EventRepository) UpdateEvent(event *models.Event) (int64, error) {
	query := `
		UPDATE events
		SET title = ?, description = ?, event_date = ?, event_time = ?, category = ?, visibility = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND family_id = ?
	`
	result, err := r.db.Exec(query,
		event.Title, event.Description, event.Date, event.Time,
		event.Category, event.Visibility, event.ID, event.FamilyID)
	if err != nil {
		return 0, fmt.Errorf("failed to update event: %w", err)
	}
	return result.RowsAffected()
}

// DeleteEvent removes an event scoped to a family, returning the number
// of rows deleted
func (r *EventRepository) DeleteEvent(familyID, eventID int64) (int64, error) {
	result, err := r.db.Exec("DELETE FROM events WHERE id = ? AND family_id = ?", eventID, familyID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete event: %w", err)
	}
	return result.RowsAffected()
}
