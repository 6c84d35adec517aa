package repository

import (
	"fmt"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/database"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
)

// NotificationRepository handles database operations for per-user
// notifications
type NotificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotification inserts an unread notification for a recipient
func (r *NotificationRepository) CreateNotification(recipientID int64, message string) (int64, error) {
	query := "INSERT INTO notifications (recipient_id, message, is_read) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, recipientID, message, false)
	if err != nil {
		return 0, fmt.Errorf("failed to create notification: %w", err)
	}
	return id, nil
}

// ListByRecipient retrieves a user's notifications, newest first
func (r *NotificationRepository) ListByRecipient(recipientID int64) ([]models.Notification, error) {
	query := `
		SELECT id, recipient_id, message, is_read, created_at
		FROM notifications
		WHERE recipient_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Message, &n.Read, &n.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// CountUnread returns the number of unread notifications for a user
func (r *NotificationRepository) CountUnread(recipientID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = ?"
	if err := r.db.QueryRow(query, recipientID, false).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks a notification read. The recipient scope keeps users
// from acknowledging each other's notifications. Returns the number of
// rows updated.
func (r *NotificationRepository) MarkRead(recipientID, notificationID int64) (int64, error) {
	query := "UPDATE notifications SET is_read = ? WHERE id = ? AND recipient_id = ?"
	result, err := r.db.Exec(query, true, notificationID, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return result.RowsAffected()
}

// MarkAllRead marks every unread notification for a user as read
func (r *NotificationRepository) MarkAllRead(recipientID int64) error {
	query := "UPDATE notifications SET is_read = ? WHERE recipient_id = ? AND is_read = ?"
	if _, err := r.db.Exec(query, true, recipientID, false); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
