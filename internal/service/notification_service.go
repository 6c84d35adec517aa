package service

import (
	"errors"
	"fmt"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/repository"
)

// NotificationService handles fan-out and delivery of in-app
// notifications
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// SendNotification persists a single unread notification and returns
// its ID
func (s *NotificationService) SendNotification(recipientID int64, message string) (int64, error) {
	return s.notificationRepo.CreateNotification(recipientID, message)
}

// Notify creates one unread notification per recipient. A failure for
// one recipient does not stop delivery to the rest; the errors are
// collected and returned together.
func (s *NotificationService) Notify(recipientIDs []int64, message string) error {
	var errs []error
	for _, recipientID := range recipientIDs {
		if _, err := s.notificationRepo.CreateNotification(recipientID, message); err != nil {
			errs = append(errs, fmt.Errorf("recipient %d: %w", recipientID, err))
		}
	}
	return errors.Join(errs...)
}

// ListNotifications returns a user's notifications, newest first
func (s *NotificationService) ListNotifications(userID int64) ([]models.Notification, error) {
	return s.notificationRepo.ListByRecipient(userID)
}

// CountUnread returns the number of unread notifications for a user
func (s *NotificationService) CountUnread(userID int64) (int, error) {
	return s.notificationRepo.CountUnread(userID)
}

// MarkRead marks one of the user's notifications as read. Marking a
// notification that belongs to someone else reports ErrNotFound.
func (s *NotificationService) MarkRead(userID, notificationID int64) error {
	affected, err := s.notificationRepo.MarkRead(userID, notificationID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks all of a user's notifications as read
func (s *NotificationService) MarkAllRead(userID int64) error {
	return s.notificationRepo.MarkAllRead(userID)
}
