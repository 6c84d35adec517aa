package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/mentions"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/repository"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/validation"
)

// messageHistoryLimit caps how far back the board loads
const messageHistoryLimit = 50

// MessageService handles the family message board
type MessageService struct {
	messageRepo         *repository.MessageRepository
	userRepo            *repository.UserRepository
	notificationService *NotificationService
}

// NewMessageService creates a new message service
func NewMessageService(messageRepo *repository.MessageRepository, userRepo *repository.UserRepository, notificationService *NotificationService) *MessageService {
	return &MessageService{
		messageRepo:         messageRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
	}
}

// SendMessage posts a message to the family board. Every family member
// except the sender is a recipient. @username mentions of family
// members produce a notification for each mentioned user.
func (s *MessageService) SendMessage(actor *models.User, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, validation.ValidationError{Field: "content", Message: "message is required"}
	}

	roster, err := s.userRepo.GetFamilyRoster(actor.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family members: %w", err)
	}

	var recipientIDs []int64
	for _, member := range roster {
		if member.ID != actor.ID {
			recipientIDs = append(recipientIDs, member.ID)
		}
	}

	msg := &models.Message{
		FamilyID:     actor.FamilyID,
		SenderID:     actor.ID,
		Content:      content,
		RecipientIDs: recipientIDs,
		ReadBy:       []int64{actor.ID},
	}
	id, err := s.messageRepo.CreateMessage(msg)
	if err != nil {
		return nil, err
	}
	msg.ID = id

	var mentioned []int64
	for _, userID := range mentions.Parse(content, roster) {
		if userID != actor.ID {
			mentioned = append(mentioned, userID)
		}
	}
	if len(mentioned) > 0 {
		message := fmt.Sprintf("%s mentioned you in a message", actor.Name)
		if err := s.notificationService.Notify(mentioned, message); err != nil {
			log.Printf("Warning: failed to notify mentions on message %d: %v", id, err)
		}
	}

	return msg, nil
}

// ListMessages returns the family's recent messages in chronological
// order
func (s *MessageService) ListMessages(familyID int64) ([]models.Message, error) {
	return s.messageRepo.ListMessages(familyID, messageHistoryLimit)
}

// MarkRead records that the actor has read a message
func (s *MessageService) MarkRead(actor *models.User, messageID int64) error {
	return s.messageRepo.MarkMessageRead(actor.FamilyID, messageID, actor.ID)
}

// UnreadCount returns how many recent messages the actor has not read
func (s *MessageService) UnreadCount(actor *models.User) (int, error) {
	messages, err := s.messageRepo.ListMessages(actor.FamilyID, messageHistoryLimit)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, msg := range messages {
		if msg.SenderID != actor.ID && !msg.ReadByUser(actor.ID) {
			count++
		}
	}
	return count, nil
}
