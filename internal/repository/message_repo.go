package repository

import (
	"database/sql"
	"fmt"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/database"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
)

// markReadMaxAttempts bounds the reread loop when concurrent readers
// race on the same message's read_by column
const markReadMaxAttempts = 5

// MessageRepository handles database operations for family messages
type MessageRepository struct {
	db *database.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *database.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// CreateMessage inserts a new message. Recipient and read-by sets are
// stored as comma-separated ID lists.
func (r *MessageRepository) CreateMessage(msg *models.Message) (int64, error) {
	query := `
		INSERT INTO messages (family_id, sender_id, content, recipient_ids, read_by)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		msg.FamilyID, msg.SenderID, msg.Content,
		joinIDs(msg.RecipientIDs), joinIDs(msg.ReadBy))
	if err != nil {
		return 0, fmt.Errorf("failed to create message: %w", err)
	}
	return id, nil
}

// GetMessage retrieves a message scoped to a family
func (r *MessageRepository) GetMessage(familyID, messageID int64) (*models.Message, error) {
	query := `
		SELECT id, family_id, sender_id, content, recipient_ids, read_by, sent_at
		FROM messages
		WHERE id = ? AND family_id = ?
	`
	msg, err := r.scanMessage(r.db.QueryRow(query, messageID, familyID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return msg, nil
}

// ListMessages retrieves the most recent messages for a family in
// chronological order
func (r *MessageRepository) ListMessages(familyID int64, limit int) ([]models.Message, error) {
	query := `
		SELECT id, family_id, sender_id, content, recipient_ids, read_by, sent_at
		FROM messages
		WHERE family_id = ?
		ORDER BY sent_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, familyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		msg, err := r.scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query newest-first for the limit, present oldest-first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkMessageRead records that a user has read a message. Reading twice
// is a no-op.
func (r *MessageRepository) MarkMessageRead(familyID, messageID, userID int64) error {
	// The UPDATE is guarded on the read_by value seen by the SELECT so a
	// concurrent reader's receipt is never overwritten. On a lost race
	// the guard matches zero rows and the loop rereads.
	for attempt := 0; attempt < markReadMaxAttempts; attempt++ {
		var readBy string
		query := "SELECT read_by FROM messages WHERE id = ? AND family_id = ?"
		err := r.db.QueryRow(query, messageID, familyID).Scan(&readBy)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get message read state: %w", err)
		}

		ids := splitIDs(readBy)
		updated := appendUniqueID(ids, userID)
		if len(updated) == len(ids) {
			return nil
		}

		result, err := r.db.Exec(
			"UPDATE messages SET read_by = ? WHERE id = ? AND family_id = ? AND read_by = ?",
			joinIDs(updated), messageID, familyID, readBy)
		if err != nil {
			return fmt.Errorf("failed to mark message read: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to mark message read: %w", err)
		}
		if affected > 0 {
			return nil
		}
	}
	return fmt.Errorf("failed to mark message read: contention on message %d", messageID)
}

func (r *MessageRepository) scanMessage(row rowScanner) (*models.Message, error) {
	msg := &models.Message{}
	var recipientIDs, readBy string
	err := row.Scan(
		&msg.ID,
		&msg.FamilyID,
		&msg.SenderID,
		&msg.Content,
		&recipientIDs,
		&readBy,
		&msg.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	msg.RecipientIDs = splitIDs(recipientIDs)
	msg.ReadBy = splitIDs(readBy)
	return msg, nil
}
