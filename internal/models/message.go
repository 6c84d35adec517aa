package models

import "time"

// Message is a family-wide message. Immutable once sent except for
// growth of ReadBy.
type Message struct {
	ID           int64
	FamilyID     int64
	SenderID     int64
	RecipientIDs []int64 // ordered
	Content      string
	Timestamp    time.Time
	ReadBy       []int64
}

// ReadByUser reports whether the given user has read the message
func (m *Message) ReadByUser(userID int64) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Notification is a per-recipient alert created by the notification
// dispatcher
type Notification struct {
	ID          int64
	RecipientID int64
	Message     string
	Read        bool
	Timestamp   time.Time
}
