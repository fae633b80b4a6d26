package models

import "time"

// Message is a note exchanged between two opaque user ids.
type Message struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	Read      bool   `json:"read"`
}

func (m Message) RecordID() string { return m.ID }

// OwnerID is empty: messages are filtered by participant instead.
func (m Message) OwnerID() string { return "" }

// Participants lists sender and recipient.
func (m Message) Participants() []string { return []string{m.From, m.To} }

// Involves reports whether userID sent or received the message.
func (m Message) Involves(userID string) bool {
	return m.From == userID || m.To == userID
}

// Counterpart returns the other participant from userID's point of view.
func (m Message) Counterpart(userID string) string {
	if m.From == userID {
		return m.To
	}
	return m.From
}

// Stamp assigns the identifier and timestamp.
func (m *Message) Stamp(id string, at time.Time) {
	m.ID = id
	m.Timestamp = Millis(at)
}

// CreatedAtMillis returns the creation timestamp.
func (m Message) CreatedAtMillis() int64 { return m.Timestamp }

// Conversation groups messages exchanged with one counterpart.
type Conversation struct {
	UserID      string  `json:"userId"`
	LastMessage Message `json:"lastMessage"`
	Unread      int     `json:"unread"`
	Total       int     `json:"total"`
}
