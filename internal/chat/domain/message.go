package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	errprocess "chat_presence_service/pkg/err"
)

// Message 一則 1 對 1 訊息, sender / recipient 建立後不可變更
type Message struct {
	ID          string     `bson:"_id" json:"id"`
	SenderID    string     `bson:"sender_id" json:"senderId"`
	RecipientID string     `bson:"recipient_id" json:"recipientId"`
	Text        string     `bson:"text,omitempty" json:"text,omitempty"`
	ImageURL    string     `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	Edited      bool       `bson:"edited" json:"edited"`
	EditedAt    *time.Time `bson:"edited_at,omitempty" json:"editedAt,omitempty"`
}

// TextPatch the only mutable part of a message
type TextPatch struct {
	Text     string
	EditedAt time.Time
}

// HasContent at least one of text / image
func (m *Message) HasContent() bool {
	return strings.TrimSpace(m.Text) != "" || m.ImageURL != ""
}

// Validate check content and text length
func (m *Message) Validate(maxTextLength int) error {
	if m.SenderID == "" || m.RecipientID == "" {
		return errprocess.New(errprocess.ErrValidation, "sender and recipient are required")
	}
	if !m.HasContent() {
		return errprocess.New(errprocess.ErrValidation, "text or image is required")
	}
	return ValidateTextLength(m.Text, maxTextLength)
}

// ValidateTextLength maxTextLength <= 0 不限制
func ValidateTextLength(text string, maxTextLength int) error {
	if maxTextLength > 0 && utf8.RuneCountInString(text) > maxTextLength {
		return errprocess.New(errprocess.ErrValidation, "text exceeds %d characters", maxTextLength)
	}
	return nil
}

// IsParticipant user is sender or recipient
func (m *Message) IsParticipant(userID string) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

// Apply 套用 patch, 不動 sender / recipient / createdAt
func (m *Message) Apply(p TextPatch) {
	editedAt := p.EditedAt
	m.Text = p.Text
	m.Edited = true
	m.EditedAt = &editedAt
}

// SameChat {a,b} 與 {c,d} 為同一個無序 pair
func SameChat(a, b, c, d string) bool {
	return (a == c && b == d) || (a == d && b == c)
}
