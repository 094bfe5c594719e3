package domain

import (
	"strings"
	"testing"
	"time"

	errprocess "chat_presence_service/pkg/err"

	"github.com/stretchr/testify/assert"
)

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"text only", Message{SenderID: "a", RecipientID: "b", Text: "hi"}, false},
		{"image only", Message{SenderID: "a", RecipientID: "b", ImageURL: "http://img/1.png"}, false},
		{"empty", Message{SenderID: "a", RecipientID: "b"}, true},
		{"whitespace text", Message{SenderID: "a", RecipientID: "b", Text: "  \n"}, true},
		{"no recipient", Message{SenderID: "a", Text: "hi"}, true},
		{"too long", Message{SenderID: "a", RecipientID: "b", Text: strings.Repeat("字", 11)}, true},
		{"at limit", Message{SenderID: "a", RecipientID: "b", Text: strings.Repeat("字", 10)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate(10)
			if tt.wantErr {
				assert.ErrorIs(t, err, errprocess.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMessageApply(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	m := Message{ID: "m1", SenderID: "a", RecipientID: "b", Text: "old", CreatedAt: created}
	editedAt := time.Now()

	m.Apply(TextPatch{Text: "new", EditedAt: editedAt})

	assert.Equal(t, "new", m.Text)
	assert.True(t, m.Edited)
	assert.Equal(t, editedAt, *m.EditedAt)
	assert.Equal(t, "a", m.SenderID)
	assert.Equal(t, "b", m.RecipientID)
	assert.Equal(t, created, m.CreatedAt)
}

func TestSameChat(t *testing.T) {
	assert.True(t, SameChat("a", "b", "a", "b"))
	assert.True(t, SameChat("a", "b", "b", "a"))
	assert.False(t, SameChat("a", "b", "a", "c"))
}

func TestIsParticipant(t *testing.T) {
	m := Message{SenderID: "a", RecipientID: "b"}
	assert.True(t, m.IsParticipant("a"))
	assert.True(t, m.IsParticipant("b"))
	assert.False(t, m.IsParticipant("c"))
}
