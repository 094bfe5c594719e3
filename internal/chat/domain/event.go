package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// EventType websocket outbound event
type EventType string

const (
	// EventPresence full online set
	EventPresence EventType = "presence"
	// EventNewMessage message sent to the recipient
	EventNewMessage EventType = "new-message"
	// EventEditedMessage message text changed
	EventEditedMessage EventType = "edited-message"
	// EventMessageDeleted message unsent
	EventMessageDeleted EventType = "message-deleted"
	// EventChatCleared whole chat deleted by the other participant
	EventChatCleared EventType = "chat-cleared"
)

// Event server -> connection frame
type Event struct {
	Type    EventType `json:"type"`
	Payload Payload   `json:"payload"`
}

// Payload closed set of event payloads
type Payload interface {
	eventPayload()
}

// PresencePayload presence event payload
type PresencePayload struct {
	OnlineUsers []string `json:"onlineUsers"`
}

// MessagePayload new-message / edited-message payload
type MessagePayload struct {
	Message
}

// MessageDeletedPayload message-deleted payload
type MessageDeletedPayload struct {
	MessageID string `json:"messageId"`
}

// ChatClearedPayload chat-cleared payload, UserID 為清除對話的一方
type ChatClearedPayload struct {
	UserID string `json:"userId"`
}

func (PresencePayload) eventPayload()       {}
func (MessagePayload) eventPayload()        {}
func (MessageDeletedPayload) eventPayload() {}
func (ChatClearedPayload) eventPayload()    {}

// NewPresenceEvent online ids 排序後輸出
func NewPresenceEvent(online []string) Event {
	ids := make([]string, len(online))
	copy(ids, online)
	sort.Strings(ids)
	return Event{Type: EventPresence, Payload: PresencePayload{OnlineUsers: ids}}
}

// NewMessageEvent new-message
func NewMessageEvent(m Message) Event {
	return Event{Type: EventNewMessage, Payload: MessagePayload{Message: m}}
}

// NewEditedMessageEvent edited-message
func NewEditedMessageEvent(m Message) Event {
	return Event{Type: EventEditedMessage, Payload: MessagePayload{Message: m}}
}

// NewMessageDeletedEvent message-deleted
func NewMessageDeletedEvent(messageID string) Event {
	return Event{Type: EventMessageDeleted, Payload: MessageDeletedPayload{MessageID: messageID}}
}

// NewChatClearedEvent chat-cleared
func NewChatClearedEvent(userID string) Event {
	return Event{Type: EventChatCleared, Payload: ChatClearedPayload{UserID: userID}}
}

// Encode to websocket text frame
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent parse a frame back into its typed payload
func DecodeEvent(data []byte) (Event, error) {
	var raw struct {
		Type    EventType       `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}

	var (
		payload Payload
		err     error
	)
	switch raw.Type {
	case EventPresence:
		var p PresencePayload
		err = json.Unmarshal(raw.Payload, &p)
		payload = p
	case EventNewMessage, EventEditedMessage:
		var p MessagePayload
		err = json.Unmarshal(raw.Payload, &p)
		payload = p
	case EventMessageDeleted:
		var p MessageDeletedPayload
		err = json.Unmarshal(raw.Payload, &p)
		payload = p
	case EventChatCleared:
		var p ChatClearedPayload
		err = json.Unmarshal(raw.Payload, &p)
		payload = p
	default:
		return Event{}, fmt.Errorf("unknown event type %q", raw.Type)
	}
	if err != nil {
		return Event{}, fmt.Errorf("decode %s payload: %w", raw.Type, err)
	}
	return Event{Type: raw.Type, Payload: payload}, nil
}
