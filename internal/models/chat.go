package models

import "fmt"

// ChatKind says who can read a chat.
type ChatKind string

const (
	ChatDirect ChatKind = "direct"
	ChatGroup  ChatKind = "group"
	ChatEvent  ChatKind = "event"
)

// MessageType distinguishes what people wrote from what the app posted.
type MessageType string

const (
	MessageText        MessageType = "text"
	MessageSystem      MessageType = "system"
	MessageRSVPUpdate  MessageType = "rsvp_update"
	MessageBillSplit   MessageType = "bill_split"
	MessageEventUpdate MessageType = "event_update"
)

// ParseMessageType converts a wire value into a MessageType.
func ParseMessageType(s string) (MessageType, error) {
	switch t := MessageType(s); t {
	case MessageText, MessageSystem, MessageRSVPUpdate, MessageBillSplit, MessageEventUpdate:
		return t, nil
	default:
		return "", fmt.Errorf("unknown message type %q", s)
	}
}

// Chat is a conversation thread.
type Chat struct {
	ID   string
	Kind ChatKind
	Name string

	// GroupID is set for group chats and EventID for event chats. Each group
	// and event has at most one chat.
	GroupID string
	EventID string

	// Participants are the members of a direct chat, creator first.
	Participants []string

	CreatedBy string
	CreatedAt int64
}

// HasParticipant reports whether userID is listed on a direct chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// ChatMessage is one message in a chat.
type ChatMessage struct {
	ID     string
	ChatID string

	// SenderID is empty for messages posted by the app.
	SenderID string

	Type    MessageType
	Content string

	// EventID and RSVPStatus describe the change behind an rsvp_update or
	// event_update message.
	EventID    string
	RSVPStatus RSVPStatus

	// ReadBy lists the users who have read the message, in the order they did.
	ReadBy []string

	CreatedAt int64
}

// IsReadBy reports whether userID has read the message.
func (m *ChatMessage) IsReadBy(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
