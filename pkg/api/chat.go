package api

// Chat is a conversation the caller can read. LastMessage and UnreadCount
// are filled in by ListChats.
type Chat struct {
	ID           string       `json:"id"`
	Kind         string       `json:"kind"`
	Name         string       `json:"name"`
	GroupID      string       `json:"group_id,omitempty"`
	EventID      string       `json:"event_id,omitempty"`
	Participants []string     `json:"participants,omitempty"`
	CreatedBy    string       `json:"created_by"`
	CreatedAt    int64        `json:"created_at"`
	LastMessage  *ChatMessage `json:"last_message,omitempty"`
	UnreadCount  int          `json:"unread_count"`
}

// ChatMessage is one message. SenderID is empty for messages posted by the
// app, whose Type says what happened.
type ChatMessage struct {
	ID         string   `json:"id"`
	ChatID     string   `json:"chat_id"`
	SenderID   string   `json:"sender_id,omitempty"`
	SenderName string   `json:"sender_name"`
	Type       string   `json:"type"`
	Content    string   `json:"content"`
	EventID    string   `json:"event_id,omitempty"`
	RSVPStatus string   `json:"rsvp_status,omitempty"`
	ReadBy     []string `json:"read_by"`
	CreatedAt  int64    `json:"created_at"`
}

// CreateDirectChatRequest starts a chat between the caller and registered
// users. Name defaults to the participants' names.
type CreateDirectChatRequest struct {
	Name           string   `json:"name,omitempty"`
	ParticipantIDs []string `json:"participant_ids"`
}

type CreateDirectChatResponse struct {
	Chat *Chat `json:"chat"`
}

// GetGroupChatRequest returns the group's chat, creating it on first use.
type GetGroupChatRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupChatResponse struct {
	Chat *Chat `json:"chat"`
}

// GetEventChatRequest returns the event's chat, creating it on first use.
type GetEventChatRequest struct {
	EventID string `json:"event_id"`
}

type GetEventChatResponse struct {
	Chat *Chat `json:"chat"`
}

// ListChatsRequest lists the caller's chats, newest first.
type ListChatsRequest struct{}

// ListChatsResponse also counts unread messages across all chats.
type ListChatsResponse struct {
	Chats       []*Chat `json:"chats"`
	TotalUnread int     `json:"total_unread"`
}

type SendMessageRequest struct {
	ChatID  string `json:"chat_id"`
	Content string `json:"content"`
}

type SendMessageResponse struct {
	Message *ChatMessage `json:"message"`
}

// ListMessagesRequest returns messages oldest first. Query matches content
// or sender name, Date ("YYYY-MM-DD", UTC) keeps one day, and Limit keeps
// the newest messages.
type ListMessagesRequest struct {
	ChatID string `json:"chat_id"`
	Query  string `json:"query,omitempty"`
	Date   string `json:"date,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type ListMessagesResponse struct {
	Messages []*ChatMessage `json:"messages"`
}

// MarkReadRequest marks the chat read for the caller, or only messages of
// Type when it is set.
type MarkReadRequest struct {
	ChatID string `json:"chat_id"`
	Type   string `json:"type,omitempty"`
}

type MarkReadResponse struct {
	Marked int `json:"marked"`
}

// DeleteMessageRequest removes one of the caller's own messages.
type DeleteMessageRequest struct {
	ChatID    string `json:"chat_id"`
	MessageID string `json:"message_id"`
}

type DeleteMessageResponse struct{}
