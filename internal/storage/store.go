// Package storage defines the persistence contracts used by the services.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/syncplan/internal/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a unique key is already taken,
	// e.g. a registered email or an existing group member.
	ErrAlreadyExists = errors.New("already exists")
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs omits unknown IDs from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// BillStore persists split sessions.
type BillStore interface {
	// CreateBill assigns ID, CreatedAt and a title when they are empty.
	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, billID string) (*models.Bill, error)
	UpdateBill(ctx context.Context, bill *models.Bill) error
	DeleteBill(ctx context.Context, billID string) error
	ListBillsByGroup(ctx context.Context, groupID string) ([]*models.Bill, error)
}

type GroupStore interface {
	// CreateGroup stores the group and its initial members.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, groupID string) error
	ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error)

	AddGroupMember(ctx context.Context, groupID string, member models.GroupMember) error
	RemoveGroupMember(ctx context.Context, groupID, userID string) error
	UpdateMemberRole(ctx context.Context, groupID, userID string, role models.MemberRole) error
}

// EventFilter narrows ListEvents. Zero fields match everything.
type EventFilter struct {
	GroupID string

	// AttendeeID matches events the user created or was invited to.
	AttendeeID string

	// From and To bound the event start, inclusive and exclusive.
	From *models.Date
	To   *models.Date
}

type EventStore interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, eventID string) error
	ListEvents(ctx context.Context, filter EventFilter) ([]*models.Event, error)

	// SaveRSVP inserts or replaces one attendee's response.
	SaveRSVP(ctx context.Context, eventID string, resp models.RSVPResponse) error
}

type AvailabilityStore interface {
	// UpsertAvailability replaces any interval with the same user, date,
	// start and end.
	UpsertAvailability(ctx context.Context, interval *models.AvailabilityInterval) error

	// ListAvailability returns intervals of the given users with from <= date < to.
	ListAvailability(ctx context.Context, userIDs []string, from, to models.Date) ([]models.AvailabilityInterval, error)
}

type SettlementStore interface {
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)
	DeleteSettlement(ctx context.Context, settlementID string) error
}

// MessageFilter narrows ListMessages. Zero fields match everything.
type MessageFilter struct {
	// Query matches message content or sender name, ignoring case.
	Query string

	// Day keeps messages posted on that date.
	Day *models.Date

	// Limit keeps only the newest messages when positive.
	Limit int
}

type ChatStore interface {
	CreateChat(ctx context.Context, chat *models.Chat) error
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)

	// GetChatByGroup and GetChatByEvent return ErrNotFound until the chat
	// has been created.
	GetChatByGroup(ctx context.Context, groupID string) (*models.Chat, error)
	GetChatByEvent(ctx context.Context, eventID string) (*models.Chat, error)

	// ListChatsForUser returns, newest first, every chat the user can read:
	// direct chats listing them, chats of their groups and chats of events
	// they can view.
	ListChatsForUser(ctx context.Context, userID string) ([]*models.Chat, error)

	// AddMessage stores a message. A message with a sender is read by them.
	AddMessage(ctx context.Context, msg *models.ChatMessage) error
	GetMessage(ctx context.Context, messageID string) (*models.ChatMessage, error)
	DeleteMessage(ctx context.Context, messageID string) error

	// ListMessages returns the chat's messages, oldest first.
	ListMessages(ctx context.Context, chatID string, filter MessageFilter) ([]*models.ChatMessage, error)

	// MarkRead marks the chat's messages as read by userID, only those of
	// msgType when it is set, and returns how many were newly marked.
	MarkRead(ctx context.Context, chatID, userID string, msgType models.MessageType) (int, error)

	// UnreadCount counts messages from others that userID has not read.
	UnreadCount(ctx context.Context, chatID, userID string) (int, error)
}

type ActivityStore interface {
	AddGroupActivity(ctx context.Context, activity *models.GroupActivity) error

	// ListGroupActivity returns the newest entries first, at most limit when
	// limit is positive.
	ListGroupActivity(ctx context.Context, groupID string, limit int) ([]*models.GroupActivity, error)
}

// Store is everything the services need from a storage backend.
type Store interface {
	UserStore
	BillStore
	GroupStore
	EventStore
	AvailabilityStore
	SettlementStore
	ChatStore
	ActivityStore

	// Close releases any resources held by the store.
	Close() error
}
