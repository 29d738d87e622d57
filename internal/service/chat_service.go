package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/syncplan/internal/models"
	"github.com/mmynk/syncplan/internal/session"
	"github.com/mmynk/syncplan/internal/storage"
	"github.com/mmynk/syncplan/pkg/api"
)

// systemSenderName is shown as the author of messages the app posts.
const systemSenderName = "SyncPlan"

// ChatService implements the Connect ChatService.
type ChatService struct {
	store storage.Store
}

func NewChatService(store storage.Store) *ChatService {
	return &ChatService{store: store}
}

// canReadChat reports whether userID may read and post in chat. Group chats
// follow the group's members and event chats follow who can see the event.
func canReadChat(ctx context.Context, store storage.Store, chat *models.Chat, userID string) bool {
	switch chat.Kind {
	case models.ChatDirect:
		return chat.HasParticipant(userID)
	case models.ChatGroup:
		group, err := store.GetGroup(ctx, chat.GroupID)
		if err != nil {
			return false
		}
		_, ok := group.Member(userID)
		return ok
	case models.ChatEvent:
		event, err := store.GetEvent(ctx, chat.EventID)
		if err != nil {
			return false
		}
		return canViewEvent(ctx, store, event, userID)
	}
	return false
}

func (s *ChatService) loadChat(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	if chatID == "" {
		return nil, invalidArgument("chat_id required")
	}
	chat, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, storeError("GetChat", err, "chat_id", chatID)
	}
	if !canReadChat(ctx, s.store, chat, userID) {
		return nil, permissionDenied("you are not in this chat")
	}
	return chat, nil
}

// ensureGroupChat returns the group's chat, creating it on first use.
func ensureGroupChat(ctx context.Context, store storage.ChatStore, group *models.Group, createdBy string) (*models.Chat, error) {
	chat, err := store.GetChatByGroup(ctx, group.ID)
	if !errors.Is(err, storage.ErrNotFound) {
		return chat, err
	}
	chat = &models.Chat{Kind: models.ChatGroup, Name: group.Name, GroupID: group.ID, CreatedBy: createdBy}
	return openChat(ctx, store, chat, func() (*models.Chat, error) {
		return store.GetChatByGroup(ctx, group.ID)
	})
}

// ensureEventChat returns the event's chat, creating it on first use.
func ensureEventChat(ctx context.Context, store storage.ChatStore, event *models.Event) (*models.Chat, error) {
	chat, err := store.GetChatByEvent(ctx, event.ID)
	if !errors.Is(err, storage.ErrNotFound) {
		return chat, err
	}
	chat = &models.Chat{Kind: models.ChatEvent, Name: event.Title, EventID: event.ID, CreatedBy: event.CreatedBy}
	return openChat(ctx, store, chat, func() (*models.Chat, error) {
		return store.GetChatByEvent(ctx, event.ID)
	})
}

// openChat stores a new chat and announces it. When a concurrent call
// created the same group or event chat first, existing returns that one.
func openChat(ctx context.Context, store storage.ChatStore, chat *models.Chat, existing func() (*models.Chat, error)) (*models.Chat, error) {
	err := store.CreateChat(ctx, chat)
	if errors.Is(err, storage.ErrAlreadyExists) && existing != nil {
		return existing()
	}
	if err != nil {
		return nil, err
	}
	slog.Info("Chat created", "chat_id", chat.ID, "kind", chat.Kind)
	postSystemMessage(ctx, store, chat, &models.ChatMessage{
		Type:    models.MessageSystem,
		Content: fmt.Sprintf("Chat \"%s\" was created.", chat.Name),
	})
	return chat, nil
}

// postSystemMessage adds a message from the app. The change it reports has
// already been saved, so a failure is logged and not returned.
func postSystemMessage(ctx context.Context, store storage.ChatStore, chat *models.Chat, msg *models.ChatMessage) {
	msg.ChatID = chat.ID
	msg.SenderID = ""
	if err := store.AddMessage(ctx, msg); err != nil {
		slog.Error("Failed to post system message", "chat_id", chat.ID, "type", msg.Type, "error", err)
	}
}

// notifyGroup posts msg into the group's chat.
func notifyGroup(ctx context.Context, store storage.ChatStore, group *models.Group, actorID string, msg *models.ChatMessage) {
	chat, err := ensureGroupChat(ctx, store, group, actorID)
	if err != nil {
		slog.Error("Failed to open group chat", "group_id", group.ID, "error", err)
		return
	}
	postSystemMessage(ctx, store, chat, msg)
}

// notifyEvent posts msg into the event's chat.
func notifyEvent(ctx context.Context, store storage.ChatStore, event *models.Event, msg *models.ChatMessage) {
	chat, err := ensureEventChat(ctx, store, event)
	if err != nil {
		slog.Error("Failed to open event chat", "event_id", event.ID, "error", err)
		return
	}
	msg.EventID = event.ID
	postSystemMessage(ctx, store, chat, msg)
}

func rsvpMessage(name string, status models.RSVPStatus) string {
	switch status {
	case models.RSVPAttending:
		return name + " is going."
	case models.RSVPDeclined:
		return name + " can't make it."
	case models.RSVPMaybe:
		return name + " might come."
	default:
		return name + " hasn't decided yet."
	}
}

// eventChangeMessage describes the most notable difference between two
// versions of an event.
func eventChangeMessage(before, after *models.Event) string {
	switch {
	case !before.Start.Equal(after.Start) || !before.End.Equal(after.End):
		return fmt.Sprintf("The time of \"%s\" changed.", after.Title)
	case !sameLocation(before.Location, after.Location):
		return fmt.Sprintf("The location of \"%s\" changed.", after.Title)
	}
	return fmt.Sprintf("Event \"%s\" was updated.", after.Title)
}

func sameLocation(a, b *models.Location) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name == b.Name && a.Address == b.Address
}

// senderNames maps the senders of msgs to their display names.
func senderNames(ctx context.Context, users storage.UserStore, msgs []*models.ChatMessage) (map[string]string, error) {
	var ids []string
	for _, m := range msgs {
		if m.SenderID != "" {
			ids = append(ids, m.SenderID)
		}
	}
	names := make(map[string]string)
	if len(ids) == 0 {
		return names, nil
	}
	found, err := users.GetUsersByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}
	for id, u := range found {
		names[id] = u.DisplayName
	}
	return names, nil
}

func (s *ChatService) messagesToAPI(ctx context.Context, msgs []*models.ChatMessage) ([]*api.ChatMessage, error) {
	names, err := senderNames(ctx, s.store, msgs)
	if err != nil {
		return nil, storeError("GetUsersByIDs", err)
	}
	out := make([]*api.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = messageToAPI(m, names)
	}
	return out, nil
}

// CreateDirectChat starts a chat between the caller and other registered users.
func (s *ChatService) CreateDirectChat(ctx context.Context, req *connect.Request[api.CreateDirectChatRequest]) (*connect.Response[api.CreateDirectChatResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	ids := []string{userID}
	for _, id := range dedupe(req.Msg.ParticipantIDs) {
		if id != userID {
			ids = append(ids, id)
		}
	}
	if len(ids) < 2 {
		return nil, invalidArgument("a chat needs at least one other participant")
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, storeError("GetUsersByIDs", err)
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		u, ok := users[id]
		if !ok {
			return nil, invalidArgument("no user registered with id %q", id)
		}
		names = append(names, u.DisplayName)
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		name = strings.Join(names, ", ")
	}
	chat, err := openChat(ctx, s.store, &models.Chat{
		Kind:         models.ChatDirect,
		Name:         name,
		Participants: ids,
		CreatedBy:    userID,
	}, nil)
	if err != nil {
		return nil, storeError("CreateChat", err, "user_id", userID)
	}
	return connect.NewResponse(&api.CreateDirectChatResponse{Chat: chatToAPI(chat)}), nil
}

// GetGroupChat returns the chat of a group the caller belongs to.
func (s *ChatService) GetGroupChat(ctx context.Context, req *connect.Request[api.GetGroupChatRequest]) (*connect.Response[api.GetGroupChatResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	chat, err := ensureGroupChat(ctx, s.store, group, userID)
	if err != nil {
		return nil, storeError("GetChatByGroup", err, "group_id", group.ID)
	}
	return connect.NewResponse(&api.GetGroupChatResponse{Chat: chatToAPI(chat)}), nil
}

// GetEventChat returns the chat of an event the caller can see.
func (s *ChatService) GetEventChat(ctx context.Context, req *connect.Request[api.GetEventChatRequest]) (*connect.Response[api.GetEventChatResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.EventID == "" {
		return nil, invalidArgument("event_id required")
	}
	event, err := s.store.GetEvent(ctx, req.Msg.EventID)
	if err != nil {
		return nil, storeError("GetEvent", err, "event_id", req.Msg.EventID)
	}
	if !canViewEvent(ctx, s.store, event, userID) {
		return nil, permissionDenied("you are not invited to this event")
	}
	chat, err := ensureEventChat(ctx, s.store, event)
	if err != nil {
		return nil, storeError("GetChatByEvent", err, "event_id", event.ID)
	}
	return connect.NewResponse(&api.GetEventChatResponse{Chat: chatToAPI(chat)}), nil
}

// ListChats lists the caller's chats with their latest message and unread count.
func (s *ChatService) ListChats(ctx context.Context, req *connect.Request[api.ListChatsRequest]) (*connect.Response[api.ListChatsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	chats, err := s.store.ListChatsForUser(ctx, userID)
	if err != nil {
		return nil, storeError("ListChatsForUser", err, "user_id", userID)
	}

	resp := &api.ListChatsResponse{Chats: make([]*api.Chat, len(chats))}
	for i, chat := range chats {
		out := chatToAPI(chat)
		if out.UnreadCount, err = s.store.UnreadCount(ctx, chat.ID, userID); err != nil {
			return nil, storeError("UnreadCount", err, "chat_id", chat.ID)
		}
		last, err := s.store.ListMessages(ctx, chat.ID, storage.MessageFilter{Limit: 1})
		if err != nil {
			return nil, storeError("ListMessages", err, "chat_id", chat.ID)
		}
		if len(last) > 0 {
			msgs, err := s.messagesToAPI(ctx, last)
			if err != nil {
				return nil, err
			}
			out.LastMessage = msgs[0]
		}
		resp.TotalUnread += out.UnreadCount
		resp.Chats[i] = out
	}
	slog.Debug("ListChats successful", "user_id", userID, "count", len(chats), "unread", resp.TotalUnread)
	return connect.NewResponse(resp), nil
}

// SendMessage posts a text message as the caller.
func (s *ChatService) SendMessage(ctx context.Context, req *connect.Request[api.SendMessageRequest]) (*connect.Response[api.SendMessageResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(req.Msg.Content)
	if content == "" {
		return nil, invalidArgument("content required")
	}
	chat, err := s.loadChat(ctx, req.Msg.ChatID, userID)
	if err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{ChatID: chat.ID, SenderID: userID, Type: models.MessageText, Content: content}
	if err := s.store.AddMessage(ctx, msg); err != nil {
		return nil, storeError("AddMessage", err, "chat_id", chat.ID)
	}
	slog.Debug("Message sent", "chat_id", chat.ID, "message_id", msg.ID)

	out, err := s.messagesToAPI(ctx, []*models.ChatMessage{msg})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.SendMessageResponse{Message: out[0]}), nil
}

// ListMessages returns a chat's messages, oldest first.
func (s *ChatService) ListMessages(ctx context.Context, req *connect.Request[api.ListMessagesRequest]) (*connect.Response[api.ListMessagesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Limit < 0 {
		return nil, invalidArgument("limit cannot be negative")
	}
	filter := storage.MessageFilter{Query: strings.TrimSpace(req.Msg.Query), Limit: req.Msg.Limit}
	if req.Msg.Date != "" {
		day, err := models.ParseDate(req.Msg.Date)
		if err != nil {
			return nil, invalidArgument("%v", err)
		}
		filter.Day = &day
	}
	chat, err := s.loadChat(ctx, req.Msg.ChatID, userID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.store.ListMessages(ctx, chat.ID, filter)
	if err != nil {
		return nil, storeError("ListMessages", err, "chat_id", chat.ID)
	}
	out, err := s.messagesToAPI(ctx, msgs)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.ListMessagesResponse{Messages: out}), nil
}

// MarkRead marks a chat's messages as read by the caller.
func (s *ChatService) MarkRead(ctx context.Context, req *connect.Request[api.MarkReadRequest]) (*connect.Response[api.MarkReadResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var msgType models.MessageType
	if req.Msg.Type != "" {
		if msgType, err = models.ParseMessageType(req.Msg.Type); err != nil {
			return nil, invalidArgument("%v", err)
		}
	}
	chat, err := s.loadChat(ctx, req.Msg.ChatID, userID)
	if err != nil {
		return nil, err
	}

	n, err := s.store.MarkRead(ctx, chat.ID, userID, msgType)
	if err != nil {
		return nil, storeError("MarkRead", err, "chat_id", chat.ID)
	}
	slog.Debug("Messages marked read", "chat_id", chat.ID, "user_id", userID, "type", msgType, "count", n)
	return connect.NewResponse(&api.MarkReadResponse{Marked: n}), nil
}

// DeleteMessage removes one of the caller's own messages.
func (s *ChatService) DeleteMessage(ctx context.Context, req *connect.Request[api.DeleteMessageRequest]) (*connect.Response[api.DeleteMessageResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	chat, err := s.loadChat(ctx, req.Msg.ChatID, userID)
	if err != nil {
		return nil, err
	}
	msg, err := s.store.GetMessage(ctx, req.Msg.MessageID)
	if err != nil {
		return nil, storeError("GetMessage", err, "message_id", req.Msg.MessageID)
	}
	if msg.ChatID != chat.ID {
		return nil, connect.NewError(connect.CodeNotFound, storage.ErrNotFound)
	}
	if msg.SenderID != userID {
		return nil, permissionDenied("you can only delete your own messages")
	}

	if err := s.store.DeleteMessage(ctx, msg.ID); err != nil {
		return nil, storeError("DeleteMessage", err, "message_id", msg.ID)
	}
	slog.Info("Message deleted", "chat_id", chat.ID, "message_id", msg.ID)
	return connect.NewResponse(&api.DeleteMessageResponse{}), nil
}

// billSplitMessage announces a saved bill with its summary.
func billSplitMessage(bill *models.Bill) *models.ChatMessage {
	return &models.ChatMessage{
		Type:    models.MessageBillSplit,
		Content: fmt.Sprintf("Bill \"%s\" was split:\n%s", bill.Title, session.BillFromModel(bill).RenderSummary()),
	}
}
