package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/syncplan/internal/models"
	"github.com/mmynk/syncplan/internal/storage"
)

const chatColumns = "c.id, c.kind, c.name, COALESCE(c.group_id, ''), COALESCE(c.event_id, ''), c.created_by, c.created_at"

const messageColumns = "m.id, m.chat_id, m.sender_id, m.type, m.content, m.event_id, m.rsvp_status, m.created_at"

// CreateChat persists a chat and, for direct chats, its participants.
func (s *SQLiteStore) CreateChat(ctx context.Context, chat *models.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	if chat.CreatedAt == 0 {
		chat.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO chats (id, kind, name, group_id, event_id, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		chat.ID, string(chat.Kind), chat.Name, nullString(chat.GroupID), nullString(chat.EventID), chat.CreatedBy, chat.CreatedAt,
	)
	if isConstraintViolation(err) {
		return fmt.Errorf("chat %s: %w", chat.ID, storage.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}

	for i, userID := range chat.Participants {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO chat_participants (chat_id, user_id, position) VALUES (?, ?, ?)",
			chat.ID, userID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chat participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	return s.getChatWhere(ctx, "c.id = ?", chatID, "chat", chatID)
}

func (s *SQLiteStore) GetChatByGroup(ctx context.Context, groupID string) (*models.Chat, error) {
	return s.getChatWhere(ctx, "c.group_id = ?", groupID, "chat of group", groupID)
}

func (s *SQLiteStore) GetChatByEvent(ctx context.Context, eventID string) (*models.Chat, error) {
	return s.getChatWhere(ctx, "c.event_id = ?", eventID, "chat of event", eventID)
}

func (s *SQLiteStore) getChatWhere(ctx context.Context, where string, arg interface{}, kind, id string) (*models.Chat, error) {
	chat, err := scanChat(s.db.QueryRowContext(ctx,
		"SELECT "+chatColumns+" FROM chats c WHERE "+where,
		arg,
	))
	if err == sql.ErrNoRows {
		return nil, notFound(kind, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	if err := s.loadParticipants(ctx, []*models.Chat{chat}); err != nil {
		return nil, err
	}
	return chat, nil
}

// ListChatsForUser returns every chat the user can read, newest first.
func (s *SQLiteStore) ListChatsForUser(ctx context.Context, userID string) ([]*models.Chat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chatColumns+` FROM chats c
		 WHERE (c.kind = 'direct' AND EXISTS (
		         SELECT 1 FROM chat_participants p WHERE p.chat_id = c.id AND p.user_id = ?))
		    OR (c.kind = 'group' AND EXISTS (
		         SELECT 1 FROM group_members gm WHERE gm.group_id = c.group_id AND gm.user_id = ?))
		    OR (c.kind = 'event' AND EXISTS (
		         SELECT 1 FROM events e WHERE e.id = c.event_id AND (e.created_by = ?
		           OR EXISTS (SELECT 1 FROM event_attendees a WHERE a.event_id = e.id AND a.user_id = ?)
		           OR EXISTS (SELECT 1 FROM group_members em WHERE em.group_id = e.group_id AND em.user_id = ?))))
		 ORDER BY c.created_at DESC, c.id`,
		userID, userID, userID, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var chats []*models.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chats: %w", err)
	}
	rows.Close()

	if err := s.loadParticipants(ctx, chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func scanChat(row rowScanner) (*models.Chat, error) {
	chat := &models.Chat{}
	var kind string
	err := row.Scan(&chat.ID, &kind, &chat.Name, &chat.GroupID, &chat.EventID, &chat.CreatedBy, &chat.CreatedAt)
	if err != nil {
		return nil, err
	}
	chat.Kind = models.ChatKind(kind)
	return chat, nil
}

// loadParticipants fills in the participants of direct chats.
func (s *SQLiteStore) loadParticipants(ctx context.Context, chats []*models.Chat) error {
	byID := make(map[string]*models.Chat)
	var ids []string
	for _, c := range chats {
		if c.Kind == models.ChatDirect {
			byID[c.ID] = c
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT chat_id, user_id FROM chat_participants WHERE chat_id IN ("+placeholders(len(ids))+") ORDER BY chat_id, position",
		stringArgs(ids)...,
	)
	if err != nil {
		return fmt.Errorf("failed to get chat participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var chatID, userID string
		if err := rows.Scan(&chatID, &userID); err != nil {
			return fmt.Errorf("failed to scan chat participant: %w", err)
		}
		byID[chatID].Participants = append(byID[chatID].Participants, userID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate chat participants: %w", err)
	}
	return nil
}

// AddMessage stores a message and marks it read by its sender.
func (s *SQLiteStore) AddMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt == 0 {
		msg.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO chat_messages (id, chat_id, sender_id, type, content, event_id, rsvp_status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		msg.ID, msg.ChatID, msg.SenderID, string(msg.Type), msg.Content, msg.EventID, string(msg.RSVPStatus), msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	msg.ReadBy = nil
	if msg.SenderID != "" {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO message_reads (message_id, user_id, read_at) VALUES (?, ?, ?)",
			msg.ID, msg.SenderID, msg.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to mark message read: %w", err)
		}
		msg.ReadBy = []string{msg.SenderID}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetMessage(ctx context.Context, messageID string) (*models.ChatMessage, error) {
	msg, err := scanMessage(s.db.QueryRowContext(ctx,
		"SELECT "+messageColumns+" FROM chat_messages m WHERE m.id = ?",
		messageID,
	))
	if err == sql.ErrNoRows {
		return nil, notFound("message", messageID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	if err := s.loadReads(ctx, []*models.ChatMessage{msg}); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *SQLiteStore) DeleteMessage(ctx context.Context, messageID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM chat_messages WHERE id = ?", messageID)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return checkAffected(res, "message", messageID)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListMessages returns the chat's messages matching filter, oldest first.
func (s *SQLiteStore) ListMessages(ctx context.Context, chatID string, filter storage.MessageFilter) ([]*models.ChatMessage, error) {
	query := "SELECT " + messageColumns + " FROM chat_messages m LEFT JOIN users u ON u.id = m.sender_id WHERE m.chat_id = ?"
	args := []interface{}{chatID}
	if filter.Query != "" {
		pattern := "%" + likeEscaper.Replace(filter.Query) + "%"
		query += ` AND (m.content LIKE ? ESCAPE '\' OR COALESCE(u.display_name, '') LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}
	if filter.Day != nil {
		query += " AND m.created_at >= ? AND m.created_at < ?"
		args = append(args, filter.Day.Unix(), filter.Day.AddDays(1).Unix())
	}
	query += " ORDER BY m.created_at, m.rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*models.ChatMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	rows.Close()

	if filter.Limit > 0 && len(msgs) > filter.Limit {
		msgs = msgs[len(msgs)-filter.Limit:]
	}
	if err := s.loadReads(ctx, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func scanMessage(row rowScanner) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{}
	var msgType, status string
	err := row.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msgType, &msg.Content, &msg.EventID, &status, &msg.CreatedAt)
	if err != nil {
		return nil, err
	}
	msg.Type = models.MessageType(msgType)
	msg.RSVPStatus = models.RSVPStatus(status)
	return msg, nil
}

// loadReads fills in ReadBy, earliest reader first.
func (s *SQLiteStore) loadReads(ctx context.Context, msgs []*models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	byID := make(map[string]*models.ChatMessage, len(msgs))
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		m.ReadBy = nil
		byID[m.ID] = m
		ids[i] = m.ID
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT message_id, user_id FROM message_reads WHERE message_id IN ("+placeholders(len(ids))+") ORDER BY read_at, rowid",
		stringArgs(ids)...,
	)
	if err != nil {
		return fmt.Errorf("failed to get message reads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var messageID, userID string
		if err := rows.Scan(&messageID, &userID); err != nil {
			return fmt.Errorf("failed to scan message read: %w", err)
		}
		byID[messageID].ReadBy = append(byID[messageID].ReadBy, userID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate message reads: %w", err)
	}
	return nil
}

// MarkRead marks unread messages as read by userID and returns how many changed.
func (s *SQLiteStore) MarkRead(ctx context.Context, chatID, userID string, msgType models.MessageType) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO message_reads (message_id, user_id, read_at)
		 SELECT id, ?, ? FROM chat_messages WHERE chat_id = ? AND (? = '' OR type = ?)`,
		userID, time.Now().Unix(), chatID, string(msgType), string(msgType),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}

func (s *SQLiteStore) UnreadCount(ctx context.Context, chatID, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_messages m
		 WHERE m.chat_id = ? AND m.sender_id != ?
		   AND NOT EXISTS (SELECT 1 FROM message_reads r WHERE r.message_id = m.id AND r.user_id = ?)`,
		chatID, userID, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return n, nil
}
