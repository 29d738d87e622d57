package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/syncplan/internal/models"
)

// AddGroupActivity appends an entry to a group's activity log.
func (s *SQLiteStore) AddGroupActivity(ctx context.Context, activity *models.GroupActivity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt == 0 {
		activity.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO group_activity (id, group_id, actor_id, action, details, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		activity.ID, activity.GroupID, activity.ActorID, string(activity.Action), activity.Details, activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group activity: %w", err)
	}
	return nil
}

// ListGroupActivity returns a group's log, newest first, with actor names.
func (s *SQLiteStore) ListGroupActivity(ctx context.Context, groupID string, limit int) ([]*models.GroupActivity, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.group_id, a.actor_id, COALESCE(u.display_name, ''), a.action, a.details, a.created_at
		 FROM group_activity a LEFT JOIN users u ON u.id = a.actor_id
		 WHERE a.group_id = ?
		 ORDER BY a.created_at DESC, a.rowid DESC
		 LIMIT ?`,
		groupID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list group activity: %w", err)
	}
	defer rows.Close()

	var out []*models.GroupActivity
	for rows.Next() {
		a := &models.GroupActivity{}
		var action string
		if err := rows.Scan(&a.ID, &a.GroupID, &a.ActorID, &a.ActorName, &action, &a.Details, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group activity: %w", err)
		}
		a.Action = models.ActivityAction(action)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group activity: %w", err)
	}
	return out, nil
}
