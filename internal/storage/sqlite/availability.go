package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/syncplan/internal/models"
)

// UpsertAvailability stores an interval, replacing the one with the same
// user, date, start and end. The stored ID is written back to interval.
func (s *SQLiteStore) UpsertAvailability(ctx context.Context, interval *models.AvailabilityInterval) error {
	if interval.ID == "" {
		interval.ID = uuid.New().String()
	}
	if interval.CreatedAt == 0 {
		interval.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO availability (id, user_id, date, start_minute, end_minute, available, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, date, start_minute, end_minute) DO UPDATE SET
		   id = excluded.id,
		   available = excluded.available,
		   created_at = excluded.created_at`,
		interval.ID, interval.UserID, interval.Date.String(), int(interval.Start), int(interval.End),
		interval.Available, interval.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert availability: %w", err)
	}
	return nil
}

// ListAvailability returns the users' intervals with from <= date < to,
// ordered by date, start and user.
func (s *SQLiteStore) ListAvailability(ctx context.Context, userIDs []string, from, to models.Date) ([]models.AvailabilityInterval, error) {
	intervals := []models.AvailabilityInterval{}
	if len(userIDs) == 0 {
		return intervals, nil
	}

	// YYYY-MM-DD strings compare in date order.
	args := append(stringArgs(userIDs), from.String(), to.String())
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, date, start_minute, end_minute, available, created_at
		 FROM availability
		 WHERE user_id IN (`+placeholders(len(userIDs))+`) AND date >= ? AND date < ?
		 ORDER BY date, start_minute, user_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			iv         models.AvailabilityInterval
			date       string
			start, end int
		)
		if err := rows.Scan(&iv.ID, &iv.UserID, &date, &start, &end, &iv.Available, &iv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}
		iv.Date, err = models.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse availability date: %w", err)
		}
		iv.Start = models.TimeOfDay(start)
		iv.End = models.TimeOfDay(end)
		intervals = append(intervals, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate availability: %w", err)
	}
	return intervals, nil
}
