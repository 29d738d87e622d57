package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/syncplan/internal/models"
	"github.com/mmynk/syncplan/internal/storage"
)

const eventColumns = `e.id, e.group_id, e.title, e.description, e.start_at, e.end_at, e.created_by,
	e.location_name, e.location_address, e.latitude, e.longitude, e.rsvp_deadline, e.max_attendees, e.created_at`

// CreateEvent persists an event with its attendees and RSVPs.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	name, address, lat, lng := locationArgs(event.Location)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (id, group_id, title, description, start_at, end_at, created_by,
		 location_name, location_address, latitude, longitude, rsvp_deadline, max_attendees, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, nullString(event.GroupID), event.Title, event.Description,
		event.Start.Unix(), event.End.Unix(), event.CreatedBy,
		name, address, lat, lng, deadlineArg(event.RSVPDeadline), event.MaxAttendees, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	if err := insertEventChildren(ctx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertEventChildren(ctx context.Context, tx *sql.Tx, event *models.Event) error {
	for i, userID := range event.Attendees {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO event_attendees (event_id, user_id, position) VALUES (?, ?, ?)",
			event.ID, userID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert attendee: %w", err)
		}
	}

	userIDs := make([]string, 0, len(event.RSVPs))
	for userID := range event.RSVPs {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)
	for _, userID := range userIDs {
		if err := saveRSVP(ctx, tx, event.ID, event.RSVPs[userID]); err != nil {
			return err
		}
	}
	return nil
}

func locationArgs(loc *models.Location) (name, address, lat, lng interface{}) {
	if loc == nil {
		return nil, nil, nil, nil
	}
	name, address = loc.Name, loc.Address
	if loc.Latitude != nil {
		lat = *loc.Latitude
	}
	if loc.Longitude != nil {
		lng = *loc.Longitude
	}
	return name, address, lat, lng
}

func deadlineArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}

// GetEvent retrieves an event with attendees and RSVPs.
func (s *SQLiteStore) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := scanEvent(s.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events e WHERE e.id = ?",
		eventID,
	))
	if err == sql.ErrNoRows {
		return nil, notFound("event", eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if err := s.loadEventChildren(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func scanEvent(row rowScanner) (*models.Event, error) {
	event := &models.Event{}
	var (
		groupID          sql.NullString
		startAt, endAt   int64
		locName, locAddr sql.NullString
		lat, lng         sql.NullFloat64
		deadline         sql.NullInt64
	)
	err := row.Scan(&event.ID, &groupID, &event.Title, &event.Description, &startAt, &endAt, &event.CreatedBy,
		&locName, &locAddr, &lat, &lng, &deadline, &event.MaxAttendees, &event.CreatedAt)
	if err != nil {
		return nil, err
	}

	event.GroupID = groupID.String
	event.Start = time.Unix(startAt, 0).UTC()
	event.End = time.Unix(endAt, 0).UTC()
	if locName.Valid || locAddr.Valid || lat.Valid || lng.Valid {
		loc := &models.Location{Name: locName.String, Address: locAddr.String}
		if lat.Valid {
			loc.Latitude = &lat.Float64
		}
		if lng.Valid {
			loc.Longitude = &lng.Float64
		}
		event.Location = loc
	}
	if deadline.Valid {
		t := time.Unix(deadline.Int64, 0).UTC()
		event.RSVPDeadline = &t
	}
	return event, nil
}

func (s *SQLiteStore) loadEventChildren(ctx context.Context, event *models.Event) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM event_attendees WHERE event_id = ? ORDER BY position",
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get attendees: %w", err)
	}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan attendee: %w", err)
		}
		event.Attendees = append(event.Attendees, userID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate attendees: %w", err)
	}

	rsvpRows, err := s.db.QueryContext(ctx,
		"SELECT user_id, status, note, guest_count, responded_at FROM event_rsvps WHERE event_id = ?",
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get rsvps: %w", err)
	}
	defer rsvpRows.Close()

	event.RSVPs = make(map[string]models.RSVPResponse)
	for rsvpRows.Next() {
		var r models.RSVPResponse
		var status string
		if err := rsvpRows.Scan(&r.UserID, &status, &r.Note, &r.GuestCount, &r.RespondedAt); err != nil {
			return fmt.Errorf("failed to scan rsvp: %w", err)
		}
		r.Status = models.RSVPStatus(status)
		event.RSVPs[r.UserID] = r
	}
	if err := rsvpRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate rsvps: %w", err)
	}
	return nil
}

// UpdateEvent replaces an event's fields, attendees and RSVPs.
func (s *SQLiteStore) UpdateEvent(ctx context.Context, event *models.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	name, address, lat, lng := locationArgs(event.Location)
	res, err := tx.ExecContext(ctx,
		`UPDATE events SET group_id = ?, title = ?, description = ?, start_at = ?, end_at = ?,
		 location_name = ?, location_address = ?, latitude = ?, longitude = ?, rsvp_deadline = ?, max_attendees = ?
		 WHERE id = ?`,
		nullString(event.GroupID), event.Title, event.Description, event.Start.Unix(), event.End.Unix(),
		name, address, lat, lng, deadlineArg(event.RSVPDeadline), event.MaxAttendees, event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if err := checkAffected(res, "event", event.ID); err != nil {
		return err
	}

	for _, stmt := range []string{
		"DELETE FROM event_attendees WHERE event_id = ?",
		"DELETE FROM event_rsvps WHERE event_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, event.ID); err != nil {
			return fmt.Errorf("failed to clear event children: %w", err)
		}
	}

	if err := insertEventChildren(ctx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteEvent(ctx context.Context, eventID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", eventID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return checkAffected(res, "event", eventID)
}

// ListEvents returns matching events ordered by start time.
func (s *SQLiteStore) ListEvents(ctx context.Context, filter storage.EventFilter) ([]*models.Event, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.GroupID != "" {
		where = append(where, "e.group_id = ?")
		args = append(args, filter.GroupID)
	}
	if filter.AttendeeID != "" {
		where = append(where,
			"(e.created_by = ? OR EXISTS (SELECT 1 FROM event_attendees a WHERE a.event_id = e.id AND a.user_id = ?))")
		args = append(args, filter.AttendeeID, filter.AttendeeID)
	}
	if filter.From != nil {
		where = append(where, "e.start_at >= ?")
		args = append(args, filter.From.Unix())
	}
	if filter.To != nil {
		where = append(where, "e.start_at < ?")
		args = append(args, filter.To.Unix())
	}

	query := "SELECT " + eventColumns + " FROM events e"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.start_at, e.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	for _, event := range events {
		if err := s.loadEventChildren(ctx, event); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// SaveRSVP inserts or replaces one attendee's response.
func (s *SQLiteStore) SaveRSVP(ctx context.Context, eventID string, resp models.RSVPResponse) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM events WHERE id = ?", eventID).Scan(&exists)
	if err == sql.ErrNoRows {
		return notFound("event", eventID)
	}
	if err != nil {
		return fmt.Errorf("failed to check event existence: %w", err)
	}
	return saveRSVP(ctx, s.db, eventID, resp)
}

func saveRSVP(ctx context.Context, db execer, eventID string, resp models.RSVPResponse) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO event_rsvps (event_id, user_id, status, note, guest_count, responded_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (event_id, user_id) DO UPDATE SET
		   status = excluded.status,
		   note = excluded.note,
		   guest_count = excluded.guest_count,
		   responded_at = excluded.responded_at`,
		eventID, resp.UserID, string(resp.Status), resp.Note, resp.GuestCount, resp.RespondedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save rsvp: %w", err)
	}
	return nil
}
