package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/syncplan/internal/models"
)

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.Title == "" {
		bill.Title = generateTitle(participantNames(bill.Participants))
	}
	if bill.Method == "" {
		bill.Method = models.SplitEqual
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, title, group_id, event_id, payer_id, method, tip_percent, tax_percent, currency, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Title, nullString(bill.GroupID), nullString(bill.EventID), bill.PayerID,
		string(bill.Method), bill.TipPercent, bill.TaxPercent, bill.Currency, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	if err := insertBillChildren(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertBillChildren writes participants, items, assignments and percentages.
func insertBillChildren(ctx context.Context, tx *sql.Tx, bill *models.Bill) error {
	for i, p := range bill.Participants {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO bill_participants (bill_id, participant_id, name, contact, position) VALUES (?, ?, ?, ?, ?)",
			bill.ID, p.ID, p.Name, p.Contact, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO items (bill_id, id, name, price, position) VALUES (?, ?, ?, ?, ?)",
			bill.ID, item.ID, item.Name, item.Price, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for j, participantID := range item.ParticipantIDs {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_assignments (bill_id, item_id, participant_id, position) VALUES (?, ?, ?, ?)",
				bill.ID, item.ID, participantID, j,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}

	for _, participantID := range sortedKeys(bill.Percentages) {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO bill_percentages (bill_id, participant_id, percent) VALUES (?, ?, ?)",
			bill.ID, participantID, bill.Percentages[participantID],
		)
		if err != nil {
			return fmt.Errorf("failed to insert percentage: %w", err)
		}
	}
	return nil
}

// GetBill retrieves a bill by ID, including all items and participants.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill, err := scanBill(s.db.QueryRowContext(ctx,
		`SELECT id, title, group_id, event_id, payer_id, method, tip_percent, tax_percent, currency, created_at
		 FROM bills WHERE id = ?`,
		billID,
	))
	if err == sql.ErrNoRows {
		return nil, notFound("bill", billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	if err := s.loadBillChildren(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBill(row rowScanner) (*models.Bill, error) {
	bill := &models.Bill{}
	var groupID, eventID sql.NullString
	var method string
	err := row.Scan(&bill.ID, &bill.Title, &groupID, &eventID, &bill.PayerID, &method,
		&bill.TipPercent, &bill.TaxPercent, &bill.Currency, &bill.CreatedAt)
	if err != nil {
		return nil, err
	}
	bill.GroupID = groupID.String
	bill.EventID = eventID.String
	bill.Method = models.SplitMethod(method)
	return bill, nil
}

func (s *SQLiteStore) loadBillChildren(ctx context.Context, bill *models.Bill) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT participant_id, name, contact FROM bill_participants WHERE bill_id = ? ORDER BY position",
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Contact); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		bill.Participants = append(bill.Participants, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}

	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, name, price FROM items WHERE bill_id = ? ORDER BY position",
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get items: %w", err)
	}
	for itemRows.Next() {
		var item models.BillItem
		if err := itemRows.Scan(&item.ID, &item.Name, &item.Price); err != nil {
			itemRows.Close()
			return fmt.Errorf("failed to scan item: %w", err)
		}
		bill.Items = append(bill.Items, item)
	}
	itemRows.Close()
	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate items: %w", err)
	}

	for i := range bill.Items {
		item := &bill.Items[i]
		assignRows, err := s.db.QueryContext(ctx,
			"SELECT participant_id FROM item_assignments WHERE bill_id = ? AND item_id = ? ORDER BY position",
			bill.ID, item.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to get item assignments: %w", err)
		}
		for assignRows.Next() {
			var participantID string
			if err := assignRows.Scan(&participantID); err != nil {
				assignRows.Close()
				return fmt.Errorf("failed to scan assignment: %w", err)
			}
			item.ParticipantIDs = append(item.ParticipantIDs, participantID)
		}
		assignRows.Close()
		if err := assignRows.Err(); err != nil {
			return fmt.Errorf("failed to iterate assignments: %w", err)
		}
	}

	pctRows, err := s.db.QueryContext(ctx,
		"SELECT participant_id, percent FROM bill_percentages WHERE bill_id = ?",
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get percentages: %w", err)
	}
	defer pctRows.Close()

	bill.Percentages = make(map[string]float64)
	for pctRows.Next() {
		var participantID string
		var pct float64
		if err := pctRows.Scan(&participantID, &pct); err != nil {
			return fmt.Errorf("failed to scan percentage: %w", err)
		}
		bill.Percentages[participantID] = pct
	}
	if err := pctRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate percentages: %w", err)
	}
	return nil
}

// UpdateBill replaces a bill's settings and children. ID and CreatedAt are kept.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	if bill.Title == "" {
		bill.Title = generateTitle(participantNames(bill.Participants))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE bills SET title = ?, group_id = ?, event_id = ?, payer_id = ?, method = ?,
		 tip_percent = ?, tax_percent = ?, currency = ? WHERE id = ?`,
		bill.Title, nullString(bill.GroupID), nullString(bill.EventID), bill.PayerID, string(bill.Method),
		bill.TipPercent, bill.TaxPercent, bill.Currency, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if err := checkAffected(res, "bill", bill.ID); err != nil {
		return err
	}

	// Items cascade to their assignments.
	for _, stmt := range []string{
		"DELETE FROM items WHERE bill_id = ?",
		"DELETE FROM bill_participants WHERE bill_id = ?",
		"DELETE FROM bill_percentages WHERE bill_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, bill.ID); err != nil {
			return fmt.Errorf("failed to clear bill children: %w", err)
		}
	}

	if err := insertBillChildren(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteBill removes a bill and, through cascades, everything attached to it.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return checkAffected(res, "bill", billID)
}

// ListBillsByGroup returns the group's bills, newest first.
func (s *SQLiteStore) ListBillsByGroup(ctx context.Context, groupID string) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, group_id, event_id, payer_id, method, tip_percent, tax_percent, currency, created_at
		 FROM bills WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills by group: %w", err)
	}

	var bills []*models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	for _, bill := range bills {
		if err := s.loadBillChildren(ctx, bill); err != nil {
			return nil, err
		}
	}
	return bills, nil
}

func participantNames(participants []models.Participant) []string {
	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = p.Name
	}
	return names
}

// sortedKeys returns the keys of m in order.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
