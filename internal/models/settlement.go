package models

// Settlement records money paid between two group members outside any bill.
// It reduces the payer's debt in group balances.
type Settlement struct {
	ID      string
	GroupID string

	// FromUserID paid ToUserID.
	FromUserID string
	ToUserID   string

	// Amount is always positive.
	Amount float64

	// CreatedAt is a Unix timestamp.
	CreatedAt int64

	// CreatedBy is the member who recorded it, not necessarily a party to it.
	CreatedBy string

	Note string
}

// Involves reports whether userID paid or received the settlement.
func (s *Settlement) Involves(userID string) bool {
	return s.FromUserID == userID || s.ToUserID == userID
}
