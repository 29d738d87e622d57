package models

import "fmt"

// SplitMethod selects how a bill is allocated among participants.
type SplitMethod string

const (
	// SplitEqual divides subtotal, tip and tax evenly.
	SplitEqual SplitMethod = "equal"
	// SplitByItems divides each item among the participants assigned to it.
	SplitByItems SplitMethod = "by_items"
	// SplitPercentage gives each participant an explicit share of the total.
	SplitPercentage SplitMethod = "percentage"
	// SplitCustom is currently computed exactly like SplitByItems.
	SplitCustom SplitMethod = "custom"
)

// ParseSplitMethod converts a wire value into a SplitMethod.
// An empty value means SplitEqual.
func ParseSplitMethod(s string) (SplitMethod, error) {
	switch m := SplitMethod(s); m {
	case "":
		return SplitEqual, nil
	case SplitEqual, SplitByItems, SplitPercentage, SplitCustom:
		return m, nil
	default:
		return "", fmt.Errorf("unknown split method %q", s)
	}
}

// Participant is a person taking part in a split session.
type Participant struct {
	ID string

	// Name is shown in results and summaries.
	Name string

	// Contact is an optional email or phone number.
	Contact string
}

// BillItem represents a single line item on a bill.
// Items can be shared among multiple participants.
type BillItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Name is the description of the item (e.g., "Pizza", "Beer").
	Name string

	// Price is the pre-tip, pre-tax price of this item. Never negative.
	Price float64

	// ParticipantIDs lists who shares this item. When several are assigned,
	// the item is split equally among them. May be empty.
	ParticipantIDs []string
}

// Clone returns a copy that shares no memory with i.
func (i BillItem) Clone() BillItem {
	i.ParticipantIDs = append([]string(nil), i.ParticipantIDs...)
	return i
}

// ItemShare is one line of a participant's itemized breakdown.
type ItemShare struct {
	Name   string
	Amount float64
}

// SplitResult is one participant's calculated share of a bill.
// Every figure is rounded to cents independently.
type SplitResult struct {
	ParticipantID   string
	ParticipantName string

	// Total is what this participant owes, tip and tax included.
	Total float64

	// Items is the itemized breakdown of the pre-tip, pre-tax share.
	Items []ItemShare

	// Tip is this participant's share of the tip.
	Tip float64

	// Tax is this participant's share of the tax.
	Tax float64
}

// Bill is a persisted split session.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// Title is the human-readable name for the bill.
	// Auto-generated from participants when empty.
	Title string

	// GroupID optionally links the bill to a group.
	GroupID string

	// EventID optionally links the bill to the event it was spent on.
	EventID string

	// PayerID is the participant who paid. Needed for group balances.
	PayerID string

	Participants []Participant
	Items        []BillItem
	Method       SplitMethod

	// TipPercent and TaxPercent are applied to the item subtotal.
	TipPercent float64
	TaxPercent float64

	// Percentages holds per-participant shares for SplitPercentage.
	Percentages map[string]float64

	// Currency is the suffix used when rendering amounts.
	Currency string

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64
}

// ParticipantIDs returns the ids of all participants in order.
func (b *Bill) ParticipantIDs() []string {
	ids := make([]string, len(b.Participants))
	for i, p := range b.Participants {
		ids[i] = p.ID
	}
	return ids
}

// HasParticipant reports whether id is one of the bill's participants.
func (b *Bill) HasParticipant(id string) bool {
	for _, p := range b.Participants {
		if p.ID == id {
			return true
		}
	}
	return false
}
