package api

// SplitInput is everything a split depends on.
type SplitInput struct {
	Participants []Participant `json:"participants"`
	Items        []Item        `json:"items"`

	// Method is one of "equal", "by_items", "percentage", "custom".
	// Empty means "equal".
	Method     string  `json:"method,omitempty"`
	TipPercent float64 `json:"tip_percent,omitempty"`
	TaxPercent float64 `json:"tax_percent,omitempty"`

	// Percentages maps participant ID to share for the percentage method.
	Percentages map[string]float64 `json:"percentages,omitempty"`
}

// CalculateSplitRequest previews a split without saving it.
type CalculateSplitRequest struct {
	SplitInput
	Currency string `json:"currency,omitempty"`
}

type CalculateSplitResponse struct {
	Results  []SplitResult `json:"results"`
	Subtotal float64       `json:"subtotal"`
	Tip      float64       `json:"tip"`
	Tax      float64       `json:"tax"`
	Total    float64       `json:"total"`

	// Valid reports whether the split could be saved as is.
	Valid           bool   `json:"valid"`
	ValidationError string `json:"validation_error,omitempty"`
	Summary         string `json:"summary"`
}

// Bill is a saved split with its computed results.
type Bill struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	GroupID  string `json:"group_id,omitempty"`
	EventID  string `json:"event_id,omitempty"`
	PayerID  string `json:"payer_id,omitempty"`
	Currency string `json:"currency"`
	SplitInput
	CreatedAt int64 `json:"created_at"`

	Results  []SplitResult `json:"results"`
	Subtotal float64       `json:"subtotal"`
	Tip      float64       `json:"tip"`
	Tax      float64       `json:"tax"`
	Total    float64       `json:"total"`
}

// CreateBillRequest saves a split. When EventID is set and no participants
// are given, the event's attendees become the participants.
type CreateBillRequest struct {
	Title    string `json:"title,omitempty"`
	GroupID  string `json:"group_id,omitempty"`
	EventID  string `json:"event_id,omitempty"`
	PayerID  string `json:"payer_id,omitempty"`
	Currency string `json:"currency,omitempty"`
	SplitInput
}

type CreateBillResponse struct {
	Bill *Bill `json:"bill"`
}

type GetBillRequest struct {
	BillID string `json:"bill_id"`
}

type GetBillResponse struct {
	Bill *Bill `json:"bill"`
}

// UpdateBillRequest replaces a saved bill's contents.
type UpdateBillRequest struct {
	BillID   string `json:"bill_id"`
	Title    string `json:"title,omitempty"`
	PayerID  string `json:"payer_id,omitempty"`
	Currency string `json:"currency,omitempty"`
	SplitInput
}

type UpdateBillResponse struct {
	Bill *Bill `json:"bill"`
}

type DeleteBillRequest struct {
	BillID string `json:"bill_id"`
}

type DeleteBillResponse struct{}

type ListBillsByGroupRequest struct {
	GroupID string `json:"group_id"`
}

type ListBillsByGroupResponse struct {
	Bills []*Bill `json:"bills"`
}

type GetBillSummaryRequest struct {
	BillID string `json:"bill_id"`
}

// GetBillSummaryResponse carries the plain-text report, ready to share.
type GetBillSummaryResponse struct {
	Summary string `json:"summary"`
}
