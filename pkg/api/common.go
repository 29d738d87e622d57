// Package api defines the request and response messages of the syncplan.v1
// RPC services. Messages travel as JSON.
//
// Dates are "YYYY-MM-DD", times of day are "HH:MM" and instants are RFC 3339.
// Amounts are decimal numbers already rounded to cents.
package api

// Participant is a person taking part in a bill split.
type Participant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
}

// Item is a line on a bill.
type Item struct {
	ID             string   `json:"id,omitempty"`
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	ParticipantIDs []string `json:"participant_ids,omitempty"`
}

// ItemShare is one line of a participant's breakdown.
type ItemShare struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// SplitResult is what one participant owes.
type SplitResult struct {
	ParticipantID   string      `json:"participant_id"`
	ParticipantName string      `json:"participant_name"`
	Total           float64     `json:"total"`
	Items           []ItemShare `json:"items"`
	Tip             float64     `json:"tip"`
	Tax             float64     `json:"tax"`
}

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}
