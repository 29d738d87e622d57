package models

import "time"

// AvailabilityInterval is a free/busy window a user declared for one date.
// Intervals are immutable: recording the same (UserID, Date, Start, End)
// again replaces the earlier entry.
type AvailabilityInterval struct {
	ID        string
	UserID    string
	Date      Date
	Start     TimeOfDay
	End       TimeOfDay
	Available bool

	// CreatedAt is the Unix timestamp when the interval was recorded.
	CreatedAt int64
}

// SameKey reports whether two intervals describe the same window of the same user.
func (a AvailabilityInterval) SameKey(b AvailabilityInterval) bool {
	return a.UserID == b.UserID && a.Date.Equal(b.Date) && a.Start == b.Start && a.End == b.End
}

// Contains reports whether the interval covers [start, end).
func (a AvailabilityInterval) Contains(start, end TimeOfDay) bool {
	return a.Start <= start && a.End >= end
}

// MeetingSuggestion is a candidate meeting slot. It is derived on each scan
// and never stored.
type MeetingSuggestion struct {
	Start            time.Time
	DurationMinutes  int
	AvailableUserIDs []string

	// Score is the fraction of required participants who are free, in [0,1].
	Score float64
}
