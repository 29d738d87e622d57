package models

import (
	"fmt"
	"time"
)

// RSVPStatus is an attendee's answer to an event invitation.
type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "pending"
	RSVPAttending RSVPStatus = "attending"
	RSVPDeclined  RSVPStatus = "declined"
	RSVPMaybe     RSVPStatus = "maybe"
)

// ParseRSVPStatus converts a wire value into an RSVPStatus.
func ParseRSVPStatus(s string) (RSVPStatus, error) {
	switch st := RSVPStatus(s); st {
	case RSVPPending, RSVPAttending, RSVPDeclined, RSVPMaybe:
		return st, nil
	default:
		return "", fmt.Errorf("unknown rsvp status %q", s)
	}
}

// Location is where an event takes place. Coordinates are optional.
type Location struct {
	Name      string
	Address   string
	Latitude  *float64
	Longitude *float64
}

// RSVPResponse is one attendee's answer.
type RSVPResponse struct {
	UserID     string
	Status     RSVPStatus
	Note       string
	GuestCount int

	// RespondedAt is the Unix timestamp of the latest answer.
	RespondedAt int64
}

// Event is a scheduled meeting.
type Event struct {
	// ID is the unique identifier for the event (UUID format).
	ID string

	// GroupID is empty for events outside any group.
	GroupID string

	Title       string
	Description string
	Start       time.Time
	End         time.Time
	CreatedBy   string

	// Attendees are the invited user IDs. Each starts with a pending RSVP.
	Attendees []string

	Location *Location

	// RSVPs maps attendee user ID to their latest response.
	RSVPs map[string]RSVPResponse

	RSVPDeadline *time.Time

	// MaxAttendees caps accepted RSVPs; 0 means unlimited.
	MaxAttendees int

	CreatedAt int64
}

// Clone returns a deep copy of e.
func (e Event) Clone() Event {
	e.Attendees = append([]string(nil), e.Attendees...)
	if e.Location != nil {
		loc := *e.Location
		e.Location = &loc
	}
	if e.RSVPDeadline != nil {
		d := *e.RSVPDeadline
		e.RSVPDeadline = &d
	}
	rsvps := make(map[string]RSVPResponse, len(e.RSVPs))
	for k, v := range e.RSVPs {
		rsvps[k] = v
	}
	e.RSVPs = rsvps
	return e
}

// HasAttendee reports whether userID was invited.
func (e *Event) HasAttendee(userID string) bool {
	for _, a := range e.Attendees {
		if a == userID {
			return true
		}
	}
	return false
}

// AttendingCount counts attending responses including their guests.
func (e *Event) AttendingCount() int {
	n := 0
	for _, r := range e.RSVPs {
		if r.Status == RSVPAttending {
			n += 1 + r.GuestCount
		}
	}
	return n
}
