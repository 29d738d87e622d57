package api

import "time"

type AvailabilityInterval struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Date      string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
	CreatedAt int64  `json:"created_at"`
}

// RecordAvailabilityRequest declares the caller free or busy for a window.
type RecordAvailabilityRequest struct {
	Date      string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

type RecordAvailabilityResponse struct {
	Interval *AvailabilityInterval `json:"interval"`
}

// ListAvailabilityRequest lists intervals with From <= date < To.
// Users come from UserIDs, or from the group's members when GroupID is set.
// Empty means the caller only. Empty To means one week after From.
type ListAvailabilityRequest struct {
	UserIDs []string `json:"user_ids,omitempty"`
	GroupID string   `json:"group_id,omitempty"`
	From    string   `json:"from,omitempty"`
	To      string   `json:"to,omitempty"`
}

type ListAvailabilityResponse struct {
	Intervals []*AvailabilityInterval `json:"intervals"`
}

// SuggestMeetingsRequest finds slots over the next two weeks. Participants
// come from UserIDs, or from the group's members when GroupID is set.
type SuggestMeetingsRequest struct {
	UserIDs         []string `json:"user_ids,omitempty"`
	GroupID         string   `json:"group_id,omitempty"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
}

type MeetingSuggestion struct {
	Start            time.Time `json:"start"`
	DurationMinutes  int       `json:"duration_minutes"`
	AvailableUserIDs []string  `json:"available_user_ids"`
	Score            float64   `json:"score"`
}

type SuggestMeetingsResponse struct {
	Suggestions []*MeetingSuggestion `json:"suggestions"`
}

type Location struct {
	Name      string   `json:"name,omitempty"`
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type RSVP struct {
	UserID      string `json:"user_id"`
	Status      string `json:"status"`
	Note        string `json:"note,omitempty"`
	GuestCount  int    `json:"guest_count,omitempty"`
	RespondedAt int64  `json:"responded_at,omitempty"`
}

type Event struct {
	ID           string     `json:"id"`
	GroupID      string     `json:"group_id,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Start        time.Time  `json:"start"`
	End          time.Time  `json:"end"`
	CreatedBy    string     `json:"created_by"`
	Attendees    []string   `json:"attendees"`
	Location     *Location  `json:"location,omitempty"`
	RSVPs        []*RSVP    `json:"rsvps"`
	RSVPDeadline *time.Time `json:"rsvp_deadline,omitempty"`
	MaxAttendees int        `json:"max_attendees,omitempty"`
	CreatedAt    int64      `json:"created_at"`
}

// EventDetails are the editable fields of an event.
type EventDetails struct {
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Start        time.Time  `json:"start"`
	End          time.Time  `json:"end"`
	Attendees    []string   `json:"attendees,omitempty"`
	Location     *Location  `json:"location,omitempty"`
	RSVPDeadline *time.Time `json:"rsvp_deadline,omitempty"`
	MaxAttendees int        `json:"max_attendees,omitempty"`
}

// CreateEventRequest schedules an event. The creator is always an attendee.
type CreateEventRequest struct {
	GroupID string `json:"group_id,omitempty"`
	EventDetails
}

type CreateEventResponse struct {
	Event *Event `json:"event"`
}

type GetEventRequest struct {
	EventID string `json:"event_id"`
}

type GetEventResponse struct {
	Event *Event `json:"event"`
}

// ListEventsRequest lists events visible to the caller. Date selects a
// single day; otherwise From and To bound the start date.
type ListEventsRequest struct {
	GroupID string `json:"group_id,omitempty"`
	Date    string `json:"date,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
}

type ListEventsResponse struct {
	Events []*Event `json:"events"`
}

type UpdateEventRequest struct {
	EventID string `json:"event_id"`
	EventDetails
}

type UpdateEventResponse struct {
	Event *Event `json:"event"`
}

type DeleteEventRequest struct {
	EventID string `json:"event_id"`
}

type DeleteEventResponse struct{}

type RespondRSVPRequest struct {
	EventID    string `json:"event_id"`
	Status     string `json:"status"`
	Note       string `json:"note,omitempty"`
	GuestCount int    `json:"guest_count,omitempty"`
}

type RespondRSVPResponse struct {
	RSVP *RSVP `json:"rsvp"`
}

type GetRSVPStatsRequest struct {
	EventID string `json:"event_id"`
}

type GetRSVPStatsResponse struct {
	Pending   int `json:"pending"`
	Attending int `json:"attending"`
	Declined  int `json:"declined"`
	Maybe     int `json:"maybe"`

	// Headcount is attending responses plus their guests.
	Headcount int `json:"headcount"`
}
