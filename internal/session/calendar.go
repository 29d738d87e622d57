package session

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/syncplan/internal/models"
	"github.com/mmynk/syncplan/internal/scheduling"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrNotInvited      = errors.New("user is not invited to this event")
	ErrRSVPClosed      = errors.New("rsvp deadline has passed")
	ErrEventFull       = errors.New("event has reached its attendee limit")
	ErrInvalidInterval = errors.New("interval must end after it starts")
	ErrInvalidEvent    = errors.New("event must end after it starts")
)

// CalendarSnapshot is an immutable view of a calendar.
type CalendarSnapshot struct {
	Availability []models.AvailabilityInterval
	Events       []models.Event
	Suggestions  []models.MeetingSuggestion
}

// Calendar holds availability intervals, events and the latest meeting
// suggestions for one caller.
type Calendar struct {
	intervals   []models.AvailabilityInterval
	events      []models.Event
	suggestions []models.MeetingSuggestion

	now       func() time.Time
	newID     func() string
	observers observers[CalendarSnapshot]
}

// CalendarOption configures a Calendar.
type CalendarOption func(*Calendar)

// WithClock sets the time source used for "today" and timestamps.
func WithClock(now func() time.Time) CalendarOption {
	return func(c *Calendar) {
		c.now = now
	}
}

// WithEventIDGenerator overrides how interval and event IDs are generated.
func WithEventIDGenerator(fn func() string) CalendarOption {
	return func(c *Calendar) {
		c.newID = fn
	}
}

func NewCalendar(opts ...CalendarOption) *Calendar {
	c := &Calendar{
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
		suggestions: []models.MeetingSuggestion{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the calendar contents with previously stored data.
// Subscribers are notified once.
func (c *Calendar) Load(intervals []models.AvailabilityInterval, events []models.Event) {
	c.intervals = append([]models.AvailabilityInterval(nil), intervals...)
	c.events = make([]models.Event, len(events))
	for i, e := range events {
		c.events[i] = e.Clone()
	}
	c.changed()
}

func (c *Calendar) Subscribe(fn func(CalendarSnapshot)) func() {
	return c.observers.subscribe(fn)
}

// RecordAvailability stores a free/busy window. An existing interval with
// the same user, date, start and end is replaced.
func (c *Calendar) RecordAvailability(userID string, date models.Date, start, end models.TimeOfDay, available bool) (models.AvailabilityInterval, error) {
	if end <= start {
		return models.AvailabilityInterval{}, ErrInvalidInterval
	}

	iv := models.AvailabilityInterval{
		ID:        c.newID(),
		UserID:    userID,
		Date:      date,
		Start:     start,
		End:       end,
		Available: available,
		CreatedAt: c.now().Unix(),
	}

	kept := c.intervals[:0:0]
	for _, existing := range c.intervals {
		if !existing.SameKey(iv) {
			kept = append(kept, existing)
		}
	}
	c.intervals = append(kept, iv)
	c.changed()
	return iv, nil
}

// Availability returns every recorded interval.
func (c *Calendar) Availability() []models.AvailabilityInterval {
	return append([]models.AvailabilityInterval{}, c.intervals...)
}

// AvailabilityForDate returns the intervals on date ordered by start time.
func (c *Calendar) AvailabilityForDate(date models.Date) []models.AvailabilityInterval {
	out := []models.AvailabilityInterval{}
	for _, iv := range c.intervals {
		if iv.Date.Equal(date) {
			out = append(out, iv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// GenerateSuggestions scans the next two weeks for slots that suit the
// required participants and keeps the result as the current suggestions.
// A non-positive duration means the default of 60 minutes.
func (c *Calendar) GenerateSuggestions(required []string, durationMinutes int) []models.MeetingSuggestion {
	if durationMinutes <= 0 {
		durationMinutes = scheduling.DefaultDurationMinutes
	}
	today := models.NewDateFromTime(c.now())
	c.suggestions = scheduling.GenerateSuggestions(today, required, durationMinutes, c.intervals)
	c.changed()
	return c.Suggestions()
}

// Suggestions returns the suggestions from the latest scan.
func (c *Calendar) Suggestions() []models.MeetingSuggestion {
	return cloneSuggestions(c.suggestions)
}

// IsAvailableAt reports whether the user declared themselves free at the instant.
func (c *Calendar) IsAvailableAt(userID string, at time.Time) bool {
	return scheduling.IsAvailableAt(userID, at, c.intervals)
}

// AddEvent stores a new event. Every attendee starts with a pending RSVP.
func (c *Calendar) AddEvent(e models.Event) (models.Event, error) {
	if !e.End.After(e.Start) {
		return models.Event{}, ErrInvalidEvent
	}
	e = e.Clone()
	if e.ID == "" {
		e.ID = c.newID()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = c.now().Unix()
	}
	for _, userID := range e.Attendees {
		if _, ok := e.RSVPs[userID]; !ok {
			e.RSVPs[userID] = models.RSVPResponse{UserID: userID, Status: models.RSVPPending}
		}
	}
	c.events = append(c.events, e)
	c.changed()
	return e.Clone(), nil
}

// Event returns the event with the given ID.
func (c *Calendar) Event(eventID string) (models.Event, bool) {
	i := c.indexOf(eventID)
	if i < 0 {
		return models.Event{}, false
	}
	return c.events[i].Clone(), true
}

// UpdateEvent replaces an event, keeping its ID.
func (c *Calendar) UpdateEvent(eventID string, updated models.Event) error {
	i := c.indexOf(eventID)
	if i < 0 {
		return ErrEventNotFound
	}
	if !updated.End.After(updated.Start) {
		return ErrInvalidEvent
	}
	updated = updated.Clone()
	updated.ID = eventID
	c.events[i] = updated
	c.changed()
	return nil
}

func (c *Calendar) DeleteEvent(eventID string) bool {
	i := c.indexOf(eventID)
	if i < 0 {
		return false
	}
	c.events = append(c.events[:i:i], c.events[i+1:]...)
	c.changed()
	return true
}

// RespondRSVP records an attendee's answer, replacing any earlier one.
func (c *Calendar) RespondRSVP(eventID, userID string, status models.RSVPStatus, note string, guestCount int) (models.RSVPResponse, error) {
	i := c.indexOf(eventID)
	if i < 0 {
		return models.RSVPResponse{}, ErrEventNotFound
	}
	e := &c.events[i]
	if !e.HasAttendee(userID) {
		return models.RSVPResponse{}, ErrNotInvited
	}
	now := c.now()
	if e.RSVPDeadline != nil && now.After(*e.RSVPDeadline) {
		return models.RSVPResponse{}, ErrRSVPClosed
	}
	if status == models.RSVPAttending && e.MaxAttendees > 0 {
		attending := e.AttendingCount()
		if prev, ok := e.RSVPs[userID]; ok && prev.Status == models.RSVPAttending {
			attending -= 1 + prev.GuestCount
		}
		if attending+1+guestCount > e.MaxAttendees {
			return models.RSVPResponse{}, ErrEventFull
		}
	}

	resp := models.RSVPResponse{
		UserID:      userID,
		Status:      status,
		Note:        note,
		GuestCount:  guestCount,
		RespondedAt: now.Unix(),
	}
	if e.RSVPs == nil {
		e.RSVPs = make(map[string]models.RSVPResponse)
	}
	e.RSVPs[userID] = resp
	c.changed()
	return resp, nil
}

// RSVPStats counts responses by status. Unknown events have no stats.
func (c *Calendar) RSVPStats(eventID string) map[models.RSVPStatus]int {
	stats := make(map[models.RSVPStatus]int)
	i := c.indexOf(eventID)
	if i < 0 {
		return stats
	}
	for _, r := range c.events[i].RSVPs {
		stats[r.Status]++
	}
	return stats
}

// EventsForDate returns events starting on date, ordered by start time.
// A non-empty groupID restricts the result to that group.
func (c *Calendar) EventsForDate(date models.Date, groupID string) []models.Event {
	out := []models.Event{}
	for _, e := range c.events {
		if !models.NewDateFromTime(e.Start).Equal(date) {
			continue
		}
		if groupID != "" && e.GroupID != groupID {
			continue
		}
		out = append(out, e.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// Snapshot returns an immutable view of the calendar.
func (c *Calendar) Snapshot() CalendarSnapshot {
	events := make([]models.Event, len(c.events))
	for i, e := range c.events {
		events[i] = e.Clone()
	}
	return CalendarSnapshot{
		Availability: c.Availability(),
		Events:       events,
		Suggestions:  c.Suggestions(),
	}
}

func (c *Calendar) indexOf(eventID string) int {
	for i, e := range c.events {
		if e.ID == eventID {
			return i
		}
	}
	return -1
}

func (c *Calendar) changed() {
	if len(c.observers.order) > 0 {
		c.observers.notify(c.Snapshot)
	}
}

func cloneSuggestions(s []models.MeetingSuggestion) []models.MeetingSuggestion {
	out := make([]models.MeetingSuggestion, len(s))
	for i, v := range s {
		v.AvailableUserIDs = append([]string(nil), v.AvailableUserIDs...)
		out[i] = v
	}
	return out
}
