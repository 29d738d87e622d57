package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mmynk/syncplan/internal/models"
)

// 2026-10-16 is a Friday.
var fixedNow = time.Date(2026, time.October, 16, 8, 0, 0, 0, time.UTC)

func newTestCalendar() *Calendar {
	n := 0
	return NewCalendar(
		WithClock(func() time.Time { return fixedNow }),
		WithEventIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
}

func tod(t *testing.T, s string) models.TimeOfDay {
	t.Helper()
	v, err := models.ParseTimeOfDay(s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestCalendar_RecordAvailabilityReplacesSameKey(t *testing.T) {
	c := newTestCalendar()
	today := models.NewDateFromTime(fixedNow)

	if _, err := c.RecordAvailability("alice", today, tod(t, "09:00"), tod(t, "12:00"), true); err != nil {
		t.Fatal(err)
	}
	if _, err := c.RecordAvailability("alice", today, tod(t, "13:00"), tod(t, "14:00"), true); err != nil {
		t.Fatal(err)
	}
	if _, err := c.RecordAvailability("alice", today, tod(t, "09:00"), tod(t, "12:00"), false); err != nil {
		t.Fatal(err)
	}

	all := c.Availability()
	if len(all) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(all))
	}
	for _, iv := range all {
		if iv.Start == tod(t, "09:00") && iv.Available {
			t.Error("morning interval was not replaced")
		}
	}

	if _, err := c.RecordAvailability("alice", today, tod(t, "12:00"), tod(t, "12:00"), true); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("empty interval error = %v, want %v", err, ErrInvalidInterval)
	}
}

func TestCalendar_AvailabilityForDate(t *testing.T) {
	c := newTestCalendar()
	today := models.NewDateFromTime(fixedNow)
	tomorrow := today.AddDays(1)

	c.RecordAvailability("bob", today, tod(t, "15:00"), tod(t, "16:00"), true)
	c.RecordAvailability("alice", today, tod(t, "09:00"), tod(t, "10:00"), true)
	c.RecordAvailability("alice", tomorrow, tod(t, "09:00"), tod(t, "10:00"), true)

	got := c.AvailabilityForDate(today)
	if len(got) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(got))
	}
	if got[0].UserID != "alice" || got[1].UserID != "bob" {
		t.Errorf("intervals not ordered by start: %v", got)
	}
	if empty := c.AvailabilityForDate(today.AddDays(5)); empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", empty)
	}
}

func TestCalendar_GenerateSuggestions(t *testing.T) {
	c := newTestCalendar()
	today := models.NewDateFromTime(fixedNow)
	c.RecordAvailability("alice", today, tod(t, "09:00"), tod(t, "11:00"), true)
	c.RecordAvailability("bob", today, tod(t, "09:00"), tod(t, "11:00"), true)

	var notified int
	c.Subscribe(func(CalendarSnapshot) { notified++ })

	got := c.GenerateSuggestions([]string{"alice", "bob"}, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(got))
	}
	if got[0].DurationMinutes != 60 {
		t.Errorf("duration = %d, want default 60", got[0].DurationMinutes)
	}
	if !got[0].Start.Equal(time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("first suggestion at %v", got[0].Start)
	}
	if notified != 1 {
		t.Errorf("expected 1 notification, got %d", notified)
	}
	if len(c.Suggestions()) != 2 {
		t.Error("suggestions were not kept")
	}

	if got := c.GenerateSuggestions(nil, 60); len(got) != 0 {
		t.Errorf("expected no suggestions without participants, got %d", len(got))
	}
}

func testEvent(start time.Time, attendees ...string) models.Event {
	return models.Event{
		GroupID:   "g1",
		Title:     "Dinner",
		Start:     start,
		End:       start.Add(2 * time.Hour),
		CreatedBy: "alice",
		Attendees: attendees,
	}
}

func TestCalendar_AddEventStartsPending(t *testing.T) {
	c := newTestCalendar()

	e, err := c.AddEvent(testEvent(fixedNow.Add(48*time.Hour), "alice", "bob"))
	if err != nil {
		t.Fatal(err)
	}
	if e.ID == "" || e.CreatedAt != fixedNow.Unix() {
		t.Errorf("event metadata not set: %+v", e)
	}
	for _, id := range []string{"alice", "bob"} {
		if e.RSVPs[id].Status != models.RSVPPending {
			t.Errorf("%s rsvp = %q, want pending", id, e.RSVPs[id].Status)
		}
	}

	stats := c.RSVPStats(e.ID)
	if stats[models.RSVPPending] != 2 {
		t.Errorf("pending = %d, want 2", stats[models.RSVPPending])
	}

	bad := testEvent(fixedNow)
	bad.End = bad.Start
	if _, err := c.AddEvent(bad); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("AddEvent with empty range = %v, want %v", err, ErrInvalidEvent)
	}
}

func TestCalendar_RespondRSVP(t *testing.T) {
	deadline := fixedNow.Add(-time.Hour)

	tests := []struct {
		name    string
		event   func() models.Event
		userID  string
		status  models.RSVPStatus
		guests  int
		wantErr error
	}{
		{
			name:   "attending",
			event:  func() models.Event { return testEvent(fixedNow.Add(24*time.Hour), "alice", "bob") },
			userID: "bob",
			status: models.RSVPAttending,
		},
		{
			name:    "not invited",
			event:   func() models.Event { return testEvent(fixedNow.Add(24*time.Hour), "alice") },
			userID:  "mallory",
			status:  models.RSVPAttending,
			wantErr: ErrNotInvited,
		},
		{
			name: "deadline passed",
			event: func() models.Event {
				e := testEvent(fixedNow.Add(24*time.Hour), "alice")
				e.RSVPDeadline = &deadline
				return e
			},
			userID:  "alice",
			status:  models.RSVPDeclined,
			wantErr: ErrRSVPClosed,
		},
		{
			name: "guests exceed capacity",
			event: func() models.Event {
				e := testEvent(fixedNow.Add(24*time.Hour), "alice", "bob")
				e.MaxAttendees = 2
				return e
			},
			userID:  "bob",
			status:  models.RSVPAttending,
			guests:  2,
			wantErr: ErrEventFull,
		},
		{
			name: "maybe ignores capacity",
			event: func() models.Event {
				e := testEvent(fixedNow.Add(24*time.Hour), "alice", "bob")
				e.MaxAttendees = 1
				return e
			},
			userID: "bob",
			status: models.RSVPMaybe,
			guests: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCalendar()
			e, err := c.AddEvent(tt.event())
			if err != nil {
				t.Fatal(err)
			}

			resp, err := c.RespondRSVP(e.ID, tt.userID, tt.status, "see you", tt.guests)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("RespondRSVP() = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if resp.Status != tt.status || resp.RespondedAt != fixedNow.Unix() {
				t.Errorf("response = %+v", resp)
			}
			stored, _ := c.Event(e.ID)
			if stored.RSVPs[tt.userID].Status != tt.status {
				t.Errorf("stored status = %q, want %q", stored.RSVPs[tt.userID].Status, tt.status)
			}
		})
	}

	c := newTestCalendar()
	if _, err := c.RespondRSVP("missing", "alice", models.RSVPAttending, "", 0); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("unknown event error = %v, want %v", err, ErrEventNotFound)
	}
}

func TestCalendar_ChangingAttendingAnswerKeepsCapacity(t *testing.T) {
	c := newTestCalendar()
	e := testEvent(fixedNow.Add(24*time.Hour), "alice", "bob")
	e.MaxAttendees = 2
	e, _ = c.AddEvent(e)

	if _, err := c.RespondRSVP(e.ID, "alice", models.RSVPAttending, "", 1); err != nil {
		t.Fatal(err)
	}
	// alice already holds both seats; answering again must not count her twice.
	if _, err := c.RespondRSVP(e.ID, "alice", models.RSVPAttending, "", 1); err != nil {
		t.Errorf("re-answering failed: %v", err)
	}
	if _, err := c.RespondRSVP(e.ID, "bob", models.RSVPAttending, "", 0); !errors.Is(err, ErrEventFull) {
		t.Errorf("bob = %v, want %v", err, ErrEventFull)
	}

	stats := c.RSVPStats(e.ID)
	if stats[models.RSVPAttending] != 1 || stats[models.RSVPPending] != 1 {
		t.Errorf("stats = %v", stats)
	}
}

func TestCalendar_EventsForDate(t *testing.T) {
	c := newTestCalendar()
	today := models.NewDateFromTime(fixedNow)

	late := testEvent(today.At(models.NewTimeOfDay(19, 0)), "alice")
	early := testEvent(today.At(models.NewTimeOfDay(12, 0)), "alice")
	other := testEvent(today.At(models.NewTimeOfDay(15, 0)), "bob")
	other.GroupID = "g2"
	tomorrow := testEvent(today.AddDays(1).At(models.NewTimeOfDay(12, 0)), "alice")

	for _, e := range []models.Event{late, early, other, tomorrow} {
		if _, err := c.AddEvent(e); err != nil {
			t.Fatal(err)
		}
	}

	if got := c.EventsForDate(today, ""); len(got) != 3 {
		t.Errorf("all groups: expected 3 events, got %d", len(got))
	}

	got := c.EventsForDate(today, "g1")
	if len(got) != 2 {
		t.Fatalf("g1: expected 2 events, got %d", len(got))
	}
	if !got[0].Start.Before(got[1].Start) {
		t.Errorf("events not ordered by start: %v, %v", got[0].Start, got[1].Start)
	}
}

func TestCalendar_UpdateAndDeleteEvent(t *testing.T) {
	c := newTestCalendar()
	e, _ := c.AddEvent(testEvent(fixedNow.Add(time.Hour), "alice"))

	e.Title = "Lunch"
	if err := c.UpdateEvent(e.ID, e); err != nil {
		t.Fatal(err)
	}
	stored, ok := c.Event(e.ID)
	if !ok || stored.Title != "Lunch" {
		t.Errorf("stored = %+v, %v", stored, ok)
	}

	if err := c.UpdateEvent("missing", e); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("update unknown = %v", err)
	}

	if !c.DeleteEvent(e.ID) {
		t.Fatal("delete returned false")
	}
	if c.DeleteEvent(e.ID) {
		t.Error("second delete returned true")
	}
	if _, ok := c.Event(e.ID); ok {
		t.Error("event still present after delete")
	}
}

func TestCalendar_IsAvailableAt(t *testing.T) {
	c := newTestCalendar()
	today := models.NewDateFromTime(fixedNow)
	c.RecordAvailability("alice", today, tod(t, "09:00"), tod(t, "12:00"), true)

	if !c.IsAvailableAt("alice", today.At(tod(t, "12:00"))) {
		t.Error("interval end should be inclusive")
	}
	if c.IsAvailableAt("alice", today.At(tod(t, "12:30"))) {
		t.Error("alice should be busy at 12:30")
	}
}
