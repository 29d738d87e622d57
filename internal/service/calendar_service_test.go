package service

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/syncplan/pkg/api"
)

func recordAvailability(t *testing.T, env *testEnv, userID, date, start, end string, available bool) *api.AvailabilityInterval {
	t.Helper()
	resp, err := env.calendar.RecordAvailability(context.Background(), as(userID, &api.RecordAvailabilityRequest{
		Date:      date,
		Start:     start,
		End:       end,
		Available: available,
	}))
	if err != nil {
		t.Fatalf("RecordAvailability failed: %v", err)
	}
	return resp.Msg.Interval
}

func TestRecordAvailability_ReplacesSameWindow(t *testing.T) {
	env := setupTestServer(t)
	alice := env.createUser(t, "Alice")
	ctx := context.Background()

	recordAvailability(t, env, alice, "2026-10-16", "09:00", "12:00", true)
	recordAvailability(t, env, alice, "2026-10-16", "14:00", "18:00", true)
	iv := recordAvailability(t, env, alice, "2026-10-16", "09:00", "12:00", false)
	if iv.Date != "2026-10-16" || iv.Start != "09:00" || iv.End != "12:00" || iv.Available {
		t.Errorf("unexpected interval: %+v", iv)
	}

	resp, err := env.calendar.ListAvailability(ctx, as(alice, &api.ListAvailabilityRequest{}))
	if err != nil {
		t.Fatalf("ListAvailability failed: %v", err)
	}
	got := resp.Msg.Intervals
	if len(got) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(got))
	}
	if got[0].Start != "09:00" || got[0].Available {
		t.Errorf("morning window should be replaced by the busy one, got %+v", got[0])
	}
	if got[1].Start != "14:00" || !got[1].Available {
		t.Errorf("unexpected afternoon window: %+v", got[1])
	}
}

func TestRecordAvailability_Invalid(t *testing.T) {
	env := setupTestServer(t)
	alice := env.createUser(t, "Alice")

	tests := []struct {
		name       string
		date       string
		start, end string
	}{
		{"end before start", "2026-10-16", "12:00", "09:00"},
		{"empty window", "2026-10-16", "09:00", "09:00"},
		{"bad date", "16/10/2026", "09:00", "10:00"},
		{"bad time", "2026-10-16", "9am", "10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.calendar.RecordAvailability(context.Background(), as(alice, &api.RecordAvailabilityRequest{
				Date:      tt.date,
				Start:     tt.start,
				End:       tt.end,
				Available: true,
			}))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestListAvailability_GroupMembers(t *testing.T) {
	env := setupTestServer(t)
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	carol := env.createUser(t, "Carol")
	ctx := context.Background()

	group, err := env.group.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{
		Name:         "Book club",
		MemberEmails: []string{"bob@example.com"},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	recordAvailability(t, env, alice, "2026-10-17", "10:00", "12:00", true)
	recordAvailability(t, env, bob, "2026-10-18", "10:00", "12:00", true)
	recordAvailability(t, env, carol, "2026-10-17", "10:00", "12:00", true)
	recordAvailability(t, env, bob, "2026-11-30", "10:00", "12:00", true)

	resp, err := env.calendar.ListAvailability(ctx, as(alice, &api.ListAvailabilityRequest{
		GroupID: group.Msg.Group.ID,
	}))
	if err != nil {
		t.Fatalf("ListAvailability failed: %v", err)
	}
	got := resp.Msg.Intervals
	if len(got) != 2 {
		t.Fatalf("expected alice and bob within a week, got %+v", got)
	}
	if got[0].UserID != alice || got[1].UserID != bob {
		t.Errorf("expected date order alice then bob, got %s then %s", got[0].UserID, got[1].UserID)
	}

	_, err = env.calendar.ListAvailability(ctx, as(carol, &api.ListAvailabilityRequest{GroupID: group.Msg.Group.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = env.calendar.ListAvailability(ctx, as(alice, &api.ListAvailabilityRequest{From: "2026-10-20", To: "2026-10-18"}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestAvailability_StrangersAreHidden(t *testing.T) {
	env := setupTestServer(t)
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	mallory := env.createUser(t, "Mallory")
	ctx := context.Background()

	if _, err := env.group.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{
		Name:         "Book club",
		MemberEmails: []string{"bob@example.com"},
	})); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	recordAvailability(t, env, alice, "2026-10-17", "10:00", "12:00", true)

	_, err := env.calendar.ListAvailability(ctx, as(mallory, &api.ListAvailabilityRequest{UserIDs: []string{alice}}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = env.calendar.ListAvailability(ctx, as(mallory, &api.ListAvailabilityRequest{UserIDs: []string{mallory, alice}}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = env.calendar.SuggestMeetings(ctx, as(mallory, &api.SuggestMeetingsRequest{UserIDs: []string{alice, bob}}))
	assertCode(t, err, connect.CodePermissionDenied)

	resp, err := env.calendar.ListAvailability(ctx, as(bob, &api.ListAvailabilityRequest{UserIDs: []string{alice, bob}}))
	if err != nil {
		t.Fatalf("ListAvailability failed: %v", err)
	}
	if len(resp.Msg.Intervals) != 1 || resp.Msg.Intervals[0].UserID != alice {
		t.Errorf("bob should see alice's interval, got %+v", resp.Msg.Intervals)
	}

	own, err := env.calendar.ListAvailability(ctx, as(mallory, &api.ListAvailabilityRequest{UserIDs: []string{mallory}}))
	if err != nil {
		t.Fatalf("ListAvailability for self failed: %v", err)
	}
	if len(own.Msg.Intervals) != 0 {
		t.Errorf("mallory has no intervals, got %d", len(own.Msg.Intervals))
	}
}

func TestCalendarService_DefaultClockIsUTC(t *testing.T) {
	s := NewCalendarService(nil)
	if loc := s.now().Location(); loc != time.UTC {
		t.Errorf("clock location = %v, want UTC", loc)
	}
}

func TestSuggestMeetings(t *testing.T) {
	env := setupTestServer(t)
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	ctx := context.Background()

	if _, err := env.group.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{
		Name:         "Climbing",
		MemberEmails: []string{"bob@example.com"},
	})); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	recordAvailability(t, env, alice, "2026-10-16", "09:00", "17:00", true)
	recordAvailability(t, env, bob, "2026-10-16", "09:00", "17:00", true)

	resp, err := env.calendar.SuggestMeetings(ctx, as(alice, &api.SuggestMeetingsRequest{
		UserIDs: []string{alice, bob},
	}))
	if err != nil {
		t.Fatalf("SuggestMeetings failed: %v", err)
	}

	got := resp.Msg.Suggestions
	if len(got) != 8 {
		t.Fatalf("expected 8 hourly slots from 09:00 to 16:00, got %d", len(got))
	}
	for i, s := range got {
		if s.Score != 1 || s.DurationMinutes != 60 || len(s.AvailableUserIDs) != 2 {
			t.Errorf("slot %d: unexpected %+v", i, s)
		}
		if s.Start.Hour() != 9+i {
			t.Errorf("slot %d: expected %d:00, got %s", i, 9+i, s.Start.Format(time.Kitchen))
		}
	}

	resp, err = env.calendar.SuggestMeetings(ctx, as(alice, &api.SuggestMeetingsRequest{
		UserIDs:         []string{alice, bob},
		DurationMinutes: 240,
	}))
	if err != nil {
		t.Fatalf("SuggestMeetings failed: %v", err)
	}
	if len(resp.Msg.Suggestions) != 5 {
		t.Errorf("expected starts 09:00..13:00 for four hours, got %d", len(resp.Msg.Suggestions))
	}

	_, err = env.calendar.SuggestMeetings(ctx, as(alice, &api.SuggestMeetingsRequest{DurationMinutes: -5}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func createTestEvent(t *testing.T, env *testEnv, organizer string, details api.EventDetails) *api.Event {
	t.Helper()
	if details.Title == "" {
		details.Title = "Board games"
	}
	if details.Start.IsZero() {
		details.Start = fixedNow.Add(24 * time.Hour)
		details.End = details.Start.Add(3 * time.Hour)
	}
	resp, err := env.calendar.CreateEvent(context.Background(), as(organizer, &api.CreateEventRequest{EventDetails: details}))
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	return resp.Msg.Event
}

func TestCreateEvent_StartsPending(t *testing.T) {
	env := setupTestServer(t)
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	ctx := context.Background()

	lat, lng := 52.23, 21.01
	event := createTestEvent(t, env, alice, api.EventDetails{
		Attendees: []string{bob},
		Location:  &api.Location{Name: "Cafe", Latitude: &lat, Longitude: &lng},
	})

	if event.CreatedBy != alice {
		t.Errorf("expected creator %s, got %s", alice, event.CreatedBy)
	}
	if len(event.Attendees) != 2 || event.Attendees[0] != alice {
		t.Errorf("creator should be the first attendee, got %v", event.Attendees)
	}
	for _, r := range event.RSVPs {
		if r.Status != "pending" {
			t.Errorf("%s: expected pending, got %s", r.UserID, r.Status)
		}
	}

	got, err := env.calendar.GetEvent(ctx, as(bob, &api.GetEventRequest{EventID: event.ID}))
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if got.Msg.Event.Location == nil || *got.Msg.Event.Location.Latitude != lat {
		t.Errorf("location not stored: %+v", got.Msg.Event.Location)
	}
	if !got.Msg.Event.Start.Equal(event.Start) {
		t.Errorf("start changed: %v vs %v", got.Msg.Event.Start, event.Start)
	}

	stats, err := env.calendar.GetRSVPStats(ctx, as(bob, &api.GetRSVPStatsRequest{EventID: event.ID}))
	if err != nil {
		t.Fatalf("GetRSVPStats failed: %v", err)
	}
	if stats.Msg.Pending != 2 || stats.Msg.Attending != 0 {
		t.Errorf("unexpected stats: %+v", stats.Msg)
	}

	_, err = env.calendar.CreateEvent(ctx, as(alice, &api.CreateEventRequest{EventDetails: api.EventDetails{
		Title: "Backwards",
		Start: fixedNow.Add(2 * time.Hour),
		End:   fixedNow.Add(time.Hour),
	}}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestRespondRSVP(t *testing.T) {
	env := setupTestServer(t)
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	carol := env.createUser(t, "Carol")
	dave := env.createUser(t, "Dave")

	deadline := fixedNow.Add(-time.Hour)
	closed := createTestEvent(t, env, alice, api.EventDetails{Attendees: []string{bob}, RSVPDeadline: &deadline})
	small := createTestEvent(t, env, alice, api.EventDetails{Attendees: []string{bob, carol}, MaxAttendees: 3})

	tests := []struct {
		name   string
		user   string
		req    *api.RespondRSVPRequest
		code   connect.Code
		wantOK bool
	}{
		{
			name:   "attending with guest",
			user:   bob,
			req:    &api.RespondRSVPRequest{EventID: small.ID, Status: "attending", GuestCount: 1},
			wantOK: true,
		},
		{
			name: "over capacity",
			user: carol,
			req:  &api.RespondRSVPRequest{EventID: small.ID, Status: "attending", GuestCount: 1},
			code: connect.CodeFailedPrecondition,
		},
		{
			name:   "fits without guest",
			user:   carol,
			req:    &api.RespondRSVPRequest{EventID: small.ID, Status: "attending"},
			wantOK: true,
		},
		{
			name:   "changing own answer keeps the seat",
			user:   bob,
			req:    &api.RespondRSVPRequest{EventID: small.ID, Status: "attending", GuestCount: 1, Note: "bringing cake"},
			wantOK: true,
		},
		{
			name: "not invited",
			user: dave,
			req:  &api.RespondRSVPRequest{EventID: small.ID, Status: "attending"},
			code: connect.CodePermissionDenied,
		},
		{
			name: "deadline passed",
			user: bob,
			req:  &api.RespondRSVPRequest{EventID: closed.ID, Status: "declined"},
			code: connect.CodeFailedPrecondition,
		},
		{
			name: "unknown status",
			user: bob,
			req:  &api.RespondRSVPRequest{EventID: small.ID, Status: "sure"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "unknown event",
			user: bob,
			req:  &api.RespondRSVPRequest{EventID: "missing", Status: "maybe"},
			code: connect.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.calendar.RespondRSVP(context.Background(), as(tt.user, tt.req))
			if !tt.wantOK {
				assertCode(t, err, tt.code)
				return
			}
			if err != nil {
				t.Fatalf("RespondRSVP failed: %v", err)
			}
			if resp.Msg.RSVP.Status != tt.req.Status || resp.Msg.RSVP.RespondedAt != fixedNow.Unix() {
				t.Errorf("unexpected rsvp: %+v", resp.Msg.RSVP)
			}
		})
	}

	stats, err := env.calendar.GetRSVPStats(context.Background(), as(alice, &api.GetRSVPStatsRequest{EventID: small.ID}))
	if err != nil {
		t.Fatalf("GetRSVPStats failed: %v", err)
	}
	if stats.Msg.Attending != 2 || stats.Msg.Pending != 1 || stats.Msg.Headcount != 3 {
		t.Errorf("unexpected stats: %+v", stats.Msg)
	}
}

func TestListEvents(t *testing.T) {
	env := setupTestServer(t)
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	ctx := context.Background()

	day := func(d int) time.Time { return fixedNow.AddDate(0, 0, d) }
	createTestEvent(t, env, alice, api.EventDetails{Title: "Today", Start: day(0).Add(2 * time.Hour), End: day(0).Add(3 * time.Hour)})
	createTestEvent(t, env, alice, api.EventDetails{Title: "Tomorrow", Start: day(1), End: day(1).Add(time.Hour), Attendees: []string{bob}})
	createTestEvent(t, env, bob, api.EventDetails{Title: "Bob only", Start: day(1), End: day(1).Add(time.Hour)})

	tests := []struct {
		name string
		user string
		req  *api.ListEventsRequest
		want []string
	}{
		{"all of alice", alice, &api.ListEventsRequest{}, []string{"Today", "Tomorrow"}},
		{"single day", alice, &api.ListEventsRequest{Date: "2026-10-17"}, []string{"Tomorrow"}},
		{"range", bob, &api.ListEventsRequest{From: "2026-10-17", To: "2026-10-18"}, []string{"Tomorrow", "Bob only"}},
		{"nothing", bob, &api.ListEventsRequest{Date: "2026-10-16"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.calendar.ListEvents(ctx, as(tt.user, tt.req))
			if err != nil {
				t.Fatalf("ListEvents failed: %v", err)
			}
			if len(resp.Msg.Events) != len(tt.want) {
				t.Fatalf("expected %d events, got %d", len(tt.want), len(resp.Msg.Events))
			}
			titles := make(map[string]bool)
			for _, e := range resp.Msg.Events {
				titles[e.Title] = true
			}
			for _, w := range tt.want {
				if !titles[w] {
					t.Errorf("missing event %q", w)
				}
			}
		})
	}
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	env := setupTestServer(t)
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	carol := env.createUser(t, "Carol")
	ctx := context.Background()

	event := createTestEvent(t, env, alice, api.EventDetails{Attendees: []string{bob}})
	if _, err := env.calendar.RespondRSVP(ctx, as(bob, &api.RespondRSVPRequest{EventID: event.ID, Status: "maybe"})); err != nil {
		t.Fatalf("RespondRSVP failed: %v", err)
	}

	details := api.EventDetails{
		Title:     "Board games, moved",
		Start:     event.Start.Add(time.Hour),
		End:       event.End.Add(time.Hour),
		Attendees: []string{bob, carol},
	}
	_, err := env.calendar.UpdateEvent(ctx, as(bob, &api.UpdateEventRequest{EventID: event.ID, EventDetails: details}))
	assertCode(t, err, connect.CodePermissionDenied)

	resp, err := env.calendar.UpdateEvent(ctx, as(alice, &api.UpdateEventRequest{EventID: event.ID, EventDetails: details}))
	if err != nil {
		t.Fatalf("UpdateEvent failed: %v", err)
	}
	updated := resp.Msg.Event
	if updated.Title != details.Title || len(updated.Attendees) != 3 {
		t.Errorf("unexpected event: %+v", updated)
	}
	statuses := make(map[string]string)
	for _, r := range updated.RSVPs {
		statuses[r.UserID] = r.Status
	}
	if statuses[bob] != "maybe" || statuses[carol] != "pending" || statuses[alice] != "pending" {
		t.Errorf("unexpected rsvps after update: %v", statuses)
	}

	if _, err := env.calendar.DeleteEvent(ctx, as(alice, &api.DeleteEventRequest{EventID: event.ID})); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}
	_, err = env.calendar.GetEvent(ctx, as(alice, &api.GetEventRequest{EventID: event.ID}))
	assertCode(t, err, connect.CodeNotFound)
}
