package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/syncplan/internal/models"
	"github.com/mmynk/syncplan/internal/scheduling"
	"github.com/mmynk/syncplan/internal/session"
	"github.com/mmynk/syncplan/internal/storage"
	"github.com/mmynk/syncplan/pkg/api"
)

// availabilityWindowDays is the default range of ListAvailability.
const availabilityWindowDays = 7

// CalendarService implements the Connect CalendarService.
type CalendarService struct {
	store storage.Store
	now   func() time.Time
}

// CalendarOption configures a CalendarService.
type CalendarOption func(*CalendarService)

// WithNow sets the clock used for "today", RSVP deadlines and timestamps.
func WithNow(now func() time.Time) CalendarOption {
	return func(s *CalendarService) {
		s.now = now
	}
}

func NewCalendarService(store storage.Store, opts ...CalendarOption) *CalendarService {
	s := &CalendarService{store: store, now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CalendarService) newCalendar() *session.Calendar {
	return session.NewCalendar(session.WithClock(s.now))
}

func (s *CalendarService) today() models.Date {
	return models.NewDateFromTime(s.now())
}

// calendarError maps session errors to Connect codes.
func calendarError(err error) error {
	switch {
	case errors.Is(err, session.ErrEventNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, session.ErrNotInvited):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, session.ErrRSVPClosed), errors.Is(err, session.ErrEventFull):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, session.ErrInvalidInterval), errors.Is(err, session.ErrInvalidEvent):
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// resolveUsers picks the users a query is about: the group's members when
// groupID is set, else userIDs, else the caller alone. Explicit userIDs must
// be the caller or share a group with them.
func (s *CalendarService) resolveUsers(ctx context.Context, userID, groupID string, userIDs []string) ([]string, error) {
	if groupID != "" {
		group, err := memberGroup(ctx, s.store, groupID, userID)
		if err != nil {
			return nil, err
		}
		return group.MemberIDs(), nil
	}
	ids := dedupe(userIDs)
	if len(ids) == 0 {
		return []string{userID}, nil
	}

	known, err := s.groupmates(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if !known[id] {
			slog.Warn("Availability query for a stranger", "user_id", userID, "target_id", id)
			return nil, permissionDenied("user %q shares no group with you", id)
		}
	}
	return ids, nil
}

// groupmates returns the caller and everyone in the caller's groups.
func (s *CalendarService) groupmates(ctx context.Context, userID string) (map[string]bool, error) {
	groups, err := s.store.ListGroupsByUser(ctx, userID)
	if err != nil {
		return nil, storeError("ListGroupsByUser", err, "user_id", userID)
	}
	known := map[string]bool{userID: true}
	for _, g := range groups {
		for _, id := range g.MemberIDs() {
			known[id] = true
		}
	}
	return known, nil
}

// RecordAvailability stores a free or busy window for the caller.
func (s *CalendarService) RecordAvailability(ctx context.Context, req *connect.Request[api.RecordAvailabilityRequest]) (*connect.Response[api.RecordAvailabilityResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	date, err := models.ParseDate(req.Msg.Date)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	start, err := models.ParseTimeOfDay(req.Msg.Start)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	end, err := models.ParseTimeOfDay(req.Msg.End)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}

	iv, err := s.newCalendar().RecordAvailability(userID, date, start, end, req.Msg.Available)
	if err != nil {
		return nil, calendarError(err)
	}
	if err := s.store.UpsertAvailability(ctx, &iv); err != nil {
		return nil, storeError("UpsertAvailability", err, "user_id", userID)
	}

	slog.Info("Availability recorded",
		"user_id", userID,
		"date", iv.Date.String(),
		"start", iv.Start.String(),
		"end", iv.End.String(),
		"available", iv.Available,
	)
	return connect.NewResponse(&api.RecordAvailabilityResponse{Interval: intervalToAPI(iv)}), nil
}

// ListAvailability returns the intervals of the selected users, ordered by
// date and start time.
func (s *CalendarService) ListAvailability(ctx context.Context, req *connect.Request[api.ListAvailabilityRequest]) (*connect.Response[api.ListAvailabilityResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.resolveUsers(ctx, userID, req.Msg.GroupID, req.Msg.UserIDs)
	if err != nil {
		return nil, err
	}

	from, err := parseDateOr(req.Msg.From, s.today())
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	to, err := parseDateOr(req.Msg.To, from.AddDays(availabilityWindowDays))
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	if !to.After(from.Time) {
		return nil, invalidArgument("to must be after from")
	}

	intervals, err := s.store.ListAvailability(ctx, users, from, to)
	if err != nil {
		return nil, storeError("ListAvailability", err)
	}

	out := make([]*api.AvailabilityInterval, len(intervals))
	for i, iv := range intervals {
		out[i] = intervalToAPI(iv)
	}
	return connect.NewResponse(&api.ListAvailabilityResponse{Intervals: out}), nil
}

// SuggestMeetings scans the coming two weeks for slots that suit the
// selected users.
func (s *CalendarService) SuggestMeetings(ctx context.Context, req *connect.Request[api.SuggestMeetingsRequest]) (*connect.Response[api.SuggestMeetingsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.DurationMinutes < 0 {
		return nil, invalidArgument("duration_minutes cannot be negative")
	}
	users, err := s.resolveUsers(ctx, userID, req.Msg.GroupID, req.Msg.UserIDs)
	if err != nil {
		return nil, err
	}

	today := s.today()
	intervals, err := s.store.ListAvailability(ctx, users, today, today.AddDays(scheduling.SearchDays))
	if err != nil {
		return nil, storeError("ListAvailability", err)
	}

	cal := s.newCalendar()
	cal.Load(intervals, nil)
	suggestions := cal.GenerateSuggestions(users, req.Msg.DurationMinutes)

	slog.Info("Meeting suggestions generated",
		"users", len(users),
		"intervals", len(intervals),
		"suggestions", len(suggestions),
	)

	out := make([]*api.MeetingSuggestion, len(suggestions))
	for i, sg := range suggestions {
		out[i] = suggestionToAPI(sg)
	}
	return connect.NewResponse(&api.SuggestMeetingsResponse{Suggestions: out}), nil
}

// eventFromDetails builds an event from the editable wire fields.
func eventFromDetails(d api.EventDetails) (models.Event, error) {
	if d.Title == "" {
		return models.Event{}, errors.New("title required")
	}
	if d.MaxAttendees < 0 {
		return models.Event{}, errors.New("max_attendees cannot be negative")
	}
	e := models.Event{
		Title:        d.Title,
		Description:  d.Description,
		Start:        utc(d.Start),
		End:          utc(d.End),
		Attendees:    dedupe(d.Attendees),
		Location:     locationToModel(d.Location),
		MaxAttendees: d.MaxAttendees,
		RSVPs:        make(map[string]models.RSVPResponse),
	}
	if d.RSVPDeadline != nil {
		deadline := utc(*d.RSVPDeadline)
		e.RSVPDeadline = &deadline
	}
	return e, nil
}

// canViewEvent reports whether userID created, was invited to or shares a
// group with the event.
func canViewEvent(ctx context.Context, groups storage.GroupStore, e *models.Event, userID string) bool {
	if e.CreatedBy == userID || e.HasAttendee(userID) {
		return true
	}
	if e.GroupID == "" {
		return false
	}
	group, err := groups.GetGroup(ctx, e.GroupID)
	if err != nil {
		return false
	}
	_, ok := group.Member(userID)
	return ok
}

// canEditEvent reports whether userID created the event or administers its group.
func (s *CalendarService) canEditEvent(ctx context.Context, e *models.Event, userID string) bool {
	if e.CreatedBy == userID {
		return true
	}
	if e.GroupID == "" {
		return false
	}
	group, err := s.store.GetGroup(ctx, e.GroupID)
	if err != nil {
		return false
	}
	return group.IsAdmin(userID)
}

func (s *CalendarService) loadEvent(ctx context.Context, eventID, userID string) (*models.Event, error) {
	if eventID == "" {
		return nil, invalidArgument("event_id required")
	}
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, storeError("GetEvent", err, "event_id", eventID)
	}
	if !canViewEvent(ctx, s.store, event, userID) {
		return nil, permissionDenied("you are not invited to this event")
	}
	return event, nil
}

// CreateEvent schedules an event. The creator is always an attendee, and
// every attendee starts with a pending RSVP.
func (s *CalendarService) CreateEvent(ctx context.Context, req *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	e, err := eventFromDetails(req.Msg.EventDetails)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	if req.Msg.GroupID != "" {
		group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
		if err != nil {
			return nil, err
		}
		for _, a := range e.Attendees {
			if _, ok := group.Member(a); !ok {
				return nil, invalidArgument("attendee %q is not a member of the group", a)
			}
		}
	}
	e.GroupID = req.Msg.GroupID
	e.CreatedBy = userID
	if !e.HasAttendee(userID) {
		e.Attendees = append([]string{userID}, e.Attendees...)
	}

	created, err := s.newCalendar().AddEvent(e)
	if err != nil {
		return nil, calendarError(err)
	}
	if err := s.store.CreateEvent(ctx, &created); err != nil {
		return nil, storeError("CreateEvent", err)
	}

	slog.Info("Event created", "event_id", created.ID, "group_id", created.GroupID, "attendees", len(created.Attendees))
	if created.GroupID != "" {
		recordActivity(ctx, s.store, created.GroupID, userID, models.ActivityEventCreated, created.Title)
	}
	return connect.NewResponse(&api.CreateEventResponse{Event: eventToAPI(&created)}), nil
}

func (s *CalendarService) GetEvent(ctx context.Context, req *connect.Request[api.GetEventRequest]) (*connect.Response[api.GetEventResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	event, err := s.loadEvent(ctx, req.Msg.EventID, userID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetEventResponse{Event: eventToAPI(event)}), nil
}

// ListEvents lists the group's events when GroupID is set, otherwise the
// events the caller created or was invited to.
func (s *CalendarService) ListEvents(ctx context.Context, req *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	filter := storage.EventFilter{GroupID: req.Msg.GroupID}
	if req.Msg.GroupID != "" {
		if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID); err != nil {
			return nil, err
		}
	} else {
		filter.AttendeeID = userID
	}

	if req.Msg.Date != "" {
		date, err := models.ParseDate(req.Msg.Date)
		if err != nil {
			return nil, invalidArgument("%v", err)
		}
		next := date.AddDays(1)
		filter.From, filter.To = &date, &next
	} else {
		if req.Msg.From != "" {
			from, err := models.ParseDate(req.Msg.From)
			if err != nil {
				return nil, invalidArgument("%v", err)
			}
			filter.From = &from
		}
		if req.Msg.To != "" {
			to, err := models.ParseDate(req.Msg.To)
			if err != nil {
				return nil, invalidArgument("%v", err)
			}
			filter.To = &to
		}
	}

	events, err := s.store.ListEvents(ctx, filter)
	if err != nil {
		return nil, storeError("ListEvents", err)
	}

	out := make([]*api.Event, len(events))
	for i, e := range events {
		out[i] = eventToAPI(e)
	}
	return connect.NewResponse(&api.ListEventsResponse{Events: out}), nil
}

// UpdateEvent replaces an event's details. Answers of attendees who are
// still invited are kept; new attendees start pending.
func (s *CalendarService) UpdateEvent(ctx context.Context, req *connect.Request[api.UpdateEventRequest]) (*connect.Response[api.UpdateEventResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.loadEvent(ctx, req.Msg.EventID, userID)
	if err != nil {
		return nil, err
	}
	if !s.canEditEvent(ctx, existing, userID) {
		return nil, permissionDenied("only the organizer can edit this event")
	}

	updated, err := eventFromDetails(req.Msg.EventDetails)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	updated.ID = existing.ID
	updated.GroupID = existing.GroupID
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt
	if !updated.HasAttendee(existing.CreatedBy) {
		updated.Attendees = append([]string{existing.CreatedBy}, updated.Attendees...)
	}
	for _, a := range updated.Attendees {
		if r, ok := existing.RSVPs[a]; ok {
			updated.RSVPs[a] = r
		} else {
			updated.RSVPs[a] = models.RSVPResponse{UserID: a, Status: models.RSVPPending}
		}
	}

	cal := s.newCalendar()
	cal.Load(nil, []models.Event{*existing})
	if err := cal.UpdateEvent(existing.ID, updated); err != nil {
		return nil, calendarError(err)
	}
	if err := s.store.UpdateEvent(ctx, &updated); err != nil {
		return nil, storeError("UpdateEvent", err, "event_id", updated.ID)
	}

	slog.Info("Event updated", "event_id", updated.ID)
	notifyEvent(ctx, s.store, &updated, &models.ChatMessage{
		Type:    models.MessageEventUpdate,
		Content: eventChangeMessage(existing, &updated),
	})
	if updated.GroupID != "" {
		recordActivity(ctx, s.store, updated.GroupID, userID, models.ActivityEventUpdated, updated.Title)
	}
	return connect.NewResponse(&api.UpdateEventResponse{Event: eventToAPI(&updated)}), nil
}

func (s *CalendarService) DeleteEvent(ctx context.Context, req *connect.Request[api.DeleteEventRequest]) (*connect.Response[api.DeleteEventResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	event, err := s.loadEvent(ctx, req.Msg.EventID, userID)
	if err != nil {
		return nil, err
	}
	if !s.canEditEvent(ctx, event, userID) {
		return nil, permissionDenied("only the organizer can delete this event")
	}

	if err := s.store.DeleteEvent(ctx, event.ID); err != nil {
		return nil, storeError("DeleteEvent", err, "event_id", event.ID)
	}

	slog.Info("Event deleted", "event_id", event.ID)
	// The event's own chat went with it, so the group hears about it instead.
	if event.GroupID != "" {
		s.announceCancellation(ctx, event, userID)
	}
	return connect.NewResponse(&api.DeleteEventResponse{}), nil
}

func (s *CalendarService) announceCancellation(ctx context.Context, event *models.Event, userID string) {
	recordActivity(ctx, s.store, event.GroupID, userID, models.ActivityEventDeleted, event.Title)
	group, err := s.store.GetGroup(ctx, event.GroupID)
	if err != nil {
		slog.Error("Failed to load group of deleted event", "group_id", event.GroupID, "error", err)
		return
	}
	notifyGroup(ctx, s.store, group, userID, &models.ChatMessage{
		Type:    models.MessageEventUpdate,
		EventID: event.ID,
		Content: fmt.Sprintf("Event \"%s\" was cancelled.", event.Title),
	})
}

// displayName falls back to a placeholder when the account is gone.
func (s *CalendarService) displayName(ctx context.Context, userID string) string {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return session.UnknownParticipantName
	}
	return user.DisplayName
}

// RespondRSVP records the caller's answer to an invitation.
func (s *CalendarService) RespondRSVP(ctx context.Context, req *connect.Request[api.RespondRSVPRequest]) (*connect.Response[api.RespondRSVPResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	status, err := models.ParseRSVPStatus(req.Msg.Status)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	if req.Msg.GuestCount < 0 {
		return nil, invalidArgument("guest_count cannot be negative")
	}

	event, err := s.loadEvent(ctx, req.Msg.EventID, userID)
	if err != nil {
		return nil, err
	}

	cal := s.newCalendar()
	cal.Load(nil, []models.Event{*event})
	resp, err := cal.RespondRSVP(event.ID, userID, status, req.Msg.Note, req.Msg.GuestCount)
	if err != nil {
		slog.Warn("RespondRSVP rejected", "event_id", event.ID, "user_id", userID, "error", err)
		return nil, calendarError(err)
	}
	if err := s.store.SaveRSVP(ctx, event.ID, resp); err != nil {
		return nil, storeError("SaveRSVP", err, "event_id", event.ID)
	}

	slog.Info("RSVP recorded", "event_id", event.ID, "user_id", userID, "status", resp.Status)
	notifyEvent(ctx, s.store, event, &models.ChatMessage{
		Type:       models.MessageRSVPUpdate,
		Content:    rsvpMessage(s.displayName(ctx, userID), resp.Status),
		RSVPStatus: resp.Status,
	})
	return connect.NewResponse(&api.RespondRSVPResponse{RSVP: rsvpToAPI(resp)}), nil
}

// GetRSVPStats counts answers by status.
func (s *CalendarService) GetRSVPStats(ctx context.Context, req *connect.Request[api.GetRSVPStatsRequest]) (*connect.Response[api.GetRSVPStatsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	event, err := s.loadEvent(ctx, req.Msg.EventID, userID)
	if err != nil {
		return nil, err
	}

	cal := s.newCalendar()
	cal.Load(nil, []models.Event{*event})
	stats := cal.RSVPStats(event.ID)

	return connect.NewResponse(&api.GetRSVPStatsResponse{
		Pending:   stats[models.RSVPPending],
		Attending: stats[models.RSVPAttending],
		Declined:  stats[models.RSVPDeclined],
		Maybe:     stats[models.RSVPMaybe],
		Headcount: event.AttendingCount(),
	}), nil
}
