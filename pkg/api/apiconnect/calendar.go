package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/syncplan/pkg/api"
)

// CalendarServiceName is the fully-qualified name of the CalendarService service.
const CalendarServiceName = "syncplan.v1.CalendarService"

const (
	CalendarServiceRecordAvailabilityProcedure = "/" + CalendarServiceName + "/RecordAvailability"
	CalendarServiceListAvailabilityProcedure   = "/" + CalendarServiceName + "/ListAvailability"
	CalendarServiceSuggestMeetingsProcedure    = "/" + CalendarServiceName + "/SuggestMeetings"
	CalendarServiceCreateEventProcedure        = "/" + CalendarServiceName + "/CreateEvent"
	CalendarServiceGetEventProcedure           = "/" + CalendarServiceName + "/GetEvent"
	CalendarServiceListEventsProcedure         = "/" + CalendarServiceName + "/ListEvents"
	CalendarServiceUpdateEventProcedure        = "/" + CalendarServiceName + "/UpdateEvent"
	CalendarServiceDeleteEventProcedure        = "/" + CalendarServiceName + "/DeleteEvent"
	CalendarServiceRespondRSVPProcedure        = "/" + CalendarServiceName + "/RespondRSVP"
	CalendarServiceGetRSVPStatsProcedure       = "/" + CalendarServiceName + "/GetRSVPStats"
)

// CalendarServiceHandler is implemented by the server side of the service.
type CalendarServiceHandler interface {
	RecordAvailability(context.Context, *connect.Request[api.RecordAvailabilityRequest]) (*connect.Response[api.RecordAvailabilityResponse], error)
	ListAvailability(context.Context, *connect.Request[api.ListAvailabilityRequest]) (*connect.Response[api.ListAvailabilityResponse], error)
	SuggestMeetings(context.Context, *connect.Request[api.SuggestMeetingsRequest]) (*connect.Response[api.SuggestMeetingsResponse], error)
	CreateEvent(context.Context, *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error)
	GetEvent(context.Context, *connect.Request[api.GetEventRequest]) (*connect.Response[api.GetEventResponse], error)
	ListEvents(context.Context, *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error)
	UpdateEvent(context.Context, *connect.Request[api.UpdateEventRequest]) (*connect.Response[api.UpdateEventResponse], error)
	DeleteEvent(context.Context, *connect.Request[api.DeleteEventRequest]) (*connect.Response[api.DeleteEventResponse], error)
	RespondRSVP(context.Context, *connect.Request[api.RespondRSVPRequest]) (*connect.Response[api.RespondRSVPResponse], error)
	GetRSVPStats(context.Context, *connect.Request[api.GetRSVPStatsRequest]) (*connect.Response[api.GetRSVPStatsResponse], error)
}

// NewCalendarServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewCalendarServiceHandler(svc CalendarServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	route(mux, CalendarServiceRecordAvailabilityProcedure, svc.RecordAvailability, opts)
	route(mux, CalendarServiceListAvailabilityProcedure, svc.ListAvailability, opts)
	route(mux, CalendarServiceSuggestMeetingsProcedure, svc.SuggestMeetings, opts)
	route(mux, CalendarServiceCreateEventProcedure, svc.CreateEvent, opts)
	route(mux, CalendarServiceGetEventProcedure, svc.GetEvent, opts)
	route(mux, CalendarServiceListEventsProcedure, svc.ListEvents, opts)
	route(mux, CalendarServiceUpdateEventProcedure, svc.UpdateEvent, opts)
	route(mux, CalendarServiceDeleteEventProcedure, svc.DeleteEvent, opts)
	route(mux, CalendarServiceRespondRSVPProcedure, svc.RespondRSVP, opts)
	route(mux, CalendarServiceGetRSVPStatsProcedure, svc.GetRSVPStats, opts)
	return "/" + CalendarServiceName + "/", mux
}

// CalendarServiceClient is a client for the CalendarService service.
type CalendarServiceClient interface {
	RecordAvailability(context.Context, *connect.Request[api.RecordAvailabilityRequest]) (*connect.Response[api.RecordAvailabilityResponse], error)
	ListAvailability(context.Context, *connect.Request[api.ListAvailabilityRequest]) (*connect.Response[api.ListAvailabilityResponse], error)
	SuggestMeetings(context.Context, *connect.Request[api.SuggestMeetingsRequest]) (*connect.Response[api.SuggestMeetingsResponse], error)
	CreateEvent(context.Context, *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error)
	GetEvent(context.Context, *connect.Request[api.GetEventRequest]) (*connect.Response[api.GetEventResponse], error)
	ListEvents(context.Context, *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error)
	UpdateEvent(context.Context, *connect.Request[api.UpdateEventRequest]) (*connect.Response[api.UpdateEventResponse], error)
	DeleteEvent(context.Context, *connect.Request[api.DeleteEventRequest]) (*connect.Response[api.DeleteEventResponse], error)
	RespondRSVP(context.Context, *connect.Request[api.RespondRSVPRequest]) (*connect.Response[api.RespondRSVPResponse], error)
	GetRSVPStats(context.Context, *connect.Request[api.GetRSVPStatsRequest]) (*connect.Response[api.GetRSVPStatsResponse], error)
}

// NewCalendarServiceClient constructs a client for the CalendarService service. The base URL
// is the scheme, host and optional prefix, e.g. http://localhost:8080.
func NewCalendarServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) CalendarServiceClient {
	baseURL = trimBaseURL(baseURL)
	opts = clientOptions(opts)
	return &calendarServiceClient{
		recordAvailability: connect.NewClient[api.RecordAvailabilityRequest, api.RecordAvailabilityResponse](httpClient, baseURL+CalendarServiceRecordAvailabilityProcedure, opts...),
		listAvailability:   connect.NewClient[api.ListAvailabilityRequest, api.ListAvailabilityResponse](httpClient, baseURL+CalendarServiceListAvailabilityProcedure, opts...),
		suggestMeetings:    connect.NewClient[api.SuggestMeetingsRequest, api.SuggestMeetingsResponse](httpClient, baseURL+CalendarServiceSuggestMeetingsProcedure, opts...),
		createEvent:        connect.NewClient[api.CreateEventRequest, api.CreateEventResponse](httpClient, baseURL+CalendarServiceCreateEventProcedure, opts...),
		getEvent:           connect.NewClient[api.GetEventRequest, api.GetEventResponse](httpClient, baseURL+CalendarServiceGetEventProcedure, opts...),
		listEvents:         connect.NewClient[api.ListEventsRequest, api.ListEventsResponse](httpClient, baseURL+CalendarServiceListEventsProcedure, opts...),
		updateEvent:        connect.NewClient[api.UpdateEventRequest, api.UpdateEventResponse](httpClient, baseURL+CalendarServiceUpdateEventProcedure, opts...),
		deleteEvent:        connect.NewClient[api.DeleteEventRequest, api.DeleteEventResponse](httpClient, baseURL+CalendarServiceDeleteEventProcedure, opts...),
		respondRSVP:        connect.NewClient[api.RespondRSVPRequest, api.RespondRSVPResponse](httpClient, baseURL+CalendarServiceRespondRSVPProcedure, opts...),
		getRSVPStats:       connect.NewClient[api.GetRSVPStatsRequest, api.GetRSVPStatsResponse](httpClient, baseURL+CalendarServiceGetRSVPStatsProcedure, opts...),
	}
}

type calendarServiceClient struct {
	recordAvailability *connect.Client[api.RecordAvailabilityRequest, api.RecordAvailabilityResponse]
	listAvailability   *connect.Client[api.ListAvailabilityRequest, api.ListAvailabilityResponse]
	suggestMeetings    *connect.Client[api.SuggestMeetingsRequest, api.SuggestMeetingsResponse]
	createEvent        *connect.Client[api.CreateEventRequest, api.CreateEventResponse]
	getEvent           *connect.Client[api.GetEventRequest, api.GetEventResponse]
	listEvents         *connect.Client[api.ListEventsRequest, api.ListEventsResponse]
	updateEvent        *connect.Client[api.UpdateEventRequest, api.UpdateEventResponse]
	deleteEvent        *connect.Client[api.DeleteEventRequest, api.DeleteEventResponse]
	respondRSVP        *connect.Client[api.RespondRSVPRequest, api.RespondRSVPResponse]
	getRSVPStats       *connect.Client[api.GetRSVPStatsRequest, api.GetRSVPStatsResponse]
}

func (c *calendarServiceClient) RecordAvailability(ctx context.Context, req *connect.Request[api.RecordAvailabilityRequest]) (*connect.Response[api.RecordAvailabilityResponse], error) {
	return c.recordAvailability.CallUnary(ctx, req)
}

func (c *calendarServiceClient) ListAvailability(ctx context.Context, req *connect.Request[api.ListAvailabilityRequest]) (*connect.Response[api.ListAvailabilityResponse], error) {
	return c.listAvailability.CallUnary(ctx, req)
}

func (c *calendarServiceClient) SuggestMeetings(ctx context.Context, req *connect.Request[api.SuggestMeetingsRequest]) (*connect.Response[api.SuggestMeetingsResponse], error) {
	return c.suggestMeetings.CallUnary(ctx, req)
}

func (c *calendarServiceClient) CreateEvent(ctx context.Context, req *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error) {
	return c.createEvent.CallUnary(ctx, req)
}

func (c *calendarServiceClient) GetEvent(ctx context.Context, req *connect.Request[api.GetEventRequest]) (*connect.Response[api.GetEventResponse], error) {
	return c.getEvent.CallUnary(ctx, req)
}

func (c *calendarServiceClient) ListEvents(ctx context.Context, req *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error) {
	return c.listEvents.CallUnary(ctx, req)
}

func (c *calendarServiceClient) UpdateEvent(ctx context.Context, req *connect.Request[api.UpdateEventRequest]) (*connect.Response[api.UpdateEventResponse], error) {
	return c.updateEvent.CallUnary(ctx, req)
}

func (c *calendarServiceClient) DeleteEvent(ctx context.Context, req *connect.Request[api.DeleteEventRequest]) (*connect.Response[api.DeleteEventResponse], error) {
	return c.deleteEvent.CallUnary(ctx, req)
}

func (c *calendarServiceClient) RespondRSVP(ctx context.Context, req *connect.Request[api.RespondRSVPRequest]) (*connect.Response[api.RespondRSVPResponse], error) {
	return c.respondRSVP.CallUnary(ctx, req)
}

func (c *calendarServiceClient) GetRSVPStats(ctx context.Context, req *connect.Request[api.GetRSVPStatsRequest]) (*connect.Response[api.GetRSVPStatsResponse], error) {
	return c.getRSVPStats.CallUnary(ctx, req)
}
