package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/syncplan/pkg/api"
)

// ChatServiceName is the fully-qualified name of the ChatService service.
const ChatServiceName = "syncplan.v1.ChatService"

const (
	ChatServiceCreateDirectChatProcedure = "/" + ChatServiceName + "/CreateDirectChat"
	ChatServiceGetGroupChatProcedure     = "/" + ChatServiceName + "/GetGroupChat"
	ChatServiceGetEventChatProcedure     = "/" + ChatServiceName + "/GetEventChat"
	ChatServiceListChatsProcedure        = "/" + ChatServiceName + "/ListChats"
	ChatServiceSendMessageProcedure      = "/" + ChatServiceName + "/SendMessage"
	ChatServiceListMessagesProcedure     = "/" + ChatServiceName + "/ListMessages"
	ChatServiceMarkReadProcedure         = "/" + ChatServiceName + "/MarkRead"
	ChatServiceDeleteMessageProcedure    = "/" + ChatServiceName + "/DeleteMessage"
)

// ChatServiceHandler is implemented by the server side of the service.
type ChatServiceHandler interface {
	CreateDirectChat(context.Context, *connect.Request[api.CreateDirectChatRequest]) (*connect.Response[api.CreateDirectChatResponse], error)
	GetGroupChat(context.Context, *connect.Request[api.GetGroupChatRequest]) (*connect.Response[api.GetGroupChatResponse], error)
	GetEventChat(context.Context, *connect.Request[api.GetEventChatRequest]) (*connect.Response[api.GetEventChatResponse], error)
	ListChats(context.Context, *connect.Request[api.ListChatsRequest]) (*connect.Response[api.ListChatsResponse], error)
	SendMessage(context.Context, *connect.Request[api.SendMessageRequest]) (*connect.Response[api.SendMessageResponse], error)
	ListMessages(context.Context, *connect.Request[api.ListMessagesRequest]) (*connect.Response[api.ListMessagesResponse], error)
	MarkRead(context.Context, *connect.Request[api.MarkReadRequest]) (*connect.Response[api.MarkReadResponse], error)
	DeleteMessage(context.Context, *connect.Request[api.DeleteMessageRequest]) (*connect.Response[api.DeleteMessageResponse], error)
}

// NewChatServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewChatServiceHandler(svc ChatServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	route(mux, ChatServiceCreateDirectChatProcedure, svc.CreateDirectChat, opts)
	route(mux, ChatServiceGetGroupChatProcedure, svc.GetGroupChat, opts)
	route(mux, ChatServiceGetEventChatProcedure, svc.GetEventChat, opts)
	route(mux, ChatServiceListChatsProcedure, svc.ListChats, opts)
	route(mux, ChatServiceSendMessageProcedure, svc.SendMessage, opts)
	route(mux, ChatServiceListMessagesProcedure, svc.ListMessages, opts)
	route(mux, ChatServiceMarkReadProcedure, svc.MarkRead, opts)
	route(mux, ChatServiceDeleteMessageProcedure, svc.DeleteMessage, opts)
	return "/" + ChatServiceName + "/", mux
}

// ChatServiceClient is a client for the ChatService service.
type ChatServiceClient interface {
	CreateDirectChat(context.Context, *connect.Request[api.CreateDirectChatRequest]) (*connect.Response[api.CreateDirectChatResponse], error)
	GetGroupChat(context.Context, *connect.Request[api.GetGroupChatRequest]) (*connect.Response[api.GetGroupChatResponse], error)
	GetEventChat(context.Context, *connect.Request[api.GetEventChatRequest]) (*connect.Response[api.GetEventChatResponse], error)
	ListChats(context.Context, *connect.Request[api.ListChatsRequest]) (*connect.Response[api.ListChatsResponse], error)
	SendMessage(context.Context, *connect.Request[api.SendMessageRequest]) (*connect.Response[api.SendMessageResponse], error)
	ListMessages(context.Context, *connect.Request[api.ListMessagesRequest]) (*connect.Response[api.ListMessagesResponse], error)
	MarkRead(context.Context, *connect.Request[api.MarkReadRequest]) (*connect.Response[api.MarkReadResponse], error)
	DeleteMessage(context.Context, *connect.Request[api.DeleteMessageRequest]) (*connect.Response[api.DeleteMessageResponse], error)
}

// NewChatServiceClient constructs a client for the ChatService service. The base URL
// is the scheme, host and optional prefix, e.g. http://localhost:8080.
func NewChatServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ChatServiceClient {
	baseURL = trimBaseURL(baseURL)
	opts = clientOptions(opts)
	return &chatServiceClient{
		createDirectChat: connect.NewClient[api.CreateDirectChatRequest, api.CreateDirectChatResponse](httpClient, baseURL+ChatServiceCreateDirectChatProcedure, opts...),
		getGroupChat:     connect.NewClient[api.GetGroupChatRequest, api.GetGroupChatResponse](httpClient, baseURL+ChatServiceGetGroupChatProcedure, opts...),
		getEventChat:     connect.NewClient[api.GetEventChatRequest, api.GetEventChatResponse](httpClient, baseURL+ChatServiceGetEventChatProcedure, opts...),
		listChats:        connect.NewClient[api.ListChatsRequest, api.ListChatsResponse](httpClient, baseURL+ChatServiceListChatsProcedure, opts...),
		sendMessage:      connect.NewClient[api.SendMessageRequest, api.SendMessageResponse](httpClient, baseURL+ChatServiceSendMessageProcedure, opts...),
		listMessages:     connect.NewClient[api.ListMessagesRequest, api.ListMessagesResponse](httpClient, baseURL+ChatServiceListMessagesProcedure, opts...),
		markRead:         connect.NewClient[api.MarkReadRequest, api.MarkReadResponse](httpClient, baseURL+ChatServiceMarkReadProcedure, opts...),
		deleteMessage:    connect.NewClient[api.DeleteMessageRequest, api.DeleteMessageResponse](httpClient, baseURL+ChatServiceDeleteMessageProcedure, opts...),
	}
}

type chatServiceClient struct {
	createDirectChat *connect.Client[api.CreateDirectChatRequest, api.CreateDirectChatResponse]
	getGroupChat     *connect.Client[api.GetGroupChatRequest, api.GetGroupChatResponse]
	getEventChat     *connect.Client[api.GetEventChatRequest, api.GetEventChatResponse]
	listChats        *connect.Client[api.ListChatsRequest, api.ListChatsResponse]
	sendMessage      *connect.Client[api.SendMessageRequest, api.SendMessageResponse]
	listMessages     *connect.Client[api.ListMessagesRequest, api.ListMessagesResponse]
	markRead         *connect.Client[api.MarkReadRequest, api.MarkReadResponse]
	deleteMessage    *connect.Client[api.DeleteMessageRequest, api.DeleteMessageResponse]
}

func (c *chatServiceClient) CreateDirectChat(ctx context.Context, req *connect.Request[api.CreateDirectChatRequest]) (*connect.Response[api.CreateDirectChatResponse], error) {
	return c.createDirectChat.CallUnary(ctx, req)
}

func (c *chatServiceClient) GetGroupChat(ctx context.Context, req *connect.Request[api.GetGroupChatRequest]) (*connect.Response[api.GetGroupChatResponse], error) {
	return c.getGroupChat.CallUnary(ctx, req)
}

func (c *chatServiceClient) GetEventChat(ctx context.Context, req *connect.Request[api.GetEventChatRequest]) (*connect.Response[api.GetEventChatResponse], error) {
	return c.getEventChat.CallUnary(ctx, req)
}

func (c *chatServiceClient) ListChats(ctx context.Context, req *connect.Request[api.ListChatsRequest]) (*connect.Response[api.ListChatsResponse], error) {
	return c.listChats.CallUnary(ctx, req)
}

func (c *chatServiceClient) SendMessage(ctx context.Context, req *connect.Request[api.SendMessageRequest]) (*connect.Response[api.SendMessageResponse], error) {
	return c.sendMessage.CallUnary(ctx, req)
}

func (c *chatServiceClient) ListMessages(ctx context.Context, req *connect.Request[api.ListMessagesRequest]) (*connect.Response[api.ListMessagesResponse], error) {
	return c.listMessages.CallUnary(ctx, req)
}

func (c *chatServiceClient) MarkRead(ctx context.Context, req *connect.Request[api.MarkReadRequest]) (*connect.Response[api.MarkReadResponse], error) {
	return c.markRead.CallUnary(ctx, req)
}

func (c *chatServiceClient) DeleteMessage(ctx context.Context, req *connect.Request[api.DeleteMessageRequest]) (*connect.Response[api.DeleteMessageResponse], error) {
	return c.deleteMessage.CallUnary(ctx, req)
}
