package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/syncplan/pkg/api"
)

// SplitServiceName is the fully-qualified name of the SplitService service.
const SplitServiceName = "syncplan.v1.SplitService"

const (
	SplitServiceCalculateSplitProcedure   = "/" + SplitServiceName + "/CalculateSplit"
	SplitServiceCreateBillProcedure       = "/" + SplitServiceName + "/CreateBill"
	SplitServiceGetBillProcedure          = "/" + SplitServiceName + "/GetBill"
	SplitServiceUpdateBillProcedure       = "/" + SplitServiceName + "/UpdateBill"
	SplitServiceDeleteBillProcedure       = "/" + SplitServiceName + "/DeleteBill"
	SplitServiceListBillsByGroupProcedure = "/" + SplitServiceName + "/ListBillsByGroup"
	SplitServiceGetBillSummaryProcedure   = "/" + SplitServiceName + "/GetBillSummary"
)

// SplitServiceHandler is implemented by the server side of the service.
type SplitServiceHandler interface {
	CalculateSplit(context.Context, *connect.Request[api.CalculateSplitRequest]) (*connect.Response[api.CalculateSplitResponse], error)
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error)
	UpdateBill(context.Context, *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error)
	DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error)
	ListBillsByGroup(context.Context, *connect.Request[api.ListBillsByGroupRequest]) (*connect.Response[api.ListBillsByGroupResponse], error)
	GetBillSummary(context.Context, *connect.Request[api.GetBillSummaryRequest]) (*connect.Response[api.GetBillSummaryResponse], error)
}

// NewSplitServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSplitServiceHandler(svc SplitServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	route(mux, SplitServiceCalculateSplitProcedure, svc.CalculateSplit, opts)
	route(mux, SplitServiceCreateBillProcedure, svc.CreateBill, opts)
	route(mux, SplitServiceGetBillProcedure, svc.GetBill, opts)
	route(mux, SplitServiceUpdateBillProcedure, svc.UpdateBill, opts)
	route(mux, SplitServiceDeleteBillProcedure, svc.DeleteBill, opts)
	route(mux, SplitServiceListBillsByGroupProcedure, svc.ListBillsByGroup, opts)
	route(mux, SplitServiceGetBillSummaryProcedure, svc.GetBillSummary, opts)
	return "/" + SplitServiceName + "/", mux
}

// SplitServiceClient is a client for the SplitService service.
type SplitServiceClient interface {
	CalculateSplit(context.Context, *connect.Request[api.CalculateSplitRequest]) (*connect.Response[api.CalculateSplitResponse], error)
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error)
	UpdateBill(context.Context, *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error)
	DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error)
	ListBillsByGroup(context.Context, *connect.Request[api.ListBillsByGroupRequest]) (*connect.Response[api.ListBillsByGroupResponse], error)
	GetBillSummary(context.Context, *connect.Request[api.GetBillSummaryRequest]) (*connect.Response[api.GetBillSummaryResponse], error)
}

// NewSplitServiceClient constructs a client for the SplitService service. The base URL
// is the scheme, host and optional prefix, e.g. http://localhost:8080.
func NewSplitServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SplitServiceClient {
	baseURL = trimBaseURL(baseURL)
	opts = clientOptions(opts)
	return &splitServiceClient{
		calculateSplit:   connect.NewClient[api.CalculateSplitRequest, api.CalculateSplitResponse](httpClient, baseURL+SplitServiceCalculateSplitProcedure, opts...),
		createBill:       connect.NewClient[api.CreateBillRequest, api.CreateBillResponse](httpClient, baseURL+SplitServiceCreateBillProcedure, opts...),
		getBill:          connect.NewClient[api.GetBillRequest, api.GetBillResponse](httpClient, baseURL+SplitServiceGetBillProcedure, opts...),
		updateBill:       connect.NewClient[api.UpdateBillRequest, api.UpdateBillResponse](httpClient, baseURL+SplitServiceUpdateBillProcedure, opts...),
		deleteBill:       connect.NewClient[api.DeleteBillRequest, api.DeleteBillResponse](httpClient, baseURL+SplitServiceDeleteBillProcedure, opts...),
		listBillsByGroup: connect.NewClient[api.ListBillsByGroupRequest, api.ListBillsByGroupResponse](httpClient, baseURL+SplitServiceListBillsByGroupProcedure, opts...),
		getBillSummary:   connect.NewClient[api.GetBillSummaryRequest, api.GetBillSummaryResponse](httpClient, baseURL+SplitServiceGetBillSummaryProcedure, opts...),
	}
}

type splitServiceClient struct {
	calculateSplit   *connect.Client[api.CalculateSplitRequest, api.CalculateSplitResponse]
	createBill       *connect.Client[api.CreateBillRequest, api.CreateBillResponse]
	getBill          *connect.Client[api.GetBillRequest, api.GetBillResponse]
	updateBill       *connect.Client[api.UpdateBillRequest, api.UpdateBillResponse]
	deleteBill       *connect.Client[api.DeleteBillRequest, api.DeleteBillResponse]
	listBillsByGroup *connect.Client[api.ListBillsByGroupRequest, api.ListBillsByGroupResponse]
	getBillSummary   *connect.Client[api.GetBillSummaryRequest, api.GetBillSummaryResponse]
}

func (c *splitServiceClient) CalculateSplit(ctx context.Context, req *connect.Request[api.CalculateSplitRequest]) (*connect.Response[api.CalculateSplitResponse], error) {
	return c.calculateSplit.CallUnary(ctx, req)
}

func (c *splitServiceClient) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *splitServiceClient) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *splitServiceClient) UpdateBill(ctx context.Context, req *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error) {
	return c.updateBill.CallUnary(ctx, req)
}

func (c *splitServiceClient) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	return c.deleteBill.CallUnary(ctx, req)
}

func (c *splitServiceClient) ListBillsByGroup(ctx context.Context, req *connect.Request[api.ListBillsByGroupRequest]) (*connect.Response[api.ListBillsByGroupResponse], error) {
	return c.listBillsByGroup.CallUnary(ctx, req)
}

func (c *splitServiceClient) GetBillSummary(ctx context.Context, req *connect.Request[api.GetBillSummaryRequest]) (*connect.Response[api.GetBillSummaryResponse], error) {
	return c.getBillSummary.CallUnary(ctx, req)
}
