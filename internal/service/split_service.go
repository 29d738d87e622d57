package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/syncplan/internal/models"
	"github.com/mmynk/syncplan/internal/session"
	"github.com/mmynk/syncplan/internal/storage"
	"github.com/mmynk/syncplan/pkg/api"
)

// SplitService implements the Connect SplitService.
type SplitService struct {
	store    storage.Store
	currency string
}

// NewSplitService creates a new SplitService. currency is used for bills
// that do not name one; empty means the calculator default.
func NewSplitService(store storage.Store, currency string) *SplitService {
	return &SplitService{store: store, currency: currency}
}

// validatePayerID checks if the payer is one of the participants.
func validatePayerID(payerID string, participants []string) error {
	if payerID == "" {
		return nil // Optional field
	}
	if !contains(participants, payerID) {
		return fmt.Errorf("payer_id %q must be one of the participants", payerID)
	}
	return nil
}

// findNewParticipants returns participants that are not already in existingMembers.
func findNewParticipants(participants, existingMembers []string) []string {
	memberSet := make(map[string]bool, len(existingMembers))
	for _, m := range existingMembers {
		memberSet[m] = true
	}
	var newOnes []string
	for _, p := range participants {
		if !memberSet[p] {
			newOnes = append(newOnes, p)
		}
	}
	return newOnes
}

// autoAddParticipantsToGroup adds bill participants who are registered
// users but not yet members of the group. Failures are only logged.
func (s *SplitService) autoAddParticipantsToGroup(ctx context.Context, group *models.Group, participants []string) {
	if group == nil {
		return
	}
	candidates := findNewParticipants(participants, group.MemberIDs())
	if len(candidates) == 0 {
		return
	}

	users, err := s.store.GetUsersByIDs(ctx, candidates)
	if err != nil {
		slog.Warn("autoAddParticipantsToGroup: failed to look up users", "group_id", group.ID, "error", err)
		return
	}

	var added []string
	for _, id := range candidates {
		if _, ok := users[id]; !ok {
			continue
		}
		member := models.GroupMember{UserID: id, Role: models.RoleMember}
		if err := s.store.AddGroupMember(ctx, group.ID, member); err != nil {
			slog.Error("autoAddParticipantsToGroup: failed to add member", "group_id", group.ID, "user_id", id, "error", err)
			continue
		}
		added = append(added, id)
	}
	if len(added) > 0 {
		slog.Info("Auto-added participants to group", "group_id", group.ID, "new_members", added)
	}
}

// canAccessBill reports whether userID takes part in the bill or belongs
// to its group.
func (s *SplitService) canAccessBill(ctx context.Context, bill *models.Bill, userID string) (bool, error) {
	if bill.HasParticipant(userID) || bill.PayerID == userID {
		return true, nil
	}
	if bill.GroupID == "" {
		return false, nil
	}
	group, err := s.store.GetGroup(ctx, bill.GroupID)
	if err != nil {
		return false, err
	}
	_, ok := group.Member(userID)
	return ok, nil
}

// loadBill fetches a bill the caller is allowed to see.
func (s *SplitService) loadBill(ctx context.Context, billID, userID string) (*models.Bill, error) {
	if billID == "" {
		return nil, invalidArgument("bill_id required")
	}
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, storeError("GetBill", err, "bill_id", billID)
	}
	ok, err := s.canAccessBill(ctx, bill, userID)
	if err != nil {
		return nil, storeError("GetBill", err, "bill_id", billID)
	}
	if !ok {
		return nil, permissionDenied("you must be a participant to access this bill")
	}
	return bill, nil
}

// newSession builds a split session from wire input.
func (s *SplitService) newSession(in api.SplitInput, currency string) (*session.Bill, error) {
	m := &models.Bill{Currency: currency}
	if m.Currency == "" {
		m.Currency = s.currency
	}
	if err := splitInputToModel(in, m); err != nil {
		return nil, err
	}
	return session.BillFromModel(m), nil
}

// attendeesAsParticipants makes the event's attendees the bill's
// participants, named after their accounts.
func (s *SplitService) attendeesAsParticipants(ctx context.Context, b *session.Bill, eventID, userID string) error {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return storeError("GetEvent", err, "event_id", eventID)
	}
	if event.CreatedBy != userID && !event.HasAttendee(userID) {
		return permissionDenied("you must be invited to the event")
	}

	users, err := s.store.GetUsersByIDs(ctx, event.Attendees)
	if err != nil {
		return storeError("GetUsersByIDs", err, "event_id", eventID)
	}
	names := make(map[string]string, len(users))
	for id, u := range users {
		names[id] = u.DisplayName
	}
	b.SetParticipantsFromAttendees(event.Attendees, names)
	return nil
}

// CalculateSplit previews a split. Incomplete input still yields results;
// Valid and ValidationError tell whether it could be saved.
func (s *SplitService) CalculateSplit(ctx context.Context, req *connect.Request[api.CalculateSplitRequest]) (*connect.Response[api.CalculateSplitResponse], error) {
	b, err := s.newSession(req.Msg.SplitInput, req.Msg.Currency)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}

	slog.Debug("CalculateSplit",
		"method", req.Msg.Method,
		"items", len(req.Msg.Items),
		"participants", len(req.Msg.Participants),
	)

	totals := b.Totals()
	resp := &api.CalculateSplitResponse{
		Results:  resultsToAPI(b.Results()),
		Subtotal: totals.Subtotal,
		Tip:      totals.Tip,
		Tax:      totals.Tax,
		Total:    totals.GrandTotal,
		Valid:    true,
		Summary:  b.RenderSummary(),
	}
	if err := b.Validate(); err != nil {
		resp.Valid = false
		resp.ValidationError = err.Error()
	}
	return connect.NewResponse(resp), nil
}

// CreateBill validates a split and persists it.
func (s *SplitService) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var group *models.Group
	if req.Msg.GroupID != "" {
		if group, err = memberGroup(ctx, s.store, req.Msg.GroupID, userID); err != nil {
			return nil, err
		}
	}

	b, err := s.newSession(req.Msg.SplitInput, req.Msg.Currency)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	if req.Msg.EventID != "" && len(req.Msg.Participants) == 0 {
		if err := s.attendeesAsParticipants(ctx, b, req.Msg.EventID, userID); err != nil {
			return nil, err
		}
	}

	if err := b.Validate(); err != nil {
		slog.Warn("CreateBill validation failed", "error", err)
		return nil, invalidArgument("%v", err)
	}

	bill := &models.Bill{
		Title:   req.Msg.Title,
		GroupID: req.Msg.GroupID,
		EventID: req.Msg.EventID,
		PayerID: req.Msg.PayerID,
	}
	b.ApplyTo(bill)

	if err := validatePayerID(bill.PayerID, bill.ParticipantIDs()); err != nil {
		return nil, invalidArgument("%v", err)
	}
	if group == nil && !bill.HasParticipant(userID) {
		return nil, permissionDenied("you must be a participant to create this bill")
	}

	if err := s.store.CreateBill(ctx, bill); err != nil {
		return nil, storeError("CreateBill", err)
	}
	s.autoAddParticipantsToGroup(ctx, group, bill.ParticipantIDs())

	slog.Info("Bill created", "bill_id", bill.ID, "group_id", bill.GroupID, "method", bill.Method)
	s.announceBill(ctx, group, bill, userID)
	return connect.NewResponse(&api.CreateBillResponse{Bill: billToAPI(bill)}), nil
}

// announceBill posts the split into the group's chat, or into the event's
// chat when the bill has no group.
func (s *SplitService) announceBill(ctx context.Context, group *models.Group, bill *models.Bill, userID string) {
	if group != nil {
		notifyGroup(ctx, s.store, group, userID, billSplitMessage(bill))
		return
	}
	if bill.EventID == "" {
		return
	}
	event, err := s.store.GetEvent(ctx, bill.EventID)
	if err != nil {
		slog.Warn("Bill refers to a missing event", "bill_id", bill.ID, "event_id", bill.EventID, "error", err)
		return
	}
	if !canViewEvent(ctx, s.store, event, userID) {
		return
	}
	notifyEvent(ctx, s.store, event, billSplitMessage(bill))
}

// GetBill retrieves a bill by ID with recomputed results.
func (s *SplitService) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	bill, err := s.loadBill(ctx, req.Msg.BillID, userID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetBillResponse{Bill: billToAPI(bill)}), nil
}

// UpdateBill replaces the contents of an existing bill. Group and event
// links are kept.
func (s *SplitService) UpdateBill(ctx context.Context, req *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.loadBill(ctx, req.Msg.BillID, userID)
	if err != nil {
		return nil, err
	}

	currency := req.Msg.Currency
	if currency == "" {
		currency = existing.Currency
	}
	b, err := s.newSession(req.Msg.SplitInput, currency)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	if err := b.Validate(); err != nil {
		slog.Warn("UpdateBill validation failed", "bill_id", existing.ID, "error", err)
		return nil, invalidArgument("%v", err)
	}

	bill := *existing
	if req.Msg.Title != "" {
		bill.Title = req.Msg.Title
	}
	if req.Msg.PayerID != "" {
		bill.PayerID = req.Msg.PayerID
	}
	b.ApplyTo(&bill)

	if err := validatePayerID(bill.PayerID, bill.ParticipantIDs()); err != nil {
		return nil, invalidArgument("%v", err)
	}

	if err := s.store.UpdateBill(ctx, &bill); err != nil {
		return nil, storeError("UpdateBill", err, "bill_id", bill.ID)
	}
	if bill.GroupID != "" {
		if group, err := s.store.GetGroup(ctx, bill.GroupID); err == nil {
			s.autoAddParticipantsToGroup(ctx, group, bill.ParticipantIDs())
		}
	}

	slog.Info("Bill updated", "bill_id", bill.ID)
	return connect.NewResponse(&api.UpdateBillResponse{Bill: billToAPI(&bill)}), nil
}

// DeleteBill deletes a bill.
func (s *SplitService) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	bill, err := s.loadBill(ctx, req.Msg.BillID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteBill(ctx, bill.ID); err != nil {
		return nil, storeError("DeleteBill", err, "bill_id", bill.ID)
	}

	slog.Info("Bill deleted", "bill_id", bill.ID)
	return connect.NewResponse(&api.DeleteBillResponse{}), nil
}

// ListBillsByGroup retrieves all bills associated with a group.
func (s *SplitService) ListBillsByGroup(ctx context.Context, req *connect.Request[api.ListBillsByGroupRequest]) (*connect.Response[api.ListBillsByGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		return nil, err
	}

	bills, err := s.store.ListBillsByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, storeError("ListBillsByGroup", err, "group_id", req.Msg.GroupID)
	}

	out := make([]*api.Bill, len(bills))
	for i, bill := range bills {
		out[i] = billToAPI(bill)
	}
	return connect.NewResponse(&api.ListBillsByGroupResponse{Bills: out}), nil
}

// GetBillSummary renders the shareable text report of a bill.
func (s *SplitService) GetBillSummary(ctx context.Context, req *connect.Request[api.GetBillSummaryRequest]) (*connect.Response[api.GetBillSummaryResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	bill, err := s.loadBill(ctx, req.Msg.BillID, userID)
	if err != nil {
		return nil, err
	}

	summary := session.BillFromModel(bill).RenderSummary()
	return connect.NewResponse(&api.GetBillSummaryResponse{Summary: summary}), nil
}
