package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/syncplan/internal/calculator"
	"github.com/mmynk/syncplan/internal/models"
	"github.com/mmynk/syncplan/internal/storage"
	"github.com/mmynk/syncplan/pkg/api"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var errLastAdmin = errors.New("a group must keep at least one admin")

// defaultActivityLimit caps ListGroupActivity when the request sets no limit.
const defaultActivityLimit = 50

// GroupService implements the Connect GroupService.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

func validateGroupFields(name, color string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("group name required")
	}
	if color != "" && !colorPattern.MatchString(color) {
		return errors.New("color must look like #RRGGBB")
	}
	return nil
}

// lookupUserByEmail resolves an invitee. Unknown emails are the caller's mistake.
func (s *GroupService) lookupUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, invalidArgument("no user registered with email %q", email)
	}
	if err != nil {
		return nil, storeError("GetUserByEmail", err)
	}
	return user, nil
}

// reload fetches the group again so member names and timestamps are current.
func (s *GroupService) reload(ctx context.Context, groupID string) (*api.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeError("GetGroup", err, "group_id", groupID)
	}
	return groupToAPI(group), nil
}

// recordActivity appends to the group's activity log. The change itself is
// already saved, so a failure is only logged.
func recordActivity(ctx context.Context, store storage.ActivityStore, groupID, actorID string, action models.ActivityAction, details string) {
	err := store.AddGroupActivity(ctx, &models.GroupActivity{
		GroupID: groupID,
		ActorID: actorID,
		Action:  action,
		Details: details,
	})
	if err != nil {
		slog.Error("Failed to record group activity", "group_id", groupID, "action", action, "error", err)
	}
}

func adminCount(g *models.Group) int {
	n := 0
	for _, m := range g.Members {
		if m.Role == models.RoleAdmin {
			n++
		}
	}
	return n
}

// CreateGroup creates a group with the caller as its admin.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberEmails),
	)

	if err := validateGroupFields(req.Msg.Name, req.Msg.Color); err != nil {
		return nil, invalidArgument("%v", err)
	}

	group := &models.Group{
		Name:        strings.TrimSpace(req.Msg.Name),
		Description: req.Msg.Description,
		CreatedBy:   userID,
		Color:       req.Msg.Color,
		Members:     []models.GroupMember{{UserID: userID, Role: models.RoleAdmin}},
	}
	for _, email := range req.Msg.MemberEmails {
		user, err := s.lookupUserByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if _, ok := group.Member(user.ID); ok {
			continue
		}
		group.Members = append(group.Members, models.GroupMember{UserID: user.ID, Role: models.RoleMember})
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, storeError("CreateGroup", err)
	}
	slog.Info("Group created", "group_id", group.ID)
	recordActivity(ctx, s.store, group.ID, userID, models.ActivityGroupCreated, group.Name)

	out, err := s.reload(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.CreateGroupResponse{Group: out}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: groupToAPI(group)}), nil
}

// ListGroups retrieves the caller's groups, newest first.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsByUser(ctx, userID)
	if err != nil {
		return nil, storeError("ListGroups", err, "user_id", userID)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = groupToAPI(g)
	}
	slog.Debug("ListGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateGroup changes a group's name, description and color.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	group, err := adminGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if err := validateGroupFields(req.Msg.Name, req.Msg.Color); err != nil {
		return nil, invalidArgument("%v", err)
	}

	group.Name = strings.TrimSpace(req.Msg.Name)
	group.Description = req.Msg.Description
	if req.Msg.Color != "" {
		group.Color = req.Msg.Color
	}
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, storeError("UpdateGroup", err, "group_id", group.ID)
	}
	slog.Info("Group updated", "group_id", group.ID)
	recordActivity(ctx, s.store, group.ID, userID, models.ActivityGroupUpdated, group.Name)

	return connect.NewResponse(&api.UpdateGroupResponse{Group: groupToAPI(group)}), nil
}

// DeleteGroup removes a group. Its bills survive, detached from it.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := adminGroup(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, storeError("DeleteGroup", err, "group_id", req.Msg.GroupID)
	}
	slog.Info("Group deleted", "group_id", req.Msg.GroupID)

	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// AddMember invites a registered user into the group.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	role, err := models.ParseMemberRole(req.Msg.Role)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	group, err := adminGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	user, err := s.lookupUserByEmail(ctx, req.Msg.Email)
	if err != nil {
		return nil, err
	}

	member := models.GroupMember{UserID: user.ID, Role: role}
	if err := s.store.AddGroupMember(ctx, group.ID, member); err != nil {
		return nil, storeError("AddGroupMember", err, "group_id", group.ID, "user_id", user.ID)
	}
	slog.Info("Member added", "group_id", group.ID, "user_id", user.ID, "role", role)
	recordActivity(ctx, s.store, group.ID, userID, models.ActivityMemberAdded, user.DisplayName)

	out, err := s.reload(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.AddMemberResponse{Group: out}), nil
}

// RemoveMember removes a member. Admins may remove anyone; members may
// only leave. The last admin cannot go.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if req.Msg.UserID != userID && !group.IsAdmin(userID) {
		return nil, permissionDenied("only group admins can remove other members")
	}
	target, ok := group.Member(req.Msg.UserID)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, storage.ErrNotFound)
	}
	if target.Role == models.RoleAdmin && adminCount(group) == 1 {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errLastAdmin)
	}

	if err := s.store.RemoveGroupMember(ctx, group.ID, target.UserID); err != nil {
		return nil, storeError("RemoveGroupMember", err, "group_id", group.ID, "user_id", target.UserID)
	}
	slog.Info("Member removed", "group_id", group.ID, "user_id", target.UserID)
	recordActivity(ctx, s.store, group.ID, userID, models.ActivityMemberRemoved, target.Name)

	out, err := s.reload(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.RemoveMemberResponse{Group: out}), nil
}

// UpdateMemberRole promotes or demotes a member.
func (s *GroupService) UpdateMemberRole(ctx context.Context, req *connect.Request[api.UpdateMemberRoleRequest]) (*connect.Response[api.UpdateMemberRoleResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Role == "" {
		return nil, invalidArgument("role required")
	}
	role, err := models.ParseMemberRole(req.Msg.Role)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	group, err := adminGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	target, ok := group.Member(req.Msg.UserID)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, storage.ErrNotFound)
	}
	if target.Role == models.RoleAdmin && role != models.RoleAdmin && adminCount(group) == 1 {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errLastAdmin)
	}

	if err := s.store.UpdateMemberRole(ctx, group.ID, target.UserID, role); err != nil {
		return nil, storeError("UpdateMemberRole", err, "group_id", group.ID, "user_id", target.UserID)
	}
	slog.Info("Member role updated", "group_id", group.ID, "user_id", target.UserID, "role", role)
	recordActivity(ctx, s.store, group.ID, userID, models.ActivityRoleChanged, fmt.Sprintf("%s is now %s", target.Name, role))

	out, err := s.reload(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.UpdateMemberRoleResponse{Group: out}), nil
}

// GetGroupBalances calculates balances across all bills and settlements
// in a group.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	bills, err := s.store.ListBillsByGroup(ctx, group.ID)
	if err != nil {
		return nil, storeError("ListBillsByGroup", err, "group_id", group.ID)
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		return nil, storeError("ListSettlementsByGroup", err, "group_id", group.ID)
	}

	names := make(map[string]string)
	forBalance := make([]calculator.BillForBalance, len(bills))
	for i, bill := range bills {
		for _, p := range bill.Participants {
			names[p.ID] = p.Name
		}
		forBalance[i] = calculator.BillForBalance{
			PayerID: bill.PayerID,
			Split: calculator.Input{
				Items:        bill.Items,
				Participants: bill.Participants,
				Method:       bill.Method,
				TipPercent:   bill.TipPercent,
				TaxPercent:   bill.TaxPercent,
				Percentages:  bill.Percentages,
			},
		}
	}
	for _, m := range group.Members {
		names[m.UserID] = m.Name
	}

	settled := make([]calculator.SettlementForBalance, len(settlements))
	for i, st := range settlements {
		settled[i] = calculator.SettlementForBalance{
			FromUserID: st.FromUserID,
			ToUserID:   st.ToUserID,
			Amount:     st.Amount,
		}
	}

	memberBalances, debtEdges := calculator.CalculateGroupBalances(forBalance, settled)

	balances := make([]*api.MemberBalance, len(memberBalances))
	for i, bal := range memberBalances {
		name := names[bal.MemberID]
		if name == "" {
			name = bal.MemberID
		}
		balances[i] = &api.MemberBalance{
			UserID:     bal.MemberID,
			Name:       name,
			NetBalance: bal.NetBalance,
			TotalPaid:  bal.TotalPaid,
			TotalOwed:  bal.TotalOwed,
		}
	}
	debts := make([]*api.Debt, len(debtEdges))
	for i, d := range debtEdges {
		debts[i] = &api.Debt{FromUserID: d.From, ToUserID: d.To, Amount: d.Amount}
	}

	slog.Info("GetGroupBalances successful",
		"group_id", group.ID,
		"bills_count", len(bills),
		"settlements_count", len(settlements),
		"debts_count", len(debts),
	)
	return connect.NewResponse(&api.GetGroupBalancesResponse{Balances: balances, Debts: debts}), nil
}

// RecordSettlement records a payment between two members.
func (s *GroupService) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	if req.Msg.Amount <= 0 {
		return nil, invalidArgument("amount must be positive")
	}
	if req.Msg.FromUserID == req.Msg.ToUserID {
		return nil, invalidArgument("a settlement needs two different members")
	}
	for _, id := range []string{req.Msg.FromUserID, req.Msg.ToUserID} {
		if _, ok := group.Member(id); !ok {
			return nil, invalidArgument("user %q is not a member of the group", id)
		}
	}

	settlement := &models.Settlement{
		GroupID:    group.ID,
		FromUserID: req.Msg.FromUserID,
		ToUserID:   req.Msg.ToUserID,
		Amount:     calculator.Round(req.Msg.Amount),
		Note:       req.Msg.Note,
		CreatedBy:  userID,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, storeError("CreateSettlement", err, "group_id", group.ID)
	}
	slog.Info("Settlement recorded", "group_id", group.ID, "settlement_id", settlement.ID, "amount", settlement.Amount)

	return connect.NewResponse(&api.RecordSettlementResponse{Settlement: settlementToAPI(settlement)}), nil
}

// ListSettlements lists a group's settlements, newest first.
func (s *GroupService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		return nil, storeError("ListSettlementsByGroup", err, "group_id", group.ID)
	}

	out := make([]*api.Settlement, len(settlements))
	for i, st := range settlements {
		out[i] = settlementToAPI(st)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}

// ListGroupActivity returns a group's activity log, newest first.
func (s *GroupService) ListGroupActivity(ctx context.Context, req *connect.Request[api.ListGroupActivityRequest]) (*connect.Response[api.ListGroupActivityResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Limit < 0 {
		return nil, invalidArgument("limit cannot be negative")
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	limit := req.Msg.Limit
	if limit == 0 {
		limit = defaultActivityLimit
	}
	activities, err := s.store.ListGroupActivity(ctx, group.ID, limit)
	if err != nil {
		return nil, storeError("ListGroupActivity", err, "group_id", group.ID)
	}

	out := make([]*api.GroupActivity, len(activities))
	for i, a := range activities {
		out[i] = activityToAPI(a)
	}
	return connect.NewResponse(&api.ListGroupActivityResponse{Activities: out}), nil
}
