// Package service implements the Connect RPC handlers. Each service turns
// wire messages into models, runs them through a session or calculator and
// persists the outcome through a storage.Store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/syncplan/internal/middleware"
	"github.com/mmynk/syncplan/internal/models"
	"github.com/mmynk/syncplan/internal/storage"
)

var errAuthRequired = errors.New("authentication required")

// requireUser returns the authenticated user ID or an Unauthenticated error.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}
	return userID, nil
}

// storeError maps a storage error to a Connect error and logs it.
func storeError(op string, err error, attrs ...any) error {
	attrs = append(attrs, "error", err)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		slog.Warn(op+" failed", attrs...)
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		slog.Warn(op+" failed", attrs...)
		return connect.NewError(connect.CodeAlreadyExists, err)
	default:
		slog.Error(op+" failed", attrs...)
		return connect.NewError(connect.CodeInternal, err)
	}
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

func permissionDenied(format string, args ...any) error {
	return connect.NewError(connect.CodePermissionDenied, fmt.Errorf(format, args...))
}

// memberGroup loads a group and checks that userID belongs to it.
func memberGroup(ctx context.Context, groups storage.GroupStore, groupID, userID string) (*models.Group, error) {
	if groupID == "" {
		return nil, invalidArgument("group_id required")
	}
	group, err := groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeError("GetGroup", err, "group_id", groupID)
	}
	if _, ok := group.Member(userID); !ok {
		return nil, permissionDenied("you must be a member of this group")
	}
	return group, nil
}

// adminGroup is memberGroup restricted to group admins.
func adminGroup(ctx context.Context, groups storage.GroupStore, groupID, userID string) (*models.Group, error) {
	group, err := memberGroup(ctx, groups, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(userID) {
		return nil, permissionDenied("only group admins can do this")
	}
	return group, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// dedupe drops empty and repeated IDs, keeping first occurrences.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
