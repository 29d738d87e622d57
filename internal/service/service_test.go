package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/syncplan/internal/middleware"
	"github.com/mmynk/syncplan/internal/models"
	"github.com/mmynk/syncplan/internal/storage/sqlite"
	"github.com/mmynk/syncplan/pkg/api/apiconnect"
)

// testUserHeader carries the caller's user ID in tests.
const testUserHeader = "X-Test-User"

// fixedNow is "today" for calendar tests: Friday 2026-10-16, 08:00 UTC.
var fixedNow = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

// testAuthInterceptor returns a Connect interceptor that trusts the test
// user header instead of a token.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if userID := req.Header().Get(testUserHeader); userID != "" {
				ctx = context.WithValue(ctx, middleware.UserIDKey, userID)
			}
			return next(ctx, req)
		}
	}
}

type testEnv struct {
	store    *sqlite.SQLiteStore
	split    apiconnect.SplitServiceClient
	calendar apiconnect.CalendarServiceClient
	group    apiconnect.GroupServiceClient
	chat     apiconnect.ChatServiceClient
}

// setupTestServer serves the split, calendar, group and chat services over
// a temp SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	authInterceptor := connect.WithInterceptors(testAuthInterceptor())
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewSplitServiceHandler(NewSplitService(store, ""), authInterceptor))
	mux.Handle(apiconnect.NewCalendarServiceHandler(
		NewCalendarService(store, WithNow(func() time.Time { return fixedNow })),
		authInterceptor,
	))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store), authInterceptor))
	mux.Handle(apiconnect.NewChatServiceHandler(NewChatService(store), authInterceptor))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		store:    store,
		split:    apiconnect.NewSplitServiceClient(http.DefaultClient, server.URL),
		calendar: apiconnect.NewCalendarServiceClient(http.DefaultClient, server.URL),
		group:    apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		chat:     apiconnect.NewChatServiceClient(http.DefaultClient, server.URL),
	}
}

// createUser registers a user directly in the store and returns its ID.
func (e *testEnv) createUser(t *testing.T, name string) string {
	t.Helper()
	user := models.NewUser(strings.ToLower(name)+"@example.com", name, "hash")
	if err := e.store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	return user.ID
}

// as builds a request made by userID.
func as[T any](userID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if userID != "" {
		req.Header().Set(testUserHeader, userID)
	}
	return req
}

// assertCode fails unless err is a Connect error with the given code.
func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %v", err)
	}
	if connectErr.Code() != want {
		t.Errorf("expected code %v, got %v (%v)", want, connectErr.Code(), err)
	}
}

func approxEqual(a, b float64) bool {
	d := a - b
	return d < 0.01 && d > -0.01
}
