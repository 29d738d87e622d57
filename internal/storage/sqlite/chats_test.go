package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmynk/syncplan/internal/models"
	"github.com/mmynk/syncplan/internal/storage"
)

func TestSQLiteStore_Chats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice@example.com", "Alice")
	bob := createUser(t, store, "bob@example.com", "Bob")
	carol := createUser(t, store, "carol@example.com", "Carol")

	group := &models.Group{
		Name:      "Roommates",
		CreatedBy: alice.ID,
		Members: []models.GroupMember{
			{UserID: alice.ID, Role: models.RoleAdmin},
			{UserID: bob.ID},
		},
	}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	start := time.Date(2026, time.October, 20, 18, 0, 0, 0, time.UTC)
	event := &models.Event{
		Title:     "Dinner",
		Start:     start,
		End:       start.Add(2 * time.Hour),
		CreatedBy: alice.ID,
		Attendees: []string{alice.ID, carol.ID},
		RSVPs:     map[string]models.RSVPResponse{},
	}
	if err := store.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	groupChat := &models.Chat{Kind: models.ChatGroup, Name: group.Name, GroupID: group.ID, CreatedBy: alice.ID}
	if err := store.CreateChat(ctx, groupChat); err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	eventChat := &models.Chat{Kind: models.ChatEvent, Name: event.Title, EventID: event.ID, CreatedBy: alice.ID}
	if err := store.CreateChat(ctx, eventChat); err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	direct := &models.Chat{Kind: models.ChatDirect, Name: "Bob and Carol", Participants: []string{bob.ID, carol.ID}, CreatedBy: bob.ID}
	if err := store.CreateChat(ctx, direct); err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}

	t.Run("one chat per group", func(t *testing.T) {
		dup := &models.Chat{Kind: models.ChatGroup, Name: "again", GroupID: group.ID, CreatedBy: bob.ID}
		if err := store.CreateChat(ctx, dup); !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("Expected ErrAlreadyExists, got %v", err)
		}
		got, err := store.GetChatByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetChatByGroup failed: %v", err)
		}
		if got.ID != groupChat.ID {
			t.Errorf("Expected chat %s, got %s", groupChat.ID, got.ID)
		}
		if _, err := store.GetChatByEvent(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("direct chat keeps participant order", func(t *testing.T) {
		got, err := store.GetChat(ctx, direct.ID)
		if err != nil {
			t.Fatalf("GetChat failed: %v", err)
		}
		if len(got.Participants) != 2 || got.Participants[0] != bob.ID || got.Participants[1] != carol.ID {
			t.Errorf("Unexpected participants: %v", got.Participants)
		}
	})

	t.Run("ListChatsForUser follows membership", func(t *testing.T) {
		tests := []struct {
			user string
			want map[string]bool
		}{
			{alice.ID, map[string]bool{groupChat.ID: true, eventChat.ID: true}},
			{bob.ID, map[string]bool{groupChat.ID: true, direct.ID: true}},
			{carol.ID, map[string]bool{eventChat.ID: true, direct.ID: true}},
		}
		for _, tt := range tests {
			chats, err := store.ListChatsForUser(ctx, tt.user)
			if err != nil {
				t.Fatalf("ListChatsForUser failed: %v", err)
			}
			if len(chats) != len(tt.want) {
				t.Errorf("Expected %d chats, got %d", len(tt.want), len(chats))
			}
			for _, c := range chats {
				if !tt.want[c.ID] {
					t.Errorf("Unexpected chat %s (%s)", c.Name, c.Kind)
				}
			}
		}
	})

	t.Run("messages and reads", func(t *testing.T) {
		system := &models.ChatMessage{ChatID: groupChat.ID, Type: models.MessageSystem, Content: "Chat created"}
		if err := store.AddMessage(ctx, system); err != nil {
			t.Fatalf("AddMessage failed: %v", err)
		}
		if len(system.ReadBy) != 0 {
			t.Errorf("System message should start unread, got %v", system.ReadBy)
		}
		hello := &models.ChatMessage{ChatID: groupChat.ID, SenderID: alice.ID, Type: models.MessageText, Content: "Hello"}
		if err := store.AddMessage(ctx, hello); err != nil {
			t.Fatalf("AddMessage failed: %v", err)
		}
		rsvp := &models.ChatMessage{
			ChatID:     groupChat.ID,
			Type:       models.MessageRSVPUpdate,
			Content:    "Bob is going.",
			EventID:    event.ID,
			RSVPStatus: models.RSVPAttending,
		}
		if err := store.AddMessage(ctx, rsvp); err != nil {
			t.Fatalf("AddMessage failed: %v", err)
		}

		msgs, err := store.ListMessages(ctx, groupChat.ID, storage.MessageFilter{})
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		if len(msgs) != 3 || msgs[0].ID != system.ID || msgs[1].ID != hello.ID || msgs[2].ID != rsvp.ID {
			t.Fatalf("Expected messages in insertion order, got %d", len(msgs))
		}
		if !msgs[1].IsReadBy(alice.ID) || msgs[1].IsReadBy(bob.ID) {
			t.Errorf("Sender should have read their message: %v", msgs[1].ReadBy)
		}
		if msgs[2].RSVPStatus != models.RSVPAttending || msgs[2].EventID != event.ID {
			t.Errorf("RSVP fields not stored: %+v", msgs[2])
		}

		assertUnread := func(user string, want int) {
			t.Helper()
			n, err := store.UnreadCount(ctx, groupChat.ID, user)
			if err != nil {
				t.Fatalf("UnreadCount failed: %v", err)
			}
			if n != want {
				t.Errorf("Expected %d unread, got %d", want, n)
			}
		}
		assertUnread(alice.ID, 2)
		assertUnread(bob.ID, 3)

		n, err := store.MarkRead(ctx, groupChat.ID, bob.ID, models.MessageRSVPUpdate)
		if err != nil {
			t.Fatalf("MarkRead failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 message marked, got %d", n)
		}
		assertUnread(bob.ID, 2)

		n, err = store.MarkRead(ctx, groupChat.ID, bob.ID, "")
		if err != nil {
			t.Fatalf("MarkRead failed: %v", err)
		}
		if n != 2 {
			t.Errorf("Already read messages should not count again, got %d", n)
		}
		assertUnread(bob.ID, 0)

		last, err := store.ListMessages(ctx, groupChat.ID, storage.MessageFilter{Limit: 1})
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		if len(last) != 1 || last[0].ID != rsvp.ID {
			t.Errorf("Limit should keep the newest message, got %+v", last)
		}
	})

	t.Run("search matches content and sender", func(t *testing.T) {
		tests := []struct {
			query string
			want  int
		}{
			{"hello", 1},
			{"ALICE", 1},
			{"going", 1},
			{"100%", 0},
			{"nothing like this", 0},
		}
		for _, tt := range tests {
			msgs, err := store.ListMessages(ctx, groupChat.ID, storage.MessageFilter{Query: tt.query})
			if err != nil {
				t.Fatalf("ListMessages failed: %v", err)
			}
			if len(msgs) != tt.want {
				t.Errorf("Query %q: expected %d messages, got %d", tt.query, tt.want, len(msgs))
			}
		}

		today := models.Today()
		msgs, err := store.ListMessages(ctx, groupChat.ID, storage.MessageFilter{Day: &today})
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		if len(msgs) != 3 {
			t.Errorf("Expected today's 3 messages, got %d", len(msgs))
		}
		past := models.NewDate(2000, time.January, 1, time.UTC)
		msgs, err = store.ListMessages(ctx, groupChat.ID, storage.MessageFilter{Day: &past})
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		if len(msgs) != 0 {
			t.Errorf("Expected no messages in 2000, got %d", len(msgs))
		}
	})

	t.Run("DeleteMessage", func(t *testing.T) {
		msg := &models.ChatMessage{ChatID: direct.ID, SenderID: bob.ID, Type: models.MessageText, Content: "oops"}
		if err := store.AddMessage(ctx, msg); err != nil {
			t.Fatalf("AddMessage failed: %v", err)
		}
		if err := store.DeleteMessage(ctx, msg.ID); err != nil {
			t.Fatalf("DeleteMessage failed: %v", err)
		}
		if _, err := store.GetMessage(ctx, msg.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		if err := store.DeleteMessage(ctx, msg.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("chats go with their group and event", func(t *testing.T) {
		if err := store.DeleteEvent(ctx, event.ID); err != nil {
			t.Fatalf("DeleteEvent failed: %v", err)
		}
		if _, err := store.GetChat(ctx, eventChat.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected event chat to be deleted, got %v", err)
		}
		if err := store.DeleteGroup(ctx, group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		if _, err := store.GetChat(ctx, groupChat.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected group chat to be deleted, got %v", err)
		}
		msgs, err := store.ListMessages(ctx, groupChat.ID, storage.MessageFilter{})
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		if len(msgs) != 0 {
			t.Errorf("Expected messages to be deleted, got %d", len(msgs))
		}
	})
}

func TestSQLiteStore_GroupActivity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice@example.com", "Alice")
	group := &models.Group{
		Name:      "Roommates",
		CreatedBy: alice.ID,
		Members:   []models.GroupMember{{UserID: alice.ID, Role: models.RoleAdmin}},
	}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	actions := []models.ActivityAction{
		models.ActivityGroupCreated,
		models.ActivityMemberAdded,
		models.ActivityRoleChanged,
	}
	for _, a := range actions {
		if err := store.AddGroupActivity(ctx, &models.GroupActivity{GroupID: group.ID, ActorID: alice.ID, Action: a}); err != nil {
			t.Fatalf("AddGroupActivity failed: %v", err)
		}
	}

	got, err := store.ListGroupActivity(ctx, group.ID, 0)
	if err != nil {
		t.Fatalf("ListGroupActivity failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(got))
	}
	for i, a := range got {
		if want := actions[len(actions)-1-i]; a.Action != want {
			t.Errorf("Entry %d: expected %s, got %s", i, want, a.Action)
		}
		if a.ActorName != "Alice" {
			t.Errorf("Expected actor name Alice, got %q", a.ActorName)
		}
	}

	got, err = store.ListGroupActivity(ctx, group.ID, 1)
	if err != nil {
		t.Fatalf("ListGroupActivity failed: %v", err)
	}
	if len(got) != 1 || got[0].Action != models.ActivityRoleChanged {
		t.Errorf("Expected only the newest entry, got %+v", got)
	}

	if err := store.DeleteGroup(ctx, group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	got, err = store.ListGroupActivity(ctx, group.ID, 0)
	if err != nil {
		t.Fatalf("ListGroupActivity failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected the log to go with the group, got %d entries", len(got))
	}
}
