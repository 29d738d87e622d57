package session

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/mmynk/syncplan/internal/calculator"
	"github.com/mmynk/syncplan/internal/models"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("item-%d", n)
	}
}

func newTestBill() *Bill {
	b := NewBill(WithIDGenerator(sequentialIDs()))
	b.SetParticipants([]models.Participant{
		{ID: "alice", Name: "Alice"},
		{ID: "bob", Name: "Bob"},
		{ID: "charlie", Name: "Charlie"},
	})
	return b
}

func resultFor(t *testing.T, results []models.SplitResult, id string) models.SplitResult {
	t.Helper()
	for _, r := range results {
		if r.ParticipantID == id {
			return r
		}
	}
	t.Fatalf("no result for %s", id)
	return models.SplitResult{}
}

func TestBill_ByItems(t *testing.T) {
	b := newTestBill()
	b.SetMethod(models.SplitByItems)
	pizza := b.AddItem(models.BillItem{Name: "Pizza", Price: 20, ParticipantIDs: []string{"alice", "bob"}})
	b.AddItem(models.BillItem{Name: "Beer", Price: 10, ParticipantIDs: []string{"bob"}})

	if pizza.ID != "item-1" {
		t.Errorf("expected generated id item-1, got %q", pizza.ID)
	}

	results := b.Results()
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	tests := []struct {
		id    string
		total float64
		items int
	}{
		{"alice", 10, 1},
		{"bob", 20, 2},
		{"charlie", 0, 0},
	}
	for _, tt := range tests {
		r := resultFor(t, results, tt.id)
		if r.Total != tt.total {
			t.Errorf("%s total = %v, want %v", tt.id, r.Total, tt.total)
		}
		if len(r.Items) != tt.items {
			t.Errorf("%s has %d item lines, want %d", tt.id, len(r.Items), tt.items)
		}
	}
}

func TestBill_ResultsAreStable(t *testing.T) {
	b := newTestBill()
	b.AddItem(models.BillItem{Name: "Pizza", Price: 30})
	b.SetTipPercent(10)

	first := b.Results()
	second := b.Results()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results changed between reads:\n%v\n%v", first, second)
	}
	if !reflect.DeepEqual(first, calculator.Calculate(b.Input())) {
		t.Error("session results differ from a fresh calculation")
	}

	first[0].Total = 999
	first[0].Items[0].Amount = 999
	if b.Results()[0].Total == 999 || b.Results()[0].Items[0].Amount == 999 {
		t.Error("mutating returned results changed the session")
	}
}

func TestBill_RemoveParticipant(t *testing.T) {
	b := newTestBill()
	b.SetMethod(models.SplitPercentage)
	item := b.AddItem(models.BillItem{Name: "Pizza", Price: 30, ParticipantIDs: []string{"alice", "bob"}})
	b.SetCustomPercent("alice", 50)
	b.SetCustomPercent("bob", 50)

	if !b.RemoveParticipant("bob") {
		t.Fatal("expected bob to be removed")
	}
	if b.RemoveParticipant("bob") {
		t.Error("removing bob twice should report false")
	}

	in := b.Input()
	if len(in.Participants) != 2 {
		t.Errorf("expected 2 participants, got %d", len(in.Participants))
	}
	if _, ok := in.Percentages["bob"]; ok {
		t.Error("bob's percentage was kept")
	}
	for _, it := range in.Items {
		if it.ID == item.ID && !reflect.DeepEqual(it.ParticipantIDs, []string{"alice"}) {
			t.Errorf("assignments = %v, want [alice]", it.ParticipantIDs)
		}
	}
}

func TestBill_ToggleParticipantOnItem(t *testing.T) {
	b := newTestBill()
	item := b.AddItem(models.BillItem{Name: "Salad", Price: 12})

	if !b.ToggleParticipantOnItem(item.ID, "charlie") {
		t.Fatal("toggle on existing item returned false")
	}
	if got := b.Input().Items[0].ParticipantIDs; !reflect.DeepEqual(got, []string{"charlie"}) {
		t.Errorf("after first toggle got %v", got)
	}

	b.ToggleParticipantOnItem(item.ID, "charlie")
	if got := b.Input().Items[0].ParticipantIDs; len(got) != 0 {
		t.Errorf("after second toggle got %v, want none", got)
	}

	if b.ToggleParticipantOnItem("missing", "charlie") {
		t.Error("toggle on unknown item should return false")
	}
}

func TestBill_UpdateAndRemoveItem(t *testing.T) {
	b := newTestBill()
	item := b.AddItem(models.BillItem{Name: "Soup", Price: 9})

	if !b.UpdateItem(item.ID, models.BillItem{ID: "other", Name: "Soup of the day", Price: 12}) {
		t.Fatal("update returned false")
	}
	got := b.Input().Items[0]
	if got.ID != item.ID || got.Price != 12 || got.Name != "Soup of the day" {
		t.Errorf("updated item = %+v", got)
	}

	if !b.RemoveItem(item.ID) {
		t.Fatal("remove returned false")
	}
	if b.RemoveItem(item.ID) {
		t.Error("second remove should return false")
	}
	if n := len(b.Input().Items); n != 0 {
		t.Errorf("expected no items, got %d", n)
	}
}

func TestBill_SetParticipantsFromAttendees(t *testing.T) {
	b := NewBill()
	b.SetParticipantsFromAttendees([]string{"u1", "u2"}, map[string]string{"u1": "Alice"})

	want := []models.Participant{
		{ID: "u1", Name: "Alice"},
		{ID: "u2", Name: UnknownParticipantName},
	}
	if got := b.Input().Participants; !reflect.DeepEqual(got, want) {
		t.Errorf("participants = %v, want %v", got, want)
	}
}

func TestBill_Validate(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(b *Bill)
		wantErr error
	}{
		{
			name:    "no items",
			setup:   func(b *Bill) {},
			wantErr: calculator.ErrNoItems,
		},
		{
			name: "unassigned item under by-items",
			setup: func(b *Bill) {
				b.SetMethod(models.SplitByItems)
				b.AddItem(models.BillItem{Name: "Pizza", Price: 20})
			},
			wantErr: calculator.ErrUnassignedItem,
		},
		{
			name: "percentages short of 100",
			setup: func(b *Bill) {
				b.SetMethod(models.SplitPercentage)
				b.AddItem(models.BillItem{Name: "Pizza", Price: 20})
				b.SetCustomPercent("alice", 60)
			},
			wantErr: calculator.ErrPercentageSum,
		},
		{
			name: "valid percentage split",
			setup: func(b *Bill) {
				b.SetMethod(models.SplitPercentage)
				b.AddItem(models.BillItem{Name: "Pizza", Price: 20})
				b.SetCustomPercent("alice", 60)
				b.SetCustomPercent("bob", 40)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBill()
			tt.setup(b)

			err := b.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if b.IsValid() != (tt.wantErr == nil) {
				t.Errorf("IsValid() = %v", b.IsValid())
			}
		})
	}
}

func TestBill_Subscribe(t *testing.T) {
	b := newTestBill()

	var snapshots []BillSnapshot
	unsubscribe := b.Subscribe(func(s BillSnapshot) {
		snapshots = append(snapshots, s)
	})

	b.AddItem(models.BillItem{Name: "Pizza", Price: 30})
	b.SetTipPercent(10)

	if len(snapshots) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(snapshots))
	}
	last := snapshots[1]
	if last.TipPercent != 10 || last.Totals.GrandTotal != 33 {
		t.Errorf("last snapshot = %+v", last)
	}
	if len(last.Results) != 3 || last.Results[0].Total != 11 {
		t.Errorf("snapshot results = %+v", last.Results)
	}

	unsubscribe()
	unsubscribe()
	b.SetTaxPercent(5)
	if len(snapshots) != 2 {
		t.Errorf("listener called after unsubscribe")
	}
}

func TestBill_SubscribersGetTheirOwnSnapshot(t *testing.T) {
	b := newTestBill()
	b.AddItem(models.BillItem{Name: "Pizza", Price: 30})
	b.SetMethod(models.SplitPercentage)

	var second BillSnapshot
	b.Subscribe(func(s BillSnapshot) {
		s.Items[0].Name = "Changed"
		s.Participants[0].Name = "Changed"
		s.Percentages["alice"] = 99
		s.Results[0].Total = -1
	})
	b.Subscribe(func(s BillSnapshot) {
		second = s
	})

	b.SetCustomPercent("alice", 50)

	if second.Items[0].Name != "Pizza" || second.Participants[0].Name == "Changed" {
		t.Errorf("second listener saw the first one's edits: %+v", second)
	}
	if second.Percentages["alice"] != 50 || second.Results[0].Total == -1 {
		t.Errorf("second listener saw the first one's edits: %+v", second)
	}
	if s := b.Snapshot(); s.Items[0].Name != "Pizza" || s.Percentages["alice"] != 50 {
		t.Errorf("session state changed by a listener: %+v", s)
	}
}

func TestBill_Clear(t *testing.T) {
	b := newTestBill()
	b.AddItem(models.BillItem{Name: "Pizza", Price: 30})
	b.SetMethod(models.SplitPercentage)
	b.SetCustomPercent("alice", 100)
	b.SetTipPercent(15)

	b.Clear()

	s := b.Snapshot()
	if len(s.Items) != 0 || len(s.Participants) != 0 || len(s.Percentages) != 0 {
		t.Errorf("clear left state behind: %+v", s)
	}
	if s.Method != models.SplitEqual || s.TipPercent != 0 {
		t.Errorf("clear did not reset settings: %+v", s)
	}
	if s.Results == nil || len(s.Results) != 0 {
		t.Errorf("results = %v, want empty", s.Results)
	}
}

func TestBillFromModel_RoundTrip(t *testing.T) {
	m := &models.Bill{
		ID:           "bill-1",
		Participants: []models.Participant{{ID: "alice", Name: "Alice"}, {ID: "bob", Name: "Bob"}},
		Items: []models.BillItem{
			{ID: "i1", Name: "Pizza", Price: 20, ParticipantIDs: []string{"alice", "bob"}},
			{Name: "Beer", Price: 10, ParticipantIDs: []string{"bob"}},
		},
		Method:     models.SplitByItems,
		TipPercent: 10,
		Currency:   "EUR",
	}

	b := BillFromModel(m, WithIDGenerator(sequentialIDs()))
	if b.Currency() != "EUR" {
		t.Errorf("currency = %q, want EUR", b.Currency())
	}
	if got := resultFor(t, b.Results(), "bob").Total; got != 22 {
		t.Errorf("bob total = %v, want 22", got)
	}

	var out models.Bill
	b.ApplyTo(&out)
	if out.Items[0].ID != "i1" || out.Items[1].ID != "item-1" {
		t.Errorf("item ids = %q, %q", out.Items[0].ID, out.Items[1].ID)
	}
	if out.Method != models.SplitByItems || out.TipPercent != 10 || out.Currency != "EUR" {
		t.Errorf("applied bill = %+v", out)
	}
}
