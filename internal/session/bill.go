package session

import (
	"github.com/google/uuid"

	"github.com/mmynk/syncplan/internal/calculator"
	"github.com/mmynk/syncplan/internal/models"
)

// UnknownParticipantName is used for attendees whose name is not known.
const UnknownParticipantName = "Unknown participant"

// BillSnapshot is an immutable view of a split session.
type BillSnapshot struct {
	Items        []models.BillItem
	Participants []models.Participant
	Method       models.SplitMethod
	TipPercent   float64
	TaxPercent   float64
	Percentages  map[string]float64
	Results      []models.SplitResult
	Totals       calculator.Totals
	Valid        bool
}

// Bill is a mutable split session. Any mutation recomputes every result
// from scratch; nothing is cached between mutations except the results
// themselves.
type Bill struct {
	items        []models.BillItem
	participants []models.Participant
	method       models.SplitMethod
	tipPercent   float64
	taxPercent   float64
	percentages  map[string]float64
	currency     string

	results   []models.SplitResult
	observers observers[BillSnapshot]
	newID     func() string
}

// BillOption configures a Bill.
type BillOption func(*Bill)

// WithCurrency sets the suffix used by RenderSummary.
func WithCurrency(currency string) BillOption {
	return func(b *Bill) {
		if currency != "" {
			b.currency = currency
		}
	}
}

// WithIDGenerator overrides how item IDs are generated.
func WithIDGenerator(fn func() string) BillOption {
	return func(b *Bill) {
		b.newID = fn
	}
}

// NewBill creates an empty session using the equal split method.
func NewBill(opts ...BillOption) *Bill {
	b := &Bill{
		method:      models.SplitEqual,
		percentages: make(map[string]float64),
		currency:    calculator.DefaultCurrency,
		results:     []models.SplitResult{},
		newID:       func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BillFromModel restores a session from a saved bill.
func BillFromModel(m *models.Bill, opts ...BillOption) *Bill {
	if m.Currency != "" {
		opts = append([]BillOption{WithCurrency(m.Currency)}, opts...)
	}
	b := NewBill(opts...)
	b.participants = append([]models.Participant(nil), m.Participants...)
	b.items = cloneItems(m.Items)
	for i := range b.items {
		if b.items[i].ID == "" {
			b.items[i].ID = b.newID()
		}
	}
	if m.Method != "" {
		b.method = m.Method
	}
	b.tipPercent = m.TipPercent
	b.taxPercent = m.TaxPercent
	for id, pct := range m.Percentages {
		b.percentages[id] = pct
	}
	b.recompute()
	return b
}

// Subscribe registers fn to receive a snapshot after every change.
// The returned function unsubscribes.
func (b *Bill) Subscribe(fn func(BillSnapshot)) func() {
	return b.observers.subscribe(fn)
}

// AddItem appends an item, assigning an ID when it has none, and returns
// the stored copy.
func (b *Bill) AddItem(item models.BillItem) models.BillItem {
	item = item.Clone()
	if item.ID == "" {
		item.ID = b.newID()
	}
	b.items = append(b.items, item)
	b.recompute()
	return item.Clone()
}

// RemoveItem deletes an item. It reports whether the item existed.
func (b *Bill) RemoveItem(itemID string) bool {
	for i, item := range b.items {
		if item.ID == itemID {
			b.items = append(b.items[:i:i], b.items[i+1:]...)
			b.recompute()
			return true
		}
	}
	return false
}

// UpdateItem replaces the item with the given ID, keeping that ID.
func (b *Bill) UpdateItem(itemID string, updated models.BillItem) bool {
	for i, item := range b.items {
		if item.ID == itemID {
			updated = updated.Clone()
			updated.ID = itemID
			b.items[i] = updated
			b.recompute()
			return true
		}
	}
	return false
}

// ToggleParticipantOnItem assigns the participant to the item, or removes
// the assignment when it already exists.
func (b *Bill) ToggleParticipantOnItem(itemID, participantID string) bool {
	for i, item := range b.items {
		if item.ID != itemID {
			continue
		}
		b.items[i].ParticipantIDs = toggle(item.ParticipantIDs, participantID)
		b.recompute()
		return true
	}
	return false
}

func toggle(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	found := false
	for _, v := range ids {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
	}
	return out
}

// SetParticipants replaces the participant list.
func (b *Bill) SetParticipants(participants []models.Participant) {
	b.participants = append([]models.Participant(nil), participants...)
	b.recompute()
}

// AddParticipant appends one participant.
func (b *Bill) AddParticipant(p models.Participant) {
	b.participants = append(b.participants, p)
	b.recompute()
}

// RemoveParticipant drops a participant together with their item
// assignments and custom percentage.
func (b *Bill) RemoveParticipant(participantID string) bool {
	idx := -1
	for i, p := range b.participants {
		if p.ID == participantID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	b.participants = append(b.participants[:idx:idx], b.participants[idx+1:]...)
	for i, item := range b.items {
		kept := make([]string, 0, len(item.ParticipantIDs))
		for _, id := range item.ParticipantIDs {
			if id != participantID {
				kept = append(kept, id)
			}
		}
		b.items[i].ParticipantIDs = kept
	}
	delete(b.percentages, participantID)
	b.recompute()
	return true
}

// SetParticipantsFromAttendees replaces participants with an event's
// attendees, looking names up in names.
func (b *Bill) SetParticipantsFromAttendees(attendeeIDs []string, names map[string]string) {
	participants := make([]models.Participant, len(attendeeIDs))
	for i, id := range attendeeIDs {
		name, ok := names[id]
		if !ok || name == "" {
			name = UnknownParticipantName
		}
		participants[i] = models.Participant{ID: id, Name: name}
	}
	b.SetParticipants(participants)
}

func (b *Bill) SetMethod(method models.SplitMethod) {
	b.method = method
	b.recompute()
}

func (b *Bill) SetTipPercent(pct float64) {
	b.tipPercent = pct
	b.recompute()
}

func (b *Bill) SetTaxPercent(pct float64) {
	b.taxPercent = pct
	b.recompute()
}

// SetCustomPercent sets one participant's share for the percentage method.
func (b *Bill) SetCustomPercent(participantID string, pct float64) {
	b.percentages[participantID] = pct
	b.recompute()
}

// Clear resets the session to its initial empty state.
func (b *Bill) Clear() {
	b.items = nil
	b.participants = nil
	b.method = models.SplitEqual
	b.tipPercent = 0
	b.taxPercent = 0
	b.percentages = make(map[string]float64)
	b.recompute()
}

// Results returns a copy of the current split results.
func (b *Bill) Results() []models.SplitResult {
	return cloneResults(b.results)
}

// IsValid reports whether the session is ready to be saved.
func (b *Bill) IsValid() bool {
	return calculator.IsValid(b.Input())
}

// Validate explains why the session is not ready to be saved.
func (b *Bill) Validate() error {
	return calculator.Check(b.Input())
}

// Totals returns the rounded bill-level figures.
func (b *Bill) Totals() calculator.Totals {
	return calculator.BillTotals(b.Input())
}

// RenderSummary returns the itemized text report.
func (b *Bill) RenderSummary() string {
	return calculator.RenderSummary(b.Input(), b.results, b.currency)
}

func (b *Bill) Currency() string {
	return b.currency
}

// Input returns a copy of the state the calculator works on.
func (b *Bill) Input() calculator.Input {
	return calculator.Input{
		Items:        cloneItems(b.items),
		Participants: append([]models.Participant(nil), b.participants...),
		Method:       b.method,
		TipPercent:   b.tipPercent,
		TaxPercent:   b.taxPercent,
		Percentages:  clonePercentages(b.percentages),
	}
}

// Snapshot returns an immutable view of the session.
func (b *Bill) Snapshot() BillSnapshot {
	in := b.Input()
	return BillSnapshot{
		Items:        in.Items,
		Participants: in.Participants,
		Method:       in.Method,
		TipPercent:   in.TipPercent,
		TaxPercent:   in.TaxPercent,
		Percentages:  in.Percentages,
		Results:      cloneResults(b.results),
		Totals:       calculator.BillTotals(in),
		Valid:        calculator.IsValid(in),
	}
}

// ApplyTo copies the session state into a bill model for saving.
func (b *Bill) ApplyTo(m *models.Bill) {
	in := b.Input()
	m.Items = in.Items
	m.Participants = in.Participants
	m.Method = in.Method
	m.TipPercent = in.TipPercent
	m.TaxPercent = in.TaxPercent
	m.Percentages = in.Percentages
	m.Currency = b.currency
}

func (b *Bill) recompute() {
	b.results = calculator.Calculate(b.Input())
	if len(b.observers.order) > 0 {
		b.observers.notify(b.Snapshot)
	}
}

func cloneItems(items []models.BillItem) []models.BillItem {
	out := make([]models.BillItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

func clonePercentages(p map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func cloneResults(results []models.SplitResult) []models.SplitResult {
	out := make([]models.SplitResult, len(results))
	for i, r := range results {
		items := make([]models.ItemShare, len(r.Items))
		copy(items, r.Items)
		r.Items = items
		out[i] = r
	}
	return out
}
