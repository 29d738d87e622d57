package service

import (
	"fmt"
	"time"

	"github.com/mmynk/syncplan/internal/calculator"
	"github.com/mmynk/syncplan/internal/models"
	"github.com/mmynk/syncplan/internal/session"
	"github.com/mmynk/syncplan/pkg/api"
)

func userToAPI(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// splitInputToModel copies the wire split fields into a bill model.
func splitInputToModel(in api.SplitInput, m *models.Bill) error {
	method, err := models.ParseSplitMethod(in.Method)
	if err != nil {
		return err
	}
	m.Method = method
	m.TipPercent = in.TipPercent
	m.TaxPercent = in.TaxPercent

	m.Participants = make([]models.Participant, len(in.Participants))
	for i, p := range in.Participants {
		if p.ID == "" {
			return fmt.Errorf("participant %d has no id", i+1)
		}
		m.Participants[i] = models.Participant{ID: p.ID, Name: p.Name, Contact: p.Contact}
	}

	m.Items = make([]models.BillItem, len(in.Items))
	for i, item := range in.Items {
		m.Items[i] = models.BillItem{
			ID:             item.ID,
			Name:           item.Name,
			Price:          item.Price,
			ParticipantIDs: append([]string(nil), item.ParticipantIDs...),
		}
	}

	m.Percentages = make(map[string]float64, len(in.Percentages))
	for id, pct := range in.Percentages {
		m.Percentages[id] = pct
	}
	return nil
}

func splitInputToAPI(in calculator.Input) api.SplitInput {
	out := api.SplitInput{
		Participants: make([]api.Participant, len(in.Participants)),
		Items:        make([]api.Item, len(in.Items)),
		Method:       string(in.Method),
		TipPercent:   in.TipPercent,
		TaxPercent:   in.TaxPercent,
	}
	for i, p := range in.Participants {
		out.Participants[i] = api.Participant{ID: p.ID, Name: p.Name, Contact: p.Contact}
	}
	for i, item := range in.Items {
		out.Items[i] = api.Item{
			ID:             item.ID,
			Name:           item.Name,
			Price:          item.Price,
			ParticipantIDs: item.ParticipantIDs,
		}
	}
	if len(in.Percentages) > 0 {
		out.Percentages = in.Percentages
	}
	return out
}

func resultsToAPI(results []models.SplitResult) []api.SplitResult {
	out := make([]api.SplitResult, len(results))
	for i, r := range results {
		items := make([]api.ItemShare, len(r.Items))
		for j, share := range r.Items {
			items[j] = api.ItemShare{Name: share.Name, Amount: share.Amount}
		}
		out[i] = api.SplitResult{
			ParticipantID:   r.ParticipantID,
			ParticipantName: r.ParticipantName,
			Total:           r.Total,
			Items:           items,
			Tip:             r.Tip,
			Tax:             r.Tax,
		}
	}
	return out
}

// billToAPI renders a saved bill together with freshly computed results.
func billToAPI(m *models.Bill) *api.Bill {
	b := session.BillFromModel(m)
	totals := b.Totals()
	return &api.Bill{
		ID:         m.ID,
		Title:      m.Title,
		GroupID:    m.GroupID,
		EventID:    m.EventID,
		PayerID:    m.PayerID,
		Currency:   b.Currency(),
		SplitInput: splitInputToAPI(b.Input()),
		CreatedAt:  m.CreatedAt,
		Results:    resultsToAPI(b.Results()),
		Subtotal:   totals.Subtotal,
		Tip:        totals.Tip,
		Tax:        totals.Tax,
		Total:      totals.GrandTotal,
	}
}

func intervalToAPI(iv models.AvailabilityInterval) *api.AvailabilityInterval {
	return &api.AvailabilityInterval{
		ID:        iv.ID,
		UserID:    iv.UserID,
		Date:      iv.Date.String(),
		Start:     iv.Start.String(),
		End:       iv.End.String(),
		Available: iv.Available,
		CreatedAt: iv.CreatedAt,
	}
}

func suggestionToAPI(s models.MeetingSuggestion) *api.MeetingSuggestion {
	return &api.MeetingSuggestion{
		Start:            s.Start,
		DurationMinutes:  s.DurationMinutes,
		AvailableUserIDs: s.AvailableUserIDs,
		Score:            s.Score,
	}
}

func locationToModel(l *api.Location) *models.Location {
	if l == nil {
		return nil
	}
	return &models.Location{Name: l.Name, Address: l.Address, Latitude: l.Latitude, Longitude: l.Longitude}
}

func locationToAPI(l *models.Location) *api.Location {
	if l == nil {
		return nil
	}
	return &api.Location{Name: l.Name, Address: l.Address, Latitude: l.Latitude, Longitude: l.Longitude}
}

func rsvpToAPI(r models.RSVPResponse) *api.RSVP {
	return &api.RSVP{
		UserID:      r.UserID,
		Status:      string(r.Status),
		Note:        r.Note,
		GuestCount:  r.GuestCount,
		RespondedAt: r.RespondedAt,
	}
}

// eventToAPI lists RSVPs in attendee order.
func eventToAPI(e *models.Event) *api.Event {
	out := &api.Event{
		ID:           e.ID,
		GroupID:      e.GroupID,
		Title:        e.Title,
		Description:  e.Description,
		Start:        e.Start,
		End:          e.End,
		CreatedBy:    e.CreatedBy,
		Attendees:    append([]string{}, e.Attendees...),
		Location:     locationToAPI(e.Location),
		RSVPs:        make([]*api.RSVP, 0, len(e.RSVPs)),
		RSVPDeadline: e.RSVPDeadline,
		MaxAttendees: e.MaxAttendees,
		CreatedAt:    e.CreatedAt,
	}
	for _, userID := range e.Attendees {
		if r, ok := e.RSVPs[userID]; ok {
			out.RSVPs = append(out.RSVPs, rsvpToAPI(r))
		}
	}
	return out
}

func groupToAPI(g *models.Group) *api.Group {
	members := make([]*api.GroupMember, len(g.Members))
	for i, m := range g.Members {
		members[i] = &api.GroupMember{
			UserID:   m.UserID,
			Name:     m.Name,
			Email:    m.Email,
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt,
		}
	}
	return &api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		Color:       g.Color,
		Members:     members,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func settlementToAPI(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:         s.ID,
		GroupID:    s.GroupID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount,
		Note:       s.Note,
		CreatedBy:  s.CreatedBy,
		CreatedAt:  s.CreatedAt,
	}
}

func chatToAPI(c *models.Chat) *api.Chat {
	return &api.Chat{
		ID:           c.ID,
		Kind:         string(c.Kind),
		Name:         c.Name,
		GroupID:      c.GroupID,
		EventID:      c.EventID,
		Participants: append([]string(nil), c.Participants...),
		CreatedBy:    c.CreatedBy,
		CreatedAt:    c.CreatedAt,
	}
}

// messageToAPI names the sender from names. App messages and senders whose
// account is gone get a fixed name.
func messageToAPI(m *models.ChatMessage, names map[string]string) *api.ChatMessage {
	sender := systemSenderName
	if m.SenderID != "" {
		sender = names[m.SenderID]
		if sender == "" {
			sender = session.UnknownParticipantName
		}
	}
	return &api.ChatMessage{
		ID:         m.ID,
		ChatID:     m.ChatID,
		SenderID:   m.SenderID,
		SenderName: sender,
		Type:       string(m.Type),
		Content:    m.Content,
		EventID:    m.EventID,
		RSVPStatus: string(m.RSVPStatus),
		ReadBy:     append([]string{}, m.ReadBy...),
		CreatedAt:  m.CreatedAt,
	}
}

func activityToAPI(a *models.GroupActivity) *api.GroupActivity {
	return &api.GroupActivity{
		ID:        a.ID,
		GroupID:   a.GroupID,
		ActorID:   a.ActorID,
		ActorName: a.ActorName,
		Action:    string(a.Action),
		Details:   a.Details,
		CreatedAt: a.CreatedAt,
	}
}

// parseDateOr parses value, falling back to def when it is empty.
func parseDateOr(value string, def models.Date) (models.Date, error) {
	if value == "" {
		return def, nil
	}
	return models.ParseDate(value)
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
