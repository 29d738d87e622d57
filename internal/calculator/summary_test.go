package calculator

import (
	"strings"
	"testing"

	"github.com/mmynk/syncplan/internal/models"
)

func TestRenderSummary(t *testing.T) {
	in := Input{
		Items:        []models.BillItem{{Name: "Dinner", Price: 100}},
		Participants: people("Alice", "Bob"),
		Method:       models.SplitEqual,
		TipPercent:   10,
	}
	got := RenderSummary(in, Calculate(in), "")

	want := strings.Join([]string{
		"BILL SUMMARY",
		"==============================",
		"Items total: 100.00 zł",
		"Tip (10%): 10.00 zł",
		"Tax (0%): 0.00 zł",
		"TOTAL: 110.00 zł",
		"",
		"SPLIT:",
		"------------------------------",
		"Alice: 55.00 zł",
		"  • Equal split: 50.00 zł",
		"  • Tip: 5.00 zł",
		"",
		"Bob: 55.00 zł",
		"  • Equal split: 50.00 zł",
		"  • Tip: 5.00 zł",
		"",
		"",
	}, "\n")

	if got != want {
		t.Errorf("RenderSummary() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderSummary_ByItemsWithCurrency(t *testing.T) {
	in := Input{
		Items: []models.BillItem{
			{Name: "Steak", Price: 30, ParticipantIDs: []string{"Charlie"}},
			{Name: "Salad", Price: 20, ParticipantIDs: []string{"Diana"}},
		},
		Participants: people("Charlie", "Diana"),
		Method:       models.SplitByItems,
		TaxPercent:   10,
	}
	got := RenderSummary(in, Calculate(in), "EUR")

	for _, line := range []string{
		"Tax (10%): 5.00 EUR",
		"TOTAL: 55.00 EUR",
		"Charlie: 33.00 EUR\n  • Steak: 30.00 EUR\n  • Tax: 3.00 EUR\n",
		"Diana: 22.00 EUR\n  • Salad: 20.00 EUR\n  • Tax: 2.00 EUR\n",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("summary missing %q:\n%s", line, got)
		}
	}
	if strings.Contains(got, "  • Tip:") {
		t.Errorf("summary should omit zero tip lines:\n%s", got)
	}
}

func TestRenderSummary_Empty(t *testing.T) {
	if got := RenderSummary(Input{}, nil, ""); got != NoSummary {
		t.Errorf("RenderSummary() = %q, want %q", got, NoSummary)
	}
}
