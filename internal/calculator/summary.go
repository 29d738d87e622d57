package calculator

import (
	"fmt"
	"strings"

	"github.com/mmynk/syncplan/internal/models"
)

// DefaultCurrency is the suffix used when none is configured.
const DefaultCurrency = "zł"

// NoSummary is rendered when there are no results to report.
const NoSummary = "No data to summarize"

// RenderSummary produces the human-readable itemized report shared in chats.
//
// Format:
//
//	BILL SUMMARY
//	==============================
//	Items total: 100.00 zł
//	Tip (10%): 10.00 zł
//	Tax (0%): 0.00 zł
//	TOTAL: 110.00 zł
//
//	SPLIT:
//	------------------------------
//	Alice: 55.00 zł
//	  • Equal split: 50.00 zł
//	  • Tip: 5.00 zł
//
// A blank line follows every participant block.
func RenderSummary(in Input, results []models.SplitResult, currency string) string {
	if len(results) == 0 {
		return NoSummary
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	money := func(v float64) string {
		return FormatAmount(v) + " " + currency
	}

	totals := BillTotals(in)

	var b strings.Builder
	b.WriteString("BILL SUMMARY\n")
	b.WriteString(strings.Repeat("=", 30) + "\n")
	fmt.Fprintf(&b, "Items total: %s\n", money(totals.Subtotal))
	fmt.Fprintf(&b, "Tip (%s%%): %s\n", formatPercent(in.TipPercent), money(totals.Tip))
	fmt.Fprintf(&b, "Tax (%s%%): %s\n", formatPercent(in.TaxPercent), money(totals.Tax))
	fmt.Fprintf(&b, "TOTAL: %s\n", money(totals.GrandTotal))
	b.WriteString("\n")
	b.WriteString("SPLIT:\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")

	for _, r := range results {
		fmt.Fprintf(&b, "%s: %s\n", r.ParticipantName, money(r.Total))
		for _, item := range r.Items {
			fmt.Fprintf(&b, "  • %s: %s\n", item.Name, money(item.Amount))
		}
		if r.Tip > 0 {
			fmt.Fprintf(&b, "  • Tip: %s\n", money(r.Tip))
		}
		if r.Tax > 0 {
			fmt.Fprintf(&b, "  • Tax: %s\n", money(r.Tax))
		}
		b.WriteString("\n")
	}

	return b.String()
}
