// Package calculator implements the bill-splitting formulas.
//
// All functions are pure: they read their input and return fresh values.
// Invalid input never fails; it produces zero or empty results instead.
package calculator

import (
	"fmt"
	"sort"

	"github.com/mmynk/syncplan/internal/models"
)

// Input is everything a split depends on.
type Input struct {
	Items        []models.BillItem
	Participants []models.Participant
	Method       models.SplitMethod

	// TipPercent and TaxPercent apply to the item subtotal, e.g. 15 for 15%.
	TipPercent float64
	TaxPercent float64

	// Percentages maps participant ID to their share for SplitPercentage.
	Percentages map[string]float64
}

// amounts holds the unrounded bill-level figures.
type amounts struct {
	subtotal float64
	tip      float64
	tax      float64
}

func (a amounts) total() float64 {
	return a.subtotal + a.tip + a.tax
}

func billAmounts(in Input) amounts {
	var subtotal float64
	for _, item := range in.Items {
		subtotal += item.Price
	}
	return amounts{
		subtotal: subtotal,
		tip:      subtotal * (in.TipPercent / 100.0),
		tax:      subtotal * (in.TaxPercent / 100.0),
	}
}

// Calculate computes each participant's share under in.Method.
// The result has one entry per participant, in participant order,
// or is empty when there are no participants.
func Calculate(in Input) []models.SplitResult {
	if len(in.Participants) == 0 {
		return []models.SplitResult{}
	}

	switch in.Method {
	case models.SplitByItems, models.SplitCustom:
		return calculateByItems(in)
	case models.SplitPercentage:
		return calculatePercentage(in)
	default:
		return calculateEqual(in)
	}
}

// calculateEqual divides subtotal, tip and tax evenly.
func calculateEqual(in Input) []models.SplitResult {
	a := billAmounts(in)
	n := float64(len(in.Participants))

	perPersonTotal := a.total() / n
	perPersonBase := a.subtotal / n
	perPersonTip := a.tip / n
	perPersonTax := a.tax / n

	results := make([]models.SplitResult, len(in.Participants))
	for i, p := range in.Participants {
		results[i] = models.SplitResult{
			ParticipantID:   p.ID,
			ParticipantName: p.Name,
			Total:           Round(perPersonTotal),
			Items:           []models.ItemShare{{Name: EqualSplitLabel, Amount: Round(perPersonBase)}},
			Tip:             Round(perPersonTip),
			Tax:             Round(perPersonTax),
		}
	}
	return results
}

// calculateByItems divides each item among its assignees, then apportions
// tip and tax by each participant's share of the subtotal.
func calculateByItems(in Input) []models.SplitResult {
	a := billAmounts(in)

	base := make(map[string]float64, len(in.Participants))
	lines := make(map[string][]models.ItemShare, len(in.Participants))
	for _, p := range in.Participants {
		base[p.ID] = 0
		lines[p.ID] = []models.ItemShare{}
	}

	for _, item := range in.Items {
		if len(item.ParticipantIDs) == 0 {
			continue
		}

		// Split item among assigned people
		perPerson := item.Price / float64(len(item.ParticipantIDs))
		for _, id := range item.ParticipantIDs {
			if _, ok := base[id]; !ok {
				continue
			}
			base[id] += perPerson
			lines[id] = append(lines[id], models.ItemShare{Name: item.Name, Amount: Round(perPerson)})
		}
	}

	results := make([]models.SplitResult, len(in.Participants))
	for i, p := range in.Participants {
		var proportion float64
		if a.subtotal > 0 {
			proportion = base[p.ID] / a.subtotal
		}
		tip := a.tip * proportion
		tax := a.tax * proportion

		results[i] = models.SplitResult{
			ParticipantID:   p.ID,
			ParticipantName: p.Name,
			Total:           Round(base[p.ID] + tip + tax),
			Items:           lines[p.ID],
			Tip:             Round(tip),
			Tax:             Round(tax),
		}
	}
	return results
}

// calculatePercentage gives each participant their percentage of the whole
// bill. When no percentages are set at all it falls back to an equal split.
func calculatePercentage(in Input) []models.SplitResult {
	if PercentageSum(in.Percentages) == 0 {
		return calculateEqual(in)
	}

	a := billAmounts(in)
	results := make([]models.SplitResult, len(in.Participants))
	for i, p := range in.Participants {
		share := in.Percentages[p.ID] / 100.0
		results[i] = models.SplitResult{
			ParticipantID:   p.ID,
			ParticipantName: p.Name,
			Total:           Round(a.total() * share),
			Items:           []models.ItemShare{{Name: PercentageLabel(in.Percentages[p.ID]), Amount: Round(a.subtotal * share)}},
			Tip:             Round(a.tip * share),
			Tax:             Round(a.tax * share),
		}
	}
	return results
}

// PercentageSum adds up all assigned percentages in participant ID order,
// so repeated calls give the same float result.
func PercentageSum(percentages map[string]float64) float64 {
	ids := make([]string, 0, len(percentages))
	for id := range percentages {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sum float64
	for _, id := range ids {
		sum += percentages[id]
	}
	return sum
}

// EqualSplitLabel is the single itemized line of an equal split.
const EqualSplitLabel = "Equal split"

// PercentageLabel is the single itemized line of a percentage split.
func PercentageLabel(pct float64) string {
	return fmt.Sprintf("%s%% of bill", formatPercent(pct))
}
