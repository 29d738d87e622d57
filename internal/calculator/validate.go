package calculator

import (
	"errors"
	"fmt"

	"github.com/mmynk/syncplan/internal/models"
)

var (
	ErrNoParticipants  = errors.New("must have at least one participant")
	ErrNoItems         = errors.New("must have at least one item")
	ErrPercentageSum   = errors.New("percentages must add up to 100")
	ErrUnassignedItem  = errors.New("every item must be assigned to someone")
	ErrNegativePrice   = errors.New("item price cannot be negative")
	ErrNegativePercent = errors.New("tip and tax percentages cannot be negative")
)

// Check reports why a split is not ready to be saved. Calculate itself
// accepts anything; Check is the stricter gate used before persisting.
func Check(in Input) error {
	if len(in.Participants) == 0 {
		return ErrNoParticipants
	}
	if len(in.Items) == 0 {
		return ErrNoItems
	}
	if in.TipPercent < 0 || in.TaxPercent < 0 {
		return ErrNegativePercent
	}
	for _, item := range in.Items {
		if item.Price < 0 {
			return fmt.Errorf("%w: %s", ErrNegativePrice, item.Name)
		}
	}

	switch in.Method {
	case models.SplitPercentage:
		if sum := PercentageSum(in.Percentages); sum != 100 {
			return fmt.Errorf("%w: got %s", ErrPercentageSum, formatPercent(sum))
		}
	case models.SplitByItems, models.SplitCustom:
		for _, item := range in.Items {
			if len(item.ParticipantIDs) == 0 {
				return fmt.Errorf("%w: %s", ErrUnassignedItem, item.Name)
			}
		}
	}
	return nil
}

// IsValid reports whether Check passes.
func IsValid(in Input) bool {
	return Check(in) == nil
}

// Totals is the rounded bill-level breakdown.
type Totals struct {
	Subtotal   float64
	Tip        float64
	Tax        float64
	GrandTotal float64
}

// BillTotals returns the rounded subtotal, tip, tax and grand total.
// The grand total adds the already rounded tip and tax.
func BillTotals(in Input) Totals {
	a := billAmounts(in)
	tip := Round(a.tip)
	tax := Round(a.tax)
	return Totals{
		Subtotal:   Round(a.subtotal),
		Tip:        tip,
		Tax:        tax,
		GrandTotal: Round(a.subtotal + tip + tax),
	}
}
