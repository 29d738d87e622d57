package calculator

import (
	"sort"
)

// BillForBalance is a saved bill reduced to what balance calculation needs.
type BillForBalance struct {
	PayerID string
	Split   Input
}

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	MemberID   string
	NetBalance float64 // Positive = owed money, Negative = owes money
	TotalPaid  float64 // Total amount paid across all bills and settlements
	TotalOwed  float64 // Total amount this person owes
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount float64
}

// SettlementForBalance is a settlement reduced to what balance calculation needs.
type SettlementForBalance struct {
	FromUserID string // Who paid (debtor settling up)
	ToUserID   string // Who received (creditor being paid)
	Amount     float64
}

// settleThreshold hides float noise below one cent.
const settleThreshold = 0.01

// CalculateGroupBalances computes balances across multiple bills and settlements.
//
// Algorithm:
//   - For each bill: the payer is credited the grand total, each participant
//     is debited their split total
//   - For each settlement: payer's balance improves, receiver's balance decreases
//   - net_balance = total_paid - total_owed
//   - Debts are simplified greedily, largest debtor against largest creditor
//
// Balances are sorted by member ID. Bills without a payer are skipped.
func CalculateGroupBalances(bills []BillForBalance, settlements []SettlementForBalance) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	get := func(id string) *MemberBalance {
		if b, ok := balances[id]; ok {
			return b
		}
		b := &MemberBalance{MemberID: id}
		balances[id] = b
		return b
	}

	for _, bill := range bills {
		if bill.PayerID == "" {
			continue
		}

		get(bill.PayerID).TotalPaid += BillTotals(bill.Split).GrandTotal
		for _, r := range Calculate(bill.Split) {
			get(r.ParticipantID).TotalOwed += r.Total
		}
	}

	for _, s := range settlements {
		get(s.FromUserID).TotalPaid += s.Amount
		get(s.ToUserID).TotalOwed += s.Amount
	}

	memberBalances := make([]MemberBalance, 0, len(balances))
	for _, bal := range balances {
		bal.TotalPaid = Round(bal.TotalPaid)
		bal.TotalOwed = Round(bal.TotalOwed)
		bal.NetBalance = Round(bal.TotalPaid - bal.TotalOwed)
		memberBalances = append(memberBalances, *bal)
	}
	sort.Slice(memberBalances, func(i, j int) bool {
		return memberBalances[i].MemberID < memberBalances[j].MemberID
	})

	return memberBalances, simplifyDebts(memberBalances)
}

type position struct {
	id     string
	amount float64
}

// simplifyDebts matches debtors with creditors to minimize transactions.
func simplifyDebts(balances []MemberBalance) []DebtEdge {
	var debtors, creditors []position
	for _, bal := range balances {
		if bal.NetBalance >= settleThreshold {
			creditors = append(creditors, position{bal.MemberID, bal.NetBalance})
		} else if bal.NetBalance <= -settleThreshold {
			debtors = append(debtors, position{bal.MemberID, -bal.NetBalance})
		}
	}
	byAmount := func(p []position) func(i, j int) bool {
		return func(i, j int) bool {
			if p[i].amount != p[j].amount {
				return p[i].amount > p[j].amount
			}
			return p[i].id < p[j].id
		}
	}
	sort.Slice(debtors, byAmount(debtors))
	sort.Slice(creditors, byAmount(creditors))

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].amount
		if creditors[j].amount < amount {
			amount = creditors[j].amount
		}

		if amount >= settleThreshold {
			edges = append(edges, DebtEdge{
				From:   debtors[i].id,
				To:     creditors[j].id,
				Amount: Round(amount),
			})
		}

		debtors[i].amount -= amount
		creditors[j].amount -= amount

		if debtors[i].amount < settleThreshold {
			i++
		}
		if creditors[j].amount < settleThreshold {
			j++
		}
	}
	return edges
}
