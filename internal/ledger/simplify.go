package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Transfer is one suggested payment in a settlement plan.
type Transfer struct {
	PayerID    int             `json:"payer_id"`
	ReceiverID int             `json:"receiver_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// centTolerance is the noise floor for balance comparisons: anything within
// a cent of zero counts as settled.
var centTolerance = decimal.New(1, -2) // 0.01

type memberBalance struct {
	id     int
	amount decimal.Decimal
}

// Simplify reduces a set of net balances to a short list of pairwise
// payments that zero them out.
//
// Greedy cash-flow matching: balances are rounded to two decimal places and
// partitioned into debtors and creditors (anything within a cent of zero is
// already settled). Debtors are walked most-negative first against creditors
// largest first, settling min(|debt|, credit) at each step. The result has
// at most debtors+creditors-1 transfers.
func Simplify(balances map[int]decimal.Decimal) []Transfer {
	var debtors, creditors []memberBalance
	for id, amount := range balances {
		amount = amount.Round(2)
		switch {
		case amount.LessThan(centTolerance.Neg()):
			debtors = append(debtors, memberBalance{id: id, amount: amount})
		case amount.GreaterThan(centTolerance):
			creditors = append(creditors, memberBalance{id: id, amount: amount})
		}
	}

	// Ties broken by member id so the plan is stable across runs.
	sort.Slice(debtors, func(i, j int) bool {
		if !debtors[i].amount.Equal(debtors[j].amount) {
			return debtors[i].amount.LessThan(debtors[j].amount)
		}
		return debtors[i].id < debtors[j].id
	})
	sort.Slice(creditors, func(i, j int) bool {
		if !creditors[i].amount.Equal(creditors[j].amount) {
			return creditors[i].amount.GreaterThan(creditors[j].amount)
		}
		return creditors[i].id < creditors[j].id
	})

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := decimal.Min(debtor.amount.Abs(), creditor.amount)
		transfers = append(transfers, Transfer{
			PayerID:    debtor.id,
			ReceiverID: creditor.id,
			Amount:     amount,
		})

		debtor.amount = debtor.amount.Add(amount)
		creditor.amount = creditor.amount.Sub(amount)

		if debtor.amount.Abs().LessThan(centTolerance) {
			i++
		}
		if creditor.amount.LessThan(centTolerance) {
			j++
		}
	}

	return transfers
}
