package ledger

import (
	"github.com/shopspring/decimal"

	"splitjourney/internal/models"
)

// ComputeBalances aggregates a group's full history into a signed net
// balance per member. Positive means the group owes the member, negative
// means the member owes the group.
//
// Three passes, all additive so order does not matter:
//  1. each expense credits its payer by the full amount,
//  2. each split debits the owing member,
//  3. each settlement credits the payer and debits the receiver.
//
// Only ids present in memberIDs appear in the result; splits or settlements
// referencing members who have since been removed are dropped, not carried.
func ComputeBalances(memberIDs []int, expenses []models.GroupExpense, splits []models.ExpenseSplit, settlements []models.Settlement) map[int]decimal.Decimal {
	balances := make(map[int]decimal.Decimal, len(memberIDs))
	for _, id := range memberIDs {
		balances[id] = decimal.Zero
	}

	for _, exp := range expenses {
		if bal, ok := balances[exp.PaidBy]; ok {
			balances[exp.PaidBy] = bal.Add(exp.Amount)
		}
	}

	for _, split := range splits {
		if bal, ok := balances[split.OwedBy]; ok {
			balances[split.OwedBy] = bal.Sub(split.AmountOwed)
		}
	}

	for _, s := range settlements {
		// Payer gave money, so their debt shrinks; receiver collected,
		// so what they are owed shrinks.
		if bal, ok := balances[s.PaidBy]; ok {
			balances[s.PaidBy] = bal.Add(s.Amount)
		}
		if bal, ok := balances[s.PaidTo]; ok {
			balances[s.PaidTo] = bal.Sub(s.Amount)
		}
	}

	return balances
}
