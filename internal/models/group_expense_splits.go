package models

import "github.com/shopspring/decimal"

// ExpenseSplit records how much one member owes for one expense. Splits are
// created together with their expense and replaced wholesale whenever the
// expense is edited; they are never patched in place.
type ExpenseSplit struct {
	ID         int             `json:"id,omitempty" db:"id,omitempty"`
	ExpenseID  int             `json:"expense_id,omitempty" db:"expense_id,omitempty"`
	OwedBy     int             `json:"owed_by,omitempty" db:"owed_by,omitempty"`
	AmountOwed decimal.Decimal `json:"amount_owed" db:"amount_owed"`
}
