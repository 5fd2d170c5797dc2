package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"splitjourney/internal/models"
)

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name        string
		memberIDs   []int
		expenses    []models.GroupExpense
		splits      []models.ExpenseSplit
		settlements []models.Settlement
		want        map[int]string
	}{
		{
			name:      "two members equal split",
			memberIDs: []int{1, 2},
			expenses: []models.GroupExpense{
				{ID: 10, GroupID: 1, PaidBy: 1, Amount: dec("200")},
			},
			splits: []models.ExpenseSplit{
				{ExpenseID: 10, OwedBy: 1, AmountOwed: dec("100")},
				{ExpenseID: 10, OwedBy: 2, AmountOwed: dec("100")},
			},
			want: map[int]string{1: "100", 2: "-100"},
		},
		{
			name:      "three members one payer",
			memberIDs: []int{1, 2, 3},
			expenses: []models.GroupExpense{
				{ID: 10, GroupID: 1, PaidBy: 1, Amount: dec("90")},
			},
			splits: []models.ExpenseSplit{
				{ExpenseID: 10, OwedBy: 1, AmountOwed: dec("30")},
				{ExpenseID: 10, OwedBy: 2, AmountOwed: dec("30")},
				{ExpenseID: 10, OwedBy: 3, AmountOwed: dec("30")},
			},
			want: map[int]string{1: "60", 2: "-30", 3: "-30"},
		},
		{
			name:      "settlement credits payer and debits receiver",
			memberIDs: []int{1, 2},
			expenses: []models.GroupExpense{
				{ID: 10, GroupID: 1, PaidBy: 1, Amount: dec("200")},
			},
			splits: []models.ExpenseSplit{
				{ExpenseID: 10, OwedBy: 1, AmountOwed: dec("100")},
				{ExpenseID: 10, OwedBy: 2, AmountOwed: dec("100")},
			},
			settlements: []models.Settlement{
				{GroupID: 1, PaidBy: 2, PaidTo: 1, Amount: dec("100")},
			},
			want: map[int]string{1: "0", 2: "0"},
		},
		{
			name:      "removed members are dropped from the result",
			memberIDs: []int{1},
			expenses: []models.GroupExpense{
				{ID: 10, GroupID: 1, PaidBy: 1, Amount: dec("50")},
			},
			splits: []models.ExpenseSplit{
				{ExpenseID: 10, OwedBy: 1, AmountOwed: dec("25")},
				{ExpenseID: 10, OwedBy: 99, AmountOwed: dec("25")},
			},
			want: map[int]string{1: "25"},
		},
		{
			name:      "no history means all zeros",
			memberIDs: []int{1, 2, 3},
			want:      map[int]string{1: "0", 2: "0", 3: "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalances(tt.memberIDs, tt.expenses, tt.splits, tt.settlements)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d balances, want %d", len(got), len(tt.want))
			}
			for id, wantStr := range tt.want {
				bal, ok := got[id]
				if !ok {
					t.Errorf("member %d missing from balances", id)
					continue
				}
				if !bal.Equal(dec(wantStr)) {
					t.Errorf("member %d balance = %s, want %s", id, bal, wantStr)
				}
			}
		})
	}
}

func TestComputeBalancesZeroSum(t *testing.T) {
	memberIDs := []int{1, 2, 3, 4}
	expenses := []models.GroupExpense{
		{ID: 10, PaidBy: 1, Amount: dec("120.50")},
		{ID: 11, PaidBy: 2, Amount: dec("33.33")},
		{ID: 12, PaidBy: 4, Amount: dec("75")},
	}
	splits := []models.ExpenseSplit{
		{ExpenseID: 10, OwedBy: 1, AmountOwed: dec("30.13")},
		{ExpenseID: 10, OwedBy: 2, AmountOwed: dec("30.13")},
		{ExpenseID: 10, OwedBy: 3, AmountOwed: dec("30.12")},
		{ExpenseID: 10, OwedBy: 4, AmountOwed: dec("30.12")},
		{ExpenseID: 11, OwedBy: 1, AmountOwed: dec("11.11")},
		{ExpenseID: 11, OwedBy: 2, AmountOwed: dec("11.11")},
		{ExpenseID: 11, OwedBy: 3, AmountOwed: dec("11.11")},
		{ExpenseID: 12, OwedBy: 3, AmountOwed: dec("37.50")},
		{ExpenseID: 12, OwedBy: 4, AmountOwed: dec("37.50")},
	}
	settlements := []models.Settlement{
		{PaidBy: 3, PaidTo: 1, Amount: dec("20")},
		{PaidBy: 2, PaidTo: 4, Amount: dec("5.25")},
	}

	balances := ComputeBalances(memberIDs, expenses, splits, settlements)

	total := decimal.Zero
	for _, bal := range balances {
		total = total.Add(bal)
	}
	if total.Abs().GreaterThan(dec("0.01")) {
		t.Errorf("balances sum to %s, want 0 within 0.01", total)
	}
}

func TestComputeBalancesIdempotent(t *testing.T) {
	memberIDs := []int{1, 2}
	expenses := []models.GroupExpense{{ID: 10, PaidBy: 1, Amount: dec("80")}}
	splits := []models.ExpenseSplit{
		{ExpenseID: 10, OwedBy: 1, AmountOwed: dec("40")},
		{ExpenseID: 10, OwedBy: 2, AmountOwed: dec("40")},
	}

	first := ComputeBalances(memberIDs, expenses, splits, nil)
	second := ComputeBalances(memberIDs, expenses, splits, nil)

	for id, bal := range first {
		if !bal.Equal(second[id]) {
			t.Errorf("member %d: first run %s, second run %s", id, bal, second[id])
		}
	}
}
