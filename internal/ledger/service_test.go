package ledger

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	"splitjourney/internal/models"
)

// fakeStore keeps a single group's history in memory.
type fakeStore struct {
	groupID     int
	members     []models.GroupMember
	expenses    []models.GroupExpense
	splits      map[int][]models.ExpenseSplit
	settlements []models.Settlement
	budget      decimal.NullDecimal
}

func (f *fakeStore) GroupExists(_ context.Context, groupID int) (bool, error) {
	return groupID == f.groupID, nil
}

func (f *fakeStore) ListMembers(_ context.Context, groupID int) ([]models.GroupMember, error) {
	if groupID != f.groupID {
		return nil, nil
	}
	return f.members, nil
}

func (f *fakeStore) ListExpenses(_ context.Context, groupID int) ([]models.GroupExpense, error) {
	if groupID != f.groupID {
		return nil, nil
	}
	return f.expenses, nil
}

func (f *fakeStore) ListSplits(_ context.Context, expenseID int) ([]models.ExpenseSplit, error) {
	return f.splits[expenseID], nil
}

func (f *fakeStore) ListSettlements(_ context.Context, groupID int) ([]models.Settlement, error) {
	if groupID != f.groupID {
		return nil, nil
	}
	return f.settlements, nil
}

func (f *fakeStore) GetBudget(_ context.Context, groupID int) (decimal.NullDecimal, error) {
	if groupID != f.groupID {
		return decimal.NullDecimal{}, nil
	}
	return f.budget, nil
}

func newTripStore() *fakeStore {
	return &fakeStore{
		groupID: 1,
		members: []models.GroupMember{
			{ID: 1, GroupID: 1, MemberName: "Alice"},
			{ID: 2, GroupID: 1, MemberName: "Bob"},
			{ID: 3, GroupID: 1, MemberName: "Carol"},
		},
		expenses: []models.GroupExpense{
			{ID: 10, GroupID: 1, PaidBy: 1, Description: "Hotel", Amount: dec("300")},
			{ID: 11, GroupID: 1, PaidBy: 2, Description: "Dinner", Amount: dec("90")},
		},
		splits: map[int][]models.ExpenseSplit{
			10: {
				{ExpenseID: 10, OwedBy: 1, AmountOwed: dec("100")},
				{ExpenseID: 10, OwedBy: 2, AmountOwed: dec("100")},
				{ExpenseID: 10, OwedBy: 3, AmountOwed: dec("100")},
			},
			11: {
				{ExpenseID: 11, OwedBy: 1, AmountOwed: dec("30")},
				{ExpenseID: 11, OwedBy: 2, AmountOwed: dec("30")},
				{ExpenseID: 11, OwedBy: 3, AmountOwed: dec("30")},
			},
		},
		settlements: []models.Settlement{
			{ID: 1, GroupID: 1, PaidBy: 3, PaidTo: 1, Amount: dec("50"),
				SettledAt: sql.NullString{String: "2026-01-05 10:00:00", Valid: true}},
		},
		budget: decimal.NullDecimal{Decimal: dec("500"), Valid: true},
	}
}

func TestServiceBalances(t *testing.T) {
	svc := NewService(newTripStore())

	balances, err := svc.Balances(context.Background(), 1)
	if err != nil {
		t.Fatalf("Balances() error: %v", err)
	}

	// Alice: +300 -100 -30 +50 = 220
	// Bob:   +90 -100 -30 = -40
	// Carol: -100 -30 -50 = -180
	want := map[int]string{1: "220", 2: "-40", 3: "-180"}
	if len(balances) != len(want) {
		t.Fatalf("Balances() = %v, want %d members", balances, len(want))
	}
	for id, w := range want {
		if !balances[id].Equal(dec(w)) {
			t.Errorf("balance[%d] = %s, want %s", id, balances[id], w)
		}
	}
}

func TestServiceBalancesMissingGroup(t *testing.T) {
	svc := NewService(newTripStore())

	balances, err := svc.Balances(context.Background(), 99)
	if err != nil {
		t.Fatalf("Balances() error: %v", err)
	}
	if balances == nil || len(balances) != 0 {
		t.Errorf("Balances() for missing group = %v, want empty map", balances)
	}
}

func TestServiceSettlementPlan(t *testing.T) {
	svc := NewService(newTripStore())

	plan, err := svc.SettlementPlan(context.Background(), 1)
	if err != nil {
		t.Fatalf("SettlementPlan() error: %v", err)
	}

	want := []Transfer{
		{PayerID: 3, ReceiverID: 1, Amount: dec("180")},
		{PayerID: 2, ReceiverID: 1, Amount: dec("40")},
	}
	if len(plan) != len(want) {
		t.Fatalf("SettlementPlan() = %v, want %v", plan, want)
	}
	for i, tr := range plan {
		w := want[i]
		if tr.PayerID != w.PayerID || tr.ReceiverID != w.ReceiverID || !tr.Amount.Equal(w.Amount) {
			t.Errorf("transfer %d = (%d -> %d, %s), want (%d -> %d, %s)",
				i, tr.PayerID, tr.ReceiverID, tr.Amount, w.PayerID, w.ReceiverID, w.Amount)
		}
	}
}

func TestServiceBudgetStatus(t *testing.T) {
	svc := NewService(newTripStore())

	status, err := svc.BudgetStatus(context.Background(), 1)
	if err != nil {
		t.Fatalf("BudgetStatus() error: %v", err)
	}

	if !status.TotalSpent.Equal(dec("390")) {
		t.Errorf("TotalSpent = %s, want 390", status.TotalSpent)
	}
	if !status.PercentageUsed.Equal(dec("78")) {
		t.Errorf("PercentageUsed = %s, want 78", status.PercentageUsed)
	}
	if len(status.Alerts) != 1 || status.Alerts[0] != "50% of budget used" {
		t.Errorf("Alerts = %v, want the 50%% alert only", status.Alerts)
	}
}

func TestServiceBudgetStatusMissingGroup(t *testing.T) {
	svc := NewService(newTripStore())

	status, err := svc.BudgetStatus(context.Background(), 99)
	if err != nil {
		t.Fatalf("BudgetStatus() error: %v", err)
	}
	if !status.PercentageUsed.IsZero() || len(status.Alerts) != 0 {
		t.Errorf("BudgetStatus() for missing group = %+v, want zero status", status)
	}
}
