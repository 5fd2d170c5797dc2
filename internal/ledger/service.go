package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"splitjourney/internal/models"
)

// Store is the persistence collaborator the engine reads from. The ledger
// never writes; splits and settlements are persisted by the API layer.
type Store interface {
	GroupExists(ctx context.Context, groupID int) (bool, error)
	ListMembers(ctx context.Context, groupID int) ([]models.GroupMember, error)
	ListExpenses(ctx context.Context, groupID int) ([]models.GroupExpense, error)
	ListSplits(ctx context.Context, expenseID int) ([]models.ExpenseSplit, error)
	ListSettlements(ctx context.Context, groupID int) ([]models.Settlement, error)
	GetBudget(ctx context.Context, groupID int) (decimal.NullDecimal, error)
}

// Service computes balances, settlement plans and budget status for a group
// by scanning its full history on every call. Nothing is cached or kept
// incrementally, so results can never drift from the stored records.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Balances returns each current member's signed net balance. A missing
// group yields an empty map, not an error; existing callers depend on that.
func (s *Service) Balances(ctx context.Context, groupID int) (map[int]decimal.Decimal, error) {
	exists, err := s.store.GroupExists(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to check group: %w", err)
	}
	if !exists {
		return map[int]decimal.Decimal{}, nil
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	memberIDs := make([]int, len(members))
	for i, m := range members {
		memberIDs[i] = m.ID
	}

	expenses, err := s.store.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var splits []models.ExpenseSplit
	for _, exp := range expenses {
		expSplits, err := s.store.ListSplits(ctx, exp.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list splits for expense %d: %w", exp.ID, err)
		}
		splits = append(splits, expSplits...)
	}

	settlements, err := s.store.ListSettlements(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}

	return ComputeBalances(memberIDs, expenses, splits, settlements), nil
}

// SettlementPlan returns the simplified payments that would zero out the
// group's current balances.
func (s *Service) SettlementPlan(ctx context.Context, groupID int) ([]Transfer, error) {
	balances, err := s.Balances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return Simplify(balances), nil
}

// TotalSpent sums every expense recorded for the group.
func (s *Service) TotalSpent(ctx context.Context, groupID int) (decimal.Decimal, error) {
	expenses, err := s.store.ListExpenses(ctx, groupID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list expenses: %w", err)
	}
	total := decimal.Zero
	for _, exp := range expenses {
		total = total.Add(exp.Amount)
	}
	return total, nil
}

// BudgetStatus reports the group's spend against its budget ceiling. Like
// Balances, a missing group yields an empty status rather than an error.
func (s *Service) BudgetStatus(ctx context.Context, groupID int) (BudgetStatus, error) {
	exists, err := s.store.GroupExists(ctx, groupID)
	if err != nil {
		return BudgetStatus{}, fmt.Errorf("failed to check group: %w", err)
	}
	if !exists {
		return ComputeBudgetStatus(decimal.Zero, decimal.NullDecimal{}), nil
	}

	totalSpent, err := s.TotalSpent(ctx, groupID)
	if err != nil {
		return BudgetStatus{}, err
	}

	budget, err := s.store.GetBudget(ctx, groupID)
	if err != nil {
		return BudgetStatus{}, fmt.Errorf("failed to get budget: %w", err)
	}

	return ComputeBudgetStatus(totalSpent, budget), nil
}
