// Package ledgerstore is the persistence collaborator for the ledger
// engine: plain read accessors over the group's history plus the two write
// paths the engine's callers need, replace-all splits and append-only
// settlements.
package ledgerstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"splitjourney/internal/ledger"
	"splitjourney/internal/models"
)

// Ensure the store satisfies the engine's collaborator interface.
var _ ledger.Store = (*Store)(nil)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GroupExists(ctx context.Context, groupID int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM `groups` WHERE id = ?)", groupID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check group %d: %w", groupID, err)
	}
	return exists, nil
}

func (s *Store) GetGroup(ctx context.Context, groupID int) (models.Group, error) {
	var group models.Group
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_by, budget_amount, created_at FROM `groups` WHERE id = ?", groupID).
		Scan(&group.ID, &group.Name, &group.CreatedBy, &group.BudgetAmount, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Group{}, fmt.Errorf("group %d: %w", groupID, ledger.ErrNotFound)
	}
	if err != nil {
		return models.Group{}, fmt.Errorf("failed to get group %d: %w", groupID, err)
	}
	return group, nil
}

func (s *Store) ListMembers(ctx context.Context, groupID int) ([]models.GroupMember, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, member_name, user_id, created_at FROM group_members WHERE group_id = ? ORDER BY id", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.ID, &m.GroupID, &m.MemberName, &m.UserID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) GetMember(ctx context.Context, memberID int) (models.GroupMember, error) {
	var m models.GroupMember
	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_id, member_name, user_id, created_at FROM group_members WHERE id = ?", memberID).
		Scan(&m.ID, &m.GroupID, &m.MemberName, &m.UserID, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return models.GroupMember{}, fmt.Errorf("member %d: %w", memberID, ledger.ErrNotFound)
	}
	if err != nil {
		return models.GroupMember{}, fmt.Errorf("failed to get member %d: %w", memberID, err)
	}
	return m, nil
}

func (s *Store) ListExpenses(ctx context.Context, groupID int) ([]models.GroupExpense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, paid_by, description, amount, expense_date, created_at
		FROM group_expenses
		WHERE group_id = ?
		ORDER BY expense_date DESC, id DESC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.GroupExpense
	for rows.Next() {
		var e models.GroupExpense
		if err := rows.Scan(&e.ID, &e.GroupID, &e.PaidBy, &e.Description, &e.Amount, &e.ExpenseDate, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (s *Store) GetExpense(ctx context.Context, expenseID int) (models.GroupExpense, error) {
	var e models.GroupExpense
	err := s.db.QueryRowContext(ctx, `
		SELECT id, group_id, paid_by, description, amount, expense_date, created_at
		FROM group_expenses WHERE id = ?`, expenseID).
		Scan(&e.ID, &e.GroupID, &e.PaidBy, &e.Description, &e.Amount, &e.ExpenseDate, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return models.GroupExpense{}, fmt.Errorf("expense %d: %w", expenseID, ledger.ErrNotFound)
	}
	if err != nil {
		return models.GroupExpense{}, fmt.Errorf("failed to get expense %d: %w", expenseID, err)
	}
	return e, nil
}

func (s *Store) ListSplits(ctx context.Context, expenseID int) ([]models.ExpenseSplit, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, expense_id, owed_by, amount_owed FROM group_expense_splits WHERE expense_id = ? ORDER BY owed_by", expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var splits []models.ExpenseSplit
	for rows.Next() {
		var split models.ExpenseSplit
		if err := rows.Scan(&split.ID, &split.ExpenseID, &split.OwedBy, &split.AmountOwed); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, split)
	}
	return splits, rows.Err()
}

func (s *Store) ListSettlements(ctx context.Context, groupID int) ([]models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, paid_by, paid_to, amount, settled_at
		FROM settlements
		WHERE group_id = ?
		ORDER BY settled_at, id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		var st models.Settlement
		if err := rows.Scan(&st.ID, &st.GroupID, &st.PaidBy, &st.PaidTo, &st.Amount, &st.SettledAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, st)
	}
	return settlements, rows.Err()
}

// CreateExpense inserts the expense and its splits in one transaction.
func (s *Store) CreateExpense(ctx context.Context, expense *models.GroupExpense, owed map[int]decimal.Decimal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO group_expenses (group_id, paid_by, description, amount, expense_date)
		VALUES (?, ?, ?, ?, ?)`,
		expense.GroupID, expense.PaidBy, expense.Description, expense.Amount, expense.ExpenseDate.String)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get expense id: %w", err)
	}
	expense.ID = int(id)

	if err := insertSplits(ctx, tx, expense.ID, owed); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateExpense rewrites the expense row and replaces all of its splits in
// one transaction. Splits are never patched: the old set is discarded and
// the freshly allocated set written, so readers never see a partial edit.
func (s *Store) UpdateExpense(ctx context.Context, expense *models.GroupExpense, owed map[int]decimal.Decimal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE group_expenses SET description = ?, amount = ?, paid_by = ? WHERE id = ?`,
		expense.Description, expense.Amount, expense.PaidBy, expense.ID)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// The row may exist with identical values; confirm it is there.
		var exists bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM group_expenses WHERE id = ?)", expense.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check expense: %w", err)
		}
		if !exists {
			return fmt.Errorf("expense %d: %w", expense.ID, ledger.ErrNotFound)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM group_expense_splits WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to discard old splits: %w", err)
	}

	if err := insertSplits(ctx, tx, expense.ID, owed); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) DeleteExpense(ctx context.Context, expenseID int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM group_expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %d: %w", expenseID, ledger.ErrNotFound)
	}
	return nil
}

// SaveSplits replaces every split of the expense with the given set.
func (s *Store) SaveSplits(ctx context.Context, expenseID int, owed map[int]decimal.Decimal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM group_expense_splits WHERE expense_id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to discard old splits: %w", err)
	}
	if err := insertSplits(ctx, tx, expenseID, owed); err != nil {
		return err
	}
	return tx.Commit()
}

func insertSplits(ctx context.Context, tx *sql.Tx, expenseID int, owed map[int]decimal.Decimal) error {
	if len(owed) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO group_expense_splits (expense_id, owed_by, amount_owed) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare split insert: %w", err)
	}
	defer stmt.Close()

	memberIDs := make([]int, 0, len(owed))
	for id := range owed {
		memberIDs = append(memberIDs, id)
	}
	sort.Ints(memberIDs)

	for _, memberID := range memberIDs {
		if _, err := stmt.ExecContext(ctx, expenseID, memberID, owed[memberID]); err != nil {
			return fmt.Errorf("failed to insert split for member %d: %w", memberID, err)
		}
	}
	return nil
}

// SaveSettlement appends a settlement record. Settlements are historical
// payment events and are never updated or deleted.
func (s *Store) SaveSettlement(ctx context.Context, settlement *models.Settlement) error {
	settledAt := settlement.SettledAt.String
	if settledAt == "" {
		settledAt = time.Now().UTC().Format("2006-01-02 15:04:05")
		settlement.SettledAt = sql.NullString{String: settledAt, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO settlements (group_id, paid_by, paid_to, amount, settled_at)
		VALUES (?, ?, ?, ?, ?)`,
		settlement.GroupID, settlement.PaidBy, settlement.PaidTo, settlement.Amount, settledAt)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get settlement id: %w", err)
	}
	settlement.ID = int(id)
	return nil
}

func (s *Store) GetBudget(ctx context.Context, groupID int) (decimal.NullDecimal, error) {
	var budget decimal.NullDecimal
	err := s.db.QueryRowContext(ctx, "SELECT budget_amount FROM `groups` WHERE id = ?", groupID).Scan(&budget)
	if err == sql.ErrNoRows {
		return decimal.NullDecimal{}, fmt.Errorf("group %d: %w", groupID, ledger.ErrNotFound)
	}
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("failed to get budget: %w", err)
	}
	return budget, nil
}

// SetBudget stores the group's budget ceiling. A missing or non-positive
// amount clears the budget.
func (s *Store) SetBudget(ctx context.Context, groupID int, budget decimal.NullDecimal) error {
	if budget.Valid && budget.Decimal.LessThanOrEqual(decimal.Zero) {
		budget = decimal.NullDecimal{}
	}

	res, err := s.db.ExecContext(ctx, "UPDATE `groups` SET budget_amount = ? WHERE id = ?", budget, groupID)
	if err != nil {
		return fmt.Errorf("failed to set budget: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		exists, err := s.GroupExists(ctx, groupID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("group %d: %w", groupID, ledger.ErrNotFound)
		}
	}
	return nil
}
