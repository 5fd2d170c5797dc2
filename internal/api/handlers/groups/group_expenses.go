package groups

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"splitjourney/internal/ledger"
	"splitjourney/internal/models"
	"splitjourney/internal/repositories/ledgerstore"
	"splitjourney/internal/repositories/sqlconnect"
	"splitjourney/pkg/utils"
)

type expenseRequest struct {
	Description string                    `json:"description"`
	Amount      decimal.Decimal           `json:"amount"`
	PaidBy      int                       `json:"paid_by"`
	ExpenseDate string                    `json:"expense_date"`
	SplitPolicy ledger.SplitPolicy        `json:"split_policy"`
	Splits      map[int]ledger.SplitInput `json:"splits"`
}

// allocateSplits validates the request against the group roster and runs the
// allocator. It writes the error response itself on failure.
func allocateSplits(ctx context.Context, w http.ResponseWriter, db *sql.DB, groupID int, req expenseRequest) (map[int]decimal.Decimal, bool) {
	if strings.TrimSpace(req.Description) == "" {
		utils.WriteError(w, "description is required", http.StatusBadRequest)
		return nil, false
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		utils.WriteError(w, "amount must be greater than zero", http.StatusBadRequest)
		return nil, false
	}

	store := ledgerstore.New(db)
	members, err := store.ListMembers(ctx, groupID)
	if err != nil {
		utils.Logger.Errorf("failed to list members: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}

	memberIDs := make([]int, len(members))
	payerIsMember := false
	for i, m := range members {
		memberIDs[i] = m.ID
		if m.ID == req.PaidBy {
			payerIsMember = true
		}
	}
	if !payerIsMember {
		utils.WriteError(w, "paid_by must be a member of this group", http.StatusBadRequest)
		return nil, false
	}

	for id := range req.Splits {
		if !containsID(memberIDs, id) {
			utils.WriteError(w, "splits reference a member not in this group", http.StatusBadRequest)
			return nil, false
		}
	}

	switch req.SplitPolicy {
	case ledger.SplitUnequal:
		if err := ledger.ValidateUnequalTotal(req.Amount, req.Splits); err != nil {
			utils.WriteError(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
	case ledger.SplitPercentage:
		if err := ledger.ValidatePercentageTotal(req.Splits); err != nil {
			utils.WriteError(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
	}

	owed, err := ledger.Allocate(req.Amount, req.SplitPolicy, req.Splits, memberIDs)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidSplit) {
			utils.WriteError(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
		utils.Logger.Errorf("allocation failed: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}
	return owed, true
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// FUNC TO RECORD A GROUP EXPENSE
func CreateGroupExpenseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	groupID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, "invalid group ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var req expenseRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	if _, err := store.GetGroup(ctx, groupID); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			utils.WriteError(w, "group not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	owed, ok := allocateSplits(ctx, w, db, groupID, req)
	if !ok {
		return
	}

	expenseDate := strings.TrimSpace(req.ExpenseDate)
	if expenseDate == "" {
		expenseDate = time.Now().UTC().Format("2006-01-02 15:04:05")
	}

	expense := models.GroupExpense{
		GroupID:     groupID,
		PaidBy:      req.PaidBy,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		ExpenseDate: sql.NullString{String: expenseDate, Valid: true},
	}

	if err := store.CreateExpense(ctx, &expense, owed); err != nil {
		utils.Logger.Errorf("failed to record expense: %v", err)
		utils.WriteError(w, "failed to record expense", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "expense recorded successfully",
		"data": map[string]interface{}{
			"expense_id": expense.ID,
			"splits":     owed,
		},
	})
}

// FUNC TO LIST GROUP EXPENSES
func ListGroupExpensesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	groupID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, "invalid group ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	expenses, err := store.ListExpenses(ctx, groupID)
	if err != nil {
		utils.Logger.Errorf("failed to list expenses: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if expenses == nil {
		expenses = []models.GroupExpense{}
	}

	response := struct {
		Status string                `json:"status"`
		Count  int                   `json:"count"`
		Data   []models.GroupExpense `json:"data"`
	}{
		Status: "success",
		Count:  len(expenses),
		Data:   expenses,
	}

	utils.WriteJSON(w, response)
}

// FUNC TO GET ONE EXPENSE WITH ITS SPLITS
func GetGroupExpenseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	groupID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, "invalid group ID", http.StatusBadRequest)
		return
	}
	expenseID, err := strconv.Atoi(r.PathValue("expenseId"))
	if err != nil {
		utils.WriteError(w, "invalid expense ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	expense, err := store.GetExpense(ctx, expenseID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			utils.WriteError(w, "expense not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if expense.GroupID != groupID {
		utils.WriteError(w, "expense not found", http.StatusNotFound)
		return
	}

	splits, err := store.ListSplits(ctx, expenseID)
	if err != nil {
		utils.Logger.Errorf("failed to list splits: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if splits == nil {
		splits = []models.ExpenseSplit{}
	}

	response := struct {
		Status  string                `json:"status"`
		Expense models.GroupExpense   `json:"expense"`
		Splits  []models.ExpenseSplit `json:"splits"`
	}{
		Status:  "success",
		Expense: expense,
		Splits:  splits,
	}

	utils.WriteJSON(w, response)
}

// FUNC TO EDIT AN EXPENSE
//
// Editing re-runs the allocator and replaces every split of the expense in
// one transaction. Splits from the previous policy never survive an edit.
func UpdateGroupExpenseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	groupID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, "invalid group ID", http.StatusBadRequest)
		return
	}
	expenseID, err := strconv.Atoi(r.PathValue("expenseId"))
	if err != nil {
		utils.WriteError(w, "invalid expense ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var req expenseRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	expense, err := store.GetExpense(ctx, expenseID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			utils.WriteError(w, "expense not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if expense.GroupID != groupID {
		utils.WriteError(w, "expense not found", http.StatusNotFound)
		return
	}

	owed, ok := allocateSplits(ctx, w, db, groupID, req)
	if !ok {
		return
	}

	expense.Description = strings.TrimSpace(req.Description)
	expense.Amount = req.Amount
	expense.PaidBy = req.PaidBy

	if err := store.UpdateExpense(ctx, &expense, owed); err != nil {
		utils.Logger.Errorf("failed to update expense: %v", err)
		utils.WriteError(w, "failed to update expense", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "expense updated successfully",
		"data": map[string]interface{}{
			"expense_id": expense.ID,
			"splits":     owed,
		},
	})
}

// FUNC TO DELETE AN EXPENSE
func DeleteGroupExpenseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	groupID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, "invalid group ID", http.StatusBadRequest)
		return
	}
	expenseID, err := strconv.Atoi(r.PathValue("expenseId"))
	if err != nil {
		utils.WriteError(w, "invalid expense ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	expense, err := store.GetExpense(ctx, expenseID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			utils.WriteError(w, "expense not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if expense.GroupID != groupID {
		utils.WriteError(w, "expense not found", http.StatusNotFound)
		return
	}

	if err := store.DeleteExpense(ctx, expenseID); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			utils.WriteError(w, "expense not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("failed to delete expense: %v", err)
		utils.WriteError(w, "failed to delete expense", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "expense and its splits deleted successfully",
	})
}
