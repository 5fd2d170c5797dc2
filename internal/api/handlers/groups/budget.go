package groups

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"splitjourney/internal/ledger"
	"splitjourney/internal/repositories/ledgerstore"
	"splitjourney/internal/repositories/sqlconnect"
	"splitjourney/pkg/utils"
)

// FUNC TO SET OR CLEAR THE GROUP BUDGET
func SetBudgetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
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

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	type request struct {
		BudgetAmount decimal.NullDecimal `json:"budget_amount"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if !requireGroupOwner(ctx, w, db, groupID, userID) {
		return
	}

	store := ledgerstore.New(db)
	if err := store.SetBudget(ctx, groupID, req.BudgetAmount); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			utils.WriteError(w, "group not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("failed to set budget: %v", err)
		utils.WriteError(w, "failed to set budget", http.StatusInternalServerError)
		return
	}

	message := "budget updated successfully"
	if !req.BudgetAmount.Valid || req.BudgetAmount.Decimal.LessThanOrEqual(decimal.Zero) {
		message = "budget cleared"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": message,
	})
}

// FUNC TO GET BUDGET STATUS
func GetBudgetStatusHandler(w http.ResponseWriter, r *http.Request) {
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

	svc := ledger.NewService(ledgerstore.New(db))
	status, err := svc.BudgetStatus(ctx, groupID)
	if err != nil {
		utils.Logger.Errorf("failed to compute budget status: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	response := struct {
		Status string              `json:"status"`
		Data   ledger.BudgetStatus `json:"data"`
	}{
		Status: "success",
		Data:   status,
	}

	utils.WriteJSON(w, response)
}
