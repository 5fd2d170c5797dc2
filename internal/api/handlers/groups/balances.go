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
	"splitjourney/internal/models"
	"splitjourney/internal/repositories/ledgerstore"
	"splitjourney/internal/repositories/sqlconnect"
	"splitjourney/pkg/utils"
)

// FUNC TO GET CURRENT BALANCES
func GetBalancesHandler(w http.ResponseWriter, r *http.Request) {
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
	balances, err := svc.Balances(ctx, groupID)
	if err != nil {
		utils.Logger.Errorf("failed to compute balances: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	response := struct {
		Status   string                  `json:"status"`
		Balances map[int]decimal.Decimal `json:"balances"`
	}{
		Status:   "success",
		Balances: balances,
	}

	utils.WriteJSON(w, response)
}

// FUNC TO GET THE SIMPLIFIED SETTLEMENT PLAN
func GetSettlementPlanHandler(w http.ResponseWriter, r *http.Request) {
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
	plan, err := svc.SettlementPlan(ctx, groupID)
	if err != nil {
		utils.Logger.Errorf("failed to compute settlement plan: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if plan == nil {
		plan = []ledger.Transfer{}
	}

	response := struct {
		Status    string            `json:"status"`
		Count     int               `json:"count"`
		Transfers []ledger.Transfer `json:"transfers"`
	}{
		Status:    "success",
		Count:     len(plan),
		Transfers: plan,
	}

	utils.WriteJSON(w, response)
}

// FUNC TO RECORD A SETTLEMENT PAYMENT
func RecordSettlementHandler(w http.ResponseWriter, r *http.Request) {
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

	type request struct {
		PaidBy int             `json:"paid_by"`
		PaidTo int             `json:"paid_to"`
		Amount decimal.Decimal `json:"amount"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		utils.WriteError(w, "amount must be greater than zero", http.StatusBadRequest)
		return
	}
	if req.PaidBy == req.PaidTo {
		utils.WriteError(w, "payer and receiver must be different members", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	store := ledgerstore.New(db)
	for _, memberID := range []int{req.PaidBy, req.PaidTo} {
		member, err := store.GetMember(ctx, memberID)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				utils.WriteError(w, "member not found", http.StatusBadRequest)
				return
			}
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if member.GroupID != groupID {
			utils.WriteError(w, "both members must belong to this group", http.StatusBadRequest)
			return
		}
	}

	settlement := models.Settlement{
		GroupID: groupID,
		PaidBy:  req.PaidBy,
		PaidTo:  req.PaidTo,
		Amount:  req.Amount,
	}

	if err := store.SaveSettlement(ctx, &settlement); err != nil {
		utils.Logger.Errorf("failed to record settlement: %v", err)
		utils.WriteError(w, "failed to record settlement", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "settlement recorded successfully",
		"data":    settlement,
	})
}

// FUNC TO LIST SETTLEMENT HISTORY
func ListSettlementsHandler(w http.ResponseWriter, r *http.Request) {
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
	settlements, err := store.ListSettlements(ctx, groupID)
	if err != nil {
		utils.Logger.Errorf("failed to list settlements: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if settlements == nil {
		settlements = []models.Settlement{}
	}

	response := struct {
		Status string              `json:"status"`
		Count  int                 `json:"count"`
		Data   []models.Settlement `json:"data"`
	}{
		Status: "success",
		Count:  len(settlements),
		Data:   settlements,
	}

	utils.WriteJSON(w, response)
}
