package groups

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"splitjourney/internal/models"
	"splitjourney/internal/repositories/sqlconnect"
	"splitjourney/pkg/utils"
)

// FUNC TO CREATE A GROUP
func CreateGroupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
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
		Name    string   `json:"name"`
		Members []string `json:"members"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		utils.WriteError(w, "group name is required", http.StatusBadRequest)
		return
	}
	if len(req.Name) > 100 {
		utils.WriteError(w, "group name too long", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var username string
	if err := db.QueryRowContext(ctx, "SELECT username FROM users WHERE id = ?", userID).Scan(&username); err != nil {
		utils.Logger.Errorf("failed to look up user %d: %v", userID, err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		utils.Logger.Errorf("failed to start transaction: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	res, err := tx.ExecContext(ctx, "INSERT INTO `groups` (name, created_by) VALUES (?, ?)", req.Name, userID)
	if err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to create group: %v", err)
		utils.WriteError(w, "failed to create group, try again later!", http.StatusInternalServerError)
		return
	}

	groupID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to get last inserted ID: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// The creator always participates under their own username.
	_, err = tx.ExecContext(ctx,
		"INSERT INTO group_members (group_id, member_name, user_id) VALUES (?, ?, ?)", groupID, username, userID)
	if err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to add group creator as member: %v", err)
		utils.WriteError(w, "failed to create group, try again later!", http.StatusInternalServerError)
		return
	}

	for _, name := range req.Members {
		name = strings.TrimSpace(name)
		if name == "" || strings.EqualFold(name, username) {
			continue
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, member_name) VALUES (?, ?)", groupID, name)
		if err != nil {
			tx.Rollback()
			utils.Logger.Errorf("failed to add member %q: %v", name, err)
			utils.WriteError(w, "failed to add group members", http.StatusInternalServerError)
			return
		}
	}

	if err = tx.Commit(); err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to commit transaction: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "Group created successfully",
		"data": map[string]interface{}{
			"group_id":   groupID,
			"group_name": req.Name,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// FUNC TO UPDATE GROUP NAME
func UpdateGroupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	groupID, err := strconv.Atoi(idStr)
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
		Name string `json:"name"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		utils.WriteError(w, "name cannot be empty or whitespace", http.StatusBadRequest)
		return
	}
	if len(req.Name) > 100 {
		utils.WriteError(w, "group name too long", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if !requireGroupOwner(ctx, w, db, groupID, userID) {
		return
	}

	_, err = db.ExecContext(ctx, "UPDATE `groups` SET name = ? WHERE id = ?", req.Name, groupID)
	if err != nil {
		utils.WriteError(w, "failed to update group", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "Group updated successfully",
	})
}

// FUNC TO GET ALL GROUPS CREATED BY THE LOGGED-IN USER
func GetMyGroupsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
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

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, created_by, budget_amount, created_at
		FROM `+"`groups`"+`
		WHERE created_by = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		utils.Logger.Errorf("internal server error: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	groupList := make([]models.Group, 0)
	for rows.Next() {
		var group models.Group
		err := rows.Scan(&group.ID, &group.Name, &group.CreatedBy, &group.BudgetAmount, &group.CreatedAt)
		if err != nil {
			utils.Logger.Errorf("error fetching data: %v", err)
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		groupList = append(groupList, group)
	}

	response := struct {
		Status string         `json:"status"`
		Count  int            `json:"count"`
		Data   []models.Group `json:"data"`
	}{
		Status: "success",
		Count:  len(groupList),
		Data:   groupList,
	}

	utils.WriteJSON(w, response)
}

// FUNC TO GET A SINGLE GROUP AND ITS MEMBERS
func GetGroupByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	groupID, err := strconv.Atoi(idStr)
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

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var hasAccess bool
	err = db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM `+"`groups`"+` g
			LEFT JOIN group_members gm ON gm.group_id = g.id
			WHERE g.id = ? AND (g.created_by = ? OR gm.user_id = ?)
		)`, groupID, userID, userID).Scan(&hasAccess)
	if err != nil {
		utils.Logger.Errorf("error checking access: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !hasAccess {
		utils.WriteError(w, "forbidden: you are not a member of this group", http.StatusForbidden)
		return
	}

	var group models.Group
	err = db.QueryRowContext(ctx, `
		SELECT id, name, created_by, budget_amount, created_at
		FROM `+"`groups`"+` WHERE id = ?`, groupID).
		Scan(&group.ID, &group.Name, &group.CreatedBy, &group.BudgetAmount, &group.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "group not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("error fetching group: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, group_id, member_name, user_id, created_at
		FROM group_members
		WHERE group_id = ?
		ORDER BY id`, groupID)
	if err != nil {
		utils.Logger.Errorf("error fetching group members: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	members := make([]models.GroupMember, 0)
	for rows.Next() {
		var member models.GroupMember
		if err := rows.Scan(&member.ID, &member.GroupID, &member.MemberName, &member.UserID, &member.CreatedAt); err != nil {
			utils.Logger.Errorf("error scanning group member: %v", err)
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		utils.Logger.Errorf("error iterating group members: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	response := struct {
		Status  string               `json:"status"`
		Group   models.Group         `json:"group"`
		Members []models.GroupMember `json:"members"`
	}{
		Status:  "success",
		Group:   group,
		Members: members,
	}

	utils.WriteJSON(w, response)
}

// FUNC TO DELETE A GROUP
func DeleteGroupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	groupID, err := strconv.Atoi(idStr)
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

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if !requireGroupOwner(ctx, w, db, groupID, userID) {
		return
	}

	res, err := db.ExecContext(ctx, "DELETE FROM `groups` WHERE id = ?", groupID)
	if err != nil {
		utils.Logger.Errorf("error deleting data: %v", err)
		utils.WriteError(w, "error deleting group", http.StatusInternalServerError)
		return
	}

	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		utils.WriteError(w, "group not found or already deleted", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "group and its expense history deleted successfully",
	})
}

// FUNC TO ADD A MEMBER BY NAME
func AddGroupMemberHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	groupID, err := strconv.Atoi(idStr)
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
		MemberName string `json:"member_name"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.MemberName = strings.TrimSpace(req.MemberName)
	if req.MemberName == "" {
		utils.WriteError(w, "member name is required", http.StatusBadRequest)
		return
	}
	if len(req.MemberName) > 100 {
		utils.WriteError(w, "member name too long", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if !requireGroupOwner(ctx, w, db, groupID, userID) {
		return
	}

	var duplicate bool
	err = db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = ? AND member_name = ?)",
		groupID, req.MemberName).Scan(&duplicate)
	if err != nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if duplicate {
		utils.WriteError(w, "a member with this name already exists in the group", http.StatusConflict)
		return
	}

	res, err := db.ExecContext(ctx,
		"INSERT INTO group_members (group_id, member_name) VALUES (?, ?)", groupID, req.MemberName)
	if err != nil {
		utils.Logger.Errorf("failed to add member: %v", err)
		utils.WriteError(w, "failed to add member", http.StatusInternalServerError)
		return
	}

	memberID, _ := res.LastInsertId()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "member added successfully",
		"data": map[string]interface{}{
			"member_id":   memberID,
			"member_name": req.MemberName,
		},
	})
}

// FUNC TO RENAME A MEMBER
func RenameGroupMemberHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	groupID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, "invalid group ID", http.StatusBadRequest)
		return
	}
	memberID, err := strconv.Atoi(r.PathValue("memberId"))
	if err != nil {
		utils.WriteError(w, "invalid member ID", http.StatusBadRequest)
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
		MemberName string `json:"member_name"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.MemberName = strings.TrimSpace(req.MemberName)
	if req.MemberName == "" {
		utils.WriteError(w, "member name is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if !requireGroupOwner(ctx, w, db, groupID, userID) {
		return
	}

	res, err := db.ExecContext(ctx,
		"UPDATE group_members SET member_name = ? WHERE id = ? AND group_id = ?",
		req.MemberName, memberID, groupID)
	if err != nil {
		utils.Logger.Errorf("failed to rename member: %v", err)
		utils.WriteError(w, "failed to rename member", http.StatusInternalServerError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		utils.WriteError(w, "member not found in this group", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "member renamed successfully",
	})
}

// FUNC TO REMOVE A MEMBER
func RemoveGroupMemberHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	groupID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, "invalid group ID", http.StatusBadRequest)
		return
	}
	memberID, err := strconv.Atoi(r.PathValue("memberId"))
	if err != nil {
		utils.WriteError(w, "invalid member ID", http.StatusBadRequest)
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

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if !requireGroupOwner(ctx, w, db, groupID, userID) {
		return
	}

	var member models.GroupMember
	err = db.QueryRowContext(ctx,
		"SELECT id, user_id FROM group_members WHERE id = ? AND group_id = ?", memberID, groupID).
		Scan(&member.ID, &member.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "member not found in this group", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if member.UserID.Valid && int(member.UserID.Int64) == userID {
		utils.WriteError(w, "group owners cannot remove themselves. Delete the group instead.", http.StatusBadRequest)
		return
	}

	// The payer FK on group_expenses is RESTRICT; a member who has paid for
	// anything cannot be removed without rewriting history.
	_, err = db.ExecContext(ctx, "DELETE FROM group_members WHERE id = ? AND group_id = ?", memberID, groupID)
	if err != nil {
		if strings.Contains(err.Error(), "foreign key constraint") {
			utils.WriteError(w, "member has paid for expenses and cannot be removed", http.StatusConflict)
			return
		}
		utils.Logger.Errorf("failed to remove member: %v", err)
		utils.WriteError(w, "failed to remove member", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "member removed successfully",
	})
}

// requireGroupOwner writes the error response itself and reports whether the
// caller may manage the group.
func requireGroupOwner(ctx context.Context, w http.ResponseWriter, db *sql.DB, groupID, userID int) bool {
	var createdBy int
	err := db.QueryRowContext(ctx, "SELECT created_by FROM `groups` WHERE id = ?", groupID).Scan(&createdBy)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "group not found", http.StatusNotFound)
			return false
		}
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return false
	}

	if createdBy != userID {
		utils.WriteError(w, "forbidden: not group owner", http.StatusForbidden)
		return false
	}
	return true
}
