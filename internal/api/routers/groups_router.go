package routers

import (
	"net/http"

	"splitjourney/internal/api/handlers/groups"
)

func groupsRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/groups/create", groups.CreateGroupHandler)

	mux.HandleFunc("/groups/", groups.GetMyGroupsHandler)

	mux.HandleFunc("/groups/{id}", groups.GetGroupByIDHandler)

	mux.HandleFunc("/groups/update/{id}", groups.UpdateGroupHandler)

	mux.HandleFunc("/groups/delete/{id}", groups.DeleteGroupHandler)

	mux.HandleFunc("/groups/{id}/members/add", groups.AddGroupMemberHandler)

	mux.HandleFunc("/groups/{id}/members/{memberId}/rename", groups.RenameGroupMemberHandler)

	mux.HandleFunc("/groups/{id}/members/{memberId}/remove", groups.RemoveGroupMemberHandler)

	mux.HandleFunc("/groups/{id}/balances", groups.GetBalancesHandler)

	mux.HandleFunc("/groups/{id}/settlement-plan", groups.GetSettlementPlanHandler)

	mux.HandleFunc("/groups/{id}/settlements", groups.ListSettlementsHandler)

	mux.HandleFunc("/groups/{id}/settlements/record", groups.RecordSettlementHandler)

	mux.HandleFunc("/groups/{id}/budget", groups.SetBudgetHandler)

	mux.HandleFunc("/groups/{id}/budget/status", groups.GetBudgetStatusHandler)

	return mux
}
