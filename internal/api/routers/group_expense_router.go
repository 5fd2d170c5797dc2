package routers

import (
	"net/http"

	"splitjourney/internal/api/handlers/groups"
)

func groupExpenseRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/group-expense/{id}/create", groups.CreateGroupExpenseHandler)

	mux.HandleFunc("/group-expense/{id}/expenses", groups.ListGroupExpensesHandler)

	mux.HandleFunc("/group-expense/{id}/expenses/{expenseId}", groups.GetGroupExpenseHandler)

	mux.HandleFunc("/group-expense/{id}/expenses/{expenseId}/update", groups.UpdateGroupExpenseHandler)

	mux.HandleFunc("/group-expense/{id}/expenses/{expenseId}/delete", groups.DeleteGroupExpenseHandler)

	return mux
}
