package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BudgetStatus reports group spending against an optional budget ceiling.
type BudgetStatus struct {
	TotalSpent     decimal.Decimal     `json:"total_spent"`
	BudgetAmount   decimal.NullDecimal `json:"budget_amount"`
	PercentageUsed decimal.Decimal     `json:"percentage_used"`
	Alerts         []string            `json:"alerts"`
}

// ComputeBudgetStatus derives utilization and threshold alerts from total
// spend and the group's budget. Without a positive budget there is nothing
// to report: zero percent, no alerts. At most one alert is emitted, the
// highest crossed threshold winning.
func ComputeBudgetStatus(totalSpent decimal.Decimal, budget decimal.NullDecimal) BudgetStatus {
	status := BudgetStatus{
		TotalSpent:     totalSpent,
		BudgetAmount:   budget,
		PercentageUsed: decimal.Zero,
		Alerts:         []string{},
	}

	if !budget.Valid || budget.Decimal.LessThanOrEqual(decimal.Zero) {
		return status
	}

	pct := totalSpent.Div(budget.Decimal).Mul(hundred)
	status.PercentageUsed = pct

	switch {
	case pct.GreaterThanOrEqual(hundred):
		overage := pct.Sub(hundred)
		status.Alerts = append(status.Alerts, fmt.Sprintf("Budget exceeded by %s%%", overage.StringFixed(1)))
	case pct.GreaterThanOrEqual(decimal.NewFromInt(80)):
		status.Alerts = append(status.Alerts, "80% of budget used - nearing limit")
	case pct.GreaterThanOrEqual(decimal.NewFromInt(50)):
		status.Alerts = append(status.Alerts, "50% of budget used")
	}

	return status
}
