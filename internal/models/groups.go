package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type Group struct {
	ID           int                 `json:"id,omitempty" db:"id,omitempty"`
	Name         string              `json:"name,omitempty" db:"name,omitempty"`
	CreatedBy    int                 `json:"created_by,omitempty" db:"created_by,omitempty"`
	BudgetAmount decimal.NullDecimal `json:"budget_amount,omitempty" db:"budget_amount,omitempty"`
	CreatedAt    sql.NullString      `json:"created_at,omitempty" db:"created_at,omitempty"`
}
