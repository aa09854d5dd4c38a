package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseLimit mirrors a row of the expense_limits table.
type ExpenseLimit struct {
	LimitID       string
	LimitSum      decimal.Decimal
	Currency      string
	Category      string
	EffectiveFrom time.Time
	CreatedAt     time.Time
}
