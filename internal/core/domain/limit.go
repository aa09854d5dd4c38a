package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseLimit is one version of the monthly spending limit for a category.
// Limits are append-only: setting a new limit inserts a new version, and the
// version in force at instant T is the one with the greatest EffectiveFrom <= T.
type ExpenseLimit struct {
	LimitID       string          `json:"limitID"`  // Primary Key (UUID)
	LimitSum      decimal.Decimal `json:"limitSum"` // always > 0
	Currency      string          `json:"currency"` // always the reference currency
	Category      ExpenseCategory `json:"category"`
	EffectiveFrom time.Time       `json:"effectiveFrom"`
	CreatedAt     time.Time       `json:"createdAt"`
}
