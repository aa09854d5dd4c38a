package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategory classifies a transaction for limit accounting.
type ExpenseCategory string

const (
	CategoryProduct ExpenseCategory = "PRODUCT"
	CategoryService ExpenseCategory = "SERVICE"
)

// ParseExpenseCategory converts a raw string into an ExpenseCategory.
func ParseExpenseCategory(s string) (ExpenseCategory, error) {
	switch ExpenseCategory(strings.ToUpper(s)) {
	case CategoryProduct:
		return CategoryProduct, nil
	case CategoryService:
		return CategoryService, nil
	default:
		return "", fmt.Errorf("unknown expense category %q", s)
	}
}

// IsValid reports whether the category is one of the known values.
func (c ExpenseCategory) IsValid() bool {
	return c == CategoryProduct || c == CategoryService
}

// Transaction is a single processed bank transaction. SumInBase and
// LimitExceeded are derived once at creation time and immutable afterwards.
type Transaction struct {
	TransactionID string          `json:"transactionID"` // Primary Key (UUID)
	AccountFrom   string          `json:"accountFrom"`
	AccountTo     string          `json:"accountTo"`
	Currency      string          `json:"currency"` // ISO 4217, 3 letters
	Sum           decimal.Decimal `json:"sum"`      // original amount, > 0
	SumInBase     decimal.Decimal `json:"sumInBase"`
	Category      ExpenseCategory `json:"category"`
	OccurredAt    time.Time       `json:"occurredAt"`
	LimitExceeded bool            `json:"limitExceeded"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// AppliedLimit describes the limit version that was in force when an exceeded
// transaction occurred. Re-derived from limit history at query time.
type AppliedLimit struct {
	Sum           decimal.Decimal `json:"sum"`
	Currency      string          `json:"currency"`
	EffectiveFrom time.Time       `json:"effectiveFrom"`
}

// ExceededTransaction joins a limit-exceeding transaction with the limit that
// applied at its own timestamp. Limit is nil when the category had no custom
// limit yet and the configured default was in force.
type ExceededTransaction struct {
	Transaction
	Limit *AppliedLimit `json:"limit,omitempty"`
}
