package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction mirrors a row of the transactions table.
type Transaction struct {
	TransactionID string
	AccountFrom   string
	AccountTo     string
	Currency      string
	Sum           decimal.Decimal
	SumInBase     decimal.Decimal
	Category      string
	OccurredAt    time.Time
	LimitExceeded bool
	CreatedAt     time.Time
}

// ExceededTransactionRow is the result shape of the exceeded-transactions
// query. The limit columns come from a LEFT JOIN and are null when no custom
// limit version predates the transaction.
type ExceededTransactionRow struct {
	Transaction
	LimitSum           decimal.NullDecimal
	LimitCurrency      *string
	LimitEffectiveFrom *time.Time
}
