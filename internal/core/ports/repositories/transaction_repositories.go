package repositories

import (
	"context"
	"time"

	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// SumInBaseForPeriod sums sumInBase over [periodStart, periodEnd) for a
	// category. An empty window sums to zero.
	SumInBaseForPeriod(ctx context.Context, category domain.ExpenseCategory, periodStart, periodEnd time.Time) (decimal.Decimal, error)

	// FindExceededWithLimits returns all limit-exceeding transactions joined
	// with the limit version applicable at each transaction's own timestamp,
	// newest first.
	FindExceededWithLimits(ctx context.Context) ([]domain.ExceededTransaction, error)
}

// TransactionWriter defines write operations for transaction data
type TransactionWriter interface {
	// SaveWithSpendCheck inserts a transaction after computing the category's
	// prior spend for [monthStart, txn.OccurredAt) inside the same database
	// transaction. The sequence is serialized per (category, month), so two
	// concurrent writers cannot both read the same prior spend. The decide
	// callback receives the prior spend and returns the limitExceeded flag to
	// persist; the saved record is returned.
	SaveWithSpendCheck(ctx context.Context, txn domain.Transaction, monthStart time.Time, decide func(priorSpend decimal.Decimal) bool) (*domain.Transaction, error)
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionManager
	TransactionReader
	TransactionWriter
}

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	ExchangeRateRepo ExchangeRateRepositoryFacade
	LimitRepo        LimitRepositoryFacade
	TransactionRepo  TransactionRepositoryFacade
}
