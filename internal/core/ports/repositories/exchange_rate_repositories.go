package repositories

import (
	"context"
	"time"

	"github.com/mkovtun/spend_limits_app/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// FindByPairAndDate retrieves the rate recorded for the exact pair and date.
	FindByPairAndDate(ctx context.Context, fromCurrency, toCurrency string, date time.Time) (*domain.ExchangeRate, error)

	// FindLatestByPair retrieves the most recent rate on record for a pair,
	// regardless of date.
	FindLatestByPair(ctx context.Context, fromCurrency, toCurrency string) (*domain.ExchangeRate, error)

	// ListByDate retrieves all rates recorded for a calendar date.
	ListByDate(ctx context.Context, date time.Time) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriter defines write operations for exchange rate data
type ExchangeRateWriter interface {
	// InsertIfAbsent persists a rate unless one already exists for the same
	// (fromCurrency, toCurrency, date). It reports whether a row was written.
	InsertIfAbsent(ctx context.Context, rate domain.ExchangeRate) (bool, error)
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
