package services

import (
	"context"
	"time"

	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateReaderSvc defines read operations for exchange rate data
type ExchangeRateReaderSvc interface {
	// Resolve returns a usable rate for converting fromCurrency into
	// toCurrency on the given date: identity, exact match, most recent
	// fallback, then bridge cross-rate derivation, in that order.
	Resolve(ctx context.Context, fromCurrency, toCurrency string, date time.Time) (decimal.Decimal, error)

	// LookupRate retrieves the rate record for a pair on a date, falling back
	// to the most recent record when the exact date has none. It does not
	// derive cross-rates.
	LookupRate(ctx context.Context, fromCurrency, toCurrency string, date time.Time) (*domain.ExchangeRate, error)

	// RatesOnDate retrieves all rates recorded for a calendar date.
	RatesOnDate(ctx context.Context, date time.Time) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriterSvc defines write operations for exchange rate data
type ExchangeRateWriterSvc interface {
	// SaveRateIfAbsent persists a rate unless one already exists for the same
	// pair and date. It reports whether the rate was written.
	SaveRateIfAbsent(ctx context.Context, rate domain.ExchangeRate) (bool, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}
