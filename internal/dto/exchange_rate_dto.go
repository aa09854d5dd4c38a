package dto

import (
	"time"

	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateResponse defines the structure for API responses containing
// exchange rate details.
type ExchangeRateResponse struct {
	FromCurrency       string          `json:"fromCurrency"`
	ToCurrency         string          `json:"toCurrency"`
	Date               time.Time       `json:"date"`
	ClosePrice         decimal.Decimal `json:"closePrice"`
	PreviousClosePrice decimal.Decimal `json:"previousClosePrice"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to an ExchangeRateResponse DTO
func ToExchangeRateResponse(rate domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		FromCurrency:       rate.FromCurrency,
		ToCurrency:         rate.ToCurrency,
		Date:               rate.Date,
		ClosePrice:         rate.ClosePrice,
		PreviousClosePrice: rate.PreviousClosePrice,
	}
}

// ToListExchangeRateResponse converts a slice of domain.ExchangeRate to DTOs
func ToListExchangeRateResponse(rates []domain.ExchangeRate) []ExchangeRateResponse {
	responses := make([]ExchangeRateResponse, len(rates))
	for i, rate := range rates {
		responses[i] = ToExchangeRateResponse(rate)
	}
	return responses
}

// ResolvedRateResponse is the result of a rate resolution request.
type ResolvedRateResponse struct {
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Date         time.Time       `json:"date"`
	Rate         decimal.Decimal `json:"rate"`
}
