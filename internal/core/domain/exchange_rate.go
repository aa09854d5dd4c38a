package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate stores the daily close of a currency pair. At most one logical
// record exists per (FromCurrency, ToCurrency, Date); rows are never mutated
// or deleted after insert.
type ExchangeRate struct {
	RateID             string          `json:"rateID"`       // Primary Key (UUID)
	FromCurrency       string          `json:"fromCurrency"` // ISO 4217, 3 letters
	ToCurrency         string          `json:"toCurrency"`   // ISO 4217, 3 letters
	Date               time.Time       `json:"date"`         // calendar date (midnight UTC)
	ClosePrice         decimal.Decimal `json:"closePrice"`
	PreviousClosePrice decimal.Decimal `json:"previousClosePrice"`
	CreatedAt          time.Time       `json:"createdAt"`
}
