package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate mirrors a row of the exchange_rates table.
type ExchangeRate struct {
	RateID             string
	FromCurrency       string
	ToCurrency         string
	Date               time.Time
	ClosePrice         decimal.Decimal
	PreviousClosePrice decimal.Decimal
	CreatedAt          time.Time
}
