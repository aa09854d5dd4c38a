package mapping

import (
	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	"github.com/mkovtun/spend_limits_app/internal/models"
)

// ToModelExchangeRate converts a domain ExchangeRate to a model ExchangeRate
func ToModelExchangeRate(d domain.ExchangeRate) models.ExchangeRate {
	return models.ExchangeRate{
		RateID:             d.RateID,
		FromCurrency:       d.FromCurrency,
		ToCurrency:         d.ToCurrency,
		Date:               d.Date,
		ClosePrice:         d.ClosePrice,
		PreviousClosePrice: d.PreviousClosePrice,
		CreatedAt:          d.CreatedAt,
	}
}

// ToDomainExchangeRate converts a model ExchangeRate to a domain ExchangeRate
func ToDomainExchangeRate(m models.ExchangeRate) domain.ExchangeRate {
	return domain.ExchangeRate{
		RateID:             m.RateID,
		FromCurrency:       m.FromCurrency,
		ToCurrency:         m.ToCurrency,
		Date:               m.Date,
		ClosePrice:         m.ClosePrice,
		PreviousClosePrice: m.PreviousClosePrice,
		CreatedAt:          m.CreatedAt,
	}
}
