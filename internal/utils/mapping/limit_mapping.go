package mapping

import (
	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	"github.com/mkovtun/spend_limits_app/internal/models"
)

// ToModelExpenseLimit converts a domain ExpenseLimit to a model ExpenseLimit
func ToModelExpenseLimit(d domain.ExpenseLimit) models.ExpenseLimit {
	return models.ExpenseLimit{
		LimitID:       d.LimitID,
		LimitSum:      d.LimitSum,
		Currency:      d.Currency,
		Category:      string(d.Category),
		EffectiveFrom: d.EffectiveFrom,
		CreatedAt:     d.CreatedAt,
	}
}

// ToDomainExpenseLimit converts a model ExpenseLimit to a domain ExpenseLimit
func ToDomainExpenseLimit(m models.ExpenseLimit) domain.ExpenseLimit {
	return domain.ExpenseLimit{
		LimitID:       m.LimitID,
		LimitSum:      m.LimitSum,
		Currency:      m.Currency,
		Category:      domain.ExpenseCategory(m.Category),
		EffectiveFrom: m.EffectiveFrom,
		CreatedAt:     m.CreatedAt,
	}
}
