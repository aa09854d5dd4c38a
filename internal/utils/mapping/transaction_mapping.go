package mapping

import (
	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	"github.com/mkovtun/spend_limits_app/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID: d.TransactionID,
		AccountFrom:   d.AccountFrom,
		AccountTo:     d.AccountTo,
		Currency:      d.Currency,
		Sum:           d.Sum,
		SumInBase:     d.SumInBase,
		Category:      string(d.Category),
		OccurredAt:    d.OccurredAt,
		LimitExceeded: d.LimitExceeded,
		CreatedAt:     d.CreatedAt,
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID: m.TransactionID,
		AccountFrom:   m.AccountFrom,
		AccountTo:     m.AccountTo,
		Currency:      m.Currency,
		Sum:           m.Sum,
		SumInBase:     m.SumInBase,
		Category:      domain.ExpenseCategory(m.Category),
		OccurredAt:    m.OccurredAt,
		LimitExceeded: m.LimitExceeded,
		CreatedAt:     m.CreatedAt,
	}
}

// ToDomainExceededTransaction converts an exceeded-transactions query row
// into its domain shape, collapsing the nullable limit columns.
func ToDomainExceededTransaction(m models.ExceededTransactionRow) domain.ExceededTransaction {
	out := domain.ExceededTransaction{
		Transaction: ToDomainTransaction(m.Transaction),
	}
	if m.LimitSum.Valid && m.LimitCurrency != nil && m.LimitEffectiveFrom != nil {
		out.Limit = &domain.AppliedLimit{
			Sum:           m.LimitSum.Decimal,
			Currency:      *m.LimitCurrency,
			EffectiveFrom: *m.LimitEffectiveFrom,
		}
	}
	return out
}
