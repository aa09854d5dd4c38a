package dto

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest is the wire format of an incoming transaction.
// Field names follow the established snake_case contract of the ingestion
// clients. DateTime is optional; the server clock is used when absent.
type CreateTransactionRequest struct {
	AccountFrom       string          `json:"account_from" binding:"required"`
	AccountTo         string          `json:"account_to" binding:"required"`
	CurrencyShortname string          `json:"currency_shortname" binding:"required,len=3"`
	Sum               decimal.Decimal `json:"sum" binding:"required"`
	ExpenseCategory   string          `json:"expense_category" binding:"required,expensecategory"`
	DateTime          *time.Time      `json:"datetime"`
}

// ValidateExpenseCategory is the binding rule behind the `expensecategory` tag.
func ValidateExpenseCategory(fl validator.FieldLevel) bool {
	_, err := domain.ParseExpenseCategory(fl.Field().String())
	return err == nil
}

// TransactionResponse defines the structure for API responses containing a
// processed transaction.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	AccountFrom   string          `json:"accountFrom"`
	AccountTo     string          `json:"accountTo"`
	Currency      string          `json:"currency"`
	Sum           decimal.Decimal `json:"sum"`
	SumInBase     decimal.Decimal `json:"sumInBase"`
	Category      string          `json:"category"`
	OccurredAt    time.Time       `json:"occurredAt"`
	LimitExceeded bool            `json:"limitExceeded"`
}

// ToTransactionResponse converts a domain.Transaction to a TransactionResponse DTO
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		AccountFrom:   txn.AccountFrom,
		AccountTo:     txn.AccountTo,
		Currency:      txn.Currency,
		Sum:           txn.Sum,
		SumInBase:     txn.SumInBase,
		Category:      string(txn.Category),
		OccurredAt:    txn.OccurredAt,
		LimitExceeded: txn.LimitExceeded,
	}
}

// ExceededTransactionResponse carries an exceeded transaction together with
// the limit version that applied at its timestamp. The limit fields are nil
// when the configured default limit was in force.
type ExceededTransactionResponse struct {
	TransactionResponse
	LimitSum           *decimal.Decimal `json:"limitSum,omitempty"`
	LimitCurrency      *string          `json:"limitCurrency,omitempty"`
	LimitEffectiveFrom *time.Time       `json:"limitEffectiveFrom,omitempty"`
}

// ToExceededTransactionResponse converts a domain.ExceededTransaction to its DTO
func ToExceededTransactionResponse(et domain.ExceededTransaction) ExceededTransactionResponse {
	resp := ExceededTransactionResponse{
		TransactionResponse: ToTransactionResponse(&et.Transaction),
	}
	if et.Limit != nil {
		sum := et.Limit.Sum
		currency := et.Limit.Currency
		effectiveFrom := et.Limit.EffectiveFrom
		resp.LimitSum = &sum
		resp.LimitCurrency = &currency
		resp.LimitEffectiveFrom = &effectiveFrom
	}
	return resp
}

// ToListExceededTransactionResponse converts a slice of domain.ExceededTransaction to DTOs
func ToListExceededTransactionResponse(ets []domain.ExceededTransaction) []ExceededTransactionResponse {
	responses := make([]ExceededTransactionResponse, len(ets))
	for i, et := range ets {
		responses[i] = ToExceededTransactionResponse(et)
	}
	return responses
}
