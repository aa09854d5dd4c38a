package dto

import (
	"time"

	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SetLimitRequest defines the structure for setting a new monthly limit.
// The amount is denominated in the reference currency; effectiveFrom is
// stamped by the server at receipt.
type SetLimitRequest struct {
	LimitSum        decimal.Decimal `json:"limit_sum" binding:"required"`
	ExpenseCategory string          `json:"expense_category" binding:"required,expensecategory"`
}

// LimitResponse defines the structure for API responses containing limit details.
type LimitResponse struct {
	LimitID       string          `json:"limitID"`
	LimitSum      decimal.Decimal `json:"limitSum"`
	Currency      string          `json:"currency"`
	Category      string          `json:"category"`
	EffectiveFrom time.Time       `json:"effectiveFrom"`
}

// ToLimitResponse converts a domain.ExpenseLimit to a LimitResponse DTO
func ToLimitResponse(limit *domain.ExpenseLimit) LimitResponse {
	return LimitResponse{
		LimitID:       limit.LimitID,
		LimitSum:      limit.LimitSum,
		Currency:      limit.Currency,
		Category:      string(limit.Category),
		EffectiveFrom: limit.EffectiveFrom,
	}
}
