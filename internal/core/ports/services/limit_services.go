package services

import (
	"context"
	"time"

	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	"github.com/mkovtun/spend_limits_app/internal/dto"
	"github.com/shopspring/decimal"
)

// LimitReaderSvc defines read operations for expense limit data
type LimitReaderSvc interface {
	// ApplicableLimit returns the limit amount in force for a category at the
	// given instant, or the configured default when no version applies.
	ApplicableLimit(ctx context.Context, category domain.ExpenseCategory, at time.Time) (decimal.Decimal, error)
}

// LimitWriterSvc defines write operations for expense limit data
type LimitWriterSvc interface {
	// SetNewLimit appends a new limit version effective from now.
	SetNewLimit(ctx context.Context, req dto.SetLimitRequest) (*domain.ExpenseLimit, error)
}

// LimitSvcFacade combines all limit-related service interfaces
type LimitSvcFacade interface {
	LimitReaderSvc
	LimitWriterSvc
}
