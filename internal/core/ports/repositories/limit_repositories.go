package repositories

import (
	"context"
	"time"

	"github.com/mkovtun/spend_limits_app/internal/core/domain"
)

// LimitReader defines read operations for expense limit data
type LimitReader interface {
	// FindApplicableAt retrieves the limit version with the greatest
	// effectiveFrom at or before the given instant for a category.
	FindApplicableAt(ctx context.Context, category domain.ExpenseCategory, at time.Time) (*domain.ExpenseLimit, error)
}

// LimitWriter defines write operations for expense limit data
type LimitWriter interface {
	// SaveLimit appends a new limit version. Limits are never updated or deleted.
	SaveLimit(ctx context.Context, limit domain.ExpenseLimit) error
}

// LimitRepositoryFacade combines all limit-related repository interfaces
type LimitRepositoryFacade interface {
	LimitReader
	LimitWriter
}
