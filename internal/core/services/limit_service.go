package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mkovtun/spend_limits_app/internal/apperrors"
	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	portsrepo "github.com/mkovtun/spend_limits_app/internal/core/ports/repositories"
	"github.com/mkovtun/spend_limits_app/internal/dto"
	"github.com/shopspring/decimal"
)

// LimitService manages the append-only history of monthly expense limits.
type LimitService struct {
	limitRepo    portsrepo.LimitRepositoryFacade
	baseCurrency string
	defaultLimit decimal.Decimal
	logger       *slog.Logger
}

// NewLimitService creates a new LimitService. defaultLimit is returned when a
// category has no limit version in force yet.
func NewLimitService(limitRepo portsrepo.LimitRepositoryFacade, baseCurrency string, defaultLimit decimal.Decimal, logger *slog.Logger) *LimitService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LimitService{
		limitRepo:    limitRepo,
		baseCurrency: baseCurrency,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// SetNewLimit appends a new limit version for a category, effective from now.
// Earlier versions are kept so past transactions stay judged against the
// limit that was in force when they occurred.
func (s *LimitService) SetNewLimit(ctx context.Context, req dto.SetLimitRequest) (*domain.ExpenseLimit, error) {
	if req.LimitSum.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: limit sum must be positive", apperrors.ErrValidation)
	}
	category, err := domain.ParseExpenseCategory(req.ExpenseCategory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	now := time.Now()
	limit := domain.ExpenseLimit{
		LimitID:       uuid.NewString(),
		LimitSum:      req.LimitSum,
		Currency:      s.baseCurrency,
		Category:      category,
		EffectiveFrom: now,
		CreatedAt:     now,
	}

	if err := s.limitRepo.SaveLimit(ctx, limit); err != nil {
		return nil, fmt.Errorf("failed to save limit in service: %w", err)
	}

	s.logger.Info("new expense limit set",
		slog.String("limit_id", limit.LimitID),
		slog.String("category", string(category)),
		slog.String("limit_sum", limit.LimitSum.String()),
	)
	return &limit, nil
}

// ApplicableLimit returns the limit amount in force for a category at the
// given instant: the version with the greatest effectiveFrom at or before it,
// or the configured default when none exists.
func (s *LimitService) ApplicableLimit(ctx context.Context, category domain.ExpenseCategory, at time.Time) (decimal.Decimal, error) {
	limit, err := s.limitRepo.FindApplicableAt(ctx, category, at)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.defaultLimit, nil
		}
		return decimal.Zero, fmt.Errorf("failed to find applicable limit in service: %w", err)
	}
	return limit.LimitSum, nil
}
