package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkovtun/spend_limits_app/internal/apperrors"
	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	portsrepo "github.com/mkovtun/spend_limits_app/internal/core/ports/repositories"
	portssvc "github.com/mkovtun/spend_limits_app/internal/core/ports/services"
	"github.com/mkovtun/spend_limits_app/internal/dto"
	"github.com/shopspring/decimal"
)

// baseScale is the rounding scale for amounts in the reference currency.
const baseScale = 2

// TransactionService converts incoming transactions into the reference
// currency, checks them against the applicable monthly limit, and persists
// them. No partial state is ever stored: a conversion or lookup failure
// aborts the whole operation.
type TransactionService struct {
	txnRepo      portsrepo.TransactionRepositoryFacade
	rateService  portssvc.ExchangeRateSvcFacade
	limitService portssvc.LimitSvcFacade
	baseCurrency string
	logger       *slog.Logger
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(txnRepo portsrepo.TransactionRepositoryFacade, rateService portssvc.ExchangeRateSvcFacade, limitService portssvc.LimitSvcFacade, baseCurrency string, logger *slog.Logger) *TransactionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionService{
		txnRepo:      txnRepo,
		rateService:  rateService,
		limitService: limitService,
		baseCurrency: strings.ToUpper(baseCurrency),
		logger:       logger,
	}
}

// ProcessTransaction converts the amount into the reference currency, finds
// the applicable limit, and persists the transaction with its limitExceeded
// flag. The prior-spend aggregation and the insert run serialized per
// (category, month) in the repository, so the decision is exact under
// concurrent submissions.
func (s *TransactionService) ProcessTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	category, err := domain.ParseExpenseCategory(req.ExpenseCategory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if req.Sum.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: transaction sum must be positive", apperrors.ErrValidation)
	}
	currency := strings.ToUpper(req.CurrencyShortname)
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: currency code must be 3 letters", apperrors.ErrValidation)
	}

	now := time.Now()
	occurredAt := now
	if req.DateTime != nil {
		occurredAt = *req.DateTime
	}

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		AccountFrom:   req.AccountFrom,
		AccountTo:     req.AccountTo,
		Currency:      currency,
		Sum:           req.Sum,
		Category:      category,
		OccurredAt:    occurredAt,
		CreatedAt:     now,
	}

	txn.SumInBase, err = s.convertToBase(ctx, req.Sum, currency, occurredAt)
	if err != nil {
		return nil, err
	}

	applicableLimit, err := s.limitService.ApplicableLimit(ctx, category, occurredAt)
	if err != nil {
		return nil, err
	}

	monthStart := startOfMonth(occurredAt)
	saved, err := s.txnRepo.SaveWithSpendCheck(ctx, txn, monthStart, func(priorSpend decimal.Decimal) bool {
		// Strict inequality: spending exactly up to the limit is allowed.
		return priorSpend.Add(txn.SumInBase).GreaterThan(applicableLimit)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction processed",
		slog.String("transaction_id", saved.TransactionID),
		slog.String("category", string(saved.Category)),
		slog.String("sum_in_base", saved.SumInBase.String()),
		slog.Bool("limit_exceeded", saved.LimitExceeded),
	)
	return saved, nil
}

// SpendBefore sums the category's persisted spending in the reference
// currency from the start of the month containing the instant up to, but
// excluding, the instant itself.
func (s *TransactionService) SpendBefore(ctx context.Context, category domain.ExpenseCategory, at time.Time) (decimal.Decimal, error) {
	return s.txnRepo.SumInBaseForPeriod(ctx, category, startOfMonth(at), at)
}

// ExceededTransactions lists all limit-exceeding transactions with the limit
// applicable at each transaction's own timestamp, newest first.
func (s *TransactionService) ExceededTransactions(ctx context.Context) ([]domain.ExceededTransaction, error) {
	return s.txnRepo.FindExceededWithLimits(ctx)
}

// convertToBase converts an amount into the reference currency at the rate
// for the transaction's calendar date, rounded to the monetary scale.
// Conversion failure is fatal to the request; it is never defaulted.
func (s *TransactionService) convertToBase(ctx context.Context, amount decimal.Decimal, currency string, occurredAt time.Time) (decimal.Decimal, error) {
	if currency == s.baseCurrency {
		return amount.Round(baseScale), nil
	}
	rate, err := s.rateService.Resolve(ctx, currency, s.baseCurrency, dateOf(occurredAt))
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Round(baseScale), nil
}

// dateOf truncates an instant to its calendar date, midnight UTC, matching
// how rate records are keyed.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// startOfMonth is the first instant of day 1 of the month containing t, in
// t's own location.
func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
