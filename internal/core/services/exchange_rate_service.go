package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkovtun/spend_limits_app/internal/apperrors"
	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	portsrepo "github.com/mkovtun/spend_limits_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// crossRateScale is the rounding scale for derived cross-rates. Intermediate
// products keep more fractional digits than final amounts so rounding error
// does not compound through the multiplication.
const crossRateScale = 8

// ExchangeRateService resolves exchange rates: exact match first, then the
// most recent rate on record, then cross-rate derivation through a configured
// bridge currency.
type ExchangeRateService struct {
	rateRepo     portsrepo.ExchangeRateRepositoryFacade
	baseCurrency string
	// bridgeRoutes maps a source currency to the bridge used to derive its
	// rate into the base currency, e.g. {"KZT": "RUB"}.
	bridgeRoutes map[string]string
	logger       *slog.Logger
}

// NewExchangeRateService creates a new ExchangeRateService.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, baseCurrency string, bridgeRoutes map[string]string, logger *slog.Logger) *ExchangeRateService {
	if logger == nil {
		logger = slog.Default()
	}
	routes := make(map[string]string, len(bridgeRoutes))
	for source, bridge := range bridgeRoutes {
		routes[strings.ToUpper(source)] = strings.ToUpper(bridge)
	}
	return &ExchangeRateService{
		rateRepo:     rateRepo,
		baseCurrency: strings.ToUpper(baseCurrency),
		bridgeRoutes: routes,
		logger:       logger,
	}
}

// SaveRateIfAbsent persists a rate unless one already exists for the same
// pair and date. Used by the quote poller and by cross-rate caching.
func (s *ExchangeRateService) SaveRateIfAbsent(ctx context.Context, rate domain.ExchangeRate) (bool, error) {
	rate.FromCurrency = strings.ToUpper(rate.FromCurrency)
	rate.ToCurrency = strings.ToUpper(rate.ToCurrency)

	if len(rate.FromCurrency) != 3 || len(rate.ToCurrency) != 3 {
		return false, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	if rate.FromCurrency == rate.ToCurrency {
		return false, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}
	if rate.ClosePrice.LessThanOrEqual(decimal.Zero) {
		return false, fmt.Errorf("%w: close price must be positive", apperrors.ErrValidation)
	}
	if rate.RateID == "" {
		rate.RateID = uuid.NewString()
	}
	if rate.CreatedAt.IsZero() {
		rate.CreatedAt = time.Now()
	}

	saved, err := s.rateRepo.InsertIfAbsent(ctx, rate)
	if err != nil {
		return false, fmt.Errorf("failed to save exchange rate in service: %w", err)
	}
	if !saved {
		s.logger.Info("rate already exists, skipping save",
			slog.String("from", rate.FromCurrency),
			slog.String("to", rate.ToCurrency),
			slog.Time("date", rate.Date),
		)
	}
	return saved, nil
}

// Resolve returns a usable rate for converting fromCurrency into toCurrency
// on the given date. Resolution order, first success wins: identity, exact
// match, most recent fallback, bridge cross-rate derivation. Failure to cache
// a derived rate never fails the resolve itself.
func (s *ExchangeRateService) Resolve(ctx context.Context, fromCurrency, toCurrency string, date time.Time) (decimal.Decimal, error) {
	fromCurrency = strings.ToUpper(fromCurrency)
	toCurrency = strings.ToUpper(toCurrency)
	if len(fromCurrency) != 3 || len(toCurrency) != 3 {
		return decimal.Zero, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}

	if fromCurrency == toCurrency {
		return decimal.NewFromInt(1), nil
	}

	direct, err := s.LookupRate(ctx, fromCurrency, toCurrency, date)
	if err == nil {
		return direct.ClosePrice, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, err
	}

	// Cross-rate derivation applies only towards the base currency, and only
	// for sources with a configured bridge.
	bridge, hasBridge := s.bridgeRoutes[fromCurrency]
	if toCurrency == s.baseCurrency && hasBridge {
		return s.deriveCrossRate(ctx, fromCurrency, bridge, toCurrency, date)
	}

	return decimal.Zero, fmt.Errorf("%w: no rate found for %s/%s on %s",
		apperrors.ErrRateUnavailable, fromCurrency, toCurrency, date.Format("2006-01-02"))
}

// LookupRate finds the rate record for a pair on a date, falling back to the
// most recent record for the pair when the exact date has none. A stale rate
// is preferred over failure.
func (s *ExchangeRateService) LookupRate(ctx context.Context, fromCurrency, toCurrency string, date time.Time) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindByPairAndDate(ctx, fromCurrency, toCurrency, date)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	latest, err := s.rateRepo.FindLatestByPair(ctx, fromCurrency, toCurrency)
	if err != nil {
		return nil, err
	}
	s.logger.Warn("no rate for requested date, using most recent",
		slog.String("from", fromCurrency),
		slog.String("to", toCurrency),
		slog.Time("requested", date),
		slog.Time("used", latest.Date),
	)
	return latest, nil
}

// RatesOnDate retrieves all rates recorded for a calendar date.
func (s *ExchangeRateService) RatesOnDate(ctx context.Context, date time.Time) ([]domain.ExchangeRate, error) {
	rates, err := s.rateRepo.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates in service: %w", err)
	}
	return rates, nil
}

// deriveCrossRate resolves both legs through exact/fallback lookup only (no
// recursive derivation), multiplies them, and caches the product so the next
// identical request hits the exact-match path.
func (s *ExchangeRateService) deriveCrossRate(ctx context.Context, fromCurrency, bridge, toCurrency string, date time.Time) (decimal.Decimal, error) {
	leg1, err1 := s.LookupRate(ctx, fromCurrency, bridge, date)
	leg2, err2 := s.LookupRate(ctx, bridge, toCurrency, date)

	var missing []string
	if err1 != nil {
		if !errors.Is(err1, apperrors.ErrNotFound) {
			return decimal.Zero, err1
		}
		missing = append(missing, fromCurrency+"/"+bridge)
	}
	if err2 != nil {
		if !errors.Is(err2, apperrors.ErrNotFound) {
			return decimal.Zero, err2
		}
		missing = append(missing, bridge+"/"+toCurrency)
	}
	if len(missing) > 0 {
		return decimal.Zero, fmt.Errorf("%w: cannot derive %s/%s on %s, missing intermediate rate(s): %s",
			apperrors.ErrRateUnavailable, fromCurrency, toCurrency,
			date.Format("2006-01-02"), strings.Join(missing, ", "))
	}

	crossRate := leg1.ClosePrice.Mul(leg2.ClosePrice).Round(crossRateScale)
	s.logger.Info("derived cross-rate",
		slog.String("from", fromCurrency),
		slog.String("to", toCurrency),
		slog.String("bridge", bridge),
		slog.String("rate", crossRate.String()),
	)

	s.cacheDerivedRate(ctx, fromCurrency, toCurrency, date, crossRate)
	return crossRate, nil
}

// cacheDerivedRate writes a derived cross-rate back through the store.
// Best-effort: a failed cache write is logged and never surfaced.
func (s *ExchangeRateService) cacheDerivedRate(ctx context.Context, fromCurrency, toCurrency string, date time.Time, crossRate decimal.Decimal) {
	rate := domain.ExchangeRate{
		RateID:             uuid.NewString(),
		FromCurrency:       fromCurrency,
		ToCurrency:         toCurrency,
		Date:               date,
		ClosePrice:         crossRate,
		PreviousClosePrice: crossRate,
		CreatedAt:          time.Now(),
	}
	if _, err := s.rateRepo.InsertIfAbsent(ctx, rate); err != nil {
		s.logger.Error("failed to cache derived cross-rate",
			slog.String("from", fromCurrency),
			slog.String("to", toCurrency),
			slog.Time("date", date),
			slog.String("error", err.Error()),
		)
	}
}
