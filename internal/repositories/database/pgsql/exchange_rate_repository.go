package pgsql

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkovtun/spend_limits_app/internal/apperrors"
	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	portsrepo "github.com/mkovtun/spend_limits_app/internal/core/ports/repositories"
	"github.com/mkovtun/spend_limits_app/internal/models"
	"github.com/mkovtun/spend_limits_app/internal/utils/mapping"
)

// PgxExchangeRateRepository implements ports.ExchangeRateRepositoryFacade using pgxpool.
type PgxExchangeRateRepository struct {
	BaseRepository
}

// NewPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func NewPgxExchangeRateRepository(pool *pgxpool.Pool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

const exchangeRateColumns = `rate_id, from_currency, to_currency, date, close_price, previous_close_price, created_at`

// InsertIfAbsent writes a rate unless one already exists for the same pair
// and date. The unique constraint on (from_currency, to_currency, date) plus
// ON CONFLICT DO NOTHING makes concurrent writers safe without a separate
// existence check.
func (r *PgxExchangeRateRepository) InsertIfAbsent(ctx context.Context, rate domain.ExchangeRate) (bool, error) {
	modelRate := mapping.ToModelExchangeRate(rate)
	modelRate.FromCurrency = strings.ToUpper(modelRate.FromCurrency)
	modelRate.ToCurrency = strings.ToUpper(modelRate.ToCurrency)

	tag, err := r.Pool.Exec(ctx, `
		INSERT INTO exchange_rates (`+exchangeRateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (from_currency, to_currency, date) DO NOTHING`,
		modelRate.RateID, modelRate.FromCurrency, modelRate.ToCurrency,
		modelRate.Date, modelRate.ClosePrice, modelRate.PreviousClosePrice,
		modelRate.CreatedAt,
	)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to save exchange rate", err)
	}
	return tag.RowsAffected() > 0, nil
}

// FindByPairAndDate retrieves the rate recorded for the exact pair and date.
func (r *PgxExchangeRateRepository) FindByPairAndDate(ctx context.Context, fromCurrency, toCurrency string, date time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE from_currency = $1 AND to_currency = $2 AND date = $3;
	`
	return r.queryOne(ctx, query, strings.ToUpper(fromCurrency), strings.ToUpper(toCurrency), date)
}

// FindLatestByPair retrieves the most recent rate on record for a pair.
func (r *PgxExchangeRateRepository) FindLatestByPair(ctx context.Context, fromCurrency, toCurrency string) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE from_currency = $1 AND to_currency = $2
		ORDER BY date DESC
		LIMIT 1;
	`
	return r.queryOne(ctx, query, strings.ToUpper(fromCurrency), strings.ToUpper(toCurrency))
}

// ListByDate retrieves all rates recorded for a calendar date.
func (r *PgxExchangeRateRepository) ListByDate(ctx context.Context, date time.Time) ([]domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE date = $1
		ORDER BY from_currency, to_currency;
	`
	rows, err := r.Pool.Query(ctx, query, date)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list exchange rates", err)
	}
	defer rows.Close()

	var rates []domain.ExchangeRate
	for rows.Next() {
		var modelRate models.ExchangeRate
		if err := scanExchangeRate(rows, &modelRate); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan exchange rate", err)
		}
		rates = append(rates, mapping.ToDomainExchangeRate(modelRate))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating exchange rates", err)
	}
	return rates, nil
}

func (r *PgxExchangeRateRepository) queryOne(ctx context.Context, query string, args ...any) (*domain.ExchangeRate, error) {
	var modelRate models.ExchangeRate
	err := scanExchangeRate(r.Pool.QueryRow(ctx, query, args...), &modelRate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("exchange rate not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find exchange rate", err)
	}
	domainRate := mapping.ToDomainExchangeRate(modelRate)
	return &domainRate, nil
}

func scanExchangeRate(row pgx.Row, m *models.ExchangeRate) error {
	return row.Scan(
		&m.RateID, &m.FromCurrency, &m.ToCurrency,
		&m.Date, &m.ClosePrice, &m.PreviousClosePrice,
		&m.CreatedAt,
	)
}
