package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkovtun/spend_limits_app/internal/apperrors"
	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	portsrepo "github.com/mkovtun/spend_limits_app/internal/core/ports/repositories"
	"github.com/mkovtun/spend_limits_app/internal/models"
	"github.com/mkovtun/spend_limits_app/internal/utils/mapping"
)

// PgxLimitRepository implements ports.LimitRepositoryFacade using pgxpool.
type PgxLimitRepository struct {
	BaseRepository
}

// NewPgxLimitRepository creates a new PgxLimitRepository.
func NewPgxLimitRepository(pool *pgxpool.Pool) *PgxLimitRepository {
	return &PgxLimitRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.LimitRepositoryFacade = (*PgxLimitRepository)(nil)

// SaveLimit appends a new limit version. There is deliberately no update or
// delete path: limit history must stay intact for judging past transactions.
func (r *PgxLimitRepository) SaveLimit(ctx context.Context, limit domain.ExpenseLimit) error {
	modelLimit := mapping.ToModelExpenseLimit(limit)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO expense_limits (limit_id, limit_sum, currency, category, effective_from, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		modelLimit.LimitID, modelLimit.LimitSum, modelLimit.Currency,
		modelLimit.Category, modelLimit.EffectiveFrom, modelLimit.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save expense limit", err)
	}
	return nil
}

// FindApplicableAt retrieves the limit version in force at the given instant.
// Versions sharing an effective_from are tie-broken by limit_id descending so
// the selection stays deterministic.
func (r *PgxLimitRepository) FindApplicableAt(ctx context.Context, category domain.ExpenseCategory, at time.Time) (*domain.ExpenseLimit, error) {
	query := `
		SELECT limit_id, limit_sum, currency, category, effective_from, created_at
		FROM expense_limits
		WHERE category = $1 AND effective_from <= $2
		ORDER BY effective_from DESC, limit_id DESC
		LIMIT 1;
	`
	var modelLimit models.ExpenseLimit
	err := r.Pool.QueryRow(ctx, query, string(category), at).Scan(
		&modelLimit.LimitID, &modelLimit.LimitSum, &modelLimit.Currency,
		&modelLimit.Category, &modelLimit.EffectiveFrom, &modelLimit.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no expense limit set for category " + string(category))
		}
		return nil, apperrors.NewAppError(500, "failed to find applicable limit", err)
	}
	domainLimit := mapping.ToDomainExpenseLimit(modelLimit)
	return &domainLimit, nil
}
