package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkovtun/spend_limits_app/internal/apperrors"
	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	portsrepo "github.com/mkovtun/spend_limits_app/internal/core/ports/repositories"
	"github.com/mkovtun/spend_limits_app/internal/models"
	"github.com/mkovtun/spend_limits_app/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

// PgxTransactionRepository implements ports.TransactionRepositoryFacade using pgxpool.
type PgxTransactionRepository struct {
	BaseRepository
}

// NewPgxTransactionRepository creates a new PgxTransactionRepository.
func NewPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// SumInBaseForPeriod sums sum_in_base over [periodStart, periodEnd) for a category.
func (r *PgxTransactionRepository) SumInBaseForPeriod(ctx context.Context, category domain.ExpenseCategory, periodStart, periodEnd time.Time) (decimal.Decimal, error) {
	return sumInBaseForPeriod(ctx, r.Pool, category, periodStart, periodEnd)
}

func sumInBaseForPeriod(ctx context.Context, q queryRower, category domain.ExpenseCategory, periodStart, periodEnd time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(sum_in_base), 0)
		FROM transactions
		WHERE category = $1 AND occurred_at >= $2 AND occurred_at < $3;
	`
	var total decimal.Decimal
	err := q.QueryRow(ctx, query, string(category), periodStart, periodEnd).Scan(&total)
	if err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum spending for period", err)
	}
	return total, nil
}

// SaveWithSpendCheck runs the read-aggregate-decide-insert sequence inside a
// single database transaction holding an advisory lock keyed on the
// transaction's (category, month). Concurrent transactions in the same bucket
// are serialized; unrelated buckets proceed in parallel.
func (r *PgxTransactionRepository) SaveWithSpendCheck(ctx context.Context, txn domain.Transaction, monthStart time.Time, decide func(priorSpend decimal.Decimal) bool) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	lockKey := fmt.Sprintf("%s:%s", txn.Category, monthStart.UTC().Format("2006-01"))
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		return nil, apperrors.NewAppError(500, "failed to acquire spend lock", err)
	}

	priorSpend, err := sumInBaseForPeriod(ctx, tx, txn.Category, monthStart, txn.OccurredAt)
	if err != nil {
		return nil, err
	}
	txn.LimitExceeded = decide(priorSpend)

	modelTxn := mapping.ToModelTransaction(txn)
	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (
			transaction_id, account_from, account_to, currency, sum, sum_in_base,
			category, occurred_at, limit_exceeded, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		modelTxn.TransactionID, modelTxn.AccountFrom, modelTxn.AccountTo,
		modelTxn.Currency, modelTxn.Sum, modelTxn.SumInBase,
		modelTxn.Category, modelTxn.OccurredAt, modelTxn.LimitExceeded,
		modelTxn.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to save transaction", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &txn, nil
}

// FindExceededWithLimits joins each flagged transaction with the newest limit
// version whose effective_from is at or before the transaction's own
// timestamp. The limit side is null for transactions judged against the
// configured default.
func (r *PgxTransactionRepository) FindExceededWithLimits(ctx context.Context) ([]domain.ExceededTransaction, error) {
	query := `
		SELECT
			t.transaction_id, t.account_from, t.account_to, t.currency, t.sum,
			t.sum_in_base, t.category, t.occurred_at, t.limit_exceeded, t.created_at,
			el.limit_sum, el.currency, el.effective_from
		FROM transactions t
		LEFT JOIN LATERAL (
			SELECT limit_sum, currency, effective_from
			FROM expense_limits
			WHERE category = t.category AND effective_from <= t.occurred_at
			ORDER BY effective_from DESC, limit_id DESC
			LIMIT 1
		) el ON TRUE
		WHERE t.limit_exceeded = TRUE
		ORDER BY t.occurred_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list exceeded transactions", err)
	}
	defer rows.Close()

	var results []domain.ExceededTransaction
	for rows.Next() {
		var row models.ExceededTransactionRow
		err := rows.Scan(
			&row.TransactionID, &row.AccountFrom, &row.AccountTo, &row.Currency,
			&row.Sum, &row.SumInBase, &row.Category, &row.OccurredAt,
			&row.LimitExceeded, &row.CreatedAt,
			&row.LimitSum, &row.LimitCurrency, &row.LimitEffectiveFrom,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan exceeded transaction", err)
		}
		results = append(results, mapping.ToDomainExceededTransaction(row))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating exceeded transactions", err)
	}
	return results, nil
}
