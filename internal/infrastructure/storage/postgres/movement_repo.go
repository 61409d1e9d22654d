package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"gudang/internal/core/apperror"
	"gudang/internal/domain/ledger"
)

const movementsTable = "movements"

var movementColumns = []string{
	"id", "trx_type", "item_id", "name", "quantity", "unit",
	"requester", "supplier", "note", "expiry_date",
	"trx_code", "bundle_code", "created_at",
}

// MovementRepo implements ledger.Repository on PostgreSQL.
// The movements table is append-only; no update or delete statements exist
// here outside the full-store reset.
type MovementRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewMovementRepo creates a new movement log repository.
func NewMovementRepo(txm *TxManager) *MovementRepo {
	return &MovementRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ ledger.Repository = (*MovementRepo)(nil)

// Append writes one movement record.
func (r *MovementRepo) Append(ctx context.Context, m *ledger.Movement) error {
	q := r.builder.Insert(movementsTable).
		Columns(movementColumns...).
		Values(
			m.ID, m.TrxType, m.ItemID, m.Name, m.Quantity, m.Unit,
			m.Requester, m.Supplier, m.Note, m.ExpiryDate,
			m.TrxCode, m.BundleCode, m.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.NewDuplicate("movement", "id", m.ID.String())
		}
		return apperror.NewDatabase(err)
	}
	return nil
}

// List returns movements matching the filter. Date bounds apply at UTC
// calendar-date granularity, independent of the database session's time
// zone, matching the in-process date window checks.
func (r *MovementRepo) List(ctx context.Context, filter ledger.Filter) ([]ledger.Movement, error) {
	sql, args, err := r.buildListQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []ledger.Movement
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return movements, nil
}

// utcDateExpr truncates the stored timestamp to its UTC calendar date.
const utcDateExpr = "(created_at AT TIME ZONE 'UTC')::date"

func (r *MovementRepo) buildListQuery(filter ledger.Filter) (string, []any, error) {
	q := r.builder.Select(movementColumns...).From(movementsTable)

	if filter.TrxType != "" {
		q = q.Where(squirrel.Eq{"trx_type": filter.TrxType})
	}
	if filter.BundleCode != "" {
		q = q.Where(squirrel.Eq{"bundle_code": filter.BundleCode})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{utcDateExpr: *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{utcDateExpr: *filter.ToDate})
	}

	if filter.NewestFirst {
		q = q.OrderBy("created_at DESC", "trx_code DESC")
	} else {
		q = q.OrderBy("created_at", "trx_code")
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	return q.ToSql()
}

// ExistsTrxCode reports whether any movement carries the given trx code.
func (r *MovementRepo) ExistsTrxCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	querier := r.txm.GetQuerier(ctx)
	err := querier.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM movements WHERE trx_code = $1)", code).Scan(&exists)
	if err != nil {
		return false, apperror.NewDatabase(err)
	}
	return exists, nil
}

// Count returns the number of movement records.
func (r *MovementRepo) Count(ctx context.Context) (int, error) {
	var count int
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, "SELECT COUNT(*) FROM movements").Scan(&count); err != nil {
		return 0, apperror.NewDatabase(err)
	}
	return count, nil
}
