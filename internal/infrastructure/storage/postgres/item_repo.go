package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"gudang/internal/core/apperror"
	"gudang/internal/domain/inventory"
)

const itemsTable = "items"

var itemColumns = []string{
	"id", "name", "category", "unit", "quantity",
	"min_stock", "rack_location", "expiry_date",
	"created_at", "updated_at",
}

// pgUniqueViolation is the SQLSTATE for unique constraint violations.
const pgUniqueViolation = "23505"

// ItemRepo implements inventory.Repository on PostgreSQL.
type ItemRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewItemRepo creates a new item store repository.
func NewItemRepo(txm *TxManager) *ItemRepo {
	return &ItemRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ inventory.Repository = (*ItemRepo)(nil)

// GetByKey retrieves an item by its (name, unit) identity.
func (r *ItemRepo) GetByKey(ctx context.Context, key inventory.Key) (*inventory.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"name": key.Name, "unit": key.Unit}).
		Limit(1)

	return r.getOne(ctx, q, key)
}

// GetByKeyForUpdate retrieves an item and locks its row until the current
// transaction ends.
func (r *ItemRepo) GetByKeyForUpdate(ctx context.Context, key inventory.Key) (*inventory.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"name": key.Name, "unit": key.Unit}).
		Suffix("FOR UPDATE")

	return r.getOne(ctx, q, key)
}

// GetByName returns the first item with the given name regardless of unit.
func (r *ItemRepo) GetByName(ctx context.Context, name string) (*inventory.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"name": name}).
		OrderBy("unit").
		Limit(1)

	return r.getOne(ctx, q, inventory.Key{Name: name})
}

func (r *ItemRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key inventory.Key) (*inventory.Item, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var item inventory.Item
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("item", key)
		}
		return nil, apperror.NewDatabase(err)
	}
	return &item, nil
}

// Insert adds a new item row.
func (r *ItemRepo) Insert(ctx context.Context, item *inventory.Item) error {
	q := r.builder.Insert(itemsTable).
		Columns(itemColumns...).
		Values(
			item.ID, item.Name, item.Category, item.Unit, item.Quantity,
			item.MinStock, item.RackLocation, item.ExpiryDate,
			item.CreatedAt, item.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.NewDuplicate("item", "name, unit", item.Name+", "+item.Unit)
		}
		return apperror.NewDatabase(err)
	}
	return nil
}

// Update persists quantity and descriptive attributes. created_at is never
// part of the update set.
func (r *ItemRepo) Update(ctx context.Context, item *inventory.Item) error {
	q := r.builder.Update(itemsTable).
		Set("category", item.Category).
		Set("quantity", item.Quantity).
		Set("min_stock", item.MinStock).
		Set("rack_location", item.RackLocation).
		Set("expiry_date", item.ExpiryDate).
		Set("updated_at", item.UpdatedAt).
		Where(squirrel.Eq{"id": item.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("item", item.ID.String())
	}
	return nil
}

// List returns all items ordered by name, then unit.
func (r *ItemRepo) List(ctx context.Context) ([]inventory.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		OrderBy("name", "unit")

	return r.selectMany(ctx, q)
}

// ListLowStock returns items at or below their reorder threshold.
func (r *ItemRepo) ListLowStock(ctx context.Context) ([]inventory.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where("quantity <= min_stock").
		OrderBy("name", "unit")

	return r.selectMany(ctx, q)
}

func (r *ItemRepo) selectMany(ctx context.Context, q squirrel.SelectBuilder) ([]inventory.Item, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []inventory.Item
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return items, nil
}

// Count returns the number of items in the store.
func (r *ItemRepo) Count(ctx context.Context) (int, error) {
	var count int
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, "SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		return 0, apperror.NewDatabase(err)
	}
	return count, nil
}
