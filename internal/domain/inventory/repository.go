package inventory

import (
	"context"
)

// Repository defines persistence operations for the item store.
// The postgres implementation lives in infrastructure/storage/postgres.
type Repository interface {
	// GetByKey retrieves an item by (name, unit). Returns apperror.NotFound
	// when no such item exists.
	GetByKey(ctx context.Context, key Key) (*Item, error)

	// GetByKeyForUpdate retrieves an item with a row lock, so a
	// check-then-mutate stock deduction cannot race a concurrent deduction
	// for the same (name, unit). Must be called inside a transaction.
	GetByKeyForUpdate(ctx context.Context, key Key) (*Item, error)

	// GetByName returns the first item with the given normalized name
	// regardless of unit (used for unit auto-fill in forms).
	GetByName(ctx context.Context, name string) (*Item, error)

	// Insert adds a new item.
	Insert(ctx context.Context, item *Item) error

	// Update persists quantity and descriptive attributes of an existing
	// item. created_at is never touched.
	Update(ctx context.Context, item *Item) error

	// List returns all items ordered by name.
	List(ctx context.Context) ([]Item, error)

	// ListLowStock returns items with quantity at or below min_stock,
	// ordered by name.
	ListLowStock(ctx context.Context) ([]Item, error)

	// Count returns the number of items in the store.
	Count(ctx context.Context) (int, error)
}
