package inventory

import (
	"context"
	"fmt"
	"time"

	"gudang/internal/core/apperror"
	"gudang/internal/core/id"
	"gudang/internal/core/types"
)

// Service provides item store operations.
//
// UpsertOnReceipt and DeductOnIssue mutate stock and are meant to be called
// by the ledger engine inside its transaction; the service itself does not
// open transactions. Quantity validation (> 0) is the caller's
// responsibility; the store applies whatever delta it is given.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates an item store service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewServiceWithClock creates a service with an injected clock. Used by tests.
func NewServiceWithClock(repo Repository, now func() time.Time) *Service {
	return &Service{repo: repo, now: now}
}

// UpsertOnReceipt adds quantity to the item identified by (name, unit),
// creating it on first receipt. Descriptive attributes are overwritten on
// every receipt; created_at is immutable once set.
func (s *Service) UpsertOnReceipt(ctx context.Context, key Key, quantity types.Quantity, attrs ReceiptAttrs) (id.ID, error) {
	now := s.now().UTC()

	existing, err := s.repo.GetByKeyForUpdate(ctx, key)
	if err != nil && !apperror.IsNotFound(err) {
		return id.Nil(), fmt.Errorf("lookup item %q (%s): %w", key.Name, key.Unit, err)
	}

	if existing != nil {
		existing.Quantity += quantity
		existing.Category = attrs.Category
		existing.MinStock = attrs.MinStock
		existing.RackLocation = attrs.RackLocation
		existing.ExpiryDate = attrs.ExpiryDate
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, existing); err != nil {
			return id.Nil(), fmt.Errorf("update item %q (%s): %w", key.Name, key.Unit, err)
		}
		return existing.ID, nil
	}

	item := &Item{
		ID:           id.New(),
		Name:         key.Name,
		Category:     attrs.Category,
		Unit:         key.Unit,
		Quantity:     quantity,
		MinStock:     attrs.MinStock,
		RackLocation: attrs.RackLocation,
		ExpiryDate:   attrs.ExpiryDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		return id.Nil(), fmt.Errorf("insert item %q (%s): %w", key.Name, key.Unit, err)
	}
	return item.ID, nil
}

// DeductOnIssue subtracts quantity from the item identified by (name, unit).
// Fails with NotFound when the item does not exist and with
// InsufficientStock when available stock is below the requested quantity.
// Stock never goes negative.
func (s *Service) DeductOnIssue(ctx context.Context, key Key, quantity types.Quantity) (id.ID, error) {
	item, err := s.repo.GetByKeyForUpdate(ctx, key)
	if err != nil {
		return id.Nil(), err
	}

	if item.Quantity < quantity {
		return id.Nil(), apperror.NewInsufficientStock(key.Name, key.Unit, quantity.Float64(), item.Quantity.Float64())
	}

	item.Quantity -= quantity
	item.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, item); err != nil {
		return id.Nil(), fmt.Errorf("update item %q (%s): %w", key.Name, key.Unit, err)
	}
	return item.ID, nil
}

// GetByKey retrieves one item by identity.
func (s *Service) GetByKey(ctx context.Context, key Key) (*Item, error) {
	return s.repo.GetByKey(ctx, key)
}

// GetByKeyForUpdate retrieves one item and locks its row for the current
// transaction. The ledger engine uses it to take a consistent pre-batch
// snapshot before issuing.
func (s *Service) GetByKeyForUpdate(ctx context.Context, key Key) (*Item, error) {
	return s.repo.GetByKeyForUpdate(ctx, key)
}

// GetByName returns the first item with the given name (unit auto-fill).
func (s *Service) GetByName(ctx context.Context, name string) (*Item, error) {
	return s.repo.GetByName(ctx, NewKey(name, "").Name)
}

// List returns all items ordered by name.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.repo.List(ctx)
}

// ListLowStock returns items at or below their reorder threshold.
func (s *Service) ListLowStock(ctx context.Context) ([]Item, error) {
	return s.repo.ListLowStock(ctx)
}
