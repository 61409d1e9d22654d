// Package inventory provides the item store: current stock state per item.
//
// An item is identified by its (name, unit) pair; the name is
// whitespace-normalized. Items are created on first receipt and persist
// indefinitely; there is no item deletion in normal operation, only a
// full-store reset.
package inventory

import (
	"strings"
	"time"

	"gudang/internal/core/id"
	"gudang/internal/core/types"
)

// Key is the business identity of an item.
type Key struct {
	Name string
	Unit string
}

// NewKey normalizes the name and builds the identity pair.
func NewKey(name, unit string) Key {
	return Key{Name: strings.TrimSpace(name), Unit: unit}
}

// Item represents current stock state for one (name, unit) pair.
// Invariant: Quantity never goes negative.
type Item struct {
	ID           id.ID          `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Category     string         `db:"category" json:"category"`
	Unit         string         `db:"unit" json:"unit"`
	Quantity     types.Quantity `db:"quantity" json:"quantity"`
	MinStock     types.Quantity `db:"min_stock" json:"minStock"`
	RackLocation string         `db:"rack_location" json:"rackLocation"`
	ExpiryDate   *time.Time     `db:"expiry_date" json:"expiryDate,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`
}

// Key returns the item's business identity.
func (i *Item) Key() Key {
	return NewKey(i.Name, i.Unit)
}

// IsLowStock reports whether the item is at or below its reorder threshold.
func (i *Item) IsLowStock() bool {
	return i.Quantity <= i.MinStock
}

// ReceiptAttrs are the descriptive attributes a receipt overwrites on an
// existing item (everything except identity and quantity).
type ReceiptAttrs struct {
	Category     string
	MinStock     types.Quantity
	RackLocation string
	ExpiryDate   *time.Time
}
