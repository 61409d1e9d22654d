// Package ledger provides the movement log and the transactional engine
// that keeps the item store and the movement log consistent.
package ledger

import (
	"time"

	"gudang/internal/core/id"
	"gudang/internal/core/types"
)

// MovementType defines the direction of a stock movement.
type MovementType string

const (
	// MovementIn increases stock (barang masuk).
	MovementIn MovementType = "in"
	// MovementOut decreases stock (barang keluar).
	MovementOut MovementType = "out"
)

// Movement is one record of the append-only movement log. Movements are
// immutable once written: never updated, never deleted in normal operation.
//
// A movement references its item by identity (name, unit) in addition to the
// item id; after a full-store reset, historical movements keep their now
// dangling item ids.
type Movement struct {
	ID       id.ID          `db:"id" json:"id"`
	TrxType  MovementType   `db:"trx_type" json:"trxType"`
	ItemID   id.ID          `db:"item_id" json:"itemId"`
	Name     string         `db:"name" json:"name"`
	Quantity types.Quantity `db:"quantity" json:"quantity"`
	Unit     string         `db:"unit" json:"unit"`

	// Requester is set on issues, Supplier on receipts.
	Requester string `db:"requester" json:"requester,omitempty"`
	Supplier  string `db:"supplier" json:"supplier,omitempty"`

	Note       string     `db:"note" json:"note,omitempty"`
	ExpiryDate *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`

	// TrxCode identifies the submitted transaction; BundleCode groups all
	// movements written by it. For single-line transactions the two are equal.
	TrxCode    string `db:"trx_code" json:"trxCode"`
	BundleCode string `db:"bundle_code" json:"bundleCode"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
