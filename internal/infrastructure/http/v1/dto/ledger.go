package dto

import (
	"time"

	"gudang/internal/core/types"
	"gudang/internal/domain/ledger"
)

// ReceiptRequest submits a single-line stock receipt.
type ReceiptRequest struct {
	Name         string         `json:"name"`
	Unit         string         `json:"unit"`
	Quantity     types.Quantity `json:"quantity"`
	Category     string         `json:"category"`
	MinStock     types.Quantity `json:"minStock"`
	RackLocation string         `json:"rackLocation"`
	ExpiryDate   *time.Time     `json:"expiryDate,omitempty"`
	Supplier     string         `json:"supplier"`
	Note         string         `json:"note"`
}

// Line converts the request body into a receipt line.
func (r ReceiptRequest) Line() ledger.ReceiptLine {
	return ledger.ReceiptLine{
		Name:         r.Name,
		Unit:         r.Unit,
		Quantity:     r.Quantity,
		Category:     r.Category,
		MinStock:     r.MinStock,
		RackLocation: r.RackLocation,
		ExpiryDate:   r.ExpiryDate,
	}
}

// ReceiptBatchRequest submits a multi-line stock receipt recorded under
// one bundle code.
type ReceiptBatchRequest struct {
	Lines    []ledger.ReceiptLine `json:"lines"`
	Supplier string               `json:"supplier"`
	Note     string               `json:"note"`
}

// IssueRequest submits a single-line stock issue.
type IssueRequest struct {
	Name      string         `json:"name"`
	Unit      string         `json:"unit"`
	Quantity  types.Quantity `json:"quantity"`
	Requester string         `json:"requester"`
	Note      string         `json:"note"`
}

// Line converts the request body into an issue line.
func (r IssueRequest) Line() ledger.IssueLine {
	return ledger.IssueLine{
		Name:     r.Name,
		Unit:     r.Unit,
		Quantity: r.Quantity,
	}
}

// IssueBatchRequest submits a multi-line stock issue recorded under one
// bundle code.
type IssueBatchRequest struct {
	Lines     []ledger.IssueLine `json:"lines"`
	Requester string             `json:"requester"`
	Note      string             `json:"note"`
}

// TrxResponse acknowledges a committed ledger transaction.
type TrxResponse struct {
	TrxCode string `json:"trxCode"`
}
