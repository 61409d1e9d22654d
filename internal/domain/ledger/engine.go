package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gudang/internal/core/apperror"
	"gudang/internal/core/id"
	"gudang/internal/core/trxcode"
	"gudang/internal/core/tx"
	"gudang/internal/core/types"
	"gudang/internal/domain/inventory"
	"gudang/pkg/logger"
)

// ReceiptLine is one proposed line of a receipt transaction.
type ReceiptLine struct {
	Name         string         `json:"name"`
	Unit         string         `json:"unit"`
	Quantity     types.Quantity `json:"quantity"`
	Category     string         `json:"category"`
	MinStock     types.Quantity `json:"minStock"`
	RackLocation string         `json:"rackLocation"`
	ExpiryDate   *time.Time     `json:"expiryDate,omitempty"`
}

// IssueLine is one proposed line of an issue transaction.
type IssueLine struct {
	Name     string         `json:"name"`
	Unit     string         `json:"unit"`
	Quantity types.Quantity `json:"quantity"`
	Note     string         `json:"note"`
}

// ReceiptFields are shared across all lines of one receipt transaction.
type ReceiptFields struct {
	Supplier string `json:"supplier"`
	Note     string `json:"note"`
}

// IssueFields are shared across all lines of one issue transaction.
type IssueFields struct {
	Requester string `json:"requester"`
	Note      string `json:"note"`
}

// Result reports the committed transaction code back to the caller.
type Result struct {
	TrxCode string `json:"trxCode"`
}

// Engine orchestrates ledger transactions. Every submitted transaction,
// single line or batch, runs inside one database transaction: item store
// mutations and movement log appends are applied together or not at all.
//
// A submission is validated before anything mutates. A rejected transaction
// leaves no trace and is never retried automatically.
type Engine struct {
	items     *inventory.Service
	movements Repository
	txm       tx.Manager
	codes     *trxcode.Generator
	now       func() time.Time
}

// NewEngine creates a ledger engine.
func NewEngine(items *inventory.Service, movements Repository, txm tx.Manager, codes *trxcode.Generator) *Engine {
	return &Engine{
		items:     items,
		movements: movements,
		txm:       txm,
		codes:     codes,
		now:       time.Now,
	}
}

// NewEngineWithClock creates an engine with an injected clock. Used by tests.
func NewEngineWithClock(items *inventory.Service, movements Repository, txm tx.Manager, codes *trxcode.Generator, now func() time.Time) *Engine {
	e := NewEngine(items, movements, txm, codes)
	e.now = now
	return e
}

// ReceiveSingle validates and commits a one-line receipt.
func (e *Engine) ReceiveSingle(ctx context.Context, line ReceiptLine, fields ReceiptFields) (*Result, error) {
	if err := validateReceiptLine(line); err != nil {
		return nil, err
	}
	return e.commitReceipt(ctx, []ReceiptLine{line}, fields)
}

// ReceiveBatch validates every line before any mutation and commits the whole
// batch under one shared bundle code, in input order. Any failing line rejects
// the entire batch with one error per line.
func (e *Engine) ReceiveBatch(ctx context.Context, lines []ReceiptLine, fields ReceiptFields) (*Result, error) {
	if len(lines) == 0 {
		return nil, apperror.NewValidation("batch has no lines")
	}

	var lineErrs []apperror.LineError
	for i, line := range lines {
		if err := validateReceiptLine(line); err != nil {
			lineErrs = append(lineErrs, apperror.LineError{Line: i + 1, Name: line.Name, Reason: err.Message})
		}
	}
	if len(lineErrs) > 0 {
		return nil, apperror.NewBatchRejected(lineErrs)
	}

	return e.commitReceipt(ctx, lines, fields)
}

// IssueSingle validates and commits a one-line issue. Missing item and
// insufficient stock surface as distinct errors, and nothing is committed on
// failure.
func (e *Engine) IssueSingle(ctx context.Context, line IssueLine, fields IssueFields) (*Result, error) {
	if err := validateIssueLine(line); err != nil {
		return nil, err
	}
	if strings.TrimSpace(fields.Requester) == "" {
		return nil, apperror.NewValidation("requester is required").WithDetail("field", "requester")
	}
	return e.commitIssue(ctx, []IssueLine{line}, fields)
}

// IssueBatch performs the two-phase batch check: field validation over every
// line first, then a stock sufficiency check for all lines against the item
// state as it stood before any line was applied. Lines repeating one item are
// additionally checked against their combined demand so stock can never go
// negative. Any failure rejects the whole batch, listing every failing line.
func (e *Engine) IssueBatch(ctx context.Context, lines []IssueLine, fields IssueFields) (*Result, error) {
	if len(lines) == 0 {
		return nil, apperror.NewValidation("batch has no lines")
	}
	if strings.TrimSpace(fields.Requester) == "" {
		return nil, apperror.NewValidation("requester is required").WithDetail("field", "requester")
	}

	var lineErrs []apperror.LineError
	for i, line := range lines {
		if err := validateIssueLine(line); err != nil {
			lineErrs = append(lineErrs, apperror.LineError{Line: i + 1, Name: line.Name, Reason: err.Message})
		}
	}
	if len(lineErrs) > 0 {
		return nil, apperror.NewBatchRejected(lineErrs)
	}

	return e.commitIssue(ctx, lines, fields)
}

// Movements returns movement log records matching the filter.
func (e *Engine) Movements(ctx context.Context, filter Filter) ([]Movement, error) {
	return e.movements.List(ctx, filter)
}

// Bundle returns all movements written by one submitted transaction.
func (e *Engine) Bundle(ctx context.Context, bundleCode string) ([]Movement, error) {
	return e.movements.List(ctx, Filter{BundleCode: bundleCode})
}

// --- commit paths ---

func (e *Engine) commitReceipt(ctx context.Context, lines []ReceiptLine, fields ReceiptFields) (*Result, error) {
	var result Result

	err := e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		code, err := e.codes.NextUnique(ctx, trxcode.DirectionIn, e.movements.ExistsTrxCode)
		if err != nil {
			return err
		}
		result.TrxCode = code

		for _, line := range lines {
			key := inventory.NewKey(line.Name, line.Unit)
			itemID, err := e.items.UpsertOnReceipt(ctx, key, line.Quantity, inventory.ReceiptAttrs{
				Category:     line.Category,
				MinStock:     line.MinStock,
				RackLocation: line.RackLocation,
				ExpiryDate:   line.ExpiryDate,
			})
			if err != nil {
				return err
			}

			if err := e.appendMovement(ctx, &Movement{
				TrxType:    MovementIn,
				ItemID:     itemID,
				Name:       key.Name,
				Quantity:   line.Quantity,
				Unit:       key.Unit,
				Supplier:   fields.Supplier,
				Note:       fields.Note,
				ExpiryDate: line.ExpiryDate,
				TrxCode:    code,
				BundleCode: code,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "receipt committed", "trx_code", result.TrxCode, "lines", len(lines))
	return &result, nil
}

func (e *Engine) commitIssue(ctx context.Context, lines []IssueLine, fields IssueFields) (*Result, error) {
	var result Result

	err := e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		// Phase two: lock every affected item once and check all lines
		// against the pre-batch snapshot before mutating anything.
		if err := e.checkIssueStock(ctx, lines); err != nil {
			return err
		}

		code, err := e.codes.NextUnique(ctx, trxcode.DirectionOut, e.movements.ExistsTrxCode)
		if err != nil {
			return err
		}
		result.TrxCode = code

		for _, line := range lines {
			key := inventory.NewKey(line.Name, line.Unit)
			itemID, err := e.items.DeductOnIssue(ctx, key, line.Quantity)
			if err != nil {
				return err
			}

			if err := e.appendMovement(ctx, &Movement{
				TrxType:    MovementOut,
				ItemID:     itemID,
				Name:       key.Name,
				Quantity:   line.Quantity,
				Unit:       key.Unit,
				Requester:  fields.Requester,
				Note:       issueNote(line, fields),
				TrxCode:    code,
				BundleCode: code,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "issue committed", "trx_code", result.TrxCode, "lines", len(lines))
	return &result, nil
}

// checkIssueStock verifies every line against a locked snapshot of the item
// store taken before any line is applied. A single failing line is surfaced
// as its specific error; multiple failures aggregate into a batch rejection.
func (e *Engine) checkIssueStock(ctx context.Context, lines []IssueLine) error {
	type snapshot struct {
		item      *inventory.Item
		remaining types.Quantity
	}
	snapshots := make(map[inventory.Key]*snapshot, len(lines))

	var lineErrs []apperror.LineError
	var single error

	for i, line := range lines {
		key := inventory.NewKey(line.Name, line.Unit)

		snap, seen := snapshots[key]
		if !seen {
			item, err := e.items.GetByKeyForUpdate(ctx, key)
			if err != nil && !apperror.IsNotFound(err) {
				return err
			}
			snap = &snapshot{item: item}
			if item != nil {
				snap.remaining = item.Quantity
			}
			snapshots[key] = snap
		}

		var lineErr *apperror.AppError
		switch {
		case snap.item == nil:
			lineErr = apperror.NewNotFound("item", fmt.Sprintf("%s (%s)", key.Name, key.Unit))
		case line.Quantity > snap.item.Quantity:
			lineErr = apperror.NewInsufficientStock(key.Name, key.Unit, line.Quantity.Float64(), snap.item.Quantity.Float64())
		case line.Quantity > snap.remaining:
			// Earlier lines of this batch already claimed part of the stock.
			lineErr = apperror.NewInsufficientStock(key.Name, key.Unit, line.Quantity.Float64(), snap.remaining.Float64())
		default:
			snap.remaining -= line.Quantity
		}

		if lineErr != nil {
			if single == nil {
				single = lineErr
			}
			lineErrs = append(lineErrs, apperror.LineError{Line: i + 1, Name: line.Name, Reason: lineErr.Message})
		}
	}

	switch {
	case len(lineErrs) == 0:
		return nil
	case len(lines) == 1:
		// Single-line issues keep their specific error type.
		return single
	default:
		return apperror.NewBatchRejected(lineErrs)
	}
}

func (e *Engine) appendMovement(ctx context.Context, m *Movement) error {
	m.ID = id.New()
	m.CreatedAt = e.now().UTC()
	if err := e.movements.Append(ctx, m); err != nil {
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

func issueNote(line IssueLine, fields IssueFields) string {
	if line.Note != "" {
		return line.Note
	}
	return fields.Note
}

// --- line validation ---

func validateReceiptLine(line ReceiptLine) *apperror.AppError {
	if strings.TrimSpace(line.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(line.Unit) == "" {
		return apperror.NewValidation("unit is required").WithDetail("field", "unit")
	}
	if !line.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if line.MinStock.IsNegative() {
		return apperror.NewValidation("min stock cannot be negative").WithDetail("field", "minStock")
	}
	return nil
}

func validateIssueLine(line IssueLine) *apperror.AppError {
	if strings.TrimSpace(line.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(line.Unit) == "" {
		return apperror.NewValidation("unit is required").WithDetail("field", "unit")
	}
	if !line.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	return nil
}
