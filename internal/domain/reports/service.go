package reports

import (
	"context"
	"time"

	"gudang/internal/core/apperror"
	"gudang/internal/core/tx"
	"gudang/internal/domain/inventory"
	"gudang/internal/domain/ledger"
)

// Service reads a consistent snapshot of the movement log and the item store
// and feeds it to the pure aggregation functions. All reads of one report run
// inside a single read-only transaction so reconciliation totals cannot skew
// under concurrent writers.
type Service struct {
	items     inventory.Repository
	movements ledger.Repository
	txm       tx.ReadOnlyManager
}

// NewService creates a reports service.
func NewService(items inventory.Repository, movements ledger.Repository, txm tx.ReadOnlyManager) *Service {
	return &Service{items: items, movements: movements, txm: txm}
}

// SummaryByPeriod groups the whole movement log into weekly or monthly
// totals per item and direction.
func (s *Service) SummaryByPeriod(ctx context.Context, period Period) ([]SummaryRow, error) {
	if period != PeriodWeek && period != PeriodMonth {
		return nil, apperror.NewValidation("period must be week or month").WithDetail("field", "period")
	}

	var rows []SummaryRow
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		movements, err := s.movements.List(ctx, ledger.Filter{})
		if err != nil {
			return err
		}
		rows = Summarize(movements, period)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TotalsForPeriod reconciles in/out totals inside the optional window with
// the item store's current quantities.
func (s *Service) TotalsForPeriod(ctx context.Context, window DateRange) ([]TotalsRow, error) {
	if window.From != nil && window.To != nil && window.From.After(*window.To) {
		return nil, apperror.NewValidation("date_from must not be after date_to")
	}

	var rows []TotalsRow
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		items, err := s.items.List(ctx)
		if err != nil {
			return err
		}
		movements, err := s.movements.List(ctx, ledger.Filter{FromDate: window.From, ToDate: window.To})
		if err != nil {
			return err
		}
		rows = Totals(movements, items, window)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CompareMonths compares consumption between two month labels (YYYY-MM),
// optionally restricted to a set of item names.
func (s *Service) CompareMonths(ctx context.Context, monthA, monthB string, itemFilter []string) ([]ComparisonRow, error) {
	for _, label := range []string{monthA, monthB} {
		if _, err := time.Parse("2006-01", label); err != nil {
			return nil, apperror.NewValidation("month must be formatted YYYY-MM").WithDetail("value", label)
		}
	}

	var rows []ComparisonRow
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		movements, err := s.movements.List(ctx, ledger.Filter{TrxType: ledger.MovementOut})
		if err != nil {
			return err
		}
		rows = CompareMonths(movements, monthA, monthB, itemFilter)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
