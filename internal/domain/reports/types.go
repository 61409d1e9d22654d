// Package reports derives periodic and comparative reports from the movement
// log. The aggregation itself is pure: it only reads the movement log and the
// current item store snapshot, never mutates them.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"gudang/internal/core/types"
	"gudang/internal/domain/ledger"
)

// Period selects the bucketing granularity for summaries.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// SummaryRow is one row of a period summary: total moved quantity per
// (bucket, name, unit, direction).
type SummaryRow struct {
	Bucket   string              `json:"bucket"`
	Name     string              `json:"name"`
	Unit     string              `json:"unit"`
	TrxType  ledger.MovementType `json:"trxType"`
	Quantity types.Quantity      `json:"quantity"`
}

// TotalsRow reconciles movement totals with current stock for one item.
//
// ClosingStock is the item store's current quantity regardless of the
// requested window; this is a reconciliation view, not a reconstruction of
// the balance as of the window's end.
type TotalsRow struct {
	Name         string         `json:"name"`
	Unit         string         `json:"unit"`
	TotalIn      types.Quantity `json:"totalIn"`
	TotalOut     types.Quantity `json:"totalOut"`
	ClosingStock types.Quantity `json:"closingStock"`
}

// ComparisonRow compares consumption (out movements only) of one item
// between two months. PctChange is nil when the first month's total is zero.
type ComparisonRow struct {
	Name        string           `json:"name"`
	MonthATotal types.Quantity   `json:"monthATotal"`
	MonthBTotal types.Quantity   `json:"monthBTotal"`
	Difference  types.Quantity   `json:"difference"`
	PctChange   *decimal.Decimal `json:"pctChange,omitempty"`
}

// DateRange bounds a totals query. Nil sides are unbounded. Comparison is at
// calendar-date granularity, both ends inclusive.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether the calendar date of t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := dateOf(t)
	if r.From != nil && d.Before(dateOf(*r.From)) {
		return false
	}
	if r.To != nil && d.After(dateOf(*r.To)) {
		return false
	}
	return true
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
