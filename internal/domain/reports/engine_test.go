package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gudang/internal/core/types"
	"gudang/internal/domain/inventory"
	"gudang/internal/domain/ledger"
)

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func mv(trxType ledger.MovementType, name, unit string, quantity float64, at time.Time) ledger.Movement {
	return ledger.Movement{
		TrxType:   trxType,
		Name:      name,
		Unit:      unit,
		Quantity:  qty(quantity),
		CreatedAt: at,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func item(name, unit string, quantity float64) inventory.Item {
	return inventory.Item{Name: name, Unit: unit, Quantity: qty(quantity)}
}

// --- bucketing ---

func TestWeekBucket_ISOWeekYear(t *testing.T) {
	// 2024-12-30 belongs to ISO week 1 of 2025.
	assert.Equal(t, "2025-01", WeekBucket(day(2024, time.December, 30)))
	assert.Equal(t, "2024-26", WeekBucket(day(2024, time.June, 26)))
}

func TestMonthBucket(t *testing.T) {
	assert.Equal(t, "2024-06", MonthBucket(day(2024, time.June, 3)))
}

// --- summarize ---

func TestSummarize_GroupsByBucketItemAndDirection(t *testing.T) {
	movements := []ledger.Movement{
		mv(ledger.MovementIn, "Beras", "kg", 10, day(2024, time.June, 3)),
		mv(ledger.MovementIn, "Beras", "kg", 5, day(2024, time.June, 20)),
		mv(ledger.MovementOut, "Beras", "kg", 4, day(2024, time.June, 25)),
		mv(ledger.MovementIn, "Beras", "kg", 7, day(2024, time.July, 1)),
	}

	rows := Summarize(movements, PeriodMonth)
	require.Len(t, rows, 3)

	assert.Equal(t, SummaryRow{Bucket: "2024-06", Name: "Beras", Unit: "kg", TrxType: ledger.MovementIn, Quantity: qty(15)}, rows[0])
	assert.Equal(t, SummaryRow{Bucket: "2024-06", Name: "Beras", Unit: "kg", TrxType: ledger.MovementOut, Quantity: qty(4)}, rows[1])
	assert.Equal(t, SummaryRow{Bucket: "2024-07", Name: "Beras", Unit: "kg", TrxType: ledger.MovementIn, Quantity: qty(7)}, rows[2])
}

func TestSummarize_OrderOfInputIrrelevant(t *testing.T) {
	a := mv(ledger.MovementIn, "Beras", "kg", 10, day(2024, time.June, 3))
	b := mv(ledger.MovementIn, "Gula", "kg", 2, day(2024, time.June, 4))
	c := mv(ledger.MovementOut, "Beras", "kg", 1, day(2024, time.June, 5))

	rows1 := Summarize([]ledger.Movement{a, b, c}, PeriodMonth)
	rows2 := Summarize([]ledger.Movement{c, a, b}, PeriodMonth)
	assert.Equal(t, rows1, rows2)
}

func TestSummarize_EmptyLogYieldsNoRows(t *testing.T) {
	assert.Empty(t, Summarize(nil, PeriodWeek))
}

// --- totals ---

func TestTotals_ReconcilesAgainstCurrentStock(t *testing.T) {
	items := []inventory.Item{item("Beras", "kg", 11)}
	movements := []ledger.Movement{
		mv(ledger.MovementIn, "Beras", "kg", 15, day(2024, time.June, 1)),
		mv(ledger.MovementOut, "Beras", "kg", 4, day(2024, time.June, 10)),
	}

	rows := Totals(movements, items, DateRange{})
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, qty(15), row.TotalIn)
	assert.Equal(t, qty(4), row.TotalOut)
	assert.Equal(t, qty(11), row.ClosingStock)

	// With the full, unfiltered log: total_in - total_out == closing_stock.
	assert.Equal(t, row.ClosingStock, row.TotalIn-row.TotalOut)
}

func TestTotals_WindowIsInclusiveAtBothEnds(t *testing.T) {
	items := []inventory.Item{item("Beras", "kg", 30)}
	from := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC)
	movements := []ledger.Movement{
		mv(ledger.MovementIn, "Beras", "kg", 1, day(2024, time.June, 9)),   // before
		mv(ledger.MovementIn, "Beras", "kg", 2, day(2024, time.June, 10)),  // on from
		mv(ledger.MovementIn, "Beras", "kg", 4, day(2024, time.June, 20)),  // on to
		mv(ledger.MovementIn, "Beras", "kg", 8, day(2024, time.June, 21)),  // after
	}

	rows := Totals(movements, items, DateRange{From: &from, To: &to})
	require.Len(t, rows, 1)
	assert.Equal(t, qty(6), rows[0].TotalIn)
}

func TestTotals_ItemWithoutMovementsGetsZeroRow(t *testing.T) {
	items := []inventory.Item{item("Beras", "kg", 5), item("Gula", "kg", 0)}

	rows := Totals(nil, items, DateRange{})
	require.Len(t, rows, 2)
	assert.Equal(t, "Gula", rows[1].Name)
	assert.True(t, rows[1].TotalIn.IsZero())
	assert.True(t, rows[1].TotalOut.IsZero())
}

func TestTotals_OrphanedMovementsDropped(t *testing.T) {
	// Movement references an item that no longer exists after a reset.
	movements := []ledger.Movement{
		mv(ledger.MovementIn, "Ghost", "kg", 9, day(2024, time.June, 1)),
	}

	rows := Totals(movements, nil, DateRange{})
	assert.Empty(t, rows)
}

// --- compare months ---

func TestCompareMonths_DifferenceAndPercent(t *testing.T) {
	movements := []ledger.Movement{
		mv(ledger.MovementOut, "Beras", "kg", 10, day(2024, time.May, 5)),
		mv(ledger.MovementOut, "Beras", "kg", 15, day(2024, time.June, 5)),
	}

	rows := CompareMonths(movements, "2024-05", "2024-06", nil)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, qty(10), row.MonthATotal)
	assert.Equal(t, qty(15), row.MonthBTotal)
	assert.Equal(t, qty(5), row.Difference)
	require.NotNil(t, row.PctChange)
	assert.Equal(t, "50", row.PctChange.String())
}

func TestCompareMonths_PctNilWhenMonthAZero(t *testing.T) {
	movements := []ledger.Movement{
		mv(ledger.MovementOut, "Beras", "kg", 5, day(2024, time.June, 5)),
	}

	rows := CompareMonths(movements, "2024-05", "2024-06", nil)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].MonthATotal.IsZero())
	assert.Equal(t, qty(5), rows[0].Difference)
	assert.Nil(t, rows[0].PctChange)
}

func TestCompareMonths_IgnoresReceipts(t *testing.T) {
	movements := []ledger.Movement{
		mv(ledger.MovementIn, "Beras", "kg", 100, day(2024, time.May, 5)),
		mv(ledger.MovementOut, "Beras", "kg", 3, day(2024, time.May, 6)),
	}

	rows := CompareMonths(movements, "2024-05", "2024-06", nil)
	require.Len(t, rows, 1)
	assert.Equal(t, qty(3), rows[0].MonthATotal)
}

func TestCompareMonths_ItemFilter(t *testing.T) {
	movements := []ledger.Movement{
		mv(ledger.MovementOut, "Beras", "kg", 10, day(2024, time.May, 5)),
		mv(ledger.MovementOut, "Gula", "kg", 4, day(2024, time.May, 6)),
	}

	rows := CompareMonths(movements, "2024-05", "2024-06", []string{"Gula"})
	require.Len(t, rows, 1)
	assert.Equal(t, "Gula", rows[0].Name)
}

func TestCompareMonths_NegativeChange(t *testing.T) {
	movements := []ledger.Movement{
		mv(ledger.MovementOut, "Beras", "kg", 20, day(2024, time.May, 5)),
		mv(ledger.MovementOut, "Beras", "kg", 15, day(2024, time.June, 5)),
	}

	rows := CompareMonths(movements, "2024-05", "2024-06", nil)
	require.Len(t, rows, 1)
	assert.Equal(t, qty(-5), rows[0].Difference)
	require.NotNil(t, rows[0].PctChange)
	assert.Equal(t, "-25", rows[0].PctChange.String())
}
