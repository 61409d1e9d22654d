package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"gudang/internal/core/types"
	"gudang/internal/domain/inventory"
	"gudang/internal/domain/ledger"
)

// MonthBucket formats t as a month label (YYYY-MM).
func MonthBucket(t time.Time) string {
	return t.Format("2006-01")
}

// WeekBucket formats t as an ISO-week label (YYYY-WW). The year is the
// ISO week-year, which can differ from the calendar year around January 1.
func WeekBucket(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-%02d", year, week)
}

// Summarize groups movements by (bucket, name, unit, direction) and sums
// quantities. The result is deterministic: grouping is order-irrelevant and
// rows are sorted by bucket, name, unit, direction.
func Summarize(movements []ledger.Movement, period Period) []SummaryRow {
	bucket := MonthBucket
	if period == PeriodWeek {
		bucket = WeekBucket
	}

	type groupKey struct {
		bucket  string
		name    string
		unit    string
		trxType ledger.MovementType
	}
	totals := make(map[groupKey]types.Quantity)
	for _, m := range movements {
		k := groupKey{bucket: bucket(m.CreatedAt), name: m.Name, unit: m.Unit, trxType: m.TrxType}
		totals[k] += m.Quantity
	}

	rows := make([]SummaryRow, 0, len(totals))
	for k, qty := range totals {
		rows = append(rows, SummaryRow{
			Bucket:   k.bucket,
			Name:     k.name,
			Unit:     k.unit,
			TrxType:  k.trxType,
			Quantity: qty,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Bucket != rows[j].Bucket {
			return rows[i].Bucket < rows[j].Bucket
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		if rows[i].Unit != rows[j].Unit {
			return rows[i].Unit < rows[j].Unit
		}
		return rows[i].TrxType < rows[j].TrxType
	})
	return rows
}

// Totals reconciles movement totals inside the range with current stock.
// Every item of the store appears exactly once, ordered by name then unit;
// items without movements in the window get zero totals. Movements whose
// item has since been reset away are dropped (orphaned references are
// accepted, not an error).
func Totals(movements []ledger.Movement, items []inventory.Item, window DateRange) []TotalsRow {
	type sums struct {
		in  types.Quantity
		out types.Quantity
	}
	byKey := make(map[inventory.Key]*sums, len(items))
	for _, item := range items {
		byKey[item.Key()] = &sums{}
	}

	for _, m := range movements {
		if !window.Contains(m.CreatedAt) {
			continue
		}
		s, ok := byKey[inventory.NewKey(m.Name, m.Unit)]
		if !ok {
			continue
		}
		if m.TrxType == ledger.MovementIn {
			s.in += m.Quantity
		} else {
			s.out += m.Quantity
		}
	}

	rows := make([]TotalsRow, 0, len(items))
	for _, item := range items {
		s := byKey[item.Key()]
		rows = append(rows, TotalsRow{
			Name:         item.Name,
			Unit:         item.Unit,
			TotalIn:      s.in,
			TotalOut:     s.out,
			ClosingStock: item.Quantity,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].Unit < rows[j].Unit
	})
	return rows
}

// CompareMonths pivots out-movements of two months into one row per item
// name. Receipts are excluded: the comparison answers "how did consumption
// change". itemFilter, when non-empty, restricts the result to the given
// item names.
func CompareMonths(movements []ledger.Movement, monthA, monthB string, itemFilter []string) []ComparisonRow {
	allowed := map[string]bool{}
	for _, name := range itemFilter {
		allowed[name] = true
	}

	type sums struct {
		a types.Quantity
		b types.Quantity
	}
	byName := make(map[string]*sums)
	for _, m := range movements {
		if m.TrxType != ledger.MovementOut {
			continue
		}
		if len(allowed) > 0 && !allowed[m.Name] {
			continue
		}
		month := MonthBucket(m.CreatedAt)
		if month != monthA && month != monthB {
			continue
		}
		s, ok := byName[m.Name]
		if !ok {
			s = &sums{}
			byName[m.Name] = s
		}
		if month == monthA {
			s.a += m.Quantity
		}
		if month == monthB {
			s.b += m.Quantity
		}
	}

	rows := make([]ComparisonRow, 0, len(byName))
	for name, s := range byName {
		row := ComparisonRow{
			Name:        name,
			MonthATotal: s.a,
			MonthBTotal: s.b,
			Difference:  s.b - s.a,
		}
		if !s.a.IsZero() {
			pct := row.Difference.Decimal().
				Div(s.a.Decimal()).
				Mul(decimal.NewFromInt(100)).
				Round(4)
			row.PctChange = &pct
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}
