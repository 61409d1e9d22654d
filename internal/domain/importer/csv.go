// Package importer loads bulk stock receipts from CSV files.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"gudang/internal/core/apperror"
	"gudang/internal/core/types"
	"gudang/internal/domain/ledger"
	"gudang/pkg/logger"
)

// Required CSV columns. Optional columns: category, min_stock,
// rack_location, expiry_date (YYYY-MM-DD).
var requiredColumns = []string{"name", "quantity", "unit"}

const expiryDateLayout = "2006-01-02"

// Result summarizes a completed import.
type Result struct {
	TrxCode string `json:"trxCode"`
	Rows    int    `json:"rows"`
}

// Service parses CSV receipt files and submits them as one batch receipt.
// The whole file shares one bundle code, so a single import is traceable
// as a single transaction in the movement log.
type Service struct {
	engine *ledger.Engine
}

// NewService creates a CSV import service.
func NewService(engine *ledger.Engine) *Service {
	return &Service{engine: engine}
}

// Import reads the CSV stream and records every row as a receipt line.
// Parsing is all-or-nothing: any malformed row rejects the whole file
// before the ledger is touched.
func (s *Service) Import(ctx context.Context, r io.Reader, fields ledger.ReceiptFields) (*Result, error) {
	lines, err := Parse(r)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.ReceiveBatch(ctx, lines, fields)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "csv import completed",
		"trx_code", res.TrxCode,
		"rows", len(lines))

	return &Result{TrxCode: res.TrxCode, Rows: len(lines)}, nil
}

// Parse converts a CSV stream into receipt lines. The header row is
// required; column order is free and header names are case-insensitive.
func Parse(r io.Reader) ([]ledger.ReceiptLine, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperror.NewValidation("csv file is empty")
	}
	if err != nil {
		return nil, apperror.NewValidation("csv header is malformed").WithCause(err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, apperror.NewValidation("csv is missing a required column").
				WithDetail("column", required)
		}
	}

	var (
		lines    []ledger.ReceiptLine
		lineErrs []apperror.LineError
	)
	for rowNum := 1; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			lineErrs = append(lineErrs, apperror.LineError{
				Line:   rowNum,
				Reason: fmt.Sprintf("malformed row: %v", err),
			})
			continue
		}

		line, parseErrs := parseRow(record, cols, rowNum)
		if len(parseErrs) > 0 {
			lineErrs = append(lineErrs, parseErrs...)
			continue
		}
		lines = append(lines, line)
	}

	if len(lineErrs) > 0 {
		return nil, apperror.NewBatchRejected(lineErrs)
	}
	if len(lines) == 0 {
		return nil, apperror.NewValidation("csv contains no data rows")
	}
	return lines, nil
}

func parseRow(record []string, cols map[string]int, rowNum int) (ledger.ReceiptLine, []apperror.LineError) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var errs []apperror.LineError
	line := ledger.ReceiptLine{
		Name:         field("name"),
		Unit:         field("unit"),
		Category:     field("category"),
		RackLocation: field("rack_location"),
	}

	quantity, err := types.ParseQuantity(field("quantity"))
	if err != nil {
		errs = append(errs, apperror.LineError{
			Line:   rowNum,
			Name:   line.Name,
			Reason: "quantity is not a valid number",
		})
	}
	line.Quantity = quantity

	if raw := field("min_stock"); raw != "" {
		minStock, err := types.ParseQuantity(raw)
		if err != nil {
			errs = append(errs, apperror.LineError{
				Line:   rowNum,
				Name:   line.Name,
				Reason: "min_stock is not a valid number",
			})
		}
		line.MinStock = minStock
	}

	if raw := field("expiry_date"); raw != "" {
		expiry, err := time.Parse(expiryDateLayout, raw)
		if err != nil {
			errs = append(errs, apperror.LineError{
				Line:   rowNum,
				Name:   line.Name,
				Reason: "expiry_date must be formatted YYYY-MM-DD",
			})
		} else {
			line.ExpiryDate = &expiry
		}
	}

	return line, errs
}
