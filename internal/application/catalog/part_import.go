package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/shared"
	csvimport "github.com/shopledger/backend/internal/infrastructure/import"
	"go.uber.org/zap"
)

const maxImportErrors = 100

var partImportHeaders = []string{"name", "part_number"}

// ImportResult reports the outcome of a CSV import. Parts is empty whenever
// Errors is not.
type ImportResult struct {
	TotalRows int                  `json:"total_rows"`
	Imported  int                  `json:"imported"`
	Parts     []PartResponse       `json:"parts"`
	Errors    []csvimport.RowError `json:"errors,omitempty"`
	Truncated bool                 `json:"truncated,omitempty"`
}

// ImportCSV creates parts from a CSV export. The columns name and part_number
// are required; purchase_price, selling_price, mrp, quantity and
// min_stock_level are optional. Nothing is stored unless every row is valid.
func (s *PartService) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	parser, err := csvimport.NewParser(r)
	if err != nil {
		return nil, importFileError(err)
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, importFileError(err)
	}
	if missing := parser.MissingHeaders(partImportHeaders...); len(missing) > 0 {
		return nil, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", ")))
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		var rowErr csvimport.RowError
		if errors.As(err, &rowErr) {
			return &ImportResult{Errors: []csvimport.RowError{rowErr}}, nil
		}
		return nil, importFileError(err)
	}

	errs := csvimport.NewErrorCollection(maxImportErrors)
	parts := make([]*catalog.Part, 0, len(rows))
	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		part, ok := s.partFromRow(ctx, row, errs)
		if !ok {
			continue
		}
		key := strings.ToLower(part.PartNumber)
		if first, dup := seen[key]; dup {
			errs.Add(csvimport.RowError{
				Row:     row.Line,
				Column:  "part_number",
				Message: fmt.Sprintf("duplicates row %d", first),
				Value:   part.PartNumber,
			})
			continue
		}
		seen[key] = row.Line
		parts = append(parts, part)
	}

	result := &ImportResult{TotalRows: len(rows)}
	if errs.HasErrors() {
		result.Errors = errs.Errors()
		result.Truncated = errs.Truncated()
		s.logger.Info("Part import rejected",
			zap.Int("rows", len(rows)),
			zap.Int("errors", errs.TotalCount()),
		)
		return result, nil
	}

	created, err := s.partRepo.CreateBatch(ctx, parts)
	if err != nil {
		return nil, err
	}
	for _, p := range created {
		s.notify(ctx, p.ID, shared.ChangeCreated)
	}

	result.Imported = len(created)
	result.Parts = ToPartResponses(created)
	s.logger.Info("Parts imported", zap.Int("count", result.Imported))
	return result, nil
}

// partFromRow builds a part from one row, recording cell and validation
// problems in errs
func (s *PartService) partFromRow(ctx context.Context, row *csvimport.Row, errs *csvimport.ErrorCollection) (*catalog.Part, bool) {
	before := errs.TotalCount()
	details := catalog.PartDetails{
		Name:          row.Get("name"),
		PartNumber:    row.Get("part_number"),
		PurchasePrice: row.Decimal("purchase_price", errs),
		SellingPrice:  row.Decimal("selling_price", errs),
		MRP:           row.Decimal("mrp", errs),
		Quantity:      row.Int("quantity", errs),
		MinStockLevel: row.Int("min_stock_level", errs),
	}
	if errs.TotalCount() > before {
		return nil, false
	}

	part, err := catalog.NewPart(details)
	if err != nil {
		errs.Add(csvimport.RowError{Row: row.Line, Message: rowMessage(err)})
		return nil, false
	}

	existing, err := s.partRepo.FindByPartNumber(ctx, part.PartNumber)
	if err != nil {
		errs.Add(csvimport.RowError{Row: row.Line, Message: err.Error()})
		return nil, false
	}
	if existing != nil {
		errs.Add(csvimport.RowError{
			Row:     row.Line,
			Column:  "part_number",
			Message: "part number already exists",
			Value:   part.PartNumber,
		})
		return nil, false
	}
	return part, true
}

func rowMessage(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

func importFileError(err error) error {
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile),
		errors.Is(err, csvimport.ErrInvalidEncoding),
		errors.Is(err, csvimport.ErrMissingHeader),
		errors.Is(err, csvimport.ErrNoDataRows):
		return shared.NewDomainError("INVALID_INPUT", err.Error())
	default:
		return err
	}
}
