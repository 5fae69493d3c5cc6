package catalog

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/nextbest/internal/models"
)

// XLSXSource reads one worksheet of an Excel workbook. The first row is the header.
type XLSXSource struct {
	Path  string
	Sheet string // empty = first sheet
}

// Products implements Source.
func (s *XLSXSource) Products(ctx context.Context) ([]models.Product, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &models.DatasetError{Kind: models.DatasetEmpty, Err: fmt.Errorf("workbook has no sheets")}
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, &models.DatasetError{Kind: models.DatasetEmpty, Err: fmt.Errorf("sheet %q is empty", sheet)}
	}
	return parseTable(rows[0], rows[1:])
}

// Describe implements Source.
func (s *XLSXSource) Describe() string {
	if s.Sheet == "" {
		return "xlsx:" + s.Path
	}
	return fmt.Sprintf("xlsx:%s#%s", s.Path, s.Sheet)
}

// Fingerprint returns the content hash of the workbook file.
func (s *XLSXSource) Fingerprint() (string, error) {
	return Fingerprint(s.Path)
}
