package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperjump/nextbest/internal/models"
)

// columnIndex maps required headers to their positions.
type columnIndex struct {
	id, name, rating, coPurchase int
}

func indexHeader(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	var idx columnIndex
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{ColumnID, &idx.id},
		{ColumnName, &idx.name},
		{ColumnRating, &idx.rating},
		{ColumnCoPurchase, &idx.coPurchase},
	} {
		i, ok := pos[c.name]
		if !ok {
			return idx, &models.DatasetError{Kind: models.DatasetMissingColumn, Column: c.name,
				Err: fmt.Errorf("header is %q", header)}
		}
		*c.dst = i
	}
	return idx, nil
}

// parseTable turns a header plus string rows into products. Rows whose cells
// are all blank are skipped; row numbers in errors count data rows from 1,
// blank ones included.
func parseTable(header []string, rows [][]string) ([]models.Product, error) {
	idx, err := indexHeader(header)
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(rows))
	for r, row := range rows {
		if blank(row) {
			continue
		}
		rowNum := r + 1
		p, err := parseRow(idx, row, rowNum)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func parseRow(idx columnIndex, row []string, rowNum int) (models.Product, error) {
	var p models.Product
	idCell := cell(row, idx.id)
	id, err := models.ParseProductID(idCell)
	if err != nil {
		return p, &models.DatasetError{Kind: models.DatasetMalformedValue, Row: rowNum, Column: ColumnID,
			Err: fmt.Errorf("%q is not an integer", idCell)}
	}
	p.ID = int64(id)
	p.Name = cell(row, idx.name)
	if p.Rating, err = parseFloat(row, idx.rating, rowNum, ColumnRating); err != nil {
		return p, err
	}
	if p.CoPurchase, err = parseFloat(row, idx.coPurchase, rowNum, ColumnCoPurchase); err != nil {
		return p, err
	}
	return p, nil
}

func parseFloat(row []string, i, rowNum int, column string) (float64, error) {
	s := cell(row, i)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, &models.DatasetError{Kind: models.DatasetMalformedValue, Row: rowNum, Column: column,
			Err: fmt.Errorf("%q is not a finite number", s)}
	}
	return v, nil
}

// cell returns the trimmed cell at i, or "" when the row is short.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
