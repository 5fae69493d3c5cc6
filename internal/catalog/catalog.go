// Package catalog loads and validates the product table the recommender is
// built from. Sources are CSV, XLSX, and SQLite; every source yields products
// in source order, which becomes the catalog insertion order.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/hyperjump/nextbest/internal/config"
	"github.com/hyperjump/nextbest/internal/models"
)

// Required column headers.
const (
	ColumnID         = "Product ID"
	ColumnName       = "Product Name"
	ColumnRating     = "Avg. Rating"
	ColumnCoPurchase = "Co-Purchase Count"
)

// Source produces raw products in source order.
type Source interface {
	Products(ctx context.Context) ([]models.Product, error)
	// Describe returns a human-readable location for logs and status.
	Describe() string
}

// NewSource picks a source for cfg. An explicit format wins; otherwise the
// file extension decides.
func NewSource(cfg config.CatalogConfig) (Source, error) {
	format := strings.ToLower(cfg.Format)
	if format == "" {
		switch strings.ToLower(filepath.Ext(cfg.Path)) {
		case ".csv", ".txt":
			format = "csv"
		case ".xlsx":
			format = "xlsx"
		case ".db", ".sqlite", ".sqlite3":
			format = "sqlite"
		default:
			return nil, fmt.Errorf("cannot infer catalog format from %q (set catalog.format)", cfg.Path)
		}
	}
	switch format {
	case "csv":
		return &CSVSource{Path: cfg.Path}, nil
	case "xlsx":
		return &XLSXSource{Path: cfg.Path, Sheet: cfg.Sheet}, nil
	case "sqlite":
		return &SQLiteSource{Path: cfg.Path, Table: cfg.Table}, nil
	default:
		return nil, fmt.Errorf("unknown catalog format: %s (supported: csv, xlsx, sqlite)", format)
	}
}

// Load reads src and validates the result: at least one product, unique ids,
// finite feature values. Any failure is a *models.DatasetError.
func Load(ctx context.Context, src Source) (*models.Catalog, error) {
	products, err := src.Products(ctx)
	if err != nil {
		return nil, asDatasetError(err)
	}
	if err := Validate(products); err != nil {
		return nil, err
	}
	cat := &models.Catalog{Products: products, Source: src.Describe()}
	if fp, ok := src.(interface{ Fingerprint() (string, error) }); ok {
		if sum, err := fp.Fingerprint(); err == nil {
			cat.Fingerprint = sum
		}
	}
	return cat, nil
}

// Validate checks catalog invariants on already parsed products.
func Validate(products []models.Product) error {
	if len(products) == 0 {
		return &models.DatasetError{Kind: models.DatasetEmpty, Err: fmt.Errorf("catalog has no products")}
	}
	seen := make(map[int64]int, len(products))
	for i, p := range products {
		if first, dup := seen[p.ID]; dup {
			return &models.DatasetError{
				Kind:   models.DatasetDuplicateID,
				Row:    i + 1,
				Column: ColumnID,
				Err:    fmt.Errorf("product id %d already used by row %d", p.ID, first),
			}
		}
		seen[p.ID] = i + 1
		if !finite(p.Rating) {
			return &models.DatasetError{Kind: models.DatasetMalformedValue, Row: i + 1, Column: ColumnRating,
				Err: fmt.Errorf("non-finite value %v", p.Rating)}
		}
		if !finite(p.CoPurchase) {
			return &models.DatasetError{Kind: models.DatasetMalformedValue, Row: i + 1, Column: ColumnCoPurchase,
				Err: fmt.Errorf("non-finite value %v", p.CoPurchase)}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// asDatasetError keeps typed dataset errors and wraps anything else (I/O,
// driver errors) as a source error.
func asDatasetError(err error) error {
	var dataset *models.DatasetError
	if errors.As(err, &dataset) {
		return err
	}
	return &models.DatasetError{Kind: models.DatasetSource, Err: err}
}
