package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/hyperjump/nextbest/internal/models"
	"github.com/hyperjump/nextbest/internal/storage"
)

// SQLiteSource reads the products table of a SQLite database written by
// `nextbest import` (or any database with the same columns).
type SQLiteSource struct {
	Path  string
	Table string
}

// Products implements Source.
func (s *SQLiteSource) Products(ctx context.Context) ([]models.Product, error) {
	// Opening would create an empty database; a missing file is a load error.
	if _, err := os.Stat(s.Path); err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}
	store, err := storage.NewSQLiteStorage(s.Path, storage.WithTable(s.Table))
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.ListProducts(ctx)
}

// Describe implements Source.
func (s *SQLiteSource) Describe() string {
	return fmt.Sprintf("sqlite:%s#%s", s.Path, s.Table)
}
