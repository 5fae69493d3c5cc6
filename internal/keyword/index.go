// Package keyword provides product name search.
package keyword

import (
	"context"

	"github.com/hyperjump/nextbest/internal/models"
)

// SearchOptions optional parameters for name search. Nil means use defaults.
type SearchOptions struct {
	// FuzzyEnabled retries with fuzzy term matching when the plain match finds nothing.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2). Default 1.
	Fuzziness int
}

// NameIndex defines product name search operations.
type NameIndex interface {
	Add(ctx context.Context, products []models.Product) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Result, error)
	DocCount() (uint64, error)
	Close() error
}

// Result is a single name search hit.
type Result struct {
	ProductID int64
	Score     float64
}
