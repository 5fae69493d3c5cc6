// Package storage defines the persistence interface for product catalogs.
package storage

import (
	"context"

	"github.com/hyperjump/nextbest/internal/models"
)

// Storage persists a product catalog. It holds raw catalog rows only;
// normalized features and similarities are always rebuilt in memory.
type Storage interface {
	// ReplaceProducts swaps the stored catalog for products, keeping their order.
	ReplaceProducts(ctx context.Context, products []models.Product) error
	// ListProducts returns all products in insertion order.
	ListProducts(ctx context.Context) ([]models.Product, error)
	CountProducts(ctx context.Context) (int64, error)

	Close() error
}
