// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/nextbest/internal/models"
)

// DefaultTable is the products table name.
const DefaultTable = "products"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db    *sql.DB
	table string
}

// Option configures SQLiteStorage.
type Option func(*SQLiteStorage)

// WithTable sets the products table name. Empty keeps the default.
func WithTable(table string) Option {
	return func(s *SQLiteStorage) {
		if table != "" {
			s.table = table
		}
	}
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string, opts ...Option) (*SQLiteStorage, error) {
	s := &SQLiteStorage{table: DefaultTable}
	for _, opt := range opts {
		opt(s)
	}
	if !identifier.MatchString(s.table) {
		return nil, fmt.Errorf("invalid table name %q", s.table)
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	s.db = db
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// initSchema keeps the implicit rowid: it records insertion order, which
// is the catalog order.
func (s *SQLiteStorage) initSchema() error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		product_id INTEGER NOT NULL UNIQUE,
		product_name TEXT NOT NULL DEFAULT '',
		avg_rating REAL NOT NULL,
		co_purchase_count REAL NOT NULL,
		imported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`, s.table)
	_, err := s.db.Exec(schema)
	return err
}

// ReplaceProducts deletes all rows and inserts products in one transaction.
func (s *SQLiteStorage) ReplaceProducts(ctx context.Context, products []models.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, s.table)); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (product_id, product_name, avg_rating, co_purchase_count) VALUES (?, ?, ?, ?)`,
		s.table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Rating, p.CoPurchase); err != nil {
			return fmt.Errorf("insert product %d: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// ListProducts returns all products ordered by insertion.
func (s *SQLiteStorage) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT product_id, product_name, avg_rating, co_purchase_count FROM %s ORDER BY rowid`,
		s.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var name sql.NullString
		if err := rows.Scan(&p.ID, &name, &p.Rating, &p.CoPurchase); err != nil {
			return nil, err
		}
		p.Name = name.String
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountProducts returns the total number of products.
func (s *SQLiteStorage) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
