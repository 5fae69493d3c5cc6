package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hyperjump/nextbest/internal/models"
)

// CSVSource reads a comma-separated file with a header row.
type CSVSource struct {
	Path string
}

// Products implements Source.
func (s *CSVSource) Products(ctx context.Context) ([]models.Product, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// Describe implements Source.
func (s *CSVSource) Describe() string {
	return "csv:" + s.Path
}

// Fingerprint returns the content hash of the file.
func (s *CSVSource) Fingerprint() (string, error) {
	return Fingerprint(s.Path)
}

// ReadCSV parses CSV data from r.
func ReadCSV(r io.Reader) ([]models.Product, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &models.DatasetError{Kind: models.DatasetEmpty, Err: fmt.Errorf("no header row")}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return parseTable(header, rows)
}
