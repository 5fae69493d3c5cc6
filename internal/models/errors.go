package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a product id is not in the catalog.
var ErrNotFound = errors.New("product not found")

// DatasetErrorKind classifies catalog load failures.
type DatasetErrorKind string

const (
	DatasetMissingColumn  DatasetErrorKind = "missing_column"
	DatasetEmpty          DatasetErrorKind = "empty"
	DatasetDuplicateID    DatasetErrorKind = "duplicate_id"
	DatasetMalformedValue DatasetErrorKind = "malformed_value"
	DatasetSource         DatasetErrorKind = "source"
)

// DatasetError is a fatal, startup-time catalog problem.
type DatasetError struct {
	Kind   DatasetErrorKind
	Row    int    // 1-based data row, 0 when not row specific
	Column string // column name, empty when not column specific
	Err    error
}

func (e *DatasetError) Error() string {
	msg := "dataset: " + string(e.Kind)
	if e.Column != "" {
		msg += fmt.Sprintf(" column %q", e.Column)
	}
	if e.Row > 0 {
		msg += fmt.Sprintf(" row %d", e.Row)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DatasetError) Unwrap() error {
	return e.Err
}

// InvalidRequestError is a per-request validation failure. It is produced
// before any catalog lookup happens.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Reason
	}
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// Error type labels used for metrics.
const (
	ErrTypeNotFound   = "not_found"
	ErrTypeValidation = "validation"
	ErrTypeDataset    = "dataset"
	ErrTypeUnknown    = "unknown"
)

// ClassifyError returns a short label for err, or "" for nil.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	var invalid *InvalidRequestError
	var dataset *DatasetError
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrTypeNotFound
	case errors.As(err, &invalid):
		return ErrTypeValidation
	case errors.As(err, &dataset):
		return ErrTypeDataset
	default:
		return ErrTypeUnknown
	}
}
