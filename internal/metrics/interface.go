// Package metrics records recommender activity. The Prometheus collector owns
// its own registry so tests and embedded servers never collide on the global one.
package metrics

import (
	"context"
	"time"
)

// Collector is implemented by the Prometheus collector and the no-op collector.
type Collector interface {
	RecordRequest(ctx context.Context, status string, d time.Duration)
	RecordError(ctx context.Context, operation, errorType string)
	SetCatalogItems(ctx context.Context, n int)
	RecordIndexBuild(ctx context.Context, d time.Duration)
}

// Request status labels.
const (
	StatusOK       = "ok"
	StatusNotFound = "not_found"
	StatusInvalid  = "invalid"
	StatusError    = "error"
)
