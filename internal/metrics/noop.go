package metrics

import (
	"context"
	"time"
)

// NoopCollector discards everything. Used when metrics are disabled.
type NoopCollector struct{}

func (NoopCollector) RecordRequest(ctx context.Context, status string, d time.Duration) {}
func (NoopCollector) RecordError(ctx context.Context, operation, errorType string) {}
func (NoopCollector) SetCatalogItems(ctx context.Context, n int) {}
func (NoopCollector) RecordIndexBuild(ctx context.Context, d time.Duration) {}

var (
	_ Collector = NoopCollector{}
	_ Collector = (*PrometheusCollector)(nil)
)
