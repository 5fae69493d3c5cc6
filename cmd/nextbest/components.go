package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/nextbest/internal/catalog"
	"github.com/hyperjump/nextbest/internal/cli"
	"github.com/hyperjump/nextbest/internal/config"
	"github.com/hyperjump/nextbest/internal/keyword"
	"github.com/hyperjump/nextbest/internal/metrics"
	"github.com/hyperjump/nextbest/internal/models"
	"github.com/hyperjump/nextbest/internal/recommend"
	"github.com/hyperjump/nextbest/pkg/utils"
)

// Components holds initialized services.
type Components struct {
	Catalog *models.Catalog
	Index   *recommend.Index
	Service *recommend.Service
	Names   *keyword.BleveIndex
	// Metrics is nil when metrics are disabled.
	Metrics *metrics.PrometheusCollector
}

func (c *Components) Close() {
	if c.Names != nil {
		_ = c.Names.Close()
	}
}

// initializeComponents loads the catalog and builds everything that serves it.
// Any catalog problem is fatal for the caller: no index is ever served
// from a partially loaded dataset.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	src, err := catalog.NewSource(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("catalog source: %w", err)
	}
	cat, err := catalog.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", src.Describe(), err)
	}
	logger.Info("catalog loaded",
		zap.String("source", cat.Source),
		zap.String("fingerprint", cat.Fingerprint),
		zap.Int("items", cat.Len()))

	index, err := recommend.NewIndex(cat, recommend.WithRatingSource(models.RatingSource(cfg.Recommend.RatingSource)))
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	stats := index.Stats()
	logger.Info("index built",
		zap.String("build_id", stats.BuildID),
		zap.Duration("duration", stats.BuildDuration),
		zap.String("rating_source", string(stats.RatingSource)))

	var collector metrics.Collector = metrics.NoopCollector{}
	var prom *metrics.PrometheusCollector
	if cfg.Metrics.Enabled {
		prom = metrics.NewPrometheusCollector()
		collector = prom
	}
	service := recommend.NewService(index, cfg.Recommend,
		recommend.WithCollector(collector),
		recommend.WithLogger(logger))

	names, err := keyword.NewBleveIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize name index: %w", err)
	}
	if err := names.Add(ctx, cat.Products); err != nil {
		_ = names.Close()
		return nil, fmt.Errorf("index product names: %w", err)
	}

	return &Components{
		Catalog: cat,
		Index:   index,
		Service: service,
		Names:   names,
		Metrics: prom,
	}, nil
}

// localStatus reports the same fields as GET /api/v1/status.
func localStatus(c *Components) *cli.Status {
	stats := c.Index.Stats()
	return &cli.Status{
		Items:           stats.Items,
		BuildID:         stats.BuildID,
		BuildDurationMs: utils.Round(float64(stats.BuildDuration.Microseconds())/1000, 3),
		CatalogSource:   stats.Source,
		Fingerprint:     stats.Fingerprint,
		RatingSource:    string(stats.RatingSource),
	}
}
