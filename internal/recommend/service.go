package recommend

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/nextbest/internal/config"
	"github.com/hyperjump/nextbest/internal/metrics"
	"github.com/hyperjump/nextbest/internal/models"
	"github.com/hyperjump/nextbest/internal/validation"
	"github.com/hyperjump/nextbest/pkg/utils"
)

const operationRecommend = "recommend"

// Service answers recommendation requests against an Index. It applies the
// configured top_n defaults and records metrics.
type Service struct {
	index     *Index
	cfg       config.RecommendConfig
	collector metrics.Collector
	logger    *zap.Logger
}

// ServiceOption configures NewService.
type ServiceOption func(*Service)

// WithCollector sets the metrics collector.
func WithCollector(c metrics.Collector) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.collector = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = utils.OrNop(l)
	}
}

// NewService creates a service over index.
func NewService(index *Index, cfg config.RecommendConfig, opts ...ServiceOption) *Service {
	s := &Service{
		index:     index,
		cfg:       cfg,
		collector: metrics.NoopCollector{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.collector.SetCatalogItems(context.Background(), index.Size())
	s.collector.RecordIndexBuild(context.Background(), index.Stats().BuildDuration)
	return s
}

// Index returns the underlying index.
func (s *Service) Index() *Index {
	return s.index
}

// Recommend validates req and returns the ranked neighbours of its product.
// Invalid requests fail with *models.InvalidRequestError before any lookup;
// unknown products fail with models.ErrNotFound.
func (s *Service) Recommend(ctx context.Context, req *models.RecommendRequest) (*models.RecommendResponse, error) {
	start := time.Now()
	resp, err := s.recommend(req)
	elapsed := time.Since(start)

	status := metrics.StatusOK
	var invalid *models.InvalidRequestError
	switch {
	case err == nil:
		resp.QueryTime = elapsed.Microseconds()
	case errors.Is(err, models.ErrNotFound):
		status = metrics.StatusNotFound
		s.logger.Debug("product not found", zap.Error(err))
	case errors.As(err, &invalid):
		status = metrics.StatusInvalid
		s.logger.Warn("invalid recommend request", zap.Error(err))
	default:
		status = metrics.StatusError
		s.logger.Error("recommend failed", zap.Error(err))
	}
	s.collector.RecordRequest(ctx, status, elapsed)
	if err != nil {
		s.collector.RecordError(ctx, operationRecommend, models.ClassifyError(err))
	}
	return resp, err
}

func (s *Service) recommend(req *models.RecommendRequest) (*models.RecommendResponse, error) {
	if req == nil {
		return nil, &models.InvalidRequestError{Reason: "empty request body"}
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	topN := s.topN(req.TopN)
	id := int64(*req.ProductID)

	s.logger.Debug("recommend", zap.Int64("product_id", id), zap.Int("top_n", topN))
	recs, err := s.index.Recommend(id, topN)
	if err != nil {
		return nil, err
	}
	return &models.RecommendResponse{
		ProductID:    id,
		TopN:         topN,
		RatingSource: s.index.RatingSource(),
		Results:      recs,
		Total:        len(recs),
	}, nil
}

// topN resolves the requested count: absent means the configured default,
// negative means none, and a positive MaxTopN caps the rest.
func (s *Service) topN(requested *int) int {
	n := s.cfg.DefaultTopN
	if requested != nil {
		n = *requested
	}
	if n < 0 {
		n = 0
	}
	if s.cfg.MaxTopN > 0 && n > s.cfg.MaxTopN {
		n = s.cfg.MaxTopN
	}
	return n
}
