// Package recommend builds the immutable recommendation index and serves
// top-N "similar products" queries from it.
package recommend

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hyperjump/nextbest/internal/catalog"
	"github.com/hyperjump/nextbest/internal/models"
	"github.com/hyperjump/nextbest/internal/vector"
)

// Index holds a catalog together with its normalized features and the full
// pairwise similarity matrix. It is never mutated after NewIndex returns, so
// any number of goroutines may query it without locking.
type Index struct {
	products     []models.Product
	features     []models.Features
	matrix       *vector.Matrix
	positions    map[int64]int
	ranges       vector.Ranges
	ratingSource models.RatingSource

	buildID       string
	builtAt       time.Time
	buildDuration time.Duration
	source        string
	fingerprint   string
}

// Stats describes a built index.
type Stats struct {
	BuildID         string              `json:"build_id"`
	Items           int                 `json:"items"`
	BuiltAt         time.Time           `json:"built_at"`
	BuildDuration   time.Duration       `json:"build_duration_ns"`
	Source          string              `json:"source,omitempty"`
	Fingerprint     string              `json:"fingerprint,omitempty"`
	RatingSource    models.RatingSource `json:"rating_source"`
	RatingRange     vector.ColumnRange  `json:"rating_range"`
	CoPurchaseRange vector.ColumnRange  `json:"co_purchase_range"`
}

// Option configures NewIndex.
type Option func(*Index)

// WithRatingSource selects which rating is reported in recommendations.
func WithRatingSource(src models.RatingSource) Option {
	return func(x *Index) {
		if src.Valid() {
			x.ratingSource = src
		}
	}
}

// NewIndex validates cat and builds the index. The catalog's product slice is
// copied; later changes to cat do not affect the index.
func NewIndex(cat *models.Catalog, opts ...Option) (*Index, error) {
	if cat == nil {
		return nil, &models.DatasetError{Kind: models.DatasetEmpty, Err: fmt.Errorf("no catalog")}
	}
	if err := catalog.Validate(cat.Products); err != nil {
		return nil, err
	}
	start := time.Now()

	x := &Index{
		products:     append([]models.Product(nil), cat.Products...),
		ratingSource: models.RatingRaw,
		source:       cat.Source,
		fingerprint:  cat.Fingerprint,
		buildID:      uuid.NewString(),
	}
	for _, opt := range opts {
		opt(x)
	}

	x.features, x.ranges = vector.Normalize(x.products)
	x.matrix = vector.BuildMatrix(x.features)
	x.positions = make(map[int64]int, len(x.products))
	for i, p := range x.products {
		x.positions[p.ID] = i
	}

	x.builtAt = time.Now()
	x.buildDuration = x.builtAt.Sub(start)
	return x, nil
}

// Recommend returns up to topN products most similar to id, best first.
// The query product itself is never included. Equal scores keep catalog
// order. topN <= 0 yields an empty result; a topN larger than the catalog
// is clamped to n-1.
func (x *Index) Recommend(id int64, topN int) ([]models.Recommendation, error) {
	i, ok := x.positions[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	if topN <= 0 {
		return []models.Recommendation{}, nil
	}

	candidates := make([]int, 0, len(x.products)-1)
	for j := range x.products {
		if j != i {
			candidates = append(candidates, j)
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return x.matrix.At(i, candidates[a]) > x.matrix.At(i, candidates[b])
	})
	if topN > len(candidates) {
		topN = len(candidates)
	}

	recs := make([]models.Recommendation, topN)
	for rank, j := range candidates[:topN] {
		p := x.products[j]
		recs[rank] = models.Recommendation{
			Rank:        rank + 1,
			ProductID:   p.ID,
			ProductName: p.Name,
			Rating:      x.rating(j),
			Score:       x.matrix.At(i, j),
		}
	}
	return recs, nil
}

func (x *Index) rating(j int) float64 {
	if x.ratingSource == models.RatingNormalized {
		return x.features[j].Rating
	}
	return x.products[j].Rating
}

// Similarity returns the score between two products.
func (x *Index) Similarity(a, b int64) (float64, error) {
	i, ok := x.positions[a]
	if !ok {
		return 0, fmt.Errorf("product %d: %w", a, models.ErrNotFound)
	}
	j, ok := x.positions[b]
	if !ok {
		return 0, fmt.Errorf("product %d: %w", b, models.ErrNotFound)
	}
	return x.matrix.At(i, j), nil
}

// Product returns one product with its normalized features.
func (x *Index) Product(id int64) (models.ProductDetail, error) {
	i, ok := x.positions[id]
	if !ok {
		return models.ProductDetail{}, fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	return models.ProductDetail{Product: x.products[i], Normalized: x.features[i], Position: i}, nil
}

// Products returns a copy of the catalog in insertion order.
func (x *Index) Products() []models.Product {
	return append([]models.Product(nil), x.products...)
}

// Size returns the number of products.
func (x *Index) Size() int {
	return len(x.products)
}

// RatingSource returns the rating reported in recommendations.
func (x *Index) RatingSource() models.RatingSource {
	return x.ratingSource
}

// Stats returns build information.
func (x *Index) Stats() Stats {
	return Stats{
		BuildID:         x.buildID,
		Items:           len(x.products),
		BuiltAt:         x.builtAt,
		BuildDuration:   x.buildDuration,
		Source:          x.source,
		Fingerprint:     x.fingerprint,
		RatingSource:    x.ratingSource,
		RatingRange:     x.ranges.Rating,
		CoPurchaseRange: x.ranges.CoPurchase,
	}
}
