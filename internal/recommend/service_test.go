package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/nextbest/internal/config"
	"github.com/hyperjump/nextbest/internal/models"
)

type recordingCollector struct {
	mu       sync.Mutex
	statuses []string
	errs     []string
	items    int
	built    bool
}

func (c *recordingCollector) RecordRequest(ctx context.Context, status string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = append(c.statuses, status)
}

func (c *recordingCollector) RecordError(ctx context.Context, operation, errorType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, operation+"/"+errorType)
}

func (c *recordingCollector) SetCatalogItems(ctx context.Context, n int) {
	c.items = n
}

func (c *recordingCollector) RecordIndexBuild(ctx context.Context, d time.Duration) {
	c.built = true
}

func newTestService(t *testing.T, cfg config.RecommendConfig) (*Service, *recordingCollector) {
	t.Helper()
	x, err := NewIndex(scenarioCatalog())
	require.NoError(t, err)
	c := &recordingCollector{}
	return NewService(x, cfg, WithCollector(c), WithLogger(nil)), c
}

func request(id int64, topN *int) *models.RecommendRequest {
	pid := models.ProductID(id)
	return &models.RecommendRequest{ProductID: &pid, TopN: topN}
}

func intPtr(v int) *int { return &v }

func TestService_Recommend(t *testing.T) {
	svc, c := newTestService(t, config.RecommendConfig{DefaultTopN: 5, MaxTopN: 100})
	assert.Equal(t, 3, c.items)
	assert.True(t, c.built)

	resp, err := svc.Recommend(context.Background(), request(1, intPtr(2)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ProductID)
	assert.Equal(t, 2, resp.TopN)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, []int64{2, 3}, ids(resp.Results))
	assert.Equal(t, models.RatingRaw, resp.RatingSource)
	assert.Equal(t, []string{"ok"}, c.statuses)
	assert.Empty(t, c.errs)
}

func TestService_topNDefaults(t *testing.T) {
	svc, _ := newTestService(t, config.RecommendConfig{DefaultTopN: 1, MaxTopN: 2})

	resp, err := svc.Recommend(context.Background(), request(1, nil))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TopN)
	assert.Len(t, resp.Results, 1)

	resp, err = svc.Recommend(context.Background(), request(1, intPtr(50)))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TopN)

	resp, err = svc.Recommend(context.Background(), request(1, intPtr(0)))
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.NotNil(t, resp.Results)
}

func TestService_errors(t *testing.T) {
	svc, c := newTestService(t, config.RecommendConfig{DefaultTopN: 5, MaxTopN: 100})
	ctx := context.Background()

	_, err := svc.Recommend(ctx, request(99, nil))
	assert.True(t, errors.Is(err, models.ErrNotFound))

	var invalid *models.InvalidRequestError
	_, err = svc.Recommend(ctx, &models.RecommendRequest{})
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "product_id", invalid.Field)

	// Unknown ids are reported before top_n is considered.
	_, err = svc.Recommend(ctx, request(99, intPtr(-1)))
	assert.True(t, errors.Is(err, models.ErrNotFound))

	_, err = svc.Recommend(ctx, nil)
	require.True(t, errors.As(err, &invalid))

	assert.Equal(t, []string{"not_found", "invalid", "not_found", "invalid"}, c.statuses)
	assert.Equal(t, "recommend/not_found", c.errs[0])
	assert.Equal(t, "recommend/validation", c.errs[1])
}

func TestService_negativeTopN(t *testing.T) {
	svc, c := newTestService(t, config.RecommendConfig{DefaultTopN: 5})

	for _, n := range []int{-1, -100} {
		resp, err := svc.Recommend(context.Background(), request(1, intPtr(n)))
		require.NoError(t, err, "top_n=%d", n)
		assert.Equal(t, 0, resp.TopN)
		assert.NotNil(t, resp.Results)
		assert.Empty(t, resp.Results)
	}
	assert.Equal(t, []string{"ok", "ok"}, c.statuses)
}

func TestService_unlimitedTopN(t *testing.T) {
	cat := &models.Catalog{}
	for i := 1; i <= 250; i++ {
		cat.Products = append(cat.Products, models.Product{
			ID:         int64(i),
			Name:       fmt.Sprintf("Item %d", i),
			Rating:     float64(i%5 + 1),
			CoPurchase: float64(i % 17),
		})
	}
	x, err := NewIndex(cat)
	require.NoError(t, err)
	svc := NewService(x, config.RecommendConfig{DefaultTopN: 5})

	resp, err := svc.Recommend(context.Background(), request(1, intPtr(150)))
	require.NoError(t, err)
	assert.Len(t, resp.Results, 150)

	resp, err = svc.Recommend(context.Background(), request(1, intPtr(1000)))
	require.NoError(t, err)
	assert.Len(t, resp.Results, 249)

	capped := NewService(x, config.RecommendConfig{DefaultTopN: 5, MaxTopN: 100})
	resp, err = capped.Recommend(context.Background(), request(1, intPtr(150)))
	require.NoError(t, err)
	assert.Len(t, resp.Results, 100)
}
