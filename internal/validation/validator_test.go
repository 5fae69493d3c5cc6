package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/nextbest/internal/models"
)

func intPtr(v int) *int { return &v }

func idPtr(v int64) *models.ProductID {
	id := models.ProductID(v)
	return &id
}

func TestStruct_RecommendRequest(t *testing.T) {
	tests := []struct {
		name   string
		req    models.RecommendRequest
		field  string
		reason string
	}{
		{name: "valid", req: models.RecommendRequest{ProductID: idPtr(1)}},
		{name: "valid with top_n", req: models.RecommendRequest{ProductID: idPtr(1), TopN: intPtr(3)}},
		{name: "zero top_n", req: models.RecommendRequest{ProductID: idPtr(1), TopN: intPtr(0)}},
		{name: "missing id", req: models.RecommendRequest{}, field: "product_id", reason: "is required"},
		{name: "negative top_n", req: models.RecommendRequest{ProductID: idPtr(1), TopN: intPtr(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&tt.req)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var invalid *models.InvalidRequestError
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, tt.field, invalid.Field)
			assert.Equal(t, tt.reason, invalid.Reason)
		})
	}
}

func TestStruct_SearchRequest(t *testing.T) {
	err := Struct(&models.SearchRequest{Query: "drill", Limit: 10})
	assert.NoError(t, err)

	err = Struct(&models.SearchRequest{Limit: 5000})
	var invalid *models.InvalidRequestError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "limit", invalid.Field)
	assert.Equal(t, "must be at most 1000", invalid.Reason)

	err = Struct(&models.SearchRequest{Limit: -1})
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "must be at least 0", invalid.Reason)
}

func TestGet_isShared(t *testing.T) {
	assert.Same(t, Get(), Get())
}
