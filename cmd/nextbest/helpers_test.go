package main

import (
	"go.uber.org/zap"

	"github.com/hyperjump/nextbest/internal/models"
)

func nopLogger() *zap.Logger {
	return zap.NewNop()
}

func recommendRequest(id int64, topN int) *models.RecommendRequest {
	pid := models.ProductID(id)
	return &models.RecommendRequest{ProductID: &pid, TopN: &topN}
}
