package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/nextbest/internal/config"
	"github.com/hyperjump/nextbest/internal/keyword"
	"github.com/hyperjump/nextbest/internal/models"
	"github.com/hyperjump/nextbest/internal/validation"
	"github.com/hyperjump/nextbest/pkg/utils"
)

const (
	maxBodyBytes = 1 << 20

	msgProductNotFound = "Product ID not found"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Title:         "Product Recommendation System",
		Items:         s.service.Index().Size(),
		RecommendPath: "/recommend",
	}
	if s.config.Server.Mode == config.ModeHosted {
		data.PublicURL = s.config.Server.PublicURL
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("render page failed", zap.Error(err))
	}
}

// handleRecommend serves the legacy POST /recommend contract: a bare JSON
// array of {"Product ID","Product Name","Avg. Rating"} objects.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req, err := models.DecodeRecommendRequest(body)
	if err != nil {
		s.logger.Debug("recommend request rejected", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.service.Recommend(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.ToLegacy(resp.Results))
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req := &models.RecommendRequest{ProductID: &id}
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request: top_n must be an integer")
			return
		}
		req.TopN = &n
	}
	resp, err := s.service.Recommend(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := s.service.Index().Product(int64(id))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, product)
}

type productList struct {
	Query    string           `json:"query,omitempty"`
	Products []models.Product `json:"products"`
	Total    int              `json:"total"`
}

// handleListProducts lists products in catalog order, or searches names when q is set.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.SearchRequest{Query: q.Get("q"), Limit: keyword.DefaultLimit}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request: limit must be an integer")
			return
		}
		req.Limit = n
	}
	if err := validation.Struct(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Limit == 0 {
		req.Limit = keyword.DefaultLimit
	}

	index := s.service.Index()
	out := productList{Query: req.Query, Products: []models.Product{}}
	if req.Query == "" {
		all := index.Products()
		if len(all) > req.Limit {
			all = all[:req.Limit]
		}
		out.Products = all
		out.Total = len(all)
		s.respondJSON(w, http.StatusOK, out)
		return
	}

	if s.names == nil {
		s.respondError(w, http.StatusNotImplemented, "search not enabled")
		return
	}
	hits, err := s.names.Search(r.Context(), req.Query, req.Limit, &keyword.SearchOptions{FuzzyEnabled: true})
	if err != nil {
		s.logger.Error("product search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, hit := range hits {
		p, err := index.Product(hit.ProductID)
		if err != nil {
			continue
		}
		out.Products = append(out.Products, p.Product)
	}
	out.Total = len(out.Products)
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.service.Index().Stats()
	resp := map[string]interface{}{
		"status":            "ok",
		"mode":              s.config.Server.Mode,
		"items":             stats.Items,
		"build_id":          stats.BuildID,
		"built_at":          stats.BuiltAt,
		"build_duration_ms": utils.Round(float64(stats.BuildDuration.Microseconds())/1000, 3),
		"catalog_source":    stats.Source,
		"fingerprint":       stats.Fingerprint,
		"rating_source":     stats.RatingSource,
		"config": map[string]interface{}{
			"default_top_n":   s.config.Recommend.DefaultTopN,
			"max_top_n":       s.config.Recommend.MaxTopN,
			"metrics_enabled": s.config.Metrics.Enabled && s.metrics != nil,
			"search_enabled":  s.names != nil,
		},
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondServiceError maps recommendation errors to status codes.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	var invalid *models.InvalidRequestError
	switch {
	case errors.Is(err, models.ErrNotFound):
		s.respondError(w, http.StatusNotFound, msgProductNotFound)
	case errors.As(err, &invalid):
		s.respondError(w, http.StatusBadRequest, invalid.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
