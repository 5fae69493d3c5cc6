// Package integration provides end-to-end tests (real catalog files, SQLite, and HTTP).
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/nextbest/internal/catalog"
	"github.com/hyperjump/nextbest/internal/config"
	"github.com/hyperjump/nextbest/internal/keyword"
	"github.com/hyperjump/nextbest/internal/metrics"
	"github.com/hyperjump/nextbest/internal/models"
	"github.com/hyperjump/nextbest/internal/recommend"
	"github.com/hyperjump/nextbest/internal/server"
	"github.com/hyperjump/nextbest/internal/storage"
)

const productsCSV = `Product ID,Product Name,Avg. Rating,Co-Purchase Count
101,Cordless Drill,4.5,100
102,Impact Driver,4.0,80
103,Laser Level,3.0,10
104,Angle Grinder,4.2,95
105,Jigsaw,3.8,40
`

func startServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	src, err := catalog.NewSource(cfg.Catalog)
	if err != nil {
		t.Fatal(err)
	}
	cat, err := catalog.Load(ctx, src)
	if err != nil {
		t.Fatal(err)
	}
	idx, err := recommend.NewIndex(cat, recommend.WithRatingSource(models.RatingSource(cfg.Recommend.RatingSource)))
	if err != nil {
		t.Fatal(err)
	}
	collector := metrics.NewPrometheusCollector()
	svc := recommend.NewService(idx, cfg.Recommend, recommend.WithCollector(collector))
	names, err := keyword.NewBleveIndex()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = names.Close() })
	if err := names.Add(ctx, cat.Products); err != nil {
		t.Fatal(err)
	}
	srv := server.NewServer(svc, cfg, nil, server.WithNameIndex(names), server.WithMetricsHandler(collector.Handler()))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postRecommend(t *testing.T, url string, body string) (int, []models.LegacyRecommendation) {
	t.Helper()
	resp, err := http.Post(url+"/recommend", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	var out []models.LegacyRecommendation
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, out
}

func TestIntegration_CSVToHTTP(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "products.csv")
	if err := os.WriteFile(csvPath, []byte(productsCSV), 0600); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Catalog.Path = csvPath
	ts := startServer(t, cfg)

	status, recs := postRecommend(t, ts.URL, `{"product_id": "101"}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(recs) != 4 {
		t.Fatalf("expected 4 recommendations (default top_n 5 clamped), got %d", len(recs))
	}
	for _, r := range recs {
		if r.ProductID == 101 {
			t.Error("query product must not be recommended")
		}
	}
	if recs[len(recs)-1].ProductID != 103 {
		t.Errorf("zero-vector product should rank last, got %+v", recs)
	}

	status, _ = postRecommend(t, ts.URL, `{"product_id": 999}`)
	if status != http.StatusNotFound {
		t.Errorf("unknown product status = %d, want 404", status)
	}
	status, _ = postRecommend(t, ts.URL, `{"product_id": "abc"}`)
	if status != http.StatusBadRequest {
		t.Errorf("invalid product status = %d, want 400", status)
	}
}

func TestIntegration_ImportedSQLiteMatchesCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "products.csv")
	if err := os.WriteFile(csvPath, []byte(productsCSV), 0600); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	cat, err := catalog.Load(ctx, &catalog.CSVSource{Path: csvPath})
	if err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(dir, "catalog.db")
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.ReplaceProducts(ctx, cat.Products); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	csvCfg := config.Default()
	csvCfg.Catalog.Path = csvPath
	dbCfg := config.Default()
	dbCfg.Catalog.Path = dbPath

	fromCSV := startServer(t, csvCfg)
	fromDB := startServer(t, dbCfg)
	for _, id := range []string{"101", "102", "103", "104", "105"} {
		_, a := postRecommend(t, fromCSV.URL, `{"product_id": `+id+`}`)
		_, b := postRecommend(t, fromDB.URL, `{"product_id": `+id+`}`)
		if len(a) != len(b) {
			t.Fatalf("product %s: %d vs %d results", id, len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("product %s rank %d: csv %+v, sqlite %+v", id, i+1, a[i], b[i])
			}
		}
	}
}

func TestIntegration_XLSXCatalog(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Product ID", "Product Name", "Avg. Rating", "Co-Purchase Count"},
		{1, "Drill", 4.5, 100},
		{2, "Driver", 4.0, 80},
		{3, "Level", 3.0, 10},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "products.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	cfg := config.Default()
	cfg.Catalog.Path = path
	ts := startServer(t, cfg)
	status, recs := postRecommend(t, ts.URL, `{"product_id": 3, "top_n": 2}`)
	if status != http.StatusOK || len(recs) != 2 || recs[0].ProductID != 1 || recs[1].ProductID != 2 {
		t.Errorf("status %d recs %+v, want [1 2]", status, recs)
	}
}

func TestIntegration_NormalizedRatings(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "products.csv")
	if err := os.WriteFile(csvPath, []byte(productsCSV), 0600); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Catalog.Path = csvPath
	cfg.Recommend.RatingSource = string(models.RatingNormalized)
	ts := startServer(t, cfg)

	_, recs := postRecommend(t, ts.URL, `{"product_id": 103}`)
	for _, r := range recs {
		if r.Rating < 0 || r.Rating > 1 {
			t.Errorf("normalized rating out of range: %+v", r)
		}
	}
}
