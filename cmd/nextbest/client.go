package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/nextbest/internal/cli"
	"github.com/hyperjump/nextbest/internal/models"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// recommendViaHTTP calls GET /api/v1/recommendations/{id} on a running server.
// A 404 is reported as models.ErrNotFound.
func recommendViaHTTP(serverURL string, id int64, topN *int) (*models.RecommendResponse, error) {
	u := strings.TrimRight(serverURL, "/") + "/api/v1/recommendations/" + strconv.FormatInt(id, 10)
	if topN != nil {
		u += "?" + url.Values{"top_n": {strconv.Itoa(*topN)}}.Encode()
	}
	var out models.RecommendResponse
	if err := getJSON(u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func statusViaHTTP(serverURL string) (*cli.Status, error) {
	var out cli.Status
	if err := getJSON(strings.TrimRight(serverURL, "/")+"/api/v1/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func getJSON(u string, v interface{}) error {
	resp, err := httpClient.Get(u)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return models.ErrNotFound
	default:
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
