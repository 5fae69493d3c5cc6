// Package cli renders recommendations and status for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/nextbest/internal/models"
	"github.com/hyperjump/nextbest/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one tab-separated line per recommendation.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates s. Empty means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case "":
		return OutputText, nil
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text, compact, or json)", s)
	}
}

const nameWidth = 48

// WriteRecommendations writes resp to w in the given format.
func WriteRecommendations(w io.Writer, resp *models.RecommendResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, resp)
	case OutputCompact:
		for _, r := range resp.Results {
			if _, err := fmt.Fprintf(w, "%d\t%d\t%s\t%g\t%.4f\n", r.Rank, r.ProductID, r.ProductName, r.Rating, r.Score); err != nil {
				return err
			}
		}
		return nil
	default:
		return writeRecommendationsText(w, resp)
	}
}

func writeRecommendationsText(w io.Writer, resp *models.RecommendResponse) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\nTop %d recommendations for product %d (%dµs, rating: %s)\n\n",
		resp.Total, resp.ProductID, resp.QueryTime, resp.RatingSource)
	if len(resp.Results) == 0 {
		b.WriteString("No other products to recommend.\n")
	}
	for _, r := range resp.Results {
		fmt.Fprintf(&b, "%3d. [%d] %-*s  rating %-6g score %.4f\n",
			r.Rank, r.ProductID, nameWidth, utils.Truncate(r.ProductName, nameWidth), r.Rating, r.Score)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Status is the service status as reported by GET /api/v1/status.
type Status struct {
	Mode            string  `json:"mode"`
	Items           int     `json:"items"`
	BuildID         string  `json:"build_id"`
	BuildDurationMs float64 `json:"build_duration_ms"`
	CatalogSource   string  `json:"catalog_source"`
	Fingerprint     string  `json:"fingerprint"`
	RatingSource    string  `json:"rating_source"`
}

// WriteStatus writes st to w. Compact is treated as text.
func WriteStatus(w io.Writer, st *Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	var b strings.Builder
	if st.Mode != "" {
		fmt.Fprintf(&b, "Mode:           %s\n", st.Mode)
	}
	fmt.Fprintf(&b, "Products:       %d\n", st.Items)
	fmt.Fprintf(&b, "Catalog:        %s\n", st.CatalogSource)
	if st.Fingerprint != "" {
		fmt.Fprintf(&b, "Fingerprint:    %s\n", st.Fingerprint)
	}
	fmt.Fprintf(&b, "Index build:    %s (%.2fms)\n", st.BuildID, st.BuildDurationMs)
	fmt.Fprintf(&b, "Rating source:  %s\n", st.RatingSource)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
