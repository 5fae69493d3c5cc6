package models

// RatingSource selects which rating value is reported with a recommendation.
type RatingSource string

const (
	// RatingRaw reports the rating as loaded from the catalog.
	RatingRaw RatingSource = "raw"
	// RatingNormalized reports the min-max normalized rating in [0,1].
	RatingNormalized RatingSource = "normalized"
)

// Valid reports whether s is a known rating source.
func (s RatingSource) Valid() bool {
	return s == RatingRaw || s == RatingNormalized
}

// Recommendation is one ranked entry of a recommendation result.
type Recommendation struct {
	Rank        int     `json:"rank"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Rating      float64 `json:"rating"`
	Score       float64 `json:"score"`
}

// RecommendResponse is the response of the versioned recommendation API.
type RecommendResponse struct {
	ProductID    int64            `json:"product_id"`
	TopN         int              `json:"top_n"`
	RatingSource RatingSource     `json:"rating_source"`
	Results      []Recommendation `json:"results"`
	Total        int              `json:"total"`
	QueryTime    int64            `json:"query_time_us"`
}

// LegacyRecommendation is the wire shape of POST /recommend entries.
type LegacyRecommendation struct {
	ProductID   int64   `json:"Product ID"`
	ProductName string  `json:"Product Name"`
	Rating      float64 `json:"Avg. Rating"`
}

// ToLegacy converts ranked recommendations to the POST /recommend shape,
// preserving order. The result is never nil.
func ToLegacy(recs []Recommendation) []LegacyRecommendation {
	out := make([]LegacyRecommendation, len(recs))
	for i, r := range recs {
		out[i] = LegacyRecommendation{ProductID: r.ProductID, ProductName: r.ProductName, Rating: r.Rating}
	}
	return out
}
