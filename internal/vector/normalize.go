package vector

import (
	"math"

	"github.com/hyperjump/nextbest/internal/models"
	"github.com/hyperjump/nextbest/pkg/utils"
)

// ColumnRange is the observed minimum and maximum of one raw feature column.
type ColumnRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Degenerate reports whether the column is constant.
func (r ColumnRange) Degenerate() bool {
	return r.Max <= r.Min
}

// Scale min-max scales v into [0,1]. A constant column scales to 0.
func (r ColumnRange) Scale(v float64) float64 {
	if r.Degenerate() {
		return 0
	}
	span := r.Max - r.Min
	if math.IsInf(span, 0) {
		// Max-Min overflows for ranges wider than MaxFloat64; halve both sides.
		return clamp01((v/2 - r.Min/2) / (r.Max/2 - r.Min/2))
	}
	return clamp01((v - r.Min) / span)
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// Ranges holds the per-column ranges used by Normalize.
type Ranges struct {
	Rating     ColumnRange `json:"rating"`
	CoPurchase ColumnRange `json:"co_purchase"`
}

// ComputeRanges returns the min/max of each raw feature column across products.
func ComputeRanges(products []models.Product) Ranges {
	ratings := make([]float64, len(products))
	copurchases := make([]float64, len(products))
	for i, p := range products {
		ratings[i] = p.Rating
		copurchases[i] = p.CoPurchase
	}
	var r Ranges
	r.Rating.Min, r.Rating.Max = utils.MinMax(ratings)
	r.CoPurchase.Min, r.CoPurchase.Max = utils.MinMax(copurchases)
	return r
}

// Normalize min-max scales the rating and co-purchase columns independently
// and returns one Features per product, in catalog order. Products are not
// modified.
func Normalize(products []models.Product) ([]models.Features, Ranges) {
	r := ComputeRanges(products)
	out := make([]models.Features, len(products))
	for i, p := range products {
		out[i] = models.Features{
			Rating:     r.Rating.Scale(p.Rating),
			CoPurchase: r.CoPurchase.Scale(p.CoPurchase),
		}
	}
	return out, r
}
