package vector

import (
	"math"

	"github.com/hyperjump/nextbest/internal/models"
)

// Matrix is a dense, symmetric n×n similarity matrix stored row-major.
// It is never modified after BuildMatrix returns, so concurrent reads need
// no locking.
type Matrix struct {
	n    int
	data []float64
}

// BuildMatrix computes the cosine similarity of every pair of feature
// vectors. Only the upper triangle is computed; the lower one is mirrored,
// so At(i,j) == At(j,i) exactly.
func BuildMatrix(features []models.Features) *Matrix {
	n := len(features)
	m := &Matrix{n: n, data: make([]float64, n*n)}

	// Inverse norms once per row; zero marks a zero vector.
	inv := make([]float64, n)
	for i, f := range features {
		if norm := math.Hypot(f.Rating, f.CoPurchase); norm > 0 {
			inv[i] = 1 / norm
		}
	}

	for i := 0; i < n; i++ {
		if inv[i] == 0 {
			continue // whole row and column stay 0
		}
		m.data[i*n+i] = 1
		for j := i + 1; j < n; j++ {
			if inv[j] == 0 {
				continue
			}
			dot := features[i].Rating*features[j].Rating + features[i].CoPurchase*features[j].CoPurchase
			s := clamp(dot * inv[i] * inv[j])
			m.data[i*n+j] = s
			m.data[j*n+i] = s
		}
	}
	return m
}

// Size returns n.
func (m *Matrix) Size() int {
	return m.n
}

// At returns the similarity between positions i and j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	row := make([]float64, m.n)
	copy(row, m.data[i*m.n:(i+1)*m.n])
	return row
}
