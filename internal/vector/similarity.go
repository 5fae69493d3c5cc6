// Package vector provides feature normalization, cosine similarity, and the
// dense pairwise similarity matrix.
package vector

import "math"

// InnerProduct returns the inner product of two vectors, or 0 when their
// lengths differ or they are empty.
func InnerProduct(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|), clamped to [-1,1].
// If either vector has zero norm the similarity is 0, including a zero
// vector compared with itself.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na, nb := L2Norm(a), L2Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp(InnerProduct(a, b) / (na * nb))
}

func clamp(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
