package utils

import "testing"

func TestMinMax(t *testing.T) {
	tests := []struct {
		name   string
		in     []float64
		lo, hi float64
	}{
		{"empty", nil, 0, 0},
		{"single", []float64{3.5}, 3.5, 3.5},
		{"unsorted", []float64{4.5, 3.0, 4.0}, 3.0, 4.5},
		{"negative", []float64{-2, 7, 0}, -2, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := MinMax(tt.in)
			if lo != tt.lo || hi != tt.hi {
				t.Errorf("MinMax(%v) = %v, %v; want %v, %v", tt.in, lo, hi, tt.lo, tt.hi)
			}
		})
	}
}

func TestRound(t *testing.T) {
	if got := Round(0.66666, 3); got != 0.667 {
		t.Errorf("Round = %v, want 0.667", got)
	}
	if got := Round(2, 2); got != 2 {
		t.Errorf("Round = %v, want 2", got)
	}
}
