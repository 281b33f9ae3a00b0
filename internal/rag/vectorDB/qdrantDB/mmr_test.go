package qdrantDB

import (
	"math"
	"slices"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("cosineSimilarity got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestMaximalMarginalRelevance_PicksMostRelevantFirst(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{0, 1},          // orthogonal
		{1, 0},          // exact match
		{0.9, 0.1},      // close
	}

	selected := maximalMarginalRelevance(query, candidates, 0.7, 1)
	if len(selected) != 1 || selected[0] != 1 {
		t.Errorf("Selected got %v, want [1]", selected)
	}
}

func TestMaximalMarginalRelevance_PenalizesRedundancy(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{0.9, 0.1},   // best match
		{0.89, 0.12}, // near-duplicate of the best match
		{0.3, 0.9},   // less relevant but diverse
	}

	selected := maximalMarginalRelevance(query, candidates, 0.3, 2)
	if len(selected) != 2 {
		t.Fatalf("Selected %d candidates, want 2", len(selected))
	}
	if selected[0] != 0 {
		t.Errorf("First pick got %d, want 0", selected[0])
	}
	// diversity weighting pushes the near-duplicate out
	if selected[1] != 2 {
		t.Errorf("Second pick got %d, want the diverse candidate 2", selected[1])
	}
}

func TestMaximalMarginalRelevance_PureRelevance(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{1, 0},
		{0.99, 0.1},
		{0, 1},
	}

	// lambda=1 ignores redundancy entirely
	selected := maximalMarginalRelevance(query, candidates, 1, 2)
	if !slices.Equal(selected, []int{0, 1}) {
		t.Errorf("Selected got %v, want [0 1]", selected)
	}
}

func TestMaximalMarginalRelevance_KLargerThanCandidates(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{{1, 0}, {0, 1}}

	selected := maximalMarginalRelevance(query, candidates, 0.7, 10)
	if len(selected) != 2 {
		t.Errorf("Selected %d, want all 2 candidates", len(selected))
	}
}

func TestMaximalMarginalRelevance_NoCandidates(t *testing.T) {
	if got := maximalMarginalRelevance([]float32{1}, nil, 0.7, 3); len(got) != 0 {
		t.Errorf("Expected empty selection, got %v", got)
	}
}
