package model

import (
	"errors"
	"math"
	"testing"
)

// twoClassForest returns a minimal two-tree, two-class forest over a single
// feature: x <= 10 is class 0, otherwise class 1.
func twoClassForest() *Forest {
	tree := DecisionTree{Nodes: []TreeNode{
		{Feature: 0, Threshold: 10, Left: 1, Right: 2},
		{Feature: -1, Counts: []float64{9, 1}},
		{Feature: -1, Counts: []float64{2, 8}},
	}}
	return &Forest{NumFeatures: 1, NumClasses: 2, Trees: []DecisionTree{tree, tree}}
}

func TestForest_Proba_SumsToOne(t *testing.T) {
	f := twoClassForest()
	for _, x := range []float64{0, 5, 10, 10.1, 100} {
		proba, err := f.Proba([]float64{x})
		if err != nil {
			t.Fatalf("Proba(%v) error = %v", x, err)
		}
		sum := 0.0
		for _, p := range proba {
			if p < 0 || p > 1 {
				t.Errorf("Proba(%v) has out-of-range probability %v", x, p)
			}
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("Proba(%v) sums to %v, want 1", x, sum)
		}
	}
}

func TestForest_Predict(t *testing.T) {
	f := twoClassForest()
	tests := []struct {
		x    float64
		want int
	}{
		{0, 0},
		{10, 0}, // boundary goes left
		{10.5, 1},
		{1000, 1},
	}
	for _, tt := range tests {
		got, err := f.Predict([]float64{tt.x})
		if err != nil {
			t.Fatalf("Predict(%v) error = %v", tt.x, err)
		}
		if got != tt.want {
			t.Errorf("Predict(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestForest_Predict_Deterministic(t *testing.T) {
	f := twoClassForest()
	first, err := f.Proba([]float64{7})
	if err != nil {
		t.Fatalf("Proba() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := f.Proba([]float64{7})
		if err != nil {
			t.Fatalf("Proba() error = %v", err)
		}
		for c := range first {
			if again[c] != first[c] {
				t.Fatalf("Proba() not deterministic: %v then %v", first, again)
			}
		}
	}
}

func TestForest_Proba_DimensionMismatch(t *testing.T) {
	f := twoClassForest()
	if _, err := f.Proba([]float64{1, 2, 3}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Proba() with wrong dimension error = %v, want ErrDimensionMismatch", err)
	}
}

func TestForest_Proba_EmptyForest(t *testing.T) {
	f := &Forest{NumFeatures: 1, NumClasses: 2}
	if _, err := f.Proba([]float64{1}); !errors.Is(err, ErrEmptyForest) {
		t.Errorf("Proba() on empty forest error = %v, want ErrEmptyForest", err)
	}
}

func TestArgmax(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   int
	}{
		{"single", []float64{1}, 0},
		{"last wins", []float64{0.1, 0.2, 0.7}, 2},
		{"first wins", []float64{0.9, 0.05, 0.05}, 0},
		{"tie breaks low", []float64{0.5, 0.5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Argmax(tt.values); got != tt.want {
				t.Errorf("Argmax(%v) = %d, want %d", tt.values, got, tt.want)
			}
		})
	}
}

func TestLabelEncoder_InverseTransform(t *testing.T) {
	enc := &LabelEncoder{Classes: []string{"Good", "Moderate"}}

	label, err := enc.InverseTransform(1)
	if err != nil {
		t.Fatalf("InverseTransform(1) error = %v", err)
	}
	if label != "Moderate" {
		t.Errorf("InverseTransform(1) = %q, want Moderate", label)
	}

	for _, idx := range []int{-1, 2, 100} {
		if _, err := enc.InverseTransform(idx); err == nil {
			t.Errorf("InverseTransform(%d) expected error, got nil", idx)
		}
	}
}
