package model

import (
	"errors"
	"fmt"
)

// ErrEmptyForest is returned when a forest has no trees.
var ErrEmptyForest = errors.New("forest has no trees")

// ErrDimensionMismatch is returned when an input vector's length does not
// match the number of features the forest was trained on.
var ErrDimensionMismatch = errors.New("feature vector dimension mismatch")

// TreeNode is one node of a serialized decision tree. Internal nodes split
// on Feature at Threshold (<= goes left); leaves carry Feature == -1 and
// per-class training sample counts.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Counts    []float64 `json:"counts,omitempty"`
}

// DecisionTree is a flat node array; node 0 is the root.
type DecisionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Forest is a trained random-forest classifier deserialized from the JSON
// artifact. Immutable after load; safe for concurrent readers.
type Forest struct {
	NumFeatures int            `json:"num_features"`
	NumClasses  int            `json:"num_classes"`
	Trees       []DecisionTree `json:"trees"`
}

// proba walks the tree for x and returns the normalized class distribution
// of the reached leaf.
func (t *DecisionTree) proba(x []float64, numClasses int) ([]float64, error) {
	idx := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		if idx < 0 || idx >= len(t.Nodes) {
			return nil, fmt.Errorf("tree traversal out of bounds at node %d", idx)
		}
		node := t.Nodes[idx]
		if node.Feature < 0 {
			if len(node.Counts) != numClasses {
				return nil, fmt.Errorf("leaf node %d has %d class counts, want %d", idx, len(node.Counts), numClasses)
			}
			total := 0.0
			for _, c := range node.Counts {
				total += c
			}
			if total <= 0 {
				return nil, fmt.Errorf("leaf node %d has no samples", idx)
			}
			dist := make([]float64, numClasses)
			for i, c := range node.Counts {
				dist[i] = c / total
			}
			return dist, nil
		}
		if node.Feature >= len(x) {
			return nil, fmt.Errorf("node %d splits on feature %d, input has %d: %w", idx, node.Feature, len(x), ErrDimensionMismatch)
		}
		if x[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return nil, fmt.Errorf("tree traversal did not reach a leaf (cycle?)")
}

// Proba returns the per-class probability vector for x: the mean of the
// per-tree leaf distributions, matching the ensemble's training-time
// semantics. The result sums to 1.
func (f *Forest) Proba(x []float64) ([]float64, error) {
	if len(f.Trees) == 0 {
		return nil, ErrEmptyForest
	}
	if len(x) != f.NumFeatures {
		return nil, fmt.Errorf("got %d features, want %d: %w", len(x), f.NumFeatures, ErrDimensionMismatch)
	}
	sum := make([]float64, f.NumClasses)
	for i := range f.Trees {
		dist, err := f.Trees[i].proba(x, f.NumClasses)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		for c, p := range dist {
			sum[c] += p
		}
	}
	n := float64(len(f.Trees))
	for c := range sum {
		sum[c] /= n
	}
	return sum, nil
}

// Predict returns the majority class index for x (argmax of Proba).
func (f *Forest) Predict(x []float64) (int, error) {
	proba, err := f.Proba(x)
	if err != nil {
		return 0, err
	}
	return Argmax(proba), nil
}

// Argmax returns the index of the largest value, breaking ties toward the
// lower index the way the original classifier does.
func Argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

// LabelEncoder decodes class indices back to category labels. Classes are
// stored in the encoder's training order (lexicographic for the original
// artifact).
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// InverseTransform maps a class index to its label.
func (e *LabelEncoder) InverseTransform(index int) (string, error) {
	if index < 0 || index >= len(e.Classes) {
		return "", fmt.Errorf("class index %d out of range [0,%d)", index, len(e.Classes))
	}
	return e.Classes[index], nil
}
