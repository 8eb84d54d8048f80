// Package testhelpers provides shared fixtures for unit tests. The model
// fixture is a small hand-built forest with the same class ordering as the
// production artifact (label encoder order is lexicographic).
package testhelpers

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/breatheaware/aqi-service/internal/model"
	"github.com/breatheaware/aqi-service/internal/models"
)

// Class indices in the fixture's label encoder (lexicographic order).
const (
	ClassGood               = 0
	ClassHazardous          = 1
	ClassModerate           = 2
	ClassUnhealthy          = 3
	ClassUnhealthySensitive = 4
	ClassVeryUnhealthy      = 5
)

// NewTestArtifacts builds a deterministic three-tree forest that buckets on
// PM2.5 at the standard AQI breakpoints (12/35/55/150/250 µg/m³, with
// per-tree jitter). Predictions: pm25=5 → Good with 96.0 confidence.
func NewTestArtifacts() *model.Artifacts {
	return &model.Artifacts{
		Forest: &model.Forest{
			NumFeatures: len(models.FeatureNames),
			NumClasses:  6,
			Trees: []model.DecisionTree{
				pm25Tree(35, 12, 150, 55, 250, 48),
				pm25Tree(34, 12.5, 148, 57, 245, 49),
				pm25Tree(36, 11.8, 152, 54, 255, 47),
			},
		},
		Encoder: &model.LabelEncoder{
			Classes: []string{
				"Good",
				"Hazardous",
				"Moderate",
				"Unhealthy",
				"Unhealthy for Sensitive Groups",
				"Very Unhealthy",
			},
		},
		FeatureNames: append([]string(nil), models.FeatureNames...),
	}
}

// pm25Tree builds one decision tree splitting only on feature 0 (pm25).
// goodCount varies the Good leaf purity per tree so ensemble confidence is
// not a flat 100%.
func pm25Tree(tModerate, tGood, tVeryUnhealthy, tUnhealthySens, tHazardous float64, goodCount float64) model.DecisionTree {
	leaf := func(counts ...float64) model.TreeNode {
		return model.TreeNode{Feature: -1, Counts: counts}
	}
	split := func(threshold float64, left, right int) model.TreeNode {
		return model.TreeNode{Feature: 0, Threshold: threshold, Left: left, Right: right}
	}
	return model.DecisionTree{Nodes: []model.TreeNode{
		split(tModerate, 1, 2),
		split(tGood, 3, 4),
		split(tVeryUnhealthy, 5, 6),
		leaf(goodCount, 0, 50-goodCount, 0, 0, 0),  // Good
		leaf(1, 0, 46, 0, 3, 0),                    // Moderate
		split(tUnhealthySens, 7, 8),
		split(tHazardous, 9, 10),
		leaf(0, 0, 2, 3, 45, 0), // Unhealthy for Sensitive Groups
		leaf(0, 0, 0, 44, 4, 2), // Unhealthy
		leaf(0, 3, 0, 2, 0, 45), // Very Unhealthy
		leaf(0, 47, 0, 0, 0, 3), // Hazardous
	}}
}

// WriteTestArtifacts serializes the fixture into dir using the production
// artifact file names, for exercising the loader.
func WriteTestArtifacts(t *testing.T, dir string) {
	t.Helper()
	a := NewTestArtifacts()
	writeJSON(t, filepath.Join(dir, model.ForestFile), a.Forest)
	writeJSON(t, filepath.Join(dir, model.LabelEncoderFile), a.Encoder)
	writeJSON(t, filepath.Join(dir, model.FeatureNamesFile), a.FeatureNames)
}

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", filepath.Base(path), err)
	}
}
