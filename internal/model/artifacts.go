// Package model loads the pre-trained AQI classifier artifacts and runs
// inference over them. Three JSON files make up one model: the forest, the
// label encoder, and the ordered feature-name list. All three are loaded
// once at startup and never mutated, so unbounded concurrent readers are
// safe without locking.
package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/breatheaware/aqi-service/internal/models"
)

// Artifact file names inside the model directory.
const (
	ForestFile       = "aqi_classifier.json"
	LabelEncoderFile = "aqi_label_encoder.json"
	FeatureNamesFile = "feature_names.json"
)

// Artifacts bundles the three immutable model artifacts.
type Artifacts struct {
	Forest       *Forest
	Encoder      *LabelEncoder
	FeatureNames []string
}

// Load reads and validates the three artifacts from dir. Any failure means
// the model is unusable as a whole; callers keep serving but fail every
// inference call fast rather than attempting partial inference.
func Load(dir string) (*Artifacts, error) {
	var forest Forest
	if err := readJSON(filepath.Join(dir, ForestFile), &forest); err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}
	var encoder LabelEncoder
	if err := readJSON(filepath.Join(dir, LabelEncoderFile), &encoder); err != nil {
		return nil, fmt.Errorf("load label encoder: %w", err)
	}
	var featureNames []string
	if err := readJSON(filepath.Join(dir, FeatureNamesFile), &featureNames); err != nil {
		return nil, fmt.Errorf("load feature names: %w", err)
	}

	a := &Artifacts{Forest: &forest, Encoder: &encoder, FeatureNames: featureNames}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// validate cross-checks the artifacts. The feature-name artifact exists to
// confirm vector ordering: the order the classifier was trained on is a
// hard contract, and a silent mismatch would produce wrong classifications.
func (a *Artifacts) validate() error {
	if len(a.Forest.Trees) == 0 {
		return fmt.Errorf("classifier artifact: %w", ErrEmptyForest)
	}
	if a.Forest.NumClasses != len(a.Encoder.Classes) {
		return fmt.Errorf("classifier has %d classes, label encoder has %d", a.Forest.NumClasses, len(a.Encoder.Classes))
	}
	if a.Forest.NumFeatures != len(models.FeatureNames) {
		return fmt.Errorf("classifier trained on %d features, want %d", a.Forest.NumFeatures, len(models.FeatureNames))
	}
	if len(a.FeatureNames) != len(models.FeatureNames) {
		return fmt.Errorf("feature names artifact has %d entries, want %d", len(a.FeatureNames), len(models.FeatureNames))
	}
	for i, name := range models.FeatureNames {
		if a.FeatureNames[i] != name {
			return fmt.Errorf("feature order mismatch at position %d: artifact %q, want %q", i, a.FeatureNames[i], name)
		}
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
