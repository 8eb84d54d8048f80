// Package engine is the inference layer: it validates pollutant input,
// shapes it into the classifier's feature order, runs the forest once, and
// assembles the structured prediction with catalog metadata. It is the one
// unit shared by the direct-prediction path and the live-fusion path.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/breatheaware/aqi-service/internal/catalog"
	"github.com/breatheaware/aqi-service/internal/model"
	"github.com/breatheaware/aqi-service/internal/models"
	"github.com/breatheaware/aqi-service/internal/observability"
	"github.com/breatheaware/aqi-service/internal/validation"
)

// ErrModelUnavailable is returned by every inference call when the model
// artifacts failed to load at startup. Checked per call as a cheap guard;
// no reload is attempted.
var ErrModelUnavailable = errors.New("classification model not loaded")

// Engine owns the loaded classifier artifacts. Constructed once at startup
// and read-only thereafter; safe for concurrent use.
type Engine struct {
	artifacts *model.Artifacts
	loadErr   error
	logger    *zap.Logger
}

// New returns an Engine over the loaded artifacts. When loading failed,
// pass nil artifacts and the load error: the engine is constructed anyway
// and fails every call fast, so the HTTP surface can keep serving health
// and error responses instead of crashing at boot.
func New(artifacts *model.Artifacts, loadErr error, logger *zap.Logger) *Engine {
	if artifacts != nil {
		observability.ModelLoaded.Set(1)
	} else {
		observability.ModelLoaded.Set(0)
	}
	return &Engine{artifacts: artifacts, loadErr: loadErr, logger: logger}
}

// Ready reports whether the model artifacts are loaded.
func (e *Engine) Ready() bool {
	return e.artifacts != nil
}

// Classify validates a decoded JSON payload (six required keys, numeric or
// numeric-string values) and classifies it. Validation failures return a
// *validation.ValidationError naming the offending field.
func (e *Engine) Classify(ctx context.Context, payload map[string]interface{}) (models.Prediction, error) {
	if err := e.checkAvailable(); err != nil {
		return models.Prediction{}, err
	}

	vector, err := validation.ParsePollutants(payload)
	if err != nil {
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			observability.ValidationFailuresTotal.WithLabelValues(verr.Field).Inc()
		}
		return models.Prediction{}, err
	}

	return e.ClassifyVector(ctx, vector)
}

// ClassifyVector classifies an already-shaped pollutant vector. Used
// directly by the live-fusion path, which builds its vector from provider
// components rather than a client payload.
func (e *Engine) ClassifyVector(ctx context.Context, vector models.PollutantVector) (models.Prediction, error) {
	if err := e.checkAvailable(); err != nil {
		return models.Prediction{}, err
	}

	// One probability pass serves both the label (argmax) and confidence.
	proba, err := e.artifacts.Forest.Proba(vector.Slice())
	if err != nil {
		return models.Prediction{}, fmt.Errorf("run classifier: %w", err)
	}
	index := model.Argmax(proba)

	label, err := e.artifacts.Encoder.InverseTransform(index)
	if err != nil {
		return models.Prediction{}, fmt.Errorf("decode class index: %w", err)
	}

	confidence := math.Round(proba[index]*1000) / 10
	info := catalog.Info(label)
	observability.RecordPrediction(label, confidence)
	if e.logger != nil {
		e.logger.Debug("classified pollutant vector",
			zap.String("class", label),
			zap.Float64("confidence", confidence))
	}

	return models.Prediction{
		Success:    true,
		AQIClass:   label,
		AQIValue:   catalog.Midpoint(label),
		Confidence: confidence,
		Emoji:      info.Emoji,
		Color:      info.Color,
		Range:      info.Range,
		HealthTip:  info.HealthTip,
		Pollutants: vector,
		Timestamp:  time.Now().UTC(),
	}, nil
}

func (e *Engine) checkAvailable() error {
	if e.artifacts != nil {
		return nil
	}
	if e.loadErr != nil {
		return fmt.Errorf("%w: %v", ErrModelUnavailable, e.loadErr)
	}
	return ErrModelUnavailable
}
