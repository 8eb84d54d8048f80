// Package service implements the live-fusion path: fetch current pollutant
// components from the upstream provider, classify them through the
// inference engine, and merge the verbatim provider payload into the result.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/breatheaware/aqi-service/internal/client"
	"github.com/breatheaware/aqi-service/internal/models"
)

// Classifier is the slice of the inference engine the fusion path needs.
type Classifier interface {
	ClassifyVector(ctx context.Context, vector models.PollutantVector) (models.Prediction, error)
}

// LiveAQIService composes the upstream client and the inference engine.
type LiveAQIService struct {
	classifier Classifier
	client     client.AirPollutionClient
}

// NewLiveAQIService creates a new LiveAQIService with the provided dependencies.
func NewLiveAQIService(classifier Classifier, airClient client.AirPollutionClient) *LiveAQIService {
	return &LiveAQIService{classifier: classifier, client: airClient}
}

// loggerFromContext extracts a zap.Logger from request context if present.
// Returns nil if logger is not found or context is invalid.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return nil
}

// GetLiveAQI fetches components for the configured coordinate, classifies
// the canonical vector, and attaches the raw provider payload. An upstream
// failure means no classification is attempted.
func (s *LiveAQIService) GetLiveAQI(ctx context.Context) (models.LivePrediction, error) {
	logger := loggerFromContext(ctx)

	vector, components, err := s.client.GetComponents(ctx)
	if err != nil {
		return models.LivePrediction{}, fmt.Errorf("fetch live components: %w", err)
	}
	if logger != nil {
		logger.Debug("live components fetched", zap.Int("component_count", len(components)))
	}

	prediction, err := s.classifier.ClassifyVector(ctx, vector)
	if err != nil {
		return models.LivePrediction{}, fmt.Errorf("classify live components: %w", err)
	}

	return models.LivePrediction{
		Prediction: prediction,
		Components: components,
	}, nil
}
