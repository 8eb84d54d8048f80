package validation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/breatheaware/aqi-service/internal/models"
)

// ValidationError reports a malformed or incomplete pollutant payload.
// Field names the offending key so clients can fix their request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// ParsePollutants validates a decoded JSON payload and shapes it into the
// canonical pollutant vector. Presence of all six fields is checked in
// canonical order before any numeric coercion, so a payload missing a field
// always reports the missing field rather than a coercion failure.
// Values may be JSON numbers or numeric strings.
func ParsePollutants(payload map[string]interface{}) (models.PollutantVector, error) {
	for _, name := range models.FeatureNames {
		if _, ok := payload[name]; !ok {
			return models.PollutantVector{}, &ValidationError{Field: name, Reason: "missing required field"}
		}
	}

	values := make([]float64, len(models.FeatureNames))
	for i, name := range models.FeatureNames {
		v, err := coerceFloat(payload[name])
		if err != nil {
			return models.PollutantVector{}, &ValidationError{Field: name, Reason: err.Error()}
		}
		values[i] = v
	}

	return models.PollutantVector{
		PM25: values[0],
		PM10: values[1],
		NO2:  values[2],
		SO2:  values[3],
		CO:   values[4],
		O3:   values[5],
	}, nil
}

// coerceFloat converts a decoded JSON value to float64. Handles json.Number
// (decoder with UseNumber), plain float64, and numeric strings.
func coerceFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a valid number: %v", t)
		}
		return f, nil
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("not a valid number: %q", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("must be a number or numeric string, got %T", v)
	}
}
