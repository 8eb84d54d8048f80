package models

import "time"

// FeatureNames is the canonical pollutant order the classifier was trained on.
// The feature matrix handed to the model must follow this order exactly;
// a reordering silently produces wrong classifications.
var FeatureNames = []string{"pm25", "pm10", "no2", "so2", "co", "o3"}

// PollutantVector holds the six pollutant concentration readings in µg/m³
// (mg/m³ for CO, matching the upstream provider's units).
type PollutantVector struct {
	PM25 float64 `json:"pm25"`
	PM10 float64 `json:"pm10"`
	NO2  float64 `json:"no2"`
	SO2  float64 `json:"so2"`
	CO   float64 `json:"co"`
	O3   float64 `json:"o3"`
}

// Slice returns the readings in canonical feature order.
func (v PollutantVector) Slice() []float64 {
	return []float64{v.PM25, v.PM10, v.NO2, v.SO2, v.CO, v.O3}
}

// Prediction is the result of one classification. Built fresh per request,
// never stored.
type Prediction struct {
	Success    bool            `json:"success"`
	AQIClass   string          `json:"aqi_class"`
	AQIValue   int             `json:"aqi_value"`
	Confidence float64         `json:"confidence"`
	Emoji      string          `json:"emoji"`
	Color      string          `json:"color"`
	Range      string          `json:"range"`
	HealthTip  string          `json:"health_tip"`
	Pollutants PollutantVector `json:"pollutants"`
	Timestamp  time.Time       `json:"timestamp"`
}

// LivePrediction is a Prediction merged with the verbatim component payload
// returned by the upstream air-pollution provider.
type LivePrediction struct {
	Prediction
	Components map[string]float64 `json:"components"`
}
