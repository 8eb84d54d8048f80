// Package client talks to the OpenWeatherMap air-pollution API. One GET per
// invocation, no retries, no caching; resilience is a circuit breaker that
// fails fast when the upstream is known to be down.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/breatheaware/aqi-service/internal/models"
	"github.com/breatheaware/aqi-service/internal/observability"
)

// AirPollutionClient fetches current pollutant components for a fixed
// coordinate. Implementations must be safe for concurrent use.
type AirPollutionClient interface {
	// GetComponents returns the canonical six-pollutant vector and the
	// verbatim provider component map.
	GetComponents(ctx context.Context) (models.PollutantVector, map[string]float64, error)
}

var (
	ErrMissingAPIKey   = errors.New("air-pollution API key not configured")
	ErrInvalidAPIKey   = errors.New("invalid API key")
	ErrRateLimited     = errors.New("rate limited")
	ErrUpstreamFailure = errors.New("upstream failure")
	ErrUpstreamParse   = errors.New("upstream payload parse failure")
)

// OpenWeatherClient is the production AirPollutionClient.
type OpenWeatherClient struct {
	apiKey  string
	apiURL  string
	lat     float64
	lon     float64
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewOpenWeatherClient builds a client for the given coordinate. An empty
// apiKey is allowed at construction; the key is re-checked per call so the
// failure surfaces as an upstream-class error before any network I/O.
func NewOpenWeatherClient(apiKey, apiURL string, lat, lon float64, timeout time.Duration) *OpenWeatherClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "air_pollution_api",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})
	observability.CircuitBreakerState.WithLabelValues("air_pollution_api").Set(0)

	return &OpenWeatherClient{
		apiKey:  apiKey,
		apiURL:  apiURL,
		lat:     lat,
		lon:     lon,
		breaker: cb,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// airPollutionResponse mirrors the provider's wire format. Only
// list[0].components is consumed.
type airPollutionResponse struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components map[string]float64 `json:"components"`
		Dt         int64              `json:"dt"`
	} `json:"list"`
}

// GetComponents performs one provider call through the circuit breaker.
func (c *OpenWeatherClient) GetComponents(ctx context.Context) (models.PollutantVector, map[string]float64, error) {
	if c.apiKey == "" {
		return models.PollutantVector{}, nil, ErrMissingAPIKey
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.callAPI(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return models.PollutantVector{}, nil, fmt.Errorf("%w: circuit open", ErrUpstreamFailure)
		}
		return models.PollutantVector{}, nil, err
	}

	components := result.(map[string]float64)
	return mapComponents(components), components, nil
}

func (c *OpenWeatherClient) callAPI(ctx context.Context) (map[string]float64, error) {
	start := time.Now()

	req, err := c.buildRequest(ctx)
	if err != nil {
		observability.UpstreamCallsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		observability.UpstreamCallsTotal.WithLabelValues("error").Inc()
		observability.UpstreamDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: request timeout: %v", ErrUpstreamFailure, err)
		}
		return nil, fmt.Errorf("%w: http request failed: %v", ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	observability.UpstreamCallsTotal.WithLabelValues(status).Inc()
	observability.UpstreamDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	if err := handleErrorResponse(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", ErrUpstreamFailure, err)
	}

	var apiResp airPollutionResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamParse, err)
	}
	if len(apiResp.List) == 0 || apiResp.List[0].Components == nil {
		return nil, fmt.Errorf("%w: missing list[0].components", ErrUpstreamParse)
	}

	return apiResp.List[0].Components, nil
}

func (c *OpenWeatherClient) buildRequest(ctx context.Context) (*http.Request, error) {
	baseURL, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(c.lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(c.lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

func handleErrorResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: upstream rejected API key", ErrInvalidAPIKey)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w", ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}
	return nil
}

// mapComponents renames provider fields onto the canonical schema. The
// mapping is explicit by name, never positional: the provider spells PM2.5
// as pm2_5, the other five match 1:1. Missing components default to 0
// because provider payloads are not under this system's control.
func mapComponents(components map[string]float64) models.PollutantVector {
	return models.PollutantVector{
		PM25: components["pm2_5"],
		PM10: components["pm10"],
		NO2:  components["no2"],
		SO2:  components["so2"],
		CO:   components["co"],
		O3:   components["o3"],
	}
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
