package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdirTemp switches the working directory to a temp dir for the duration
// of the test, since Load resolves config/ relative to cwd.
func chdirTemp(t *testing.T) string {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	return dir
}

func writeConfigFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", name), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ENV_NAME", "PORT", "MODEL_DIR", "OPENWEATHER_API_KEY", "AIR_POLLUTION_API_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.ModelDir != "model" {
		t.Errorf("ModelDir = %q, want model", cfg.ModelDir)
	}
	if cfg.Latitude != 17.385 || cfg.Longitude != 78.4867 {
		t.Errorf("coordinate = (%v,%v), want Hyderabad default", cfg.Latitude, cfg.Longitude)
	}
	if cfg.AirPollutionAPIKey != "" {
		t.Errorf("AirPollutionAPIKey = %q, want empty when unset", cfg.AirPollutionAPIKey)
	}
	if cfg.AirPollutionTimeout != 2*time.Second {
		t.Errorf("AirPollutionTimeout = %v, want 2s", cfg.AirPollutionTimeout)
	}
}

func TestLoad_FileValuesAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "dev.yaml", `
server:
  port: "9090"
model:
  dir: artifacts
air_pollution_api:
  url: https://example.test/air
  timeout: 3s
  lat: 51.5
  lon: -0.12
request:
  timeout: 6s
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.ModelDir != "artifacts" {
		t.Errorf("ModelDir = %q, want artifacts", cfg.ModelDir)
	}
	if cfg.AirPollutionAPIURL != "https://example.test/air" {
		t.Errorf("AirPollutionAPIURL = %q", cfg.AirPollutionAPIURL)
	}
	if cfg.Latitude != 51.5 || cfg.Longitude != -0.12 {
		t.Errorf("coordinate = (%v,%v), want file values", cfg.Latitude, cfg.Longitude)
	}

	t.Setenv("PORT", "7070")
	t.Setenv("MODEL_DIR", "/opt/model")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "7070" {
		t.Errorf("ServerPort = %q, env should override file", cfg.ServerPort)
	}
	if cfg.ModelDir != "/opt/model" {
		t.Errorf("ModelDir = %q, env should override file", cfg.ModelDir)
	}
}

func TestLoad_APIKeyFromEnv(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)
	t.Setenv("OPENWEATHER_API_KEY", "key-from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AirPollutionAPIKey != "key-from-env" {
		t.Errorf("AirPollutionAPIKey = %q, want key-from-env", cfg.AirPollutionAPIKey)
	}
}

func TestLoad_APIKeyFromSecretsFile(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "secrets.yaml", "air_pollution_api_key: key-from-secrets-file\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AirPollutionAPIKey != "key-from-secrets-file" {
		t.Errorf("AirPollutionAPIKey = %q, want key from secrets file", cfg.AirPollutionAPIKey)
	}
}

func TestLoad_InvalidCoordinateRejected(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "dev.yaml", `
air_pollution_api:
  lat: 120
  lon: 10
`)

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for out-of-range latitude, got nil")
	}
}

func TestLoad_RequestTimeoutAdjusted(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "dev.yaml", `
air_pollution_api:
  timeout: 5s
request:
  timeout: 2s
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RequestTimeout <= cfg.AirPollutionTimeout {
		t.Errorf("RequestTimeout = %v, want > upstream timeout %v", cfg.RequestTimeout, cfg.AirPollutionTimeout)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		def  time.Duration
		want time.Duration
	}{
		{"", time.Second, time.Second},
		{"2s", time.Second, 2 * time.Second},
		{"  500ms ", time.Second, 500 * time.Millisecond},
		{"junk", time.Second, time.Second},
		{"-1s", time.Second, time.Second},
	}
	for _, tt := range tests {
		if got := parseDuration(tt.in, tt.def); got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
