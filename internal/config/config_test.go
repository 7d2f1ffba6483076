package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/i474232898/city-weather/internal/weather"
)

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(envFrom(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" || cfg.DefaultCity != "Mysore" || cfg.Geocoder != "openmeteo" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Cities, weather.DefaultCities) {
		t.Fatalf("unexpected cities: %v", cfg.Cities)
	}
	if cfg.HTTPTimeout != 10*time.Second || cfg.QueryTimeout != 20*time.Second {
		t.Fatalf("unexpected timeouts: %v %v", cfg.HTTPTimeout, cfg.QueryTimeout)
	}
	if cfg.RefreshEnabled() {
		t.Fatal("refresh should be disabled by default")
	}
	if loc, _ := cfg.DisplayLocation(); loc != time.Local {
		t.Fatalf("expected local display zone, got %v", loc)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := load(envFrom(map[string]string{
		"PORT":             "9090",
		"CITIES":           " Pune , Delhi ,, Patna",
		"DEFAULT_CITY":     "  Pune ",
		"HTTP_TIMEOUT":     "3s",
		"REFRESH_INTERVAL": "15m",
		"DISPLAY_TIMEZONE": "UTC",
		"LOG_LEVEL":        "debug",
		"LOG_FORMAT":       "console",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "9090" || cfg.DefaultCity != "Pune" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Cities, []string{"Pune", "Delhi", "Patna"}) {
		t.Fatalf("unexpected cities: %#v", cfg.Cities)
	}
	if cfg.HTTPTimeout != 3*time.Second || cfg.RefreshInterval != 15*time.Minute || !cfg.RefreshEnabled() {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if loc, _ := cfg.DisplayLocation(); loc != time.UTC {
		t.Fatalf("expected UTC, got %v", loc)
	}
}

func TestLoadReadsEnvFileBelowEnvironment(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	content := "DEFAULT_CITY=Delhi\nPORT=7070\nUNRELATED=1\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := load(envFrom(map[string]string{"PORT": "6060"}), file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultCity != "Delhi" {
		t.Fatalf("expected .env value, got %q", cfg.DefaultCity)
	}
	if cfg.Port != "6060" {
		t.Fatalf("environment should win over .env, got %q", cfg.Port)
	}
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	if _, err := load(envFrom(nil), filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad duration":     {"HTTP_TIMEOUT": "soon"},
		"zero timeout":     {"QUERY_TIMEOUT": "0s"},
		"bad url":          {"FORECAST_URL": "not a url"},
		"unknown geocoder": {"GEOCODER": "bing"},
		"google sans key":  {"GEOCODER": "google"},
		"empty cities":     {"CITIES": " , "},
		"bad port":         {"PORT": "http"},
		"bad zone":         {"DISPLAY_TIMEZONE": "Mars/Olympus"},
		"bad log level":    {"LOG_LEVEL": "loud"},
		"blank city":       {"DEFAULT_CITY": "   "},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := load(envFrom(env)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadGoogleWithKey(t *testing.T) {
	cfg, err := load(envFrom(map[string]string{"GEOCODER": "google", "GOOGLE_GEOCODER_API_KEY": "k"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Geocoder != "google" || cfg.GoogleGeocoderKey != "k" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
