package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"

	"github.com/i474232898/city-weather/internal/common"
	"github.com/i474232898/city-weather/internal/weather"
	"github.com/i474232898/city-weather/internal/weather/providers"
)

type AppConfig struct {
	Port string `mapstructure:"PORT" validate:"required,numeric"`

	// DefaultCity is queried once at startup.
	DefaultCity string `mapstructure:"DEFAULT_CITY" validate:"required"`
	// Cities is the fixed list offered by the city selector.
	Cities []string `mapstructure:"CITIES" validate:"min=1,dive,required"`

	GeocodingURL string `mapstructure:"GEOCODING_URL" validate:"required,url"`
	ForecastURL  string `mapstructure:"FORECAST_URL" validate:"required,url"`

	// Geocoder selects the geocoding backend.
	Geocoder          string        `mapstructure:"GEOCODER" validate:"oneof=openmeteo google"`
	GoogleGeocoderKey string        `mapstructure:"GOOGLE_GEOCODER_API_KEY" validate:"required_if=Geocoder google"`
	HTTPTimeout       time.Duration `mapstructure:"HTTP_TIMEOUT" validate:"gt=0"`
	QueryTimeout      time.Duration `mapstructure:"QUERY_TIMEOUT" validate:"gt=0"`
	RefreshInterval   time.Duration `mapstructure:"REFRESH_INTERVAL" validate:"gte=0"` // 0 disables refresh
	DisplayTimezone   string        `mapstructure:"DISPLAY_TIMEZONE" validate:"required"`
	LogLevel          string        `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat         string        `mapstructure:"LOG_FORMAT" validate:"oneof=json console"`
	TelegramBotToken  string        `mapstructure:"TG_BOT_TOKEN"`
}

var validate = validator.New()

func defaults() map[string]string {
	return map[string]string{
		"PORT":                    "8080",
		"DEFAULT_CITY":            weather.DefaultCity,
		"CITIES":                  strings.Join(weather.DefaultCities, ","),
		"GEOCODING_URL":           providers.DefaultGeocodingURL,
		"FORECAST_URL":            providers.DefaultForecastURL,
		"GEOCODER":                "openmeteo",
		"GOOGLE_GEOCODER_API_KEY": "",
		"HTTP_TIMEOUT":            "10s",
		"QUERY_TIMEOUT":           "20s",
		"REFRESH_INTERVAL":        "0s",
		"DISPLAY_TIMEZONE":        "Local",
		"LOG_LEVEL":               "info",
		"LOG_FORMAT":              "json",
		"TG_BOT_TOKEN":            "",
	}
}

// Load reads configuration from the environment, falling back to a .env file
// in the working directory and then to defaults.
func Load() (*AppConfig, error) {
	return load(os.LookupEnv, ".env")
}

func load(lookup func(string) (string, bool), envFiles ...string) (*AppConfig, error) {
	values := defaults()

	for _, file := range envFiles {
		fileValues, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		for k, v := range fileValues {
			if _, known := values[k]; known {
				values[k] = v
			}
		}
	}

	for k := range values {
		if v, ok := lookup(k); ok && v != "" {
			values[k] = v
		}
	}

	cfg := &AppConfig{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			stringToListHook,
		),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(values); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.DefaultCity = strings.TrimSpace(cfg.DefaultCity)
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := cfg.DisplayLocation(); err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}

	return cfg, nil
}

// stringToListHook splits comma separated strings into trimmed, non-empty items.
func stringToListHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String || t != reflect.TypeOf([]string(nil)) {
		return data, nil
	}
	return common.SplitList(data.(string)), nil
}

// DisplayLocation returns the zone sunrise/sunset times are rendered in.
func (c *AppConfig) DisplayLocation() (*time.Location, error) {
	if c.DisplayTimezone == "" || c.DisplayTimezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.DisplayTimezone)
}

// RefreshEnabled reports whether the periodic refresh should run.
func (c *AppConfig) RefreshEnabled() bool {
	return c.RefreshInterval > 0
}
