package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/city-weather/internal/weather"
)

// DefaultForecastURL is the Open-Meteo forecast endpoint.
const DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteoForecaster implements weather.Forecaster for Open-Meteo.
type OpenMeteoForecaster struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoForecaster creates a forecaster. An empty baseURL means DefaultForecastURL.
func NewOpenMeteoForecaster(client *http.Client, baseURL string) *OpenMeteoForecaster {
	if baseURL == "" {
		baseURL = DefaultForecastURL
	}
	return &OpenMeteoForecaster{
		name:    "openmeteo",
		baseURL: baseURL,
		client:  client,
		circuit: newCircuitBreaker("openmeteo-forecast"),
	}
}

func (p *OpenMeteoForecaster) Name() string {
	return p.name
}

// Fetch requests current conditions and today's sunrise/sunset. Wind speed is
// requested in m/s. Timestamps come back in the location's civil time.
func (p *OpenMeteoForecaster) Fetch(ctx context.Context, lat, lon float64, timezone string) (weather.Forecast, error) {
	if timezone == "" {
		timezone = "auto"
	}

	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("current_weather", "true")
	values.Set("daily", "sunrise,sunset")
	values.Set("timezone", timezone)
	values.Set("windspeed_unit", "ms")
	values.Set("forecast_days", "1")

	var payload struct {
		Timezone       string `json:"timezone"`
		CurrentWeather *struct {
			Temperature float64 `json:"temperature"`
			WindSpeed   float64 `json:"windspeed"`
			WeatherCode int     `json:"weathercode"`
			Time        string  `json:"time"`
		} `json:"current_weather"`
		Daily struct {
			Sunrise []string `json:"sunrise"`
			Sunset  []string `json:"sunset"`
		} `json:"daily"`
	}

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	if err := getJSON(ctx, p.client, p.circuit, u, &payload); err != nil {
		return weather.Forecast{}, err
	}

	if payload.CurrentWeather == nil {
		return weather.Forecast{}, fmt.Errorf("%w: response has no current_weather", weather.ErrTransport)
	}
	if len(payload.Daily.Sunrise) == 0 || len(payload.Daily.Sunset) == 0 {
		return weather.Forecast{}, fmt.Errorf("%w: response has no daily sunrise/sunset", weather.ErrTransport)
	}

	return weather.Forecast{
		TemperatureC: payload.CurrentWeather.Temperature,
		WindSpeedMS:  payload.CurrentWeather.WindSpeed,
		WeatherCode:  payload.CurrentWeather.WeatherCode,
		Sunrise:      payload.Daily.Sunrise[0],
		Sunset:       payload.Daily.Sunset[0],
		Timezone:     payload.Timezone,
	}, nil
}
