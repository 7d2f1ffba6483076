package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
	"github.com/zsefvlol/timezonemapper"

	"github.com/i474232898/city-weather/internal/weather"
)

// DefaultGeocodingURL is the Open-Meteo geocoding search endpoint.
const DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// OpenMeteoGeocoder implements weather.Geocoder for the Open-Meteo geocoding API.
// Only the provider's first-ranked candidate is used.
type OpenMeteoGeocoder struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoGeocoder creates a geocoder. An empty baseURL means DefaultGeocodingURL.
func NewOpenMeteoGeocoder(client *http.Client, baseURL string) *OpenMeteoGeocoder {
	if baseURL == "" {
		baseURL = DefaultGeocodingURL
	}
	return &OpenMeteoGeocoder{
		name:    "openmeteo",
		baseURL: baseURL,
		client:  client,
		circuit: newCircuitBreaker("openmeteo-geocoding"),
	}
}

func (g *OpenMeteoGeocoder) Name() string {
	return g.name
}

func (g *OpenMeteoGeocoder) Resolve(ctx context.Context, city string) (weather.GeoLocation, error) {
	values := url.Values{}
	values.Set("name", city)
	values.Set("count", "1")
	values.Set("language", "en")
	values.Set("format", "json")

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Country   string  `json:"country"`
			Admin1    string  `json:"admin1"`
			Timezone  string  `json:"timezone"`
		} `json:"results"`
	}

	u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())
	if err := getJSON(ctx, g.client, g.circuit, u, &payload); err != nil {
		return weather.GeoLocation{}, err
	}
	if len(payload.Results) == 0 {
		return weather.GeoLocation{}, fmt.Errorf("%w: %q", weather.ErrNotFound, city)
	}

	r := payload.Results[0]
	return weather.GeoLocation{
		Name:        r.Name,
		Country:     r.Country,
		AdminRegion: r.Admin1,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Timezone:    zoneFor(r.Timezone, r.Latitude, r.Longitude),
	}, nil
}

// zoneFor returns tz, or the IANA zone looked up from the coordinates when the
// provider did not report one.
func zoneFor(tz string, lat, lon float64) string {
	if tz != "" {
		return tz
	}
	return timezonemapper.LatLngToTimezoneString(lat, lon)
}
