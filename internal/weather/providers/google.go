package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/city-weather/internal/common"
	"github.com/i474232898/city-weather/internal/weather"
)

// The geocoder package keeps its API key in a package variable.
var googleMu sync.Mutex

// GoogleGeocoder implements weather.Geocoder on top of the Google Geocoding
// API. It resolves the coordinates first and then reverse-geocodes them to get
// the country and region.
type GoogleGeocoder struct {
	name    string
	apiKey  string
	circuit *gobreaker.CircuitBreaker
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		name:    "google",
		apiKey:  apiKey,
		circuit: newCircuitBreaker("google-geocoding"),
	}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

func (g *GoogleGeocoder) Resolve(ctx context.Context, city string) (weather.GeoLocation, error) {
	if g.apiKey == "" {
		return weather.GeoLocation{}, fmt.Errorf("%w: google geocoder api key is not configured", weather.ErrTransport)
	}

	if err := ctx.Err(); err != nil {
		return weather.GeoLocation{}, fmt.Errorf("%w: %v", weather.ErrTransport, err)
	}

	type outcome struct {
		loc weather.GeoLocation
		err error
	}
	done := make(chan outcome, 1)

	// The client library takes no context; abandon the call when ctx ends.
	go func() {
		loc, err := g.lookup(city)
		done <- outcome{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return weather.GeoLocation{}, fmt.Errorf("%w: %v", weather.ErrTransport, ctx.Err())
	case o := <-done:
		return o.loc, o.err
	}
}

func (g *GoogleGeocoder) lookup(city string) (weather.GeoLocation, error) {
	result, err := g.circuit.Execute(func() (interface{}, error) {
		googleMu.Lock()
		defer googleMu.Unlock()
		geocoder.ApiKey = g.apiKey

		point, err := geocoder.Geocoding(geocoder.Address{City: city})
		if err != nil {
			if isGoogleNotFound(err) {
				// A miss is a valid answer and must not trip the breaker.
				return nil, nil
			}
			return nil, err
		}

		addrs, err := geocoder.GeocodingReverse(point)
		if err != nil {
			return nil, err
		}

		loc := weather.GeoLocation{
			Name:      city,
			Latitude:  point.Latitude,
			Longitude: point.Longitude,
		}
		if len(addrs) > 0 {
			if addrs[0].City != "" {
				loc.Name = addrs[0].City
			}
			loc.Country = addrs[0].Country
			loc.AdminRegion = addrs[0].State
		}
		loc.Timezone = zoneFor("", loc.Latitude, loc.Longitude)
		return &loc, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return weather.GeoLocation{}, fmt.Errorf("%w: %v: %v", weather.ErrTransport, errCircuitOpen, err)
		}
		return weather.GeoLocation{}, fmt.Errorf("%w: %v", weather.ErrTransport, err)
	}

	loc, ok := result.(*weather.GeoLocation)
	if !ok || loc == nil {
		return weather.GeoLocation{}, fmt.Errorf("%w: %q", weather.ErrNotFound, city)
	}
	return *loc, nil
}

// isGoogleNotFound reports whether err is the library's ZERO_RESULTS answer.
func isGoogleNotFound(err error) bool {
	return err != nil && common.HasAny(err.Error(), "No results found", "ZERO_RESULTS")
}
