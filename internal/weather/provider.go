package weather

import (
	"context"
)

// Geocoder resolves a free-text city name to its best-ranked location.
// It returns ErrNotFound when the provider has no candidate and an error
// wrapping ErrTransport for any other failure.
type Geocoder interface {
	Name() string
	Resolve(ctx context.Context, city string) (GeoLocation, error)
}

// Forecaster fetches current conditions and the first day's sunrise/sunset.
// An empty timezone asks the provider to pick the location's zone.
type Forecaster interface {
	Name() string
	Fetch(ctx context.Context, lat, lon float64, timezone string) (Forecast, error)
}

// StateStore holds the single visible QueryState. Begin makes a new query
// authoritative and returns its generation; Commit applies a state only if
// that generation is still the latest.
type StateStore interface {
	Current() QueryState
	Begin(state QueryState) uint64
	Commit(gen uint64, state QueryState) bool
	Subscribe() (<-chan QueryState, func())
}
