package weather

import (
	"errors"
)

var (
	// ErrValidation is returned when the city selection is empty.
	ErrValidation = errors.New("no city selected")
	// ErrNotFound is returned by a Geocoder that has no candidate for a name.
	ErrNotFound = errors.New("city not found")
	// ErrTransport covers any network, status, timeout or decoding failure.
	ErrTransport = errors.New("weather data unavailable")
)

// User-facing messages carried by a Failure state.
const (
	MsgSelectCity   = "Please select a city"
	MsgCityNotFound = "City not found. Please try another city."
	MsgUnavailable  = "Unable to fetch weather data. Please try again."
)

// Message maps an error to the text shown in the error banner.
// Anything that is not a validation or not-found error is a transport fault.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return MsgSelectCity
	case errors.Is(err, ErrNotFound):
		return MsgCityNotFound
	default:
		return MsgUnavailable
	}
}
