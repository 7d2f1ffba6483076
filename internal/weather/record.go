package weather

import (
	"math"
)

// BuildRecord merges the geocode identity fields with the forecast fields.
func BuildRecord(loc GeoLocation, f Forecast) WeatherRecord {
	tz := f.Timezone
	if tz == "" {
		tz = loc.Timezone
	}
	return WeatherRecord{
		City:         loc.Name,
		Country:      loc.Country,
		AdminRegion:  loc.AdminRegion,
		TemperatureC: f.TemperatureC,
		WindSpeedMS:  f.WindSpeedMS,
		WeatherCode:  f.WeatherCode,
		Sunrise:      f.Sunrise,
		Sunset:       f.Sunset,
		Timezone:     tz,
	}
}

// View is what the result panel renders for a WeatherRecord.
type View struct {
	City         string    `json:"city"`
	Country      string    `json:"country"`
	State        string    `json:"state,omitempty"`
	Place        string    `json:"place"`
	TemperatureC int       `json:"temperature"`
	Description  string    `json:"description"`
	Condition    Condition `json:"condition"`
	WindSpeedMS  float64   `json:"wind"`
	Sunrise      string    `json:"sunrise"`
	Sunset       string    `json:"sunset"`
}

// NewView formats rec for display. Temperature is rounded to whole degrees,
// halves round up. Place is "state, country", or just the country when state is empty.
func NewView(rec WeatherRecord, f TimeFormatter) View {
	place := rec.Country
	if rec.AdminRegion != "" {
		place = rec.AdminRegion + ", " + rec.Country
	}
	return View{
		City:         rec.City,
		Country:      rec.Country,
		State:        rec.AdminRegion,
		Place:        place,
		TemperatureC: roundHalfUp(rec.TemperatureC),
		Description:  Describe(rec.WeatherCode),
		Condition:    ConditionFor(rec.WeatherCode),
		WindSpeedMS:  rec.WindSpeedMS,
		Sunrise:      f.Format(rec.Sunrise),
		Sunset:       f.Format(rec.Sunset),
	}
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
