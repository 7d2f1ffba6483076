package weather

import (
	"strings"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionFog     Condition = "fog"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
)

// GeoLocation is the best-match result of resolving a city name.
// AdminRegion and Timezone may be empty.
type GeoLocation struct {
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	AdminRegion string  `json:"adminRegion,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone,omitempty"`
}

// Forecast is the current weather plus the first day's sunrise/sunset for a
// coordinate pair. Sunrise and Sunset are in the location's civil time.
type Forecast struct {
	TemperatureC float64
	WindSpeedMS  float64
	WeatherCode  int
	Sunrise      string
	Sunset       string
	Timezone     string
}

// WeatherRecord is the normalized result of a successful geocode + forecast chain.
type WeatherRecord struct {
	City         string  `json:"city"`
	Country      string  `json:"country"`
	AdminRegion  string  `json:"adminRegion,omitempty"`
	TemperatureC float64 `json:"temperatureC"`
	WindSpeedMS  float64 `json:"windSpeedMs"`
	WeatherCode  int     `json:"weatherCode"`
	Sunrise      string  `json:"sunrise"`
	Sunset       string  `json:"sunset"`
	Timezone     string  `json:"timezone,omitempty"`
}

// Status tags the variant held by a QueryState.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailure Status = "error"
)

// QueryState is the request lifecycle state. Exactly one Status holds;
// Record is set only for StatusSuccess and Message only for StatusFailure.
type QueryState struct {
	Status  Status         `json:"status"`
	QueryID string         `json:"queryId,omitempty"`
	City    string         `json:"city,omitempty"`
	Record  *WeatherRecord `json:"record,omitempty"`
	Message string         `json:"message,omitempty"`
}

func Idle() QueryState {
	return QueryState{Status: StatusIdle}
}

func Loading(queryID, city string) QueryState {
	return QueryState{Status: StatusLoading, QueryID: queryID, City: city}
}

func Success(queryID, city string, rec WeatherRecord) QueryState {
	return QueryState{Status: StatusSuccess, QueryID: queryID, City: city, Record: &rec}
}

func Failure(queryID, city, message string) QueryState {
	return QueryState{Status: StatusFailure, QueryID: queryID, City: city, Message: message}
}

// DefaultCities is the selectable city list used when none is configured.
var DefaultCities = []string{
	"Mysore", "Bangalore", "Mumbai", "Delhi", "Chennai",
	"Kolkata", "Hyderabad", "Pune", "Ahmedabad", "Jaipur",
	"Surat", "Lucknow", "Kanpur", "Nagpur", "Indore",
	"Thane", "Bhopal", "Visakhapatnam", "Pimpri-Chinchwad", "Patna",
}

// DefaultCity is queried once at startup.
const DefaultCity = "Mysore"

// normalizeCity trims surrounding whitespace from a selection.
func normalizeCity(city string) string {
	return strings.TrimSpace(city)
}
