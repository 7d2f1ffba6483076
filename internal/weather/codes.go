package weather

// weatherCodes maps WMO condition codes reported by Open-Meteo to display text.
var weatherCodes = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Foggy",
	51: "Light drizzle",
	61: "Light rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Light snow",
	73: "Moderate snow",
	75: "Heavy snow",
	95: "Thunderstorm",
}

// Describe returns the human-readable description of a condition code,
// or "Unknown" for codes outside the table.
func Describe(code int) string {
	if d, ok := weatherCodes[code]; ok {
		return d
	}
	return "Unknown"
}

// ConditionFor buckets a WMO code into a coarse Condition.
func ConditionFor(code int) Condition {
	// Mapping based on Open-Meteo weather codes (simplified).
	switch {
	case code == 0:
		return ConditionClear
	case code >= 1 && code <= 3:
		return ConditionCloudy
	case code == 45 || code == 48:
		return ConditionFog
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return ConditionSnow
	case code >= 95 && code <= 99:
		return ConditionStorm
	default:
		return ConditionUnknown
	}
}
