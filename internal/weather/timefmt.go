package weather

import (
	"time"
)

// InvalidTime is returned by the formatter for timestamps it cannot parse.
const InvalidTime = "Invalid time"

const displayLayout = "03:04 PM"

// Timestamp layouts accepted by the formatter, most specific first. Open-Meteo
// returns local civil time without an offset when a timezone is requested.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// TimeFormatter renders ISO-8601 timestamps as 12-hour "HH:MM AM/PM" strings
// in a fixed display location.
type TimeFormatter struct {
	loc *time.Location
}

// NewTimeFormatter returns a formatter for loc. A nil loc means time.Local.
func NewTimeFormatter(loc *time.Location) TimeFormatter {
	if loc == nil {
		loc = time.Local
	}
	return TimeFormatter{loc: loc}
}

// Location returns the display location.
func (f TimeFormatter) Location() *time.Location {
	if f.loc == nil {
		return time.Local
	}
	return f.loc
}

// Format converts ts to display form. Timestamps carrying an offset are
// converted into the display location; timestamps without one are taken as
// wall-clock time in it. Empty input yields "", malformed input InvalidTime.
func (f TimeFormatter) Format(ts string) string {
	if ts == "" {
		return ""
	}
	loc := f.Location()
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, ts, loc)
		if err == nil {
			return t.In(loc).Format(displayLayout)
		}
	}
	return InvalidTime
}

// FormatLocalTime formats ts in the process-local time zone.
func FormatLocalTime(ts string) string {
	return NewTimeFormatter(time.Local).Format(ts)
}
