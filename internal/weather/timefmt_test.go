package weather

import (
	"regexp"
	"testing"
	"time"
)

var twelveHour = regexp.MustCompile(`^(0[1-9]|1[0-2]):[0-5][0-9] (AM|PM)$`)

func TestFormatEmpty(t *testing.T) {
	// An absent timestamp is the empty string in Go.
	if got := FormatLocalTime(""); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if got := NewTimeFormatter(time.UTC).Format(""); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestFormatPinnedZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)

	cases := []struct {
		name string
		loc  *time.Location
		in   string
		want string
	}{
		{"utc input in utc", time.UTC, "2024-03-01T06:15:00Z", "06:15 AM"},
		{"utc input in ist", ist, "2024-03-01T06:15:00Z", "11:45 AM"},
		{"offset input in ist", ist, "2024-03-01T06:15:00+05:30", "06:15 AM"},
		{"offset sunset in ist", ist, "2024-03-01T18:20:00+05:30", "06:20 PM"},
		{"civil time keeps wall clock", time.UTC, "2024-03-01T18:20", "06:20 PM"},
		{"civil time with seconds", ist, "2024-03-01T00:05:00", "12:05 AM"},
		{"noon", time.UTC, "2024-03-01T12:00", "12:00 PM"},
		{"fractional seconds", time.UTC, "2024-03-01T06:15:30.5Z", "06:15 AM"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewTimeFormatter(tc.loc).Format(tc.in); got != tc.want {
				t.Fatalf("Format(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFormatLocalTimeIsTwelveHour(t *testing.T) {
	got := FormatLocalTime("2024-03-01T06:15:00Z")
	if !twelveHour.MatchString(got) {
		t.Fatalf("expected HH:MM AM/PM, got %q", got)
	}
}

// Malformed timestamps render a sentinel instead of failing.
func TestFormatMalformed(t *testing.T) {
	f := NewTimeFormatter(time.UTC)
	for _, in := range []string{"not a time", "2024-13-01T06:15", "06:15", "2024-03-01"} {
		if got := f.Format(in); got != InvalidTime {
			t.Errorf("Format(%q) = %q, want %q", in, got, InvalidTime)
		}
	}
}

func TestNilLocationUsesLocal(t *testing.T) {
	if NewTimeFormatter(nil).Location() != time.Local {
		t.Fatal("expected time.Local")
	}
	var zero TimeFormatter
	if zero.Location() != time.Local {
		t.Fatal("zero formatter should use time.Local")
	}
}
