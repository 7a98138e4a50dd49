package timeutil

import (
	"fmt"
	"time"
	_ "time/tzdata" // business timezone must resolve on minimal images
)

// DefaultZone is the business timezone used to bucket attendance days
const DefaultZone = "Asia/Manila"

var location = mustLoad(DefaultZone)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("timeutil: cannot load location %q: %v", name, err))
	}
	return loc
}

// UseZone switches the business timezone. Call once at startup.
func UseZone(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("invalid business timezone %q: %w", name, err)
	}
	location = loc
	return nil
}

// Location returns the business timezone
func Location() *time.Location {
	return location
}

// Now returns the current time in the business timezone
func Now() time.Time {
	return time.Now().In(location)
}

// StartOfDay returns local midnight of the business day containing t
func StartOfDay(t time.Time) time.Time {
	t = t.In(location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, location)
}

// DayBounds returns [start, end) of the business day containing t
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

// SameDay reports whether a and b fall on the same business day
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}
