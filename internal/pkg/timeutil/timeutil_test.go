package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayBoundsUsesBusinessZone(t *testing.T) {
	// 2026-03-10 17:30 UTC is already 2026-03-11 01:30 in Manila
	utc := time.Date(2026, 3, 10, 17, 30, 0, 0, time.UTC)

	start, end := DayBounds(utc)

	assert.Equal(t, 2026, start.Year())
	assert.Equal(t, time.March, start.Month())
	assert.Equal(t, 11, start.Day())
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 24*time.Hour, end.Sub(start))
	assert.Equal(t, DefaultZone, start.Location().String())
}

func TestSameDay(t *testing.T) {
	loc := Location()
	morning := time.Date(2026, 3, 11, 0, 5, 0, 0, loc)
	night := time.Date(2026, 3, 11, 23, 55, 0, 0, loc)
	next := time.Date(2026, 3, 12, 0, 0, 0, 0, loc)

	assert.True(t, SameDay(morning, night))
	assert.False(t, SameDay(night, next))
}

func TestUseZone(t *testing.T) {
	require.Error(t, UseZone("Not/AZone"))
	assert.Equal(t, DefaultZone, Location().String())

	require.NoError(t, UseZone("UTC"))
	t.Cleanup(func() { _ = UseZone(DefaultZone) })
	assert.Equal(t, "UTC", Now().Location().String())
}
