package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Wednesday, so every named range lands inside the same week.
var wednesday = time.Date(2025, time.March, 12, 15, 30, 0, 0, time.UTC)

func TestCalculateDateRangeToday(t *testing.T) {
	start, end, ok := CalculateDateRange("Aujourd'hui", wednesday)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.March, 13, 0, 0, 0, 0, time.UTC), end)
}

func TestCalculateDateRangeTomorrow(t *testing.T) {
	start, end, ok := CalculateDateRange("Demain", wednesday)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, time.March, 13, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC), end)
}

func TestCalculateDateRangeThisWeekend(t *testing.T) {
	start, end, ok := CalculateDateRange("Ce weekend", wednesday)
	assert.True(t, ok)
	assert.Equal(t, time.Friday, start.Weekday())
	assert.Equal(t, time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, start.AddDate(0, 0, 2), end)
}

func TestCalculateDateRangeThisWeek(t *testing.T) {
	start, end, ok := CalculateDateRange("Cette semaine", wednesday)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Sunday, end.Weekday())
}

func TestCalculateDateRangeNextWeek(t *testing.T) {
	start, end, ok := CalculateDateRange("Semaine prochaine", wednesday)
	assert.True(t, ok)
	assert.Equal(t, time.Sunday, start.Weekday())
	assert.Equal(t, start.AddDate(0, 0, 7), end)
	assert.True(t, start.After(wednesday))
}

func TestCalculateDateRangeNextWeekend(t *testing.T) {
	start, end, ok := CalculateDateRange("Weekend prochain", wednesday)
	assert.True(t, ok)
	assert.Equal(t, time.Friday, start.Weekday())
	assert.Equal(t, start.AddDate(0, 0, 2), end)
	assert.True(t, start.After(wednesday.AddDate(0, 0, 4)))
}

func TestCalculateDateRangeUnknownLabel(t *testing.T) {
	_, _, ok := CalculateDateRange("La semaine des quatre jeudis", wednesday)
	assert.False(t, ok)
}

func TestParseEventDateFormats(t *testing.T) {
	for _, value := range []string{
		"2025-06-01T19:00:00Z",
		"2025-06-01 19:00:00 +02:00",
		"2025-06-01",
	} {
		parsed, err := ParseEventDate(value)
		assert.Nilf(t, err, "expected %q to parse", value)
		assert.Equal(t, 2025, parsed.Year())
		assert.Equal(t, time.June, parsed.Month())
	}

	_, err := ParseEventDate("01/06/2025")
	assert.NotNil(t, err)
}
