package workday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Superior-Josh/fish-time-pro/internal/calendar"
)

func TestNextRestDay(t *testing.T) {
	at := func(month time.Month, day, hour int) time.Time {
		return time.Date(2025, month, day, hour, 30, 0, 0, time.Local)
	}

	tests := []struct {
		name     string
		today    time.Time
		restDays RestDays
		text     string
		want     int
	}{
		{"friday before a plain weekend", at(time.October, 17, 16), weekend(), "", 1},
		{"saturday is itself a rest day", at(time.October, 18, 9), weekend(), "", 0},
		{"monday waits for saturday", at(time.October, 20, 9), weekend(), "", 5},
		{"compensated saturday is skipped", at(time.October, 10, 9), weekend(), nationalDayFeed, 2},
		{"holiday in the next month", at(time.September, 30, 9), weekend(), nationalDayFeed, 1},
		{"saturday before a compensated sunday", at(time.September, 26, 9), weekend(), nationalDayFeed, 1},
		{"holiday on a working weekday", at(time.September, 29, 9), weekend(), nationalDayFeed, 2},
		{"no rest days and no holidays", at(time.October, 20, 9), NewRestDays(), "", 0},
		{"holiday only, no weekly rest", at(time.September, 15, 9), NewRestDays(), nationalDayFeed, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := calendar.Parse(tt.text, tt.today.Year(), tt.today.Month())

			got := NextRestDay(tt.today, tt.restDays, current, tt.text)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextRestDay_BeyondHorizon(t *testing.T) {
	// A holiday exactly 30 days ahead is found, 31 days ahead is not.
	today := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

	within := calendar.NewMonthClassification(2025, time.October)
	within.Holidays.Add(31)
	assert.Equal(t, 30, NextRestDay(today, NewRestDays(), within, ""))

	beyond := calendar.NewMonthClassification(2025, time.October)
	assert.Equal(t, 0, NextRestDay(today, NewRestDays(), beyond, ""))
}
