package workday

import (
	"time"

	"github.com/Superior-Josh/fish-time-pro/internal/calendar"
	"github.com/Superior-Josh/fish-time-pro/pkg/dateutil"
)

// ForecastHorizon is the number of days NextRestDay looks ahead
const ForecastHorizon = 30

// NextRestDay returns how many days from today the next rest day is, today
// included. current is the classification of today's month; other months are
// parsed from text on demand. Returns 0 when no rest day falls within the horizon.
func NextRestDay(today time.Time, restDays RestDays, current calendar.MonthClassification, text string) int {
	start := dateutil.StartOfDay(today)

	cls := current
	var events []calendar.Event
	parsed := false

	for offset := 0; offset <= ForecastHorizon; offset++ {
		day := start.AddDate(0, 0, offset)

		if day.Year() != cls.Year || day.Month() != cls.Month {
			if dateutil.IsSameMonth(day, start) {
				cls = current
			} else {
				if !parsed {
					events = calendar.ParseEvents(text)
					parsed = true
				}
				cls = calendar.Classify(events, day.Year(), day.Month())
			}
		}

		if isRestDay(day, restDays, cls) {
			return dateutil.DaysBetween(start, day)
		}
	}

	return 0
}

func isRestDay(date time.Time, restDays RestDays, cls calendar.MonthClassification) bool {
	if restDays.Contains(dateutil.ISOWeekday(date)) {
		return !cls.IsCompensated(date.Day())
	}
	return cls.IsHoliday(date.Day())
}
