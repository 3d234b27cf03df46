package calendar

import (
	"bufio"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// property is one content line of a VEVENT: NAME;PARAM=VALUE:VALUE
type property struct {
	name   string
	params map[string][]string
	value  string
}

// Parse classifies the days of the given month from raw calendar text.
// It never fails: empty or unparseable text yields two empty sets.
func Parse(text string, year int, month time.Month) MonthClassification {
	return Classify(ParseEvents(text), year, month)
}

// Classify builds the month classification from already parsed events
func Classify(events []Event, year int, month time.Month) MonthClassification {
	result := NewMonthClassification(year, month)

	for _, ev := range events {
		for _, day := range occurrenceDays(ev.ValueDate, ev.RRule, year, month) {
			result.Holidays.Add(day)
		}

		if ev.StartDate == nil || !IsCompensationLabel(ev.Label) {
			continue
		}
		for _, day := range occurrenceDays(ev.StartDate, ev.RRule, year, month) {
			result.CompensatedWorkdays.Add(day)
		}
	}

	return result
}

// ParseEvents extracts events from iCalendar text.
// Documents the ical library accepts are read through it; anything else goes
// through a line scanner that skips lines it cannot understand.
func ParseEvents(text string) []Event {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	cal, err := ical.ParseCalendar(strings.NewReader(text))
	if err == nil {
		if events := eventsFromCalendar(cal); len(events) > 0 {
			return events
		}
	}

	return scanEvents(text)
}

func eventsFromCalendar(cal *ical.Calendar) []Event {
	events := make([]Event, 0)

	for _, ve := range cal.Events() {
		var ev Event
		for _, name := range []ical.ComponentProperty{
			ical.ComponentPropertyDtStart,
			ical.ComponentPropertySummary,
			ical.ComponentPropertyRrule,
		} {
			p := ve.GetProperty(name)
			if p == nil {
				continue
			}
			ev.apply(property{
				name:   string(name),
				params: p.ICalParameters,
				value:  p.Value,
			})
		}
		events = append(events, ev)
	}

	return events
}

// scanEvents reads BEGIN:VEVENT/END:VEVENT blocks line by line
func scanEvents(text string) []Event {
	events := make([]Event, 0)

	var current *Event
	for _, line := range unfoldLines(text) {
		switch {
		case strings.EqualFold(line, "BEGIN:VEVENT"):
			current = &Event{}
			continue
		case strings.EqualFold(line, "END:VEVENT"):
			if current != nil {
				events = append(events, *current)
			}
			current = nil
			continue
		}

		if current == nil {
			continue
		}

		p, ok := parseLine(line)
		if !ok {
			continue
		}
		current.apply(p)
	}

	return events
}

// unfoldLines splits text into logical content lines, joining folded continuations
func unfoldLines(text string) []string {
	lines := make([]string, 0)

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := strings.TrimRight(scanner.Text(), "\r")
		if raw == "" {
			continue
		}

		if (raw[0] == ' ' || raw[0] == '\t') && len(lines) > 0 {
			lines[len(lines)-1] += raw[1:]
			continue
		}

		lines = append(lines, strings.TrimSpace(raw))
	}

	return lines
}

// parseLine splits "NAME;K=V;K2=V2:VALUE" into its parts
func parseLine(line string) (property, bool) {
	colon := strings.IndexByte(line, ':')
	if colon <= 0 {
		return property{}, false
	}

	head := strings.Split(line[:colon], ";")
	p := property{
		name:   strings.ToUpper(strings.TrimSpace(head[0])),
		params: make(map[string][]string),
		value:  strings.TrimSpace(line[colon+1:]),
	}
	if p.name == "" {
		return property{}, false
	}

	for _, param := range head[1:] {
		key, value, found := strings.Cut(param, "=")
		if !found {
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		p.params[key] = append(p.params[key], strings.Split(value, ",")...)
	}

	return p, true
}

func (e *Event) apply(p property) {
	switch strings.ToUpper(p.name) {
	case string(ical.ComponentPropertyDtStart):
		if isDateValue(p.params) {
			if date, ok := parseDate(p.value); ok {
				e.ValueDate = &date
			}
		}
		if date, ok := parseDatePrefix(p.value); ok {
			e.StartDate = &date
		}
	case string(ical.ComponentPropertySummary):
		e.Label = p.value
	case string(ical.ComponentPropertyRrule):
		e.RRule = p.value
	}
}

func isDateValue(params map[string][]string) bool {
	for key, values := range params {
		if !strings.EqualFold(key, "VALUE") {
			continue
		}
		for _, v := range values {
			if strings.EqualFold(strings.TrimSpace(v), "DATE") {
				return true
			}
		}
	}
	return false
}

// parseDate parses an all-day YYYYMMDD value
func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if len(value) != len("20060102") {
		return time.Time{}, false
	}
	date, err := time.Parse("20060102", value)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// parseDatePrefix parses a DATE or DATE-TIME value and returns its calendar date
func parseDatePrefix(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"20060102", "20060102T150405", "20060102T150405Z"} {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
