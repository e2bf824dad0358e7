package ops

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

const daysPerWeek = 7

var dateLayouts = []string{DateLayout, time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

// ParseDate parses a calendar date or timestamp. Timestamps keep their own
// calendar day; no timezone conversion is applied.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// MondayOf returns the Monday starting the ISO week that contains t.
func MondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + daysPerWeek - int(time.Monday)) % daysPerWeek

	return day.AddDate(0, 0, -offset)
}

// WeekStart returns the Monday of the week containing date, as YYYY-MM-DD.
func WeekStart(date string) (string, error) {
	parsed, err := ParseDate(date)
	if err != nil {
		return "", err
	}

	return MondayOf(parsed).Format(DateLayout), nil
}

// ParseISOWeek returns the Monday of an ISO week written as YYYY-Www.
func ParseISOWeek(week string) (time.Time, error) {
	yearPart, weekPart, found := strings.Cut(strings.ToUpper(strings.TrimSpace(week)), "-W")
	if !found {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWeek, week)
	}

	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWeek, week)
	}

	number, err := strconv.Atoi(weekPart)
	if err != nil || number < 1 || number > 53 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWeek, week)
	}

	// January 4th is always in ISO week 1.
	monday := MondayOf(time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)).AddDate(0, 0, (number-1)*daysPerWeek)

	if isoYear, _ := monday.ISOWeek(); isoYear != year {
		return time.Time{}, fmt.Errorf("%w: %q has no week %d", ErrInvalidWeek, week, number)
	}

	return monday, nil
}

// ISOWeekLabel formats the ISO week containing t as YYYY-Www.
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()

	return fmt.Sprintf("%04d-W%02d", year, week)
}
