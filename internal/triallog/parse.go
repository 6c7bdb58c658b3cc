package triallog

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts covers the date renderings produced by spreadsheet exports.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"01/02/2006",
	"01/02/06",
	"02.01.2006",
}

// clockLayouts covers time-of-day renderings, including datetime cells from
// which only the clock is taken.
var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func parseClock(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	for _, layout := range clockLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}
