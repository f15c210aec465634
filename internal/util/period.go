// Package util holds small shared helpers with no domain dependencies.
package util

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	monthlyKeyRe = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	weeklyKeyRe  = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)
)

// MonthlyKey returns the canonical monthly period key, e.g. "2025-01".
func MonthlyKey(t time.Time) string {
	return t.Format("2006-01")
}

// WeeklyKey returns the ISO week period key, e.g. "2025-W03".
func WeeklyKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ParsePeriodKey validates a period key and reports whether it is weekly.
func ParsePeriodKey(key string) (weekly bool, err error) {
	if m := monthlyKeyRe.FindStringSubmatch(key); m != nil {
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return false, fmt.Errorf("invalid month in period key %q", key)
		}
		return false, nil
	}
	if m := weeklyKeyRe.FindStringSubmatch(key); m != nil {
		week, _ := strconv.Atoi(m[2])
		if week < 1 || week > 53 {
			return false, fmt.Errorf("invalid week in period key %q", key)
		}
		return true, nil
	}
	return false, fmt.Errorf("unrecognized period key %q", key)
}

// PeriodWindow returns the UTC [start, end) window a period key covers.
// Monthly windows run from the first of the month; weekly windows run
// Monday through Sunday per ISO 8601.
func PeriodWindow(key string) (start, end time.Time, err error) {
	if m := monthlyKeyRe.FindStringSubmatch(key); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid month in period key %q", key)
		}
		start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), nil
	}
	if m := weeklyKeyRe.FindStringSubmatch(key); m != nil {
		year, _ := strconv.Atoi(m[1])
		week, _ := strconv.Atoi(m[2])
		if week < 1 || week > 53 {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid week in period key %q", key)
		}
		start = isoWeekStart(year, week)
		return start, start.AddDate(0, 0, 7), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unrecognized period key %q", key)
}

// PreviousPeriodKey returns the key of the period immediately before the
// given one, used when carrying unspent budget forward.
func PreviousPeriodKey(key string) (string, error) {
	start, _, err := PeriodWindow(key)
	if err != nil {
		return "", err
	}
	weekly, _ := ParsePeriodKey(key)
	prev := start.AddDate(0, 0, -1)
	if weekly {
		return WeeklyKey(prev), nil
	}
	return MonthlyKey(prev), nil
}

// isoWeekStart finds the Monday of the given ISO week.
func isoWeekStart(year, week int) time.Time {
	// Jan 4 is always in ISO week 1.
	t := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := t.AddDate(0, 0, 1-wd)
	return monday.AddDate(0, 0, (week-1)*7)
}
