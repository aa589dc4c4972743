package domain

import (
	"fmt"
	"strings"
	"time"
)

const periodLayout = "2006-01"

// CurrentPeriod returns the billing period label (YYYY-MM) containing now.
func CurrentPeriod(now time.Time) string {
	return now.UTC().Format(periodLayout)
}

// ParsePeriod normalises a billing period label, defaulting to the current period when empty.
func ParsePeriod(s string, now time.Time) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return CurrentPeriod(now), nil
	}

	t, err := time.Parse(periodLayout, trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: period must be formatted as YYYY-MM", ErrValidation)
	}
	return t.Format(periodLayout), nil
}

// DueDate returns the rent due date inside the period, clamping dueDay to the month length.
func DueDate(period string, dueDay int) (time.Time, error) {
	start, err := time.Parse(periodLayout, period)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid period %q", ErrValidation, period)
	}

	lastDay := start.AddDate(0, 1, -1).Day()
	if dueDay < 1 {
		dueDay = 1
	}
	if dueDay > lastDay {
		dueDay = lastDay
	}

	return time.Date(start.Year(), start.Month(), dueDay, 0, 0, 0, 0, time.UTC), nil
}
