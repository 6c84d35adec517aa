// Package recurrence expands a dated entry into a finite series of
// copies according to a recurrence rule.
package recurrence

import (
	"fmt"
	"time"
)

// Recurrence rules.
const (
	None    = "none"
	Daily   = "daily"
	Weekly  = "weekly"
	Monthly = "monthly"
)

// DefaultOccurrences is how many copies a recurring entry expands into.
const DefaultOccurrences = 4

// ValidRule reports whether rule is a recognized recurrence rule
func ValidRule(rule string) bool {
	switch rule {
	case None, Daily, Weekly, Monthly:
		return true
	}
	return false
}

// step returns the day offset between consecutive occurrences.
// Monthly is a fixed 30-day offset, not a calendar-month computation;
// it drifts against month boundaries and is kept that way on purpose.
func step(rule string) (days int, ok bool) {
	switch rule {
	case Daily:
		return 1, true
	case Weekly:
		return 7, true
	case Monthly:
		return 30, true
	}
	return 0, false
}

// Expand produces the series of dates for a recurring entry starting at
// base. A rule of "none" yields just the base date. Any other rule
// yields exactly occurrences dates, strictly increasing, the first being
// base itself. Occurrences below 1 fall back to DefaultOccurrences.
func Expand(base time.Time, rule string, occurrences int) ([]time.Time, error) {
	if rule == "" || rule == None {
		return []time.Time{base}, nil
	}

	days, ok := step(rule)
	if !ok {
		return nil, fmt.Errorf("unknown recurrence rule: %q", rule)
	}

	if occurrences < 1 {
		occurrences = DefaultOccurrences
	}

	dates := make([]time.Time, 0, occurrences)
	for i := 0; i < occurrences; i++ {
		dates = append(dates, base.AddDate(0, 0, days*i))
	}
	return dates, nil
}
