// Package recurrence computes next-occurrence dates for recurring tasks.
// All functions are pure; materialization lives in the task service.
package recurrence

import (
	"time"

	"tidydo/internal/apperr"
	"tidydo/internal/models"
)

// Normalize sanitizes a rule in place: interval floored at 1, weekday
// anchors filtered to 0..6, negative counters dropped. An unknown frequency
// is a ValidationError.
func Normalize(rule *models.RecurrenceRule) error {
	switch rule.Frequency {
	case models.FreqDaily, models.FreqWeekly, models.FreqMonthly, models.FreqYearly:
	default:
		return apperr.Validation("frequency", "must be daily, weekly, monthly or yearly")
	}
	if rule.Interval < 1 {
		rule.Interval = 1
	}
	rule.SetWeekdays(rule.WeekdayList())
	if rule.Frequency != models.FreqWeekly {
		rule.Weekdays = ""
	}
	if rule.MonthDay < 0 || rule.MonthDay > 31 {
		rule.MonthDay = 0
	}
	if rule.Remaining != nil && *rule.Remaining < 0 {
		rule.Remaining = nil
	}
	return nil
}

// Exhausted reports whether the rule's end condition is already met as of
// the given date.
func Exhausted(rule *models.RecurrenceRule, from time.Time) bool {
	if rule.Remaining != nil && *rule.Remaining <= 0 {
		return true
	}
	if rule.Until != nil && dateOf(from).After(dateOf(*rule.Until)) {
		return true
	}
	return false
}

// NextOccurrence returns the earliest date strictly after from satisfying
// the rule, or false when the end condition is met. Monthly anchors past the
// target month's length clamp to its last day; yearly Feb 29 clamps to
// Feb 28 off leap years.
func NextOccurrence(rule *models.RecurrenceRule, from time.Time) (time.Time, bool) {
	if Exhausted(rule, from) {
		return time.Time{}, false
	}

	var next time.Time
	switch rule.Frequency {
	case models.FreqDaily:
		next = dateOf(from).AddDate(0, 0, rule.Interval)
	case models.FreqWeekly:
		next = nextWeekly(rule, from)
	case models.FreqMonthly:
		next = nextByMonths(rule, from, rule.Interval)
	case models.FreqYearly:
		next = nextByMonths(rule, from, 12*rule.Interval)
	default:
		return time.Time{}, false
	}

	if rule.Until != nil && next.After(dateOf(*rule.Until)) {
		return time.Time{}, false
	}
	return next, true
}

// nextWeekly advances to the next anchored weekday. Without anchors the rule
// simply jumps whole interval weeks.
func nextWeekly(rule *models.RecurrenceRule, from time.Time) time.Time {
	start := dateOf(from)
	anchors := rule.WeekdayList()
	if len(anchors) == 0 {
		return start.AddDate(0, 0, 7*rule.Interval)
	}

	anchored := make(map[time.Weekday]bool, len(anchors))
	for _, d := range anchors {
		anchored[d] = true
	}

	// Walk forward one day at a time; a day qualifies when its weekday is
	// anchored and its week lands on the interval grid counted from the
	// week of from. Bounded: an anchored weekday always exists within
	// interval+1 weeks.
	base := startOfWeek(start)
	limit := 7 * (rule.Interval + 1)
	for i := 1; i <= limit; i++ {
		day := start.AddDate(0, 0, i)
		if !anchored[day.Weekday()] {
			continue
		}
		weeks := int(startOfWeek(day).Sub(base).Hours() / 24 / 7)
		if weeks%rule.Interval == 0 {
			return day
		}
	}
	return start.AddDate(0, 0, 7*rule.Interval)
}

// nextByMonths jumps the given number of months, clamping the anchor day to
// the target month's length.
func nextByMonths(rule *models.RecurrenceRule, from time.Time, months int) time.Time {
	anchor := rule.MonthDay
	if anchor == 0 {
		anchor = from.Day()
	}

	y, m, _ := from.Date()
	// Normalize to the first of the month before adding so AddDate cannot
	// spill into the month after the target (e.g. Jan 31 + 1 month).
	first := time.Date(y, m, 1, 0, 0, 0, 0, from.Location())
	target := first.AddDate(0, months, 0)

	day := anchor
	if last := lastDayOfMonth(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, from.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Sunday beginning t's week.
func startOfWeek(t time.Time) time.Time {
	return dateOf(t).AddDate(0, 0, -int(t.Weekday()))
}
