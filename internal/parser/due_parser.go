package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseDueDate parses various due date formats
// Supported formats:
// - yyyy-mm-dd (e.g., "2026-12-15")
// - dd/mm/yyyy (e.g., "15/12/2026")
// - today / tomorrow
// - X days (e.g., "3 days", "1 day")
// - X hours (e.g., "24 hours", "1 hour")
// - X weeks (e.g., "2 weeks", "1 week")
func ParseDueDate(input string) (*time.Time, error) {
	if input == "" {
		return nil, nil
	}

	input = strings.TrimSpace(input)

	switch strings.ToLower(input) {
	case "today":
		due := endOfDay(time.Now())
		return &due, nil
	case "tomorrow":
		due := endOfDay(time.Now().AddDate(0, 0, 1))
		return &due, nil
	}

	if due, err := parseISODate(input); err == nil {
		return due, nil
	}
	if due, err := parseSlashDate(input); err == nil {
		return due, nil
	}
	if due, err := parseRelativeTime(input); err == nil {
		return due, nil
	}

	return nil, fmt.Errorf("invalid date format. Use: yyyy-mm-dd, dd/mm/yyyy, today, tomorrow, X days, X hours, or X weeks")
}

// parseISODate parses yyyy-mm-dd format
func parseISODate(input string) (*time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01-02", input, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date format")
	}
	due := endOfDay(parsed)
	return &due, nil
}

// parseSlashDate parses dd/mm/yyyy format
func parseSlashDate(input string) (*time.Time, error) {
	dateRegex := regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	matches := dateRegex.FindStringSubmatch(input)

	if len(matches) != 4 {
		return nil, fmt.Errorf("invalid date format")
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	if day < 1 || day > 31 {
		return nil, fmt.Errorf("day must be between 1 and 31")
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12")
	}

	due := time.Date(year, time.Month(month), day, 23, 59, 59, 0, time.Local)

	// Check if date is valid (handles leap years, etc.)
	if due.Day() != day || due.Month() != time.Month(month) || due.Year() != year {
		return nil, fmt.Errorf("invalid date")
	}

	return &due, nil
}

// parseRelativeTime parses relative time formats like "3 days", "24 hours", etc.
func parseRelativeTime(input string) (*time.Time, error) {
	input = strings.ToLower(input)

	relativeRegex := regexp.MustCompile(`^(\d+)\s*(hour|hours|day|days|week|weeks|d|w|h)$`)
	matches := relativeRegex.FindStringSubmatch(input)

	if len(matches) != 3 {
		return nil, fmt.Errorf("invalid relative time format")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil || amount < 1 {
		return nil, fmt.Errorf("invalid number")
	}

	now := time.Now()

	switch matches[2] {
	case "hour", "hours", "h":
		due := now.Add(time.Duration(amount) * time.Hour)
		return &due, nil
	case "day", "days", "d":
		due := endOfDay(now.AddDate(0, 0, amount))
		return &due, nil
	case "week", "weeks", "w":
		due := endOfDay(now.AddDate(0, 0, amount*7))
		return &due, nil
	default:
		return nil, fmt.Errorf("unsupported time unit")
	}
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// FormatDueDate formats a due date for display
func FormatDueDate(due *time.Time) string {
	if due == nil {
		return ""
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location())
	daysDiff := int(dueDay.Sub(today).Hours() / 24)

	dateStr := due.Format("2006-01-02")

	switch {
	case daysDiff < 0:
		return fmt.Sprintf("⚠️ OVERDUE (%s)", dateStr)
	case daysDiff == 0:
		return fmt.Sprintf("🔥 Due today (%s)", dateStr)
	case daysDiff == 1:
		return fmt.Sprintf("📅 Due tomorrow (%s)", dateStr)
	case daysDiff <= 7:
		return fmt.Sprintf("📅 Due %s (in %d days)", dateStr, daysDiff)
	default:
		return fmt.Sprintf("📅 Due %s", dateStr)
	}
}
