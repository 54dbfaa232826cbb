package parser

import (
	"regexp"
	"strings"
	"time"

	"tidydo/internal/models"
)

// ParsedTask represents a task parsed from natural language
type ParsedTask struct {
	Title    string
	Category string
	Tags     []string
	Priority string
	Due      *time.Time
	Errors   []string
}

// ParseTitle extracts metadata from a task title using natural syntax
// Syntax: "Task title #tag1,tag2 @category +priority due:3days"
func ParseTitle(input string) ParsedTask {
	result := ParsedTask{
		Title:  input,
		Tags:   []string{},
		Errors: []string{},
	}

	// Extract tags (#tag1,tag2 or #tag1 #tag2)
	tagRegex := regexp.MustCompile(`#([a-zA-Z0-9_,-]+)`)
	for _, match := range tagRegex.FindAllStringSubmatch(input, -1) {
		if len(match) > 1 {
			for _, tag := range strings.Split(match[1], ",") {
				tag = strings.TrimSpace(tag)
				if tag != "" {
					result.Tags = append(result.Tags, tag)
				}
			}
		}
	}
	input = tagRegex.ReplaceAllString(input, "")

	// Extract category (@category-name)
	categoryRegex := regexp.MustCompile(`@([a-zA-Z0-9_-]+)`)
	if matches := categoryRegex.FindStringSubmatch(input); len(matches) > 1 {
		result.Category = matches[1]
		input = categoryRegex.ReplaceAllString(input, "")
	}

	// Extract priority (+urgent, +high, +medium, +low)
	priorityRegex := regexp.MustCompile(`\+([a-zA-Z]+)`)
	if matches := priorityRegex.FindStringSubmatch(input); len(matches) > 1 {
		priority := strings.ToLower(matches[1])
		if models.ValidPriority(priority) {
			result.Priority = priority
		} else {
			result.Errors = append(result.Errors, "Invalid priority '"+matches[1]+"'. Use: urgent, high, medium or low")
		}
		input = priorityRegex.ReplaceAllString(input, "")
	}

	// Extract due date (due:3days, due:2026-12-15, etc.)
	dueRegex := regexp.MustCompile(`due:([^\s]+)`)
	if matches := dueRegex.FindStringSubmatch(input); len(matches) > 1 {
		due, err := ParseDueDate(matches[1])
		if err != nil {
			result.Errors = append(result.Errors, "Invalid due date '"+matches[1]+"': "+err.Error())
		} else {
			result.Due = due
		}
		input = dueRegex.ReplaceAllString(input, "")
	}

	result.Title = strings.Join(strings.Fields(input), " ")

	return result
}
