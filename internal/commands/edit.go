package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tidydo/internal/models"
	"tidydo/internal/parser"
	"tidydo/internal/service"
)

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a task",
	Long: `Edit a task's fields. Only the flags you pass change anything:

  tidydo edit 12 --title "New title" --priority high
  tidydo edit 12 --clear-due --clear-category
  tidydo edit 12 --every weekly --weekdays 1,3,5
  tidydo edit 12 --no-repeat`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		patch := service.TaskPatch{}
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			patch.Title = &title
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			patch.Description = &description
		}
		if cmd.Flags().Changed("status") {
			status, _ := cmd.Flags().GetString("status")
			patch.Status = &status
		}
		if cmd.Flags().Changed("priority") {
			priority, _ := cmd.Flags().GetString("priority")
			patch.Priority = &priority
		}
		if mustBool(cmd, "clear-due") {
			patch.ClearDue = true
		} else if cmd.Flags().Changed("due") {
			raw, _ := cmd.Flags().GetString("due")
			due, err := parser.ParseDueDate(raw)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			patch.Due = due
		}
		if mustBool(cmd, "clear-category") {
			patch.ClearCategory = true
		} else if cmd.Flags().Changed("category") {
			name, _ := cmd.Flags().GetString("category")
			categoryID, err := categoryIDByName(ctx, name)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			patch.CategoryID = categoryID
		}
		if mustBool(cmd, "clear-parent") {
			patch.ClearParent = true
		} else if cmd.Flags().Changed("parent") {
			parentID, _ := cmd.Flags().GetUint("parent")
			patch.ParentID = &parentID
		}
		if cmd.Flags().Changed("position") {
			position, _ := cmd.Flags().GetInt("position")
			patch.Position = &position
		}
		if cmd.Flags().Changed("tags") {
			tags, _ := cmd.Flags().GetStringSlice("tags")
			patch.Tags = &tags
		}

		task, err := taskSvc.Update(ctx, id, patch)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		switch {
		case mustBool(cmd, "no-repeat"):
			if task, err = taskSvc.ClearRecurrence(ctx, id); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("🔁 Recurrence removed")
		case cmd.Flags().Changed("every"):
			rule, err := ruleFromFlags(cmd)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			if task, err = taskSvc.SetRecurrence(ctx, id, rule); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("🔁 Repeats %s\n", rule.Frequency)
		}

		fmt.Printf("✅ Task #%d updated: %s\n", task.ID, task.Title)
	},
}

// ruleFromFlags builds a recurrence rule from the shared --every family.
func ruleFromFlags(cmd *cobra.Command) (models.RecurrenceRule, error) {
	rule := models.RecurrenceRule{}
	rule.Frequency, _ = cmd.Flags().GetString("every")
	rule.Interval, _ = cmd.Flags().GetInt("interval")
	if times, _ := cmd.Flags().GetInt("times"); times > 0 {
		rule.Remaining = &times
	}
	if raw, _ := cmd.Flags().GetString("until"); raw != "" {
		until, err := parser.ParseDueDate(raw)
		if err != nil {
			return rule, err
		}
		rule.Until = until
	}
	if raw, _ := cmd.Flags().GetString("weekdays"); raw != "" {
		rule.Weekdays = strings.ReplaceAll(raw, " ", "")
	}
	if monthDay, _ := cmd.Flags().GetInt("month-day"); monthDay > 0 {
		rule.MonthDay = monthDay
	}
	return rule, nil
}

func init() {
	editCmd.Flags().String("title", "", "New title")
	editCmd.Flags().StringP("description", "d", "", "New description")
	editCmd.Flags().StringP("status", "s", "", "New status (open/in_progress/done/cancelled)")
	editCmd.Flags().StringP("priority", "p", "", "New priority (urgent/high/medium/low)")
	editCmd.Flags().String("due", "", "New due date")
	editCmd.Flags().Bool("clear-due", false, "Remove the due date")
	editCmd.Flags().StringP("category", "c", "", "New category name")
	editCmd.Flags().Bool("clear-category", false, "Remove the category")
	editCmd.Flags().Uint("parent", 0, "New parent task ID")
	editCmd.Flags().Bool("clear-parent", false, "Promote to a top-level task")
	editCmd.Flags().StringSliceP("tags", "t", nil, "Replace tags")
	editCmd.Flags().Int("position", 0, "Manual sort position")
	editCmd.Flags().String("every", "", "Recurrence frequency (daily/weekly/monthly/yearly)")
	editCmd.Flags().Int("interval", 1, "Recurrence interval")
	editCmd.Flags().Int("times", 0, "Stop after this many occurrences")
	editCmd.Flags().String("until", "", "Stop repeating after this date")
	editCmd.Flags().String("weekdays", "", "Weekly anchors, 0=Sunday (e.g. 1,3,5)")
	editCmd.Flags().Int("month-day", 0, "Monthly anchor day (1-31)")
	editCmd.Flags().Bool("no-repeat", false, "Remove recurrence")
}
