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

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a new task. Metadata can be embedded in the title:

  tidydo add "Pay rent #bills @life +high due:tomorrow"

or passed as flags. Inline syntax: #tag1,tag2  @category  +priority  due:DATE.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		parsed := parser.ParseTitle(strings.Join(args, " "))
		for _, warning := range parsed.Errors {
			fmt.Printf("⚠️  %s\n", warning)
		}
		if parsed.Title == "" {
			fmt.Println("Error: task title must not be empty")
			os.Exit(1)
		}

		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetString("priority")
		if parsed.Priority != "" {
			priority = parsed.Priority
		}
		categoryName, _ := cmd.Flags().GetString("category")
		if parsed.Category != "" {
			categoryName = parsed.Category
		}
		flagTags, _ := cmd.Flags().GetStringSlice("tags")
		tags := append(parsed.Tags, flagTags...)

		due := parsed.Due
		if dueFlag, _ := cmd.Flags().GetString("due"); dueFlag != "" {
			parsedDue, err := parser.ParseDueDate(dueFlag)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			due = parsedDue
		}

		draft := service.TaskDraft{
			Title:       parsed.Title,
			Description: description,
			Priority:    priority,
			Due:         due,
			Tags:        tags,
		}

		if categoryName != "" {
			categoryID, err := categoryIDByName(ctx, categoryName)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			draft.CategoryID = categoryID
		}
		if parentID, _ := cmd.Flags().GetUint("parent"); parentID > 0 {
			pid := parentID
			draft.ParentID = &pid
		}

		task, err := taskSvc.Create(ctx, draft)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if every, _ := cmd.Flags().GetString("every"); every != "" {
			rule := models.RecurrenceRule{Frequency: every}
			rule.Interval, _ = cmd.Flags().GetInt("interval")
			if times, _ := cmd.Flags().GetInt("times"); times > 0 {
				rule.Remaining = &times
			}
			if _, err := taskSvc.SetRecurrence(ctx, task.ID, rule); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("🔁 Repeats %s\n", every)
		}

		fmt.Printf("✅ New task \"%s\" added - ID: %d\n", task.Title, task.ID)
		if task.Due != nil {
			fmt.Printf("%s\n", parser.FormatDueDate(task.Due))
		}
	},
}

// categoryIDByName resolves a category by name, case-insensitively.
func categoryIDByName(ctx context.Context, name string) (*uint, error) {
	categories, err := taskSvc.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, category := range categories {
		if strings.EqualFold(category.Name, name) {
			id := category.ID
			return &id, nil
		}
	}
	return nil, fmt.Errorf("category '%s' does not exist (see 'tidydo category list')", name)
}

func init() {
	addCmd.Flags().StringP("description", "d", "", "Task description")
	addCmd.Flags().StringP("priority", "p", "", "Priority (urgent/high/medium/low)")
	addCmd.Flags().StringP("category", "c", "", "Category name")
	addCmd.Flags().StringSliceP("tags", "t", []string{}, "Tags")
	addCmd.Flags().String("due", "", "Due date (yyyy-mm-dd, today, 3 days, ...)")
	addCmd.Flags().Uint("parent", 0, "Parent task ID (creates a subtask)")
	addCmd.Flags().String("every", "", "Recurrence frequency (daily/weekly/monthly/yearly)")
	addCmd.Flags().Int("interval", 1, "Recurrence interval")
	addCmd.Flags().Int("times", 0, "Stop after this many occurrences")
}
