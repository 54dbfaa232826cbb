package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tidydo/internal/models"
	"tidydo/internal/parser"
	"tidydo/internal/service"
)

var doneCmd = &cobra.Command{
	Use:   "done [id]",
	Short: "Mark a task as completed",
	Long: `Complete a task. A recurring task also gets its next occurrence
scheduled, carrying the same title, tags and category.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		result, err := taskSvc.Complete(ctx, id)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("✅ Task #%d completed: %s\n", result.Completed.ID, result.Completed.Title)
		switch {
		case result.NewInstance != nil:
			fmt.Printf("🔁 Next occurrence #%d %s\n",
				result.NewInstance.ID, parser.FormatDueDate(result.NewInstance.Due))
		case result.RuleExhausted:
			fmt.Println("🏁 Recurrence finished, no more occurrences")
		}
	},
}

var undoneCmd = &cobra.Command{
	Use:   "undone [id]",
	Short: "Reopen a completed task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		status := models.StatusOpen
		task, err := taskSvc.Update(ctx, id, service.TaskPatch{Status: &status})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("↩️  Task #%d reopened: %s\n", task.ID, task.Title)
	},
}
