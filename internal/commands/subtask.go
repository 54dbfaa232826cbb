package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var subtaskCmd = &cobra.Command{
	Use:     "subtask",
	Aliases: []string{"sub"},
	Short:   "Manage subtasks",
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add [parent-id] [title]",
	Short: "Add a subtask under a task",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		parentID, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		subtask, err := taskSvc.AddSubtask(ctx, parentID, strings.Join(args[1:], " "))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Subtask #%d added under #%d: %s\n", subtask.ID, parentID, subtask.Title)
	},
}

var subtaskToggleCmd = &cobra.Command{
	Use:   "toggle [id]",
	Short: "Flip a subtask between open and done",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		subtask, err := taskSvc.ToggleSubtask(ctx, id)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		mark := "☐"
		if subtask.IsDone() {
			mark = "☑"
		}
		fmt.Printf("%s #%d %s\n", mark, subtask.ID, subtask.Title)

		if subtask.ParentID != nil {
			done, total, err := taskSvc.SubtaskProgress(ctx, *subtask.ParentID)
			if err == nil {
				fmt.Printf("Progress: %d/%d\n", done, total)
			}
		}
	},
}

var subtaskListCmd = &cobra.Command{
	Use:   "list [parent-id]",
	Short: "List a task's subtasks with progress",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		parentID, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		parent, err := taskSvc.Get(ctx, parentID)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		done, total, err := taskSvc.SubtaskProgress(ctx, parentID)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("#%d %s (%d/%d)\n", parent.ID, parent.Title, done, total)
		for _, subtask := range parent.Subtasks {
			mark := "☐"
			if subtask.IsDone() {
				mark = "☑"
			}
			fmt.Printf("  %s #%-4d %s\n", mark, subtask.ID, subtask.Title)
		}
	},
}

func init() {
	subtaskCmd.AddCommand(subtaskAddCmd)
	subtaskCmd.AddCommand(subtaskToggleCmd)
	subtaskCmd.AddCommand(subtaskListCmd)
}
