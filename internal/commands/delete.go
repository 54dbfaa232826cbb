package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task and its subtasks",
	Long: `Archive a task. Subtasks go with it; finished focus sessions keep
their reference for the stats history.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		task, err := taskSvc.Get(ctx, id)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if !mustBool(cmd, "force") {
			fmt.Printf("Delete task #%d \"%s\"", task.ID, task.Title)
			if n := len(task.Subtasks); n > 0 {
				fmt.Printf(" and %d subtask(s)", n)
			}
			fmt.Print("? [y/N] ")

			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Cancelled.")
				return
			}
		}

		if err := taskSvc.Delete(ctx, id); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("🗑  Task #%d deleted\n", id)
	},
}

func init() {
	deleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation")
}
