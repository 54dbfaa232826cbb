package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search tasks by title and description",
	Long: `Case-insensitive substring search over titles and descriptions,
combinable with the same filters as list:

  tidydo search rent --status open --priority high`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		filter, err := filterFromFlags(ctx, cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		filter.Query = strings.Join(args, " ")
		filter.TopLevelOnly = false

		tasks, err := taskSvc.Search(ctx, filter)
		if err != nil {
			fmt.Printf("Error searching tasks: %v\n", err)
			os.Exit(1)
		}

		if mustBool(cmd, "json") {
			renderJSON(tasks)
			return
		}

		fmt.Printf("🔍 %d result(s) for \"%s\"\n\n", len(tasks), filter.Query)
		renderTaskTable(tasks)
	},
}

func init() {
	searchCmd.Flags().StringP("status", "s", "", "Filter by status")
	searchCmd.Flags().StringP("priority", "p", "", "Filter by priority")
	searchCmd.Flags().StringP("category", "c", "", "Filter by category name")
	searchCmd.Flags().StringP("tag", "t", "", "Filter by tag")
	searchCmd.Flags().String("due-before", "", "Only tasks due before this date")
	searchCmd.Flags().String("due-after", "", "Only tasks due after this date")
	searchCmd.Flags().IntP("limit", "l", 0, "Limit number of results")
	searchCmd.Flags().BoolP("all", "a", true, "Include subtasks")
	searchCmd.Flags().Bool("json", false, "Output as JSON")
}
