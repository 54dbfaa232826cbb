package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		tags, err := taskSvc.ListTags(ctx)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		for _, tag := range tags {
			fmt.Printf("%-4d #%s\n", tag.ID, tag.Name)
		}
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a tag everywhere",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if err := taskSvc.DeleteTag(ctx, id); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("🗑  Tag #%d removed from all tasks\n", id)
	},
}

func init() {
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagDeleteCmd)
}
