package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage categories",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		categories, err := taskSvc.ListCategories(ctx)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		for _, category := range categories {
			icon := category.Icon
			if icon == "" {
				icon = "📁"
			}
			fmt.Printf("%-4d %s %s\n", category.ID, icon, category.Name)
		}
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		icon, _ := cmd.Flags().GetString("icon")
		color, _ := cmd.Flags().GetString("color")

		category, err := taskSvc.CreateCategory(ctx, args[0], icon, color)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Category \"%s\" added - ID: %d\n", category.Name, category.ID)
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a category, keeping its tasks",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if err := taskSvc.DeleteCategory(ctx, id); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("🗑  Category #%d deleted, tasks kept\n", id)
	},
}

func init() {
	categoryAddCmd.Flags().String("icon", "", "Display icon")
	categoryAddCmd.Flags().String("color", "", "Display color")

	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryDeleteCmd)
}
