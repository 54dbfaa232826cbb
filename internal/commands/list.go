package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tidydo/internal/models"
	"tidydo/internal/parser"
	"tidydo/internal/repository"
	"tidydo/internal/view"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks as a flat table (default) or projected into another view:

  tidydo list --kanban     # columns by status
  tidydo list --calendar   # buckets by due date, current month
  tidydo list --quadrant   # Eisenhower matrix`,
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		filter, err := filterFromFlags(ctx, cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		tasks, err := taskSvc.Search(ctx, filter)
		if err != nil {
			fmt.Printf("Error listing tasks: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			renderJSON(tasks)
			return
		}

		switch {
		case mustBool(cmd, "kanban"):
			renderKanban(tasks)
		case mustBool(cmd, "calendar"):
			renderCalendar(tasks)
		case mustBool(cmd, "quadrant"):
			renderQuadrants(tasks)
		default:
			renderTaskTable(tasks)
		}
	},
}

// filterFromFlags builds a search filter shared by list and search.
func filterFromFlags(ctx context.Context, cmd *cobra.Command) (repository.SearchFilter, error) {
	filter := repository.SearchFilter{TopLevelOnly: true}

	filter.Status, _ = cmd.Flags().GetString("status")
	filter.Priority, _ = cmd.Flags().GetString("priority")
	filter.Tag, _ = cmd.Flags().GetString("tag")
	filter.Limit, _ = cmd.Flags().GetInt("limit")
	if all, _ := cmd.Flags().GetBool("all"); all {
		filter.TopLevelOnly = false
	}

	if categoryName, _ := cmd.Flags().GetString("category"); categoryName != "" {
		categoryID, err := categoryIDByName(ctx, categoryName)
		if err != nil {
			return filter, err
		}
		filter.CategoryID = categoryID
	}
	if raw, _ := cmd.Flags().GetString("due-before"); raw != "" {
		due, err := parser.ParseDueDate(raw)
		if err != nil {
			return filter, err
		}
		filter.DueTo = due
	}
	if raw, _ := cmd.Flags().GetString("due-after"); raw != "" {
		due, err := parser.ParseDueDate(raw)
		if err != nil {
			return filter, err
		}
		filter.DueFrom = due
	}

	return filter, nil
}

func mustBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

func renderJSON(v any) {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(encoded))
}

// renderTaskTable prints tasks in fixed columns sized for 80-char terminals.
func renderTaskTable(tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return
	}

	fmt.Printf("%-4s %-35s %-10s %-8s %-12s %s\n", "ID", "TITLE", "CATEGORY", "PRIORITY", "DUE", "STATUS")
	fmt.Println(strings.Repeat("-", 80))

	for _, task := range tasks {
		var tagNames []string
		for _, tag := range task.Tags {
			tagNames = append(tagNames, "#"+tag.Name)
		}

		title := task.Title
		if len(tagNames) > 0 {
			title += " " + strings.Join(tagNames, " ")
		}
		if task.Recurrence != nil {
			title += " 🔁"
		}
		if len(title) > 33 {
			title = title[:30] + "..."
		}

		category := ""
		if task.Category != nil {
			category = task.Category.Name
		}
		if len(category) > 8 {
			category = category[:5] + "..."
		}

		due := ""
		if task.Due != nil {
			due = task.Due.Format("2006-01-02")
		}

		fmt.Printf("%-4d %-35s %-10s %-8s %-12s %s\n",
			task.ID, title, category, task.Priority, due, task.Status)
	}
}

func renderKanban(tasks []models.Task) {
	board := view.Kanban(tasks)
	for _, status := range []string{models.StatusOpen, models.StatusInProgress, models.StatusDone, models.StatusCancelled} {
		column := board[status]
		fmt.Printf("── %s (%d)\n", strings.ToUpper(status), len(column))
		for _, task := range column {
			fmt.Printf("   #%-4d %s\n", task.ID, task.Title)
		}
		fmt.Println()
	}
}

func renderCalendar(tasks []models.Task) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, -1)

	dated, undated := view.Calendar(tasks, from, to)

	days := make([]string, 0, len(dated))
	for day := range dated {
		days = append(days, day)
	}
	sort.Strings(days)

	fmt.Printf("📅 %s\n\n", now.Format("January 2006"))
	for _, day := range days {
		fmt.Printf("%s\n", day)
		for _, task := range dated[day] {
			fmt.Printf("   #%-4d %s\n", task.ID, task.Title)
		}
	}
	if len(undated) > 0 {
		fmt.Printf("\nNo due date (%d)\n", len(undated))
		for _, task := range undated {
			fmt.Printf("   #%-4d %s\n", task.ID, task.Title)
		}
	}
}

func renderQuadrants(tasks []models.Task) {
	cells := view.Quadrants(tasks, time.Now(), cfg.UrgentWindow())
	for _, quadrant := range []view.Quadrant{view.UrgentImportant, view.NotUrgentImportant, view.UrgentNotImportant, view.NotUrgentNotImportant} {
		cell := cells[quadrant]
		fmt.Printf("── %s (%d)\n", strings.ToUpper(quadrant.String()), len(cell))
		for _, task := range cell {
			due := ""
			if task.Due != nil {
				due = " " + parser.FormatDueDate(task.Due)
			}
			fmt.Printf("   #%-4d %s%s\n", task.ID, task.Title, due)
		}
		fmt.Println()
	}
}

func init() {
	listCmd.Flags().StringP("status", "s", "", "Filter by status (open/in_progress/done/cancelled)")
	listCmd.Flags().StringP("priority", "p", "", "Filter by priority (urgent/high/medium/low)")
	listCmd.Flags().StringP("category", "c", "", "Filter by category name")
	listCmd.Flags().StringP("tag", "t", "", "Filter by tag")
	listCmd.Flags().String("due-before", "", "Only tasks due before this date")
	listCmd.Flags().String("due-after", "", "Only tasks due after this date")
	listCmd.Flags().IntP("limit", "l", 0, "Limit number of results")
	listCmd.Flags().BoolP("all", "a", false, "Include subtasks")
	listCmd.Flags().Bool("json", false, "Output as JSON")
	listCmd.Flags().Bool("kanban", false, "Group by status")
	listCmd.Flags().Bool("calendar", false, "Bucket by due date, current month")
	listCmd.Flags().Bool("quadrant", false, "Eisenhower matrix")
}
