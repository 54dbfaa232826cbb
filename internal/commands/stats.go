package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tidydo/internal/models"
	"tidydo/internal/parser"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show productivity stats",
	Long: `Show completions, focus time and streaks. All-time by default,
or bounded with --from / --to:

  tidydo stats --from 2026-08-01 --to 2026-08-31`,
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		var from, to time.Time
		if raw, _ := cmd.Flags().GetString("from"); raw != "" {
			parsed, err := parser.ParseDueDate(raw)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			y, m, d := parsed.Date()
			from = time.Date(y, m, d, 0, 0, 0, 0, parsed.Location())
		}
		if raw, _ := cmd.Flags().GetString("to"); raw != "" {
			parsed, err := parser.ParseDueDate(raw)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			to = *parsed
		}

		summary, err := achievementSvc.Stats(ctx, from, to)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if mustBool(cmd, "json") {
			renderJSON(summary)
			return
		}

		fmt.Println("📊 Stats")
		fmt.Printf("   Tasks completed:    %d\n", summary.Completions)
		fmt.Printf("   Focus sessions:     %d\n", summary.CompletedSessions)
		fmt.Printf("   Focus time:         %s\n", formatMinutes(summary.FocusMinutes))
		if summary.TotalFocusMinutes != summary.FocusMinutes {
			fmt.Printf("   Incl. abandoned:    %s\n", formatMinutes(summary.TotalFocusMinutes))
		}
		fmt.Printf("   Current streak:     %d day(s)\n", summary.CurrentStreak)
		fmt.Printf("   Longest streak:     %d day(s)\n", summary.LongestStreak)
		fmt.Printf("   Achievements:       %d unlocked\n", len(summary.Unlocked))
	},
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show unlocked achievements",
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		unlocked, err := achievementSvc.ListUnlocked(ctx)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if mustBool(cmd, "json") {
			renderJSON(unlocked)
			return
		}

		catalog := models.AchievementCatalog()
		fmt.Printf("🏆 Achievements (%d/%d)\n\n", len(unlocked), len(catalog))

		earned := make(map[string]bool, len(unlocked))
		for _, def := range unlocked {
			earned[def.ID] = true
		}
		for _, def := range catalog {
			mark := "  "
			if earned[def.ID] {
				mark = "🏅"
			} else if !mustBool(cmd, "all") {
				continue
			}
			fmt.Printf("%s %-20s %-8s %d %s\n", mark, def.Name, def.Tier, def.Threshold, def.Criterion)
		}
	},
}

func formatMinutes(minutes int64) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func init() {
	statsCmd.Flags().String("from", "", "Start of the range")
	statsCmd.Flags().String("to", "", "End of the range")
	statsCmd.Flags().Bool("json", false, "Output as JSON")

	achievementsCmd.Flags().BoolP("all", "a", false, "Include locked achievements")
	achievementsCmd.Flags().Bool("json", false, "Output as JSON")
}
