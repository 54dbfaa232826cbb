package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tidydo/internal/apperr"
	"tidydo/internal/models"
	"tidydo/internal/tui"
)

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Run pomodoro focus sessions",
	Long: `Run pomodoro focus sessions, optionally attached to a task:

  tidydo focus start 12          # focus on task #12
  tidydo focus start             # free-floating session
  tidydo focus pause | resume
  tidydo focus complete | abandon
  tidydo focus status`,
}

var focusStartCmd = &cobra.Command{
	Use:   "start [task-id]",
	Short: "Start a focus session",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		var taskID *uint
		var task *models.Task
		if len(args) == 1 {
			id, err := parseID(args[0])
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			task, err = taskSvc.Get(ctx, id)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			taskID = &task.ID
		}

		minutes, _ := cmd.Flags().GetInt("minutes")
		if minutes <= 0 {
			minutes = cfg.FocusMinutes
		}

		session, err := sessionSvc.Start(ctx, taskID, time.Duration(minutes)*time.Minute)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if mustBool(cmd, "no-ui") {
			fmt.Printf("🍅 Session #%d started (%dm)\n", session.ID, minutes)
			return
		}

		if err := tui.RunFocusTUI(sessionSvc, session, task); err != nil {
			fmt.Printf("Error running focus timer: %v\n", err)
			os.Exit(1)
		}
	},
}

var focusPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running session",
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		session, err := sessionSvc.Pause(context.Background())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("⏸  Session #%d paused after %dm focused\n", session.ID, session.RunningSeconds/60)
	},
}

var focusResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused session",
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		session, err := sessionSvc.Resume(context.Background())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("▶️  Session #%d running\n", session.ID)
	},
}

var focusCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Finish the session with credit",
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		session, err := sessionSvc.Complete(context.Background())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Session #%d completed: %dm focused\n", session.ID, session.ActualSeconds/60)
	},
}

var focusAbandonCmd = &cobra.Command{
	Use:   "abandon",
	Short: "Drop the session without credit",
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		session, err := sessionSvc.Abandon(context.Background())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("🗑  Session #%d abandoned after %dm\n", session.ID, session.ActualSeconds/60)
	},
}

var focusStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active session",
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		session, err := sessionSvc.Active(ctx)
		if err != nil {
			if apperr.IsNotFound(err) {
				fmt.Println("No active session. Start one with 'tidydo focus start'.")
				return
			}
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		now := time.Now()
		icon := "🍅"
		if session.State == models.SessionPaused {
			icon = "⏸ "
		}
		fmt.Printf("%s Session #%d %s: %s elapsed, %s left\n",
			icon, session.ID, session.State,
			formatMinSec(session.Elapsed(now)), formatMinSec(session.Remaining(now)))

		if session.TaskID != nil {
			if task, err := taskSvc.Get(ctx, *session.TaskID); err == nil {
				fmt.Printf("   Task #%d: %s\n", task.ID, task.Title)
			}
		}
	},
}

func formatMinSec(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func init() {
	focusStartCmd.Flags().IntP("minutes", "m", 0, "Planned length in minutes")
	focusStartCmd.Flags().Bool("no-ui", false, "Start without the interactive timer")

	focusCmd.AddCommand(focusStartCmd)
	focusCmd.AddCommand(focusPauseCmd)
	focusCmd.AddCommand(focusResumeCmd)
	focusCmd.AddCommand(focusCompleteCmd)
	focusCmd.AddCommand(focusAbandonCmd)
	focusCmd.AddCommand(focusStatusCmd)
}
