package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tidydo/internal/service"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep recurring tasks current in the background",
	Long: `Run a long-lived process that periodically rolls overdue recurring
tasks forward to their next occurrence, so stale instances never pile up.`,
	Run: func(cmd *cobra.Command, args []string) {
		initServices()
		ctx := context.Background()

		roll := func() {
			moved, err := taskSvc.RollForward(ctx)
			if err != nil {
				fmt.Printf("⚠️  Roll-forward failed: %v\n", err)
				return
			}
			if moved > 0 {
				fmt.Printf("🔁 %s moved %d recurring task(s) forward\n",
					time.Now().Format("15:04:05"), moved)
			}
		}

		if at, ok, err := taskSvc.LastRollForward(ctx); err == nil && ok {
			fmt.Printf("Last check: %s\n", at.Format("2006-01-02 15:04:05"))
		}

		// Catch up immediately, then on the configured interval.
		roll()

		scheduler := service.NewSchedulerService(time.Local)
		if _, err := scheduler.ScheduleInterval(cfg.WatchInterval(), roll); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		scheduler.Start()
		fmt.Printf("👀 Watching, checking every %s. Ctrl+C to stop.\n", cfg.WatchInterval())

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		scheduler.Stop()
		fmt.Println("Stopped.")
	},
}
