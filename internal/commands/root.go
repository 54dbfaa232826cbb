package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tidydo/internal/config"
	"tidydo/internal/repository"
	"tidydo/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Wired once per invocation by initServices.
var (
	cfg            config.Config
	store          *repository.Store
	taskSvc        *service.TaskService
	sessionSvc     *service.SessionService
	achievementSvc *service.AchievementService
	snapshotSvc    *service.SnapshotService
)

var rootCmd = &cobra.Command{
	Use:   "tidydo",
	Short: "A CLI task manager with focus sessions and streaks",
	Long: `tidydo is a command-line tool that combines task management with
pomodoro focus sessions. Track tasks, repeat them on a schedule, focus in
timed sessions, and keep your streak alive.`,
}

// initServices opens the database and wires the service layer, panicking on
// failure like a missing home directory.
func initServices() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		panic(err)
	}

	db, err := repository.NewDB(cfg.DatabasePath)
	if err != nil {
		panic(err)
	}

	store = repository.NewStore(db)
	achievementSvc = service.NewAchievementService(store)
	events := service.NewDispatcher(achievementSvc)
	taskSvc = service.NewTaskService(store, events)
	sessionSvc = service.NewSessionService(store, events)
	snapshotSvc = service.NewSnapshotService(store, achievementSvc)
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tidydo %s (commit %s, built %s)\n", version, commit, date)
	},
}

// parseID parses a positive task/entity id argument.
func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id '%s'", arg)
	}
	return uint(id), nil
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoneCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(subtaskCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(focusCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}
