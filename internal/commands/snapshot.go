package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export or import the full store",
	Long: `Move everything between machines as one JSON bundle:

  tidydo snapshot export backup.json
  tidydo snapshot import backup.json`,
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the store to a bundle file (or stdout)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initServices()

		bundle, err := snapshotSvc.Export(context.Background())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if len(args) == 0 {
			fmt.Println(string(bundle))
			return
		}

		if err := os.WriteFile(args[0], bundle, 0o644); err != nil {
			fmt.Printf("Error writing %s: %v\n", args[0], err)
			os.Exit(1)
		}
		fmt.Printf("📦 Snapshot written to %s (%d bytes)\n", args[0], len(bundle))
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the store with a bundle's contents",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initServices()

		bundle, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", args[0], err)
			os.Exit(1)
		}

		if !mustBool(cmd, "force") {
			fmt.Print("Importing replaces ALL current data. Continue? [y/N] ")
			var answer string
			fmt.Scanln(&answer)
			if answer != "y" && answer != "Y" {
				fmt.Println("Cancelled.")
				return
			}
		}

		if err := snapshotSvc.Import(context.Background(), bundle); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("📦 Snapshot imported")
	},
}

func init() {
	snapshotImportCmd.Flags().BoolP("force", "f", false, "Skip confirmation")

	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotImportCmd)
}
