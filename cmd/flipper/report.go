package main

import (
	"fmt"
	"os"
	"time"

	"github.com/aretw0/flipper/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Show an archived run report",
	Long: `Prints the archived report of a run, rendered for the terminal.
Without an argument the most recently started archived run is shown.`,
	Run: func(cmd *cobra.Command, args []string) {
		app := getApp(cmd)
		defer app.Close()

		ctx := cmd.Context()

		var id string
		if len(args) > 0 {
			id = args[0]
		} else {
			ids, err := app.Archive.List(ctx)
			if err != nil {
				fmt.Printf("Error listing archive: %v\n", err)
				os.Exit(1)
			}
			if len(ids) == 0 {
				fmt.Println("No archived runs found.")
				return
			}

			// Run IDs carry no order; pick the latest by start time.
			var latest time.Time
			for _, candidate := range ids {
				run, _, err := app.Archive.Read(ctx, candidate)
				if err != nil {
					continue
				}
				if run.StartedAt.After(latest) {
					latest = run.StartedAt
					id = candidate
				}
			}
		}

		run, report, err := app.Archive.Read(ctx, id)
		if err != nil {
			fmt.Printf("Error reading archived run '%s': %v\n", id, err)
			os.Exit(1)
		}

		if report == "" {
			fmt.Printf("Run %s has no report (status %s).\n", run.ID, run.Status)
			return
		}
		fmt.Print(tui.RenderMarkdown(report))
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
