package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/flipper/internal/cli"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the run history",
	Long:  `List, inspect, and remove run records from the configured run store.`,
}

var runsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recent runs, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		app := getApp(cmd)
		defer app.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := app.Store.List(cmd.Context(), limit)
		if err != nil {
			fmt.Printf("Error listing runs: %v\n", err)
			os.Exit(1)
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return
		}

		for _, run := range runs {
			line := fmt.Sprintf("%s  %-9s  %-8s  %s", run.ID, run.Status, run.Trigger, run.StartedAt.Local().Format(time.RFC3339))
			if run.CommitHash != "" {
				line += "  " + shortHash(run.CommitHash)
			}
			fmt.Println(line)
		}
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the full record of a run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := getApp(cmd)
		defer app.Close()

		run, err := app.Store.Load(cmd.Context(), args[0])
		if err != nil {
			fmt.Printf("Error loading run '%s': %v\n", args[0], err)
			os.Exit(1)
		}

		// Pretty print JSON
		data, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling run: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

var runsRmCmd = &cobra.Command{
	Use:   "rm <run-id>...",
	Short: "Remove one or more run records",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := getApp(cmd)
		defer app.Close()

		hasError := false
		for _, id := range args {
			if err := app.Store.Delete(cmd.Context(), id); err != nil {
				fmt.Printf("Error removing '%s': %v\n", id, err)
				hasError = true
			} else {
				fmt.Printf("Removed run '%s'\n", id)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsLsCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsRmCmd)

	runsLsCmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 for all)")
}

// getApp wires the application from the persistent flags, exiting on error.
func getApp(cmd *cobra.Command) *cli.App {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	app, err := cli.BuildApp(cli.AppOptions{ConfigPath: configPath, Debug: debug})
	if err != nil {
		fmt.Printf("Error initializing flipper: %v\n", err)
		os.Exit(1)
	}
	return app
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
