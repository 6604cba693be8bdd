package main

import (
	"fmt"
	"os"

	"github.com/aretw0/flipper/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one pipeline pass now",
	Long: `Runs a single provision, agent, publish pass and exits. The pass contends
for the same run lock as the daemon, so it is skipped when another run is
already in flight.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		jsonMode, _ := cmd.Flags().GetBool("json")

		opts := cli.RunOptions{
			ConfigPath: configPath,
			Debug:      debug,
			JSON:       jsonMode,
		}
		if err := cli.RunOnce(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Print the run record as JSON instead of prose")
}
