package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flipper",
	Short: "Flipper is a scheduled domain-flipping pipeline",
	Long: `Flipper periodically runs a domain-scouting agent inside a git workspace
and publishes whatever the agent changed as a single commit.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file (default \"flipper.yaml\")")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
