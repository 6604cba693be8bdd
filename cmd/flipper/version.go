package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/flipper"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of flipper",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("flipper version %s\n", strings.TrimSpace(flipper.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
