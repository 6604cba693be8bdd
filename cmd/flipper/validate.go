package main

import (
	"fmt"
	"os"

	"github.com/aretw0/flipper/internal/config"
	"github.com/aretw0/flipper/internal/logging"
	"github.com/aretw0/flipper/internal/provision"
	"github.com/aretw0/flipper/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and workspace",
	Long: `Loads the configuration and runs the same preflight checks a pipeline pass
would: git on PATH, a usable work tree, the credential when pushing is
enabled, and the agent binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Workspace is ready! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	prov := provision.New(provision.Config{
		Dir:               cfg.Workspace.Dir,
		Branch:            cfg.Publish.Branch,
		Token:             cfg.GitHub.Token,
		RequireCredential: cfg.Publish.PushEnabled(),
		AgentBinary:       cfg.Agent.Command,
	}, logging.NewNop())

	// The same checks gate every run; a throwaway record carries the env.
	if _, err := prov.Provision(cmd.Context(), domain.NewRun(domain.TriggerManual)); err != nil {
		return err
	}

	fmt.Printf("Workspace %s, cadence %s\n", cfg.Workspace.Dir, cfg.Schedule.Every.Std())
	return nil
}
