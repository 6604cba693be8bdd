package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/flipper"
	httpAdapter "github.com/aretw0/flipper/internal/adapters/http"
	"github.com/aretw0/flipper/internal/cli"
	"github.com/aretw0/flipper/internal/config"
	"github.com/aretw0/flipper/internal/logging"
	"github.com/aretw0/flipper/internal/schedule"
	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the scheduler and the status API",
	Long: `Starts the long-running daemon: a scheduler that executes the pipeline on
the configured cadence, plus an HTTP API for status, run history, metrics
and manual triggers. Editing the configuration file adjusts the cadence
without a restart.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")

		app, err := cli.BuildApp(cli.AppOptions{
			ConfigPath: configPath,
			Debug:      debug,
			Format:     logging.FormatJSON,
		})
		if err != nil {
			fmt.Printf("Error initializing flipper: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()
		logger := app.Logger

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		scheduler := schedule.New(app.Engine, app.Config.Schedule.Every.Std(), logger)
		go func() {
			_ = scheduler.Run(ctx)
		}()

		// Cadence edits in the configuration file reach the running loop.
		watchPath := configPath
		if watchPath == "" {
			watchPath = config.DefaultPath
		}
		watcher := config.NewWatcher(watchPath, func(next *config.Config) {
			scheduler.SetInterval(next.Schedule.Every.Std())
		}, logger)
		go func() {
			if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("config watcher stopped", "error", err)
			}
		}()

		handler := httpAdapter.NewHandler(httpAdapter.Config{
			Pipeline: app.Engine,
			Store:    app.Store,
			Version:  strings.TrimSpace(flipper.Version),
			Metrics:  app.Metrics.Handler(),
			Logger:   logger,
		})

		srv := &http.Server{
			Addr:    app.Config.Server.Addr,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Flipper daemon on %s\n", srv.Addr)
			fmt.Printf("Workspace: %s (every %s)\n", app.Config.Workspace.Dir, app.Config.Schedule.Every.Std())
			serverErrors <- srv.ListenAndServe()
		}()

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case <-ctx.Done():
			fmt.Println("\nStart shutdown...")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Flipper daemon stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
