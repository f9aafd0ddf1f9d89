package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	configCmd "github.com/dropzone/dropzone/internal/commands/config"
	"github.com/dropzone/dropzone/internal/ui"
	"github.com/dropzone/dropzone/pkg/bugsnag"
	"github.com/dropzone/dropzone/pkg/config"
	"github.com/dropzone/dropzone/pkg/logrium"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dropzone",
		Short: "Upload files from the terminal",
		Long:  "Validate, upload and track batches of files with live progress",
		// Silence errors - we handle them in main.go
		// Note: SilenceUsage is NOT set here so unknown commands show usage.
		// Individual commands set cmd.SilenceUsage = true to hide usage on errors.
		SilenceErrors: true,
		// Load config once and store in context for all subcommands
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")

			displayOpts, err := ui.NewDisplayConfig(cmd, verbose)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error getting display options: %v\n", err)
				os.Exit(1)
			}

			// Config is needed for the log level, so it loads first
			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
				os.Exit(1)
			}

			if verbose {
				logFile, err := logrium.Setup(logrium.Options{
					Interactive: displayOpts.IsInteractive,
					Level:       cfg.GetLogLevel(),
					Attrs:       runAttrs(cfg),
				})
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error setting up logger: %v\n", err)
					os.Exit(1)
				}

				if logFile != "" {
					fmt.Fprintf(os.Stderr, "Debug logs: %s\n", logFile)
				}
			} else {
				logrium.Disable()
			}

			slog.Debug("Config loaded successfully")
			bugsnag.SetCommandContext(cmd.CommandPath(), args)

			ctx := context.WithValue(cmd.Context(), config.GetContextKey(), cfg)
			ctx = context.WithValue(ctx, ui.GetDisplayConfigContextKey(), displayOpts)
			cmd.SetContext(ctx)
		},
	}

	// Global flags (persistent flags are inherited by all subcommands)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output and animations")
	rootCmd.PersistentFlags().Bool("no-ansi", false, "Disable colored output and animations (equivalent to --no-color)")

	rootCmd.AddCommand(NewUploadCmd())
	rootCmd.AddCommand(NewRecentCmd())
	rootCmd.AddCommand(NewStatsCmd())
	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(configCmd.NewConfigCmd())

	return rootCmd
}

// runAttrs tag every log record with the run ID shared with error reports
// and the simulation settings in effect.
func runAttrs(cfg *config.Config) []slog.Attr {
	return []slog.Attr{
		slog.String("run_id", bugsnag.RunID()),
		slog.Float64("failure_rate", cfg.FailureRate),
		slog.Int("simulation_steps", cfg.SimulationSteps),
	}
}
