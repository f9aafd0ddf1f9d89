package commands

import (
	"fmt"

	"github.com/dropzone/dropzone/internal/backend"
	"github.com/dropzone/dropzone/internal/clock"
	"github.com/dropzone/dropzone/internal/upload"
	"github.com/dropzone/dropzone/pkg/config"
	"github.com/spf13/cobra"
)

// addStoreFlags registers the flags newStore reads.
func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("seed-file", "", "TOML file of past uploads (overrides the seed-file setting)")
	cmd.Flags().Float64("fail-rate", config.DefaultFailureRate, "Chance that a simulated upload fails, 0 to 1")
}

// newStore builds the upload service for one invocation: the configured
// simulation, overridden by flags, holding the seeded records.
func newStore(cmd *cobra.Command, cfg *config.Config, clk clock.Clock) (*backend.Memory, error) {
	sim := backend.DefaultSimulation()
	sim.Steps = cfg.SimulationSteps
	sim.FailureRate = cfg.FailureRate

	if cmd.Flags().Changed("fail-rate") {
		rate, err := cmd.Flags().GetFloat64("fail-rate")
		if err != nil {
			return nil, err
		}
		if rate < 0 || rate > 1 {
			return nil, fmt.Errorf("--fail-rate must be between 0 and 1, got %g", rate)
		}
		sim.FailureRate = rate
	}

	seedFile := cfg.SeedFile
	if f, _ := cmd.Flags().GetString("seed-file"); f != "" {
		seedFile = f
	}

	var records []upload.Item
	var err error
	if seedFile != "" {
		records, err = backend.LoadSeed(seedFile, clk.Now())
	} else {
		records, err = backend.DefaultSeed(clk.Now())
	}
	if err != nil {
		return nil, err
	}

	return backend.NewMemory(backend.Options{
		Clock:      clk,
		Simulation: &sim,
		Records:    records,
	}), nil
}

// uploadRules applies the configured limits on top of the defaults.
func uploadRules(cfg *config.Config) upload.Rules {
	rules := upload.DefaultRules()
	if cfg.MaxFileSize > 0 {
		rules.MaxFileSize = cfg.MaxFileSize
	}
	if len(cfg.AllowedTypes) > 0 {
		rules.AllowedTypes = cfg.AllowedTypes
	}
	return rules
}
