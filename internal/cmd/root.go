// Package cmd implements the hecras CLI command tree: init, run,
// batch, clone, set, resolve (mirrors the teacher's internal/cmd
// root.go + mount.go + version.go split, one file per subcommand).
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jra3/hecras-orchestrator/internal/config"
	"github.com/jra3/hecras-orchestrator/internal/logging"
	"github.com/jra3/hecras-orchestrator/pkg/hecras"
)

var (
	cfgFile string
	debug   bool

	cfg      *config.Config
	logger   *zap.Logger
	registry *hecras.Registry
)

var rootCmd = &cobra.Command{
	Use:   "hecras",
	Short: "Drive HEC-RAS project inventory and plan execution",
	Long:  `hecras discovers a HEC-RAS project folder, mutates its plan/geometry/flow files, and schedules simulator runs locally, sequentially, or across a worker pool.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var loaded *config.Config
		var err error
		if cfgFile != "" {
			loaded, err = config.LoadFromPath(cfgFile)
		} else {
			loaded, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if debug {
			cfg.Log.Level = "DEBUG"
		}

		l, err := logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		logger = l
		registry = hecras.NewRegistry(logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/hecras-orchestrator/config.yaml, or ~/.config/hecras-orchestrator/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}
