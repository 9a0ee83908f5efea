package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jra3/hecras-orchestrator/internal/resultarchive"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [project folder] [plan number]",
	Short: "Resolve the HDF5 results archive path for a plan, without opening it",
	Args:  cobra.ExactArgs(2),
	RunE:  runResolve,
}

var resolveGeometry bool

func init() {
	resolveCmd.Flags().BoolVar(&resolveGeometry, "geometry", false, "resolve the geometry preprocessor archive instead of the plan archive")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	folder, number := args[0], args[1]

	p, err := registry.OpenProject(folder, cfg.Simulator.Version, cfg.Simulator.ExecutablePath, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	kind := resultarchive.PlanArchive
	if resolveGeometry {
		kind = resultarchive.GeometryArchive
	}

	path, err := registry.ResolveResultPath(context.Background(), p, resultarchive.NumberLocator(number), kind)
	if err != nil {
		return fmt.Errorf("failed to resolve results: %w", err)
	}

	fmt.Println(path)
	return nil
}
