package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [project folder]",
	Short: "Discover a project's manifest and parse its tables",
	Args:  cobra.ExactArgs(1),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	folder := args[0]

	p, err := registry.OpenProject(folder, cfg.Simulator.Version, cfg.Simulator.ExecutablePath, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}
	registry.UseProject(p)

	fmt.Printf("Project %q at %s\n", p.Name, p.Folder)
	fmt.Printf("  plans:      %d\n", len(p.Plans))
	fmt.Printf("  geometries: %d\n", len(p.Geometries))
	fmt.Printf("  flows:      %d\n", len(p.Flows))
	fmt.Printf("  unsteadies: %d\n", len(p.Unsteadies))
	fmt.Printf("  boundaries: %d\n", len(p.Boundaries))
	return nil
}
