package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jra3/hecras-orchestrator/internal/planregistry"
)

var cloneCmd = &cobra.Command{
	Use:   "clone [project folder] [kind] [source number]",
	Short: "Clone a plan, geometry, unsteady flow, or flow file to the next free number",
	Long:  "kind is one of: plan, geometry, unsteady, flow",
	Args:  cobra.ExactArgs(3),
	RunE:  runClone,
}

func init() {
	rootCmd.AddCommand(cloneCmd)
}

func runClone(cmd *cobra.Command, args []string) error {
	folder, kindArg, sourceNumber := args[0], args[1], args[2]

	kind := planregistry.Kind(kindArg)
	switch kind {
	case planregistry.KindPlan, planregistry.KindGeometry, planregistry.KindUnsteady, planregistry.KindFlow:
	default:
		return fmt.Errorf("unknown kind %q: must be plan, geometry, unsteady, or flow", kindArg)
	}

	p, err := registry.OpenProject(folder, cfg.Simulator.Version, cfg.Simulator.ExecutablePath, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	newNumber, err := planregistry.Clone(p, kind, sourceNumber)
	if err != nil {
		return fmt.Errorf("failed to clone %s %s: %w", kind, sourceNumber, err)
	}

	fmt.Printf("cloned %s %s -> %s\n", kind, sourceNumber, newNumber)
	return nil
}
