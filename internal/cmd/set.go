package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jra3/hecras-orchestrator/internal/planregistry"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Mutate a plan's binding, scalar fields, or embedded tables",
}

var setBindingCmd = &cobra.Command{
	Use:   "binding [project folder] [plan number] [geometry number]",
	Short: "Retarget a plan's geometry and exactly one of unsteady/flow",
	Args:  cobra.ExactArgs(3),
	RunE:  runSetBinding,
}

var setScalarCmd = &cobra.Command{
	Use:   "scalar [project folder] [plan number] [field] [value]",
	Short: "Rewrite one scalar header field on a plan file",
	Args:  cobra.ExactArgs(4),
	RunE:  runSetScalar,
}

var setTableCmd = &cobra.Command{
	Use:   "table [file path] [table keyword] [comma-separated values]",
	Short: "Replace an embedded table's body and rewrite its count header",
	Args:  cobra.ExactArgs(3),
	RunE:  runSetTable,
}

var (
	setBindingUnsteady string
	setBindingFlow     string
)

func init() {
	setBindingCmd.Flags().StringVar(&setBindingUnsteady, "unsteady", "", "unsteady flow number")
	setBindingCmd.Flags().StringVar(&setBindingFlow, "flow", "", "steady flow number")
	setCmd.AddCommand(setBindingCmd, setScalarCmd, setTableCmd)
	rootCmd.AddCommand(setCmd)
}

func runSetBinding(cmd *cobra.Command, args []string) error {
	folder, planNumber, geometryNumber := args[0], args[1], args[2]

	p, err := registry.OpenProject(folder, cfg.Simulator.Version, cfg.Simulator.ExecutablePath, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	if err := planregistry.SetBinding(p, planNumber, geometryNumber, setBindingUnsteady, setBindingFlow); err != nil {
		return fmt.Errorf("failed to set binding: %w", err)
	}
	fmt.Printf("plan %s bound to geometry %s\n", planNumber, geometryNumber)
	return nil
}

func runSetScalar(cmd *cobra.Command, args []string) error {
	folder, planNumber, field, value := args[0], args[1], args[2], args[3]

	p, err := registry.OpenProject(folder, cfg.Simulator.Version, cfg.Simulator.ExecutablePath, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	if err := planregistry.SetScalar(p, planNumber, field, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", field, err)
	}
	fmt.Printf("plan %s: %s = %s\n", planNumber, field, value)
	return nil
}

func runSetTable(cmd *cobra.Command, args []string) error {
	filePath, tableKeyword, rawValues := args[0], args[1], args[2]

	parts := strings.Split(rawValues, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", part, err)
		}
		values = append(values, v)
	}

	if err := planregistry.SetTable(filePath, tableKeyword, values); err != nil {
		return fmt.Errorf("failed to set table %s: %w", tableKeyword, err)
	}
	fmt.Printf("%s: %s rewritten with %d values\n", filePath, tableKeyword, len(values))
	return nil
}
