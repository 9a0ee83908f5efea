package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jra3/hecras-orchestrator/internal/scheduler"
	"github.com/jra3/hecras-orchestrator/internal/worker"
)

var runCmd = &cobra.Command{
	Use:   "run [project folder] [plan number]",
	Short: "Run one plan in the Single execution mode",
	Args:  cobra.ExactArgs(2),
	RunE:  runRun,
}

var (
	runDestination string
	runManual      bool
)

func init() {
	runCmd.Flags().StringVar(&runDestination, "destination", "", "mirror the project here before running (default: run in place)")
	runCmd.Flags().BoolVar(&runManual, "manual-consolidate", false, "leave results in destination instead of copying back to source")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	folder, planNumber := args[0], args[1]

	p, err := registry.OpenProject(folder, cfg.Simulator.Version, cfg.Simulator.ExecutablePath, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	w := worker.NewLocal(p.SimulatorExecutablePath, logger)
	s := registry.NewScheduler(w)
	if history, err := registry.History(p); err == nil {
		s.History = history
		defer history.Close()
	}

	consolidate := scheduler.ConsolidateAutomatic
	if runManual {
		consolidate = scheduler.ConsolidateManual
	}

	report, err := s.Submit(context.Background(), scheduler.ModeSingle, p, []string{planNumber}, scheduler.Options{
		Destination:       runDestination,
		ClearPreprocessor: cfg.Scheduler.ClearPreprocessor,
		NumberOfCores:     cfg.Scheduler.NumberOfCores,
		PerPlanTimeout:    cfg.PerPlanTimeout(),
		Consolidate:       consolidate,
	})
	if err != nil {
		return fmt.Errorf("failed to submit run: %w", err)
	}

	result := report.Results[0]
	fmt.Printf("plan %s: %v\n", result.PlanNumber, result.State)
	if result.Err != nil {
		return result.Err
	}
	return nil
}
