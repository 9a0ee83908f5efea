package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jra3/hecras-orchestrator/internal/scheduler"
	"github.com/jra3/hecras-orchestrator/internal/worker"
)

var batchCmd = &cobra.Command{
	Use:   "batch [project folder] [plan numbers, comma-separated]",
	Short: "Run multiple plans concurrently in the Local-Parallel execution mode",
	Args:  cobra.ExactArgs(2),
	RunE:  runBatch,
}

var (
	batchSequentialTest bool
	batchManual         bool
)

func init() {
	batchCmd.Flags().BoolVar(&batchSequentialTest, "sequential-test", false, "run back-to-back in an isolated [Test] subfolder instead of in parallel")
	batchCmd.Flags().BoolVar(&batchManual, "manual-consolidate", false, "leave results under each isolation folder instead of copying back")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	folder := args[0]
	planNumbers := strings.Split(args[1], ",")

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

	mode := scheduler.ModeLocalParallel
	if batchSequentialTest {
		mode = scheduler.ModeSequentialTest
	}
	consolidate := scheduler.ConsolidateAutomatic
	if batchManual {
		consolidate = scheduler.ConsolidateManual
	}

	report, err := s.Submit(context.Background(), mode, p, planNumbers, scheduler.Options{
		ClearPreprocessor: cfg.Scheduler.ClearPreprocessor,
		NumberOfCores:     cfg.Scheduler.NumberOfCores,
		MaxWorkers:        cfg.Scheduler.MaxWorkers,
		PerPlanTimeout:    cfg.PerPlanTimeout(),
		Consolidate:       consolidate,
	})
	if err != nil {
		return fmt.Errorf("failed to submit batch: %w", err)
	}

	for _, result := range report.Results {
		fmt.Printf("plan %s: %v\n", result.PlanNumber, result.State)
	}
	fmt.Printf("succeeded: %v\n", report.SucceededPlans())
	fmt.Printf("failed:    %v\n", report.FailedPlans())
	return nil
}
