package scheduler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/jra3/hecras-orchestrator/internal/project"
)

// resultsSubfolder is the default consolidated-destination subfolder
// under the source project folder for the parallel modes.
const resultsSubfolder = "Results"

// consolidate copies plan-numbered output back from isolationDir to
// the mode's destination, unless the caller opted out (§9 Open
// Question: consolidation destination is explicit, never
// version-gated).
func (s *Scheduler) consolidate(p *project.Project, mode Mode, planNumber, isolationDir string, opts Options) error {
	switch mode {
	case ModeSingle:
		if isolationDir == p.Folder {
			return nil // ran in place; nothing to copy back
		}
		if opts.Consolidate == ConsolidateManual {
			s.Logger.Info("leaving results in destination folder per ConsolidateManual",
				zap.String("plan", planNumber), zap.String("destination", isolationDir))
			return nil
		}
		if err := copyPlanOutputs(isolationDir, p.Folder, planNumber); err != nil {
			return err
		}
		s.logConsolidatedSize(planNumber, p.Folder)
		return nil

	case ModeSequentialTest:
		// §4.3: sequential-test never touches the source folder, so
		// results stay in the [Test] subfolder regardless of Consolidate.
		return nil

	case ModeLocalParallel, ModeRemoteDistributed:
		if opts.Consolidate == ConsolidateManual {
			s.Logger.Info("leaving results in isolation folder per ConsolidateManual",
				zap.String("plan", planNumber), zap.String("isolation_dir", isolationDir))
			return nil
		}
		dest := filepath.Join(p.Folder, resultsSubfolder)
		if err := copyPlanOutputs(isolationDir, dest, planNumber); err != nil {
			return err
		}
		s.logConsolidatedSize(planNumber, dest)
		return nil

	default:
		return nil
	}
}

// logConsolidatedSize logs the total human-readable size of planNumber's
// consolidated output, best-effort (a stat failure here never fails the
// run; only the copy itself is load-bearing).
func (s *Scheduler) logConsolidatedSize(planNumber, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	marker := ".p" + planNumber
	var total int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.Contains(entry.Name(), marker) {
			continue
		}
		if info, err := entry.Info(); err == nil {
			total += info.Size()
		}
	}
	s.Logger.Info("consolidated plan output",
		zap.String("plan", planNumber),
		zap.String("size", humanize.Bytes(uint64(total))),
	)
}

// copyPlanOutputs copies every file in srcDir whose name is stamped
// with planNumber (the result archive plus any sidecar log/report
// files the simulator writes alongside it) into destDir.
func copyPlanOutputs(srcDir, destDir, planNumber string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return err
	}
	marker := ".p" + planNumber
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.Contains(entry.Name(), marker) {
			continue
		}
		if err := copyFile(filepath.Join(srcDir, entry.Name()), filepath.Join(destDir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
