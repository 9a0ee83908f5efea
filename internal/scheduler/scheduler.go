// Package scheduler dispatches plan executions across the four
// execution modes (single, sequential-test, local-parallel,
// remote-distributed), driving each plan through an explicit
// isolate/run/consolidate state machine (§4.3, §5).
package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jra3/hecras-orchestrator/internal/herr"
	"github.com/jra3/hecras-orchestrator/internal/project"
	"github.com/jra3/hecras-orchestrator/internal/runhistory"
	"github.com/jra3/hecras-orchestrator/internal/worker"
)

// Mode selects one of the four execution modes (§4.3).
type Mode int

const (
	ModeSingle Mode = iota
	ModeSequentialTest
	ModeLocalParallel
	ModeRemoteDistributed
)

// Consolidate makes the "where do results end up" Open Question
// (§9) explicit rather than version-gated: callers must pick one.
type Consolidate int

const (
	consolidateUnset Consolidate = iota
	ConsolidateAutomatic
	ConsolidateManual
)

// runState is the per-plan state machine (§4.3's state table).
type runState int

const (
	stateQueued runState = iota
	stateIsolating
	stateRunning
	stateConsolidating
	stateSucceeded
	stateFailed
)

func (s runState) String() string {
	switch s {
	case stateQueued:
		return "Queued"
	case stateIsolating:
		return "Isolating"
	case stateRunning:
		return "Running"
	case stateConsolidating:
		return "Consolidating"
	case stateSucceeded:
		return "Succeeded"
	case stateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Options configures one Submit call (§4.3, §6.4).
type Options struct {
	Destination       string // mirror root for Single/LocalParallel/RemoteDistributed; empty runs in place for Single
	Overwrite         bool
	ClearPreprocessor bool
	NumberOfCores     int
	MaxWorkers        int // local-parallel/remote-distributed pool size; default 4
	PerPlanTimeout    time.Duration
	Consolidate       Consolidate // required; Submit rejects consolidateUnset
}

// RunResult is one plan's outcome within a batch.
type RunResult struct {
	PlanNumber   string
	State        runState
	Err          error
	IsolationDir string
	Started      time.Time
	Finished     time.Time
	Worker       *worker.Result
}

// Succeeded reports whether the plan reached the terminal success state.
func (r RunResult) Succeeded() bool { return r.State == stateSucceeded }

// BatchReport is the aggregate outcome of one Submit call.
type BatchReport struct {
	Mode    Mode
	Results []RunResult
}

// SucceededPlans returns the plan numbers that reached Succeeded.
func (b *BatchReport) SucceededPlans() []string {
	var out []string
	for _, r := range b.Results {
		if r.Succeeded() {
			out = append(out, r.PlanNumber)
		}
	}
	return out
}

// FailedPlans returns the plan numbers that reached Failed.
func (b *BatchReport) FailedPlans() []string {
	var out []string
	for _, r := range b.Results {
		if !r.Succeeded() {
			out = append(out, r.PlanNumber)
		}
	}
	return out
}

const defaultMaxWorkers = 4

// projectLocks gives every distinct project folder its own exclusive
// lock so a submission against one project never blocks a submission
// against another (§5 "exclusive read-lock on the Project for the
// duration of a submission").
var (
	projectLocksMu sync.Mutex
	projectLocks   = map[string]*sync.RWMutex{}
)

func lockFor(folder string) *sync.RWMutex {
	projectLocksMu.Lock()
	defer projectLocksMu.Unlock()
	l, ok := projectLocks[folder]
	if !ok {
		l = &sync.RWMutex{}
		projectLocks[folder] = l
	}
	return l
}

// Scheduler dispatches plan runs through one Worker backend. Callers
// select the execution strategy (local process, remote daemon,
// container) by constructing the Scheduler with the matching
// worker.Worker; RemoteDistributed mode is local-parallel's identical
// twin pointed at a worker.Worker that happens to reach off-box.
type Scheduler struct {
	Worker  worker.Worker
	Logger  *zap.Logger
	History *runhistory.Store // optional; nil disables run-history recording
}

// New builds a Scheduler dispatching through w.
func New(w worker.Worker, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{Worker: w, Logger: logger}
}

// Submit runs planNumbers under mode and returns a BatchReport once
// every plan has reached a terminal state. A failing plan does not
// cancel its peers (§4.3 "does not cancel peers").
func (s *Scheduler) Submit(ctx context.Context, mode Mode, p *project.Project, planNumbers []string, opts Options) (*BatchReport, error) {
	if len(planNumbers) == 0 {
		return nil, herr.New(herr.FormatViolation, "Submit requires at least one plan number")
	}
	if opts.Consolidate != ConsolidateAutomatic && opts.Consolidate != ConsolidateManual {
		return nil, herr.New(herr.FormatViolation, "Options.Consolidate must be ConsolidateAutomatic or ConsolidateManual")
	}

	lock := lockFor(p.Folder)
	lock.Lock()
	defer lock.Unlock()

	maxWorkers := opts.MaxWorkers
	if mode == ModeSingle || mode == ModeSequentialTest {
		maxWorkers = 1
	} else if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}

	batchStarted := time.Now()
	report := &BatchReport{Mode: mode}
	sem := make(chan struct{}, maxWorkers)
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	for _, number := range planNumbers {
		number := number
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-egCtx.Done():
				return nil
			}
			defer func() { <-sem }()

			result := s.runOne(egCtx, p, mode, number, opts)
			mu.Lock()
			report.Results = append(report.Results, result)
			mu.Unlock()
			// Peer failures are recorded in the report, not propagated,
			// so errgroup never cancels the rest of the batch.
			return nil
		})
	}
	_ = eg.Wait()

	if err := project.RefreshTables(p); err != nil {
		s.Logger.Warn("failed to refresh project tables after batch", zap.Error(err))
	}

	if s.History != nil {
		s.recordHistory(ctx, p, mode, batchStarted, report)
	}

	return report, nil
}

func (s *Scheduler) recordHistory(ctx context.Context, p *project.Project, mode Mode, batchStarted time.Time, report *BatchReport) {
	runs := make([]runhistory.PlanRunRecord, 0, len(report.Results))
	for _, r := range report.Results {
		errMessage := ""
		exitCode := 0
		if r.Err != nil {
			errMessage = r.Err.Error()
		}
		if r.Worker != nil {
			exitCode = r.Worker.ExitCode
		}
		runs = append(runs, runhistory.PlanRunRecord{
			ProjectFolder: p.Folder,
			PlanNumber:    r.PlanNumber,
			State:         r.State.String(),
			ExitCode:      exitCode,
			ErrorMessage:  errMessage,
			StartedAt:     r.Started,
			FinishedAt:    r.Finished,
		})
	}
	batch := runhistory.BatchRecord{
		ProjectFolder: p.Folder,
		Mode:          modeName(mode),
		StartedAt:     batchStarted,
		FinishedAt:    time.Now(),
	}
	if _, err := s.History.RecordBatch(ctx, batch, runs); err != nil {
		s.Logger.Warn("failed to record batch run history", zap.Error(err))
	}
}

func modeName(m Mode) string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeSequentialTest:
		return "sequential_test"
	case ModeLocalParallel:
		return "local_parallel"
	case ModeRemoteDistributed:
		return "remote_distributed"
	default:
		return "unknown"
	}
}

// runOne drives a single plan through Queued → Isolating → Running →
// Consolidating → Succeeded/Failed.
func (s *Scheduler) runOne(ctx context.Context, p *project.Project, mode Mode, planNumber string, opts Options) RunResult {
	result := RunResult{PlanNumber: planNumber, State: stateQueued, Started: time.Now()}

	plan, err := p.PlanByNumber(planNumber)
	if err != nil {
		result.State = stateFailed
		result.Err = err
		result.Finished = time.Now()
		return result
	}

	result.State = stateIsolating
	isolationDir, err := s.isolate(p, mode, planNumber, opts)
	if err != nil {
		result.State = stateFailed
		result.Err = err
		result.Finished = time.Now()
		return result
	}
	result.IsolationDir = isolationDir

	if opts.ClearPreprocessor {
		if err := clearPreprocessorFiles(isolationDir); err != nil {
			s.Logger.Warn("failed to clear preprocessor cache files", zap.String("dir", isolationDir), zap.Error(err))
		}
	}

	result.State = stateRunning
	job := worker.Job{
		ManifestPath:  filepath.Join(isolationDir, filepath.Base(p.ManifestPath)),
		PlanPath:      filepath.Join(isolationDir, filepath.Base(plan.FullPath)),
		PlanNumber:    planNumber,
		NumberOfCores: opts.NumberOfCores,
		Timeout:       opts.PerPlanTimeout,
	}
	workerResult, err := worker.Run(ctx, s.Worker, job)
	result.Worker = workerResult
	if err != nil {
		result.State = stateFailed
		result.Err = err
		result.Finished = time.Now()
		return result
	}

	result.State = stateConsolidating
	if err := s.consolidate(p, mode, planNumber, isolationDir, opts); err != nil {
		result.State = stateFailed
		result.Err = err
		result.Finished = time.Now()
		return result
	}

	result.State = stateSucceeded
	result.Finished = time.Now()
	return result
}
