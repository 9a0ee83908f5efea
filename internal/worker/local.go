package worker

import (
	"bytes"
	"context"
	"os/exec"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jra3/hecras-orchestrator/internal/herr"
)

// killGrace is how long a terminated child gets to exit on its own
// before Local escalates to an unconditional kill (§5 "terminate-then-kill").
const killGrace = 5 * time.Second

// Local runs the simulator executable as a child process on the same
// machine that hosts the orchestrator (§4.6 worker.Local).
type Local struct {
	ExecutablePath string
	logger         *zap.Logger
}

// NewLocal builds a Local worker bound to execPath.
func NewLocal(execPath string, logger *zap.Logger) *Local {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Local{ExecutablePath: execPath, logger: logger}
}

// Prepare is a no-op for Local; the simulator reads its inputs directly
// from the project folder and needs no staging step.
func (l *Local) Prepare(ctx context.Context, job Job) error { return nil }

// Execute runs the simulator against job.PlanPath and blocks until it
// exits, times out, or ctx is cancelled.
func (l *Local) Execute(ctx context.Context, job Job) (*Result, error) {
	runCtx := ctx
	var cancel context.CancelFunc
	if job.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, l.ExecutablePath, "-c", job.ManifestPath, job.PlanPath)
	// When runCtx ends, send SIGTERM; Wait kills the process if it is
	// still running killGrace later.
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = killGrace
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := &Result{PlanNumber: job.PlanNumber, Started: time.Now()}
	err := cmd.Start()
	if err != nil {
		return nil, herr.Wrap(herr.IoError, "failed to start simulator process", err).WithPath(l.ExecutablePath)
	}

	waitErr := cmd.Wait()
	result.Finished = time.Now()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if runCtx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		return result, herr.New(herr.Timeout, "simulator run exceeded advisory timeout").WithPath(job.PlanPath)
	}

	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, herr.New(herr.SimulatorExitNonZero, "simulator exited with non-zero status").WithPath(job.PlanPath)
		}
		return result, herr.Wrap(herr.IoError, "simulator process error", waitErr).WithPath(job.PlanPath)
	}

	return result, nil
}

// terminateThenKill asks the process to exit, then force-kills
// it if it has not exited within killGrace.
func (l *Local) terminateThenKill(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Signal(syscall.SIGTERM)
	timer := time.NewTimer(killGrace)
	defer timer.Stop()
	done := make(chan struct{})
	go func() {
		_, _ = cmd.Process.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-timer.C:
		l.logger.Warn("simulator process ignored SIGTERM, sending SIGKILL")
		_ = cmd.Process.Kill()
	}
}

// Collect is a no-op for Local; stdout/stderr are already captured by
// Execute and the HDF5 results path is resolved separately via
// internal/resultarchive once the plan table is refreshed.
func (l *Local) Collect(ctx context.Context, job Job, result *Result) error { return nil }

// Teardown is a no-op for Local; there is nothing to release.
func (l *Local) Teardown(ctx context.Context, job Job) error { return nil }
