// Package worker abstracts the act of actually invoking the simulator
// for one plan, so the scheduler (§5) can run the same batch logic
// against a local process, a remote daemon, a container runtime, or a
// test double (§4.6 expansion).
package worker

import (
	"context"
	"time"
)

// Job describes one plan run request handed to a Worker.
type Job struct {
	ManifestPath string
	PlanPath     string
	PlanNumber   string
	NumberOfCores int
	Timeout      time.Duration // advisory; 0 means no per-plan deadline
}

// Result carries the outcome of a completed Job.
type Result struct {
	PlanNumber string
	ExitCode   int
	Stdout     string
	Stderr     string
	Started    time.Time
	Finished   time.Time
	TimedOut   bool
}

// Worker runs one plan to completion. Implementations are expected to
// block for the lifetime of the simulator run; the scheduler supplies
// cancellation via ctx and the advisory timeout via Job.Timeout (§5 "per-plan
// advisory timeout, terminate-then-kill").
//
// The four-stage lifecycle mirrors how each backend actually has to
// behave: Prepare stages whatever the backend needs before the
// simulator can start (a workspace, a remote session, a container),
// Execute performs the blocking run, Collect gathers results once
// Execute returns, and Teardown releases anything Prepare acquired
// regardless of outcome.
type Worker interface {
	Prepare(ctx context.Context, job Job) error
	Execute(ctx context.Context, job Job) (*Result, error)
	Collect(ctx context.Context, job Job, result *Result) error
	Teardown(ctx context.Context, job Job) error
}

// Run drives a Worker through its full lifecycle for one job, always
// calling Teardown even when an earlier stage fails.
func Run(ctx context.Context, w Worker, job Job) (*Result, error) {
	if err := w.Prepare(ctx, job); err != nil {
		return nil, err
	}
	defer w.Teardown(ctx, job)

	result, err := w.Execute(ctx, job)
	if err != nil {
		return result, err
	}
	if err := w.Collect(ctx, job, result); err != nil {
		return result, err
	}
	return result, nil
}
