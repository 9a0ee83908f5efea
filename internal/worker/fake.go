package worker

import (
	"context"
	"sync"
)

// Fake is an in-memory Worker double for scheduler tests, grounded on
// the same pattern as an in-memory mock repository: results and call
// counts live in exported fields the test sets up directly, with no
// network or process boundary involved.
type Fake struct {
	mu sync.Mutex

	// Results maps a plan number to the Result Execute should return
	// for that job. Jobs for numbers absent from this map get a
	// default zero-exit-code success.
	Results map[string]*Result
	// Errors maps a plan number to the error Execute should return.
	Errors map[string]error

	PrepareCalls  []Job
	ExecuteCalls  []Job
	CollectCalls  []Job
	TeardownCalls []Job
}

// NewFake builds an empty Fake worker.
func NewFake() *Fake {
	return &Fake{
		Results: make(map[string]*Result),
		Errors:  make(map[string]error),
	}
}

func (f *Fake) Prepare(ctx context.Context, job Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PrepareCalls = append(f.PrepareCalls, job)
	return nil
}

func (f *Fake) Execute(ctx context.Context, job Job) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ExecuteCalls = append(f.ExecuteCalls, job)

	if result, ok := f.Results[job.PlanNumber]; ok {
		return result, f.Errors[job.PlanNumber]
	}
	return &Result{PlanNumber: job.PlanNumber, ExitCode: 0}, f.Errors[job.PlanNumber]
}

func (f *Fake) Collect(ctx context.Context, job Job, result *Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CollectCalls = append(f.CollectCalls, job)
	return nil
}

func (f *Fake) Teardown(ctx context.Context, job Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TeardownCalls = append(f.TeardownCalls, job)
	return nil
}
