package worker

import (
	"context"
	"testing"

	"github.com/jra3/hecras-orchestrator/internal/herr"
)

func TestRunCallsFullLifecycleOnSuccess(t *testing.T) {
	f := NewFake()
	job := Job{PlanNumber: "01", PlanPath: "/p/muncie.p01"}

	result, err := Run(context.Background(), f, job)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.PlanNumber != "01" {
		t.Errorf("result.PlanNumber = %q, want 01", result.PlanNumber)
	}
	if len(f.PrepareCalls) != 1 || len(f.ExecuteCalls) != 1 || len(f.CollectCalls) != 1 || len(f.TeardownCalls) != 1 {
		t.Errorf("lifecycle call counts = %d/%d/%d/%d, want 1/1/1/1",
			len(f.PrepareCalls), len(f.ExecuteCalls), len(f.CollectCalls), len(f.TeardownCalls))
	}
}

func TestRunCallsTeardownEvenWhenExecuteFails(t *testing.T) {
	f := NewFake()
	f.Errors["01"] = herr.New(herr.SimulatorExitNonZero, "boom")
	job := Job{PlanNumber: "01"}

	_, err := Run(context.Background(), f, job)
	if !herr.Is(err, herr.SimulatorExitNonZero) {
		t.Errorf("Run() error kind = %v, want SimulatorExitNonZero", err)
	}
	if len(f.TeardownCalls) != 1 {
		t.Errorf("Teardown call count = %d, want 1 even on Execute failure", len(f.TeardownCalls))
	}
}

func TestRunSkipsExecuteWhenPrepareFails(t *testing.T) {
	job := Job{PlanNumber: "01", PlanPath: "/p/muncie.p01"}

	// RemoteRPC.Prepare rejects a job up front when no session id is
	// set, without ever reaching Execute.
	r := &RemoteRPC{Client: nil, SessionID: ""}
	_, err := Run(context.Background(), r, job)
	if err == nil {
		t.Fatal("Run() expected error from Prepare with empty session id")
	}
}
