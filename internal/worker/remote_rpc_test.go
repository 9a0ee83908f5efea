package worker

import (
	"context"
	"testing"

	"github.com/jra3/hecras-orchestrator/internal/herr"
	"github.com/jra3/hecras-orchestrator/internal/testutil"
)

func TestRemoteRPCExecuteAgainstMockHost(t *testing.T) {
	mock := testutil.NewMockRemoteHost()
	defer mock.Close()
	mock.SetResponse("/p/muncie.p01", 0, "simulation complete", "")

	r := NewRemoteRPC(mock.URL(), "session-abc")
	job := Job{PlanNumber: "01", ManifestPath: "/p/muncie.prj", PlanPath: "/p/muncie.p01"}

	result, err := Run(context.Background(), r, job)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Stdout != "simulation complete" {
		t.Errorf("Stdout = %q, want %q", result.Stdout, "simulation complete")
	}

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("mock received %d calls, want 1", len(calls))
	}
	if calls[0].SessionHeader != "session-abc" {
		t.Errorf("SessionHeader = %q, want session-abc", calls[0].SessionHeader)
	}
}

func TestRemoteRPCExecuteNonZeroExitIsSimulatorExitNonZero(t *testing.T) {
	mock := testutil.NewMockRemoteHost()
	defer mock.Close()
	mock.SetResponse("/p/muncie.p01", 1, "", "error in geometry")

	r := NewRemoteRPC(mock.URL(), "session-abc")
	job := Job{PlanNumber: "01", ManifestPath: "/p/muncie.prj", PlanPath: "/p/muncie.p01"}

	_, err := Run(context.Background(), r, job)
	if !herr.Is(err, herr.SimulatorExitNonZero) {
		t.Errorf("Run() error kind = %v, want SimulatorExitNonZero", err)
	}
}
