package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jra3/hecras-orchestrator/internal/herr"
)

func TestContainerExecuteInvokesWithManifestThenPlanPath(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	runtime := writeFakeExecutable(t, dir, "fake-runtime", "#!/bin/sh\necho \"$@\" > "+argsFile+"\nexit 0\n")

	c := NewContainer(runtime, "hecras/ras:6.6", "/mnt/projects")
	_, err := c.Execute(context.Background(), Job{
		PlanNumber:   "01",
		ManifestPath: "/mnt/projects/muncie.prj",
		PlanPath:     "/mnt/projects/muncie.p01",
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	got, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("reading captured args: %v", err)
	}
	want := "run --rm -v /mnt/projects:/mnt/projects hecras/ras:6.6 ras -c /mnt/projects/muncie.prj /mnt/projects/muncie.p01\n"
	if string(got) != want {
		t.Errorf("invoked with args %q, want %q", string(got), want)
	}
}

func TestContainerExecuteNonZeroExitIsSimulatorExitNonZero(t *testing.T) {
	dir := t.TempDir()
	runtime := writeFakeExecutable(t, dir, "fake-runtime", "#!/bin/sh\nexit 2\n")

	c := NewContainer(runtime, "hecras/ras:6.6", "/mnt/projects")
	result, err := c.Execute(context.Background(), Job{
		PlanNumber:   "01",
		ManifestPath: "/mnt/projects/muncie.prj",
		PlanPath:     "/mnt/projects/muncie.p01",
	})
	if !herr.Is(err, herr.SimulatorExitNonZero) {
		t.Errorf("Execute() error kind = %v, want SimulatorExitNonZero", err)
	}
	if result.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", result.ExitCode)
	}
}
