package worker

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jra3/hecras-orchestrator/internal/herr"
)

func writeFakeExecutable(t *testing.T, dir, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake executable script is POSIX shell only")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLocalExecuteSucceeds(t *testing.T) {
	dir := t.TempDir()
	exe := writeFakeExecutable(t, dir, "fake-ras", "#!/bin/sh\necho ran ok\nexit 0\n")

	l := NewLocal(exe, nil)
	result, err := l.Execute(context.Background(), Job{PlanNumber: "01", PlanPath: "/p/muncie.p01"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
}

func TestLocalExecuteInvokesWithManifestThenPlanPath(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	exe := writeFakeExecutable(t, dir, "fake-ras", "#!/bin/sh\necho \"$@\" > "+argsFile+"\nexit 0\n")

	l := NewLocal(exe, nil)
	_, err := l.Execute(context.Background(), Job{
		PlanNumber:   "01",
		ManifestPath: "/p/muncie.prj",
		PlanPath:     "/p/muncie.p01",
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	got, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("reading captured args: %v", err)
	}
	want := "-c /p/muncie.prj /p/muncie.p01\n"
	if string(got) != want {
		t.Errorf("invoked with args %q, want %q", string(got), want)
	}
}

func TestLocalExecuteNonZeroExitIsSimulatorExitNonZero(t *testing.T) {
	dir := t.TempDir()
	exe := writeFakeExecutable(t, dir, "fake-ras", "#!/bin/sh\nexit 3\n")

	l := NewLocal(exe, nil)
	result, err := l.Execute(context.Background(), Job{PlanNumber: "01", PlanPath: "/p/muncie.p01"})
	if !herr.Is(err, herr.SimulatorExitNonZero) {
		t.Errorf("Execute() error kind = %v, want SimulatorExitNonZero", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
}

func TestLocalExecuteTimesOut(t *testing.T) {
	dir := t.TempDir()
	exe := writeFakeExecutable(t, dir, "fake-ras", "#!/bin/sh\nsleep 5\n")

	l := NewLocal(exe, nil)
	result, err := l.Execute(context.Background(), Job{PlanNumber: "01", PlanPath: "/p/muncie.p01", Timeout: 50 * time.Millisecond})
	if !herr.Is(err, herr.Timeout) {
		t.Errorf("Execute() error kind = %v, want Timeout", err)
	}
	if !result.TimedOut {
		t.Error("result.TimedOut = false, want true")
	}
}
