package worker

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/jra3/hecras-orchestrator/internal/herr"
)

// Container runs the simulator inside a container via a CLI shell-out
// (docker/podman), bind-mounting the project folder so the simulator
// sees the same paths it would on bare metal (§4.6 worker.Container).
type Container struct {
	RuntimeBinary string // "docker" or "podman"
	Image         string
	MountRoot     string // host directory bind-mounted into the container
}

// NewContainer builds a Container worker using runtimeBinary (e.g.
// "docker") to run image against files under mountRoot.
func NewContainer(runtimeBinary, image, mountRoot string) *Container {
	return &Container{RuntimeBinary: runtimeBinary, Image: image, MountRoot: mountRoot}
}

// Prepare is a no-op; the bind mount is established per-invocation in
// Execute's argument list rather than via a persistent container.
func (c *Container) Prepare(ctx context.Context, job Job) error { return nil }

// Execute runs `docker run --rm -v <mount>:<mount> <image> ras -c <manifest> <plan>`
// and blocks until the container exits.
func (c *Container) Execute(ctx context.Context, job Job) (*Result, error) {
	runCtx := ctx
	var cancel context.CancelFunc
	if job.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	mountArg := fmt.Sprintf("%s:%s", c.MountRoot, c.MountRoot)
	args := []string{"run", "--rm", "-v", mountArg, c.Image, "ras", "-c", job.ManifestPath, job.PlanPath}
	cmd := exec.CommandContext(runCtx, c.RuntimeBinary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := &Result{PlanNumber: job.PlanNumber, Started: time.Now()}
	err := cmd.Run()
	result.Finished = time.Now()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if runCtx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		return result, herr.New(herr.Timeout, "containerized simulator run exceeded advisory timeout").WithPath(job.PlanPath)
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, herr.New(herr.SimulatorExitNonZero, "containerized simulator exited with non-zero status").WithPath(job.PlanPath)
		}
		return result, herr.Wrap(herr.IoError, "failed to run container", err).WithPath(c.RuntimeBinary)
	}
	return result, nil
}

// Collect is a no-op; the bind mount makes container output already
// visible at the host paths the scheduler will refresh from.
func (c *Container) Collect(ctx context.Context, job Job, result *Result) error { return nil }

// Teardown is a no-op; --rm already reclaims the container on exit.
func (c *Container) Teardown(ctx context.Context, job Job) error { return nil }
