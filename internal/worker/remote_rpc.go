package worker

import (
	"context"
	"time"

	"github.com/jra3/hecras-orchestrator/internal/herr"
	"github.com/jra3/hecras-orchestrator/internal/remotehost"
)

// RemoteRPC dispatches a plan run to a daemon on a remote host over
// HTTP (§4.6). The daemon is expected to run under a logged-in user
// session because the simulator is a GUI-coupled process; a
// service-account session fails silently on the remote side, so
// SessionID must name a real interactive session.
type RemoteRPC struct {
	Client    *remotehost.Client
	SessionID string
}

// NewRemoteRPC builds a RemoteRPC worker against a daemon at baseURL.
func NewRemoteRPC(baseURL, sessionID string) *RemoteRPC {
	return &RemoteRPC{
		Client:    remotehost.NewClient(baseURL, sessionID, nil),
		SessionID: sessionID,
	}
}

// Prepare rejects jobs with no session id up front rather than letting
// the remote host reject them later with an opaque failure.
func (r *RemoteRPC) Prepare(ctx context.Context, job Job) error {
	if r.SessionID == "" {
		return herr.New(herr.IoError, "remote run requires a logged-in user session id").WithPath(job.PlanPath)
	}
	return nil
}

// Execute submits the job to the remote daemon and blocks for its
// response, which the daemon only sends once the remote simulator
// process has exited.
func (r *RemoteRPC) Execute(ctx context.Context, job Job) (*Result, error) {
	started := time.Now()
	resp, err := r.Client.SubmitJob(ctx, remotehost.SubmitJobRequest{
		ManifestPath:  job.ManifestPath,
		PlanPath:      job.PlanPath,
		NumberOfCores: job.NumberOfCores,
	})
	finished := time.Now()
	if err != nil {
		return &Result{PlanNumber: job.PlanNumber, Started: started, Finished: finished}, err
	}

	result := &Result{
		PlanNumber: job.PlanNumber,
		ExitCode:   resp.ExitCode,
		Stdout:     resp.Stdout,
		Stderr:     resp.Stderr,
		Started:    started,
		Finished:   finished,
	}
	if resp.ExitCode != 0 {
		return result, herr.New(herr.SimulatorExitNonZero, "remote simulator exited with non-zero status").WithPath(job.PlanPath)
	}
	return result, nil
}

// Collect is a no-op; the remote daemon writes results directly into
// the shared project folder, which the scheduler refreshes after the
// batch completes.
func (r *RemoteRPC) Collect(ctx context.Context, job Job, result *Result) error { return nil }

// Teardown is a no-op; RemoteRPC holds no per-job resource beyond the
// HTTP round trip already completed in Execute.
func (r *RemoteRPC) Teardown(ctx context.Context, job Job) error { return nil }
