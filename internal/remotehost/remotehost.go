// Package remotehost implements the HTTP job-submission client the
// RemoteRPC worker variant uses to dispatch plan runs to a daemon on a
// remote host (§4.6). It is adapted from the teacher's rate-limited
// Linear API client: same token-bucket pacing (no request statistics
// are kept), repurposed from a GraphQL query client into a small JSON/HTTP job
// submission protocol.
package remotehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jra3/hecras-orchestrator/internal/herr"
)

// Client talks to one remote host's job-submission daemon.
type Client struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient builds a Client for baseURL. sessionID identifies the
// logged-in user session on the remote host the simulator's
// GUI-coupled process requires (§4.6 RemoteRpc notes); a
// service-account session fails silently, so the caller is
// responsible for supplying a real interactive session id.
func NewClient(baseURL, sessionID string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		sessionID:  sessionID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		// A remote host daemon is expected to field bursts of job
		// submissions at batch-dispatch time, then settle; mirrors the
		// teacher's burst-then-sustain posture for its API client.
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		logger:  logger,
	}
}

// SubmitJobRequest is the job-submission payload for one plan run.
type SubmitJobRequest struct {
	ManifestPath  string `json:"manifest_path"`
	PlanPath      string `json:"plan_path"`
	NumberOfCores int    `json:"number_of_cores,omitempty"`
}

// SubmitJobResponse carries the remote job's outcome.
type SubmitJobResponse struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// SubmitJob POSTs a job-submission request and blocks until the
// daemon reports completion. The daemon itself blocks on the
// simulator child process; this call is the network-facing half of
// that same synchronous, blocking contract (§5).
func (c *Client) SubmitJob(ctx context.Context, req SubmitJobRequest) (*SubmitJobResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, herr.Wrap(herr.IoError, "rate limit wait cancelled", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, herr.Wrap(herr.IoError, "failed to marshal job request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return nil, herr.Wrap(herr.IoError, "failed to build job request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Remote-Session", c.sessionID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("remote job submission failed", zap.String("url", c.baseURL), zap.Error(err))
		return nil, herr.Wrap(herr.IoError, "remote job submission failed", err).WithPath(c.baseURL)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, herr.Wrap(herr.IoError, "failed to read remote job response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, herr.New(herr.IoError, fmt.Sprintf("remote host returned status %d: %s", resp.StatusCode, respBody)).WithPath(c.baseURL)
	}

	var out SubmitJobResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, herr.Wrap(herr.IoError, "failed to parse remote job response", err)
	}

	c.logger.Debug("remote job completed",
		zap.String("url", c.baseURL),
		zap.Int("exit_code", out.ExitCode),
		zap.Duration("duration", time.Since(start)),
	)
	return &out, nil
}
