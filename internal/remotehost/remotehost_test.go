package remotehost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jra3/hecras-orchestrator/internal/herr"
)

func TestSubmitJobSendsSessionHeaderAndDecodesResponse(t *testing.T) {
	var gotSession string
	var gotReq SubmitJobRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSession = r.Header.Get("X-Remote-Session")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(SubmitJobResponse{ExitCode: 0, Stdout: "done"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "session-abc", nil)
	resp, err := c.SubmitJob(context.Background(), SubmitJobRequest{ManifestPath: "/p/muncie.prj", PlanPath: "/p/muncie.p01"})
	if err != nil {
		t.Fatalf("SubmitJob() error: %v", err)
	}
	if gotSession != "session-abc" {
		t.Errorf("X-Remote-Session = %q, want session-abc", gotSession)
	}
	if gotReq.PlanPath != "/p/muncie.p01" {
		t.Errorf("submitted plan path = %q, want /p/muncie.p01", gotReq.PlanPath)
	}
	if resp.Stdout != "done" {
		t.Errorf("response Stdout = %q, want done", resp.Stdout)
	}
}

func TestSubmitJobNonOKStatusIsIoError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("no session"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	_, err := c.SubmitJob(context.Background(), SubmitJobRequest{})
	if !herr.Is(err, herr.IoError) {
		t.Errorf("SubmitJob() error kind = %v, want IoError", err)
	}
}
