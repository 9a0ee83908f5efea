// Package hecras is the public facade over the orchestration core: it
// wires locator, project, scheduler, resultarchive, and runhistory
// together behind a small surface, and hosts the single
// logging.WithCall decoration point (§7, §9 Design Notes).
package hecras

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jra3/hecras-orchestrator/internal/herr"
	"github.com/jra3/hecras-orchestrator/internal/locator"
	"github.com/jra3/hecras-orchestrator/internal/logging"
	"github.com/jra3/hecras-orchestrator/internal/project"
	"github.com/jra3/hecras-orchestrator/internal/resultarchive"
	"github.com/jra3/hecras-orchestrator/internal/runhistory"
	"github.com/jra3/hecras-orchestrator/internal/scheduler"
	"github.com/jra3/hecras-orchestrator/internal/worker"
)

// Registry holds one explicit "current" Project slot; projects opened
// through OpenProject are not retained unless passed to UseProject.
// The Design Notes call for
// an "explicit override-by-default facade": Current always requires a
// prior UseProject call in this process rather than guessing.
type Registry struct {
	mu      sync.Mutex
	current *project.Project
	logger  *zap.Logger
}

// NewRegistry builds an empty Registry. A nil logger disables logging.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger}
}

// OpenProject discovers and parses folder, resolving the simulator
// executable via internal/locator's known-install-root registry.
func (r *Registry) OpenProject(folder, simulatorVersion, explicitExecutablePath string, installRoots map[string][]string) (*project.Project, error) {
	loc := locator.New(installRoots)
	return project.Initialize(folder, simulatorVersion, explicitExecutablePath, loc, r.logger)
}

// UseProject sets p as the process-wide current project. Subsequent
// Current calls in this process return p until UseProject is called
// again.
func (r *Registry) UseProject(p *project.Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = p
}

// Current returns the project previously set via UseProject, or
// ProjectNotFound if none has been set yet in this process.
func (r *Registry) Current() (*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil, herr.New(herr.ProjectNotFound, "no project set via UseProject in this process")
	}
	return r.current, nil
}

// NewScheduler builds a scheduler.Scheduler dispatching through w,
// sharing this Registry's logger.
func (r *Registry) NewScheduler(w worker.Worker) *scheduler.Scheduler {
	return scheduler.New(w, r.logger)
}

// ResolveResultPath resolves loc to an absolute result-archive path
// against p's tables, the single call-logged entry point collaborator
// code is expected to go through before opening the archive itself.
func (r *Registry) ResolveResultPath(ctx context.Context, p *project.Project, loc resultarchive.PlanLocator, kind resultarchive.ArchiveKind) (string, error) {
	callID := uuid.NewString()
	path, err := logging.WithCall(r.logger, callID, "resultarchive.Resolve", func() (string, error) {
		return resultarchive.Resolve(loc, kind, p)
	})
	if err == nil {
		if info, statErr := os.Stat(path); statErr == nil {
			r.logger.Debug("resolved result archive",
				zap.String("path", path),
				zap.String("size", humanize.Bytes(uint64(info.Size()))),
			)
		}
	}
	return path, err
}

// History opens (creating if necessary) the run-history store for p,
// keyed by a fixed location under the project folder. Callers are
// responsible for closing the returned Store.
func (r *Registry) History(p *project.Project) (*runhistory.Store, error) {
	dbPath := filepath.Join(p.Folder, ".hecras", "history.db")
	return runhistory.Open(dbPath)
}
