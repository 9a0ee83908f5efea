// Package locator resolves a simulator version string to an installed
// executable, or validates an explicit override path (§4.1
// initialize, §7 SimulatorNotFound). Resolved install paths are kept
// in a small TTL-guarded map in front of the filesystem probes, since
// an install's candidate roots (several per version, across Windows
// and Linux/Wine-compatible test layouts) are cheap to stat but not
// free to repeat on every plan in a batch.
package locator

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/jra3/hecras-orchestrator/internal/herr"
)

// resolvedPathTTL is long enough that a resolved install path is
// effectively cached for the life of the process; installs do not
// move while a batch is running.
const resolvedPathTTL = 24 * time.Hour

type resolvedPath struct {
	path      string
	expiresAt time.Time
}

// Locator resolves a simulator version or explicit path into an
// absolute executable path.
type Locator struct {
	registry map[string][]string

	mu       sync.RWMutex
	resolved map[string]resolvedPath
}

// New builds a Locator from a version-to-candidate-install-roots map.
// Production callers populate this from the platform's known install
// layout (§4.1); tests supply a small fixture map.
func New(registry map[string][]string) *Locator {
	return &Locator{
		registry: registry,
		resolved: make(map[string]resolvedPath),
	}
}

// candidateBinaryName is the simulator executable's base name per
// platform; the install layout otherwise mirrors across OSes.
func candidateBinaryName() string {
	if runtime.GOOS == "windows" {
		return "Ras.exe"
	}
	return "ras"
}

func (l *Locator) cachedResolve(version string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.resolved[version]
	if !ok || time.Now().After(r.expiresAt) {
		return "", false
	}
	return r.path, true
}

func (l *Locator) cacheResolve(version, path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resolved[version] = resolvedPath{path: path, expiresAt: time.Now().Add(resolvedPathTTL)}
}

// Resolve returns the absolute executable path for a version string,
// an explicit path override, or an error identifying which input was
// supplied and why it failed. explicitPath, if non-empty, always wins.
func (l *Locator) Resolve(version, explicitPath string) (string, error) {
	if explicitPath != "" {
		info, err := os.Stat(explicitPath)
		if err != nil {
			return "", herr.Wrap(herr.SimulatorNotFound, "explicit simulator path does not exist", err).WithPath(explicitPath)
		}
		if info.IsDir() {
			return "", herr.New(herr.SimulatorNotFound, "explicit simulator path is a directory, not an executable").WithPath(explicitPath)
		}
		return explicitPath, nil
	}

	if version == "" {
		return "", herr.New(herr.SimulatorNotFound, "neither a simulator version nor an explicit path was supplied")
	}

	if resolved, ok := l.cachedResolve(version); ok {
		return resolved, nil
	}

	roots, ok := l.registry[version]
	if !ok {
		return "", herr.New(herr.SimulatorNotFound, "no known install roots registered for simulator version "+version)
	}

	binary := candidateBinaryName()
	for _, root := range roots {
		candidate := filepath.Join(root, binary)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			l.cacheResolve(version, candidate)
			return candidate, nil
		}
	}
	return "", herr.New(herr.SimulatorNotFound, "simulator version "+version+" is registered but not installed at any known root")
}
