// Package testutil provides fixture HEC-RAS project folders and a mock
// remote execution server for use across package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jra3/hecras-orchestrator/internal/project"
)

// ProjectConfig describes a fixture project to write to disk.
type ProjectConfig struct {
	// Name is the manifest base name; files are named Name.prj,
	// Name.g01, Name.u01, Name.p01, and so on.
	Name string
	// PlanCount is how many plan files to generate, numbered p01..pNN,
	// each bound to geometry g01 and unsteady u01.
	PlanCount int
	// ExecutablePath is the simulator path a fakeLocator resolves to.
	ExecutablePath string
}

// DefaultProjectConfig returns a single-plan fixture suitable for most
// scheduler and plan-registry tests.
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{Name: "muncie", PlanCount: 1, ExecutablePath: "/usr/bin/ras"}
}

type fakeLocator struct{ path string }

func (f fakeLocator) Resolve(version, explicitPath string) (string, error) { return f.path, nil }

// WriteProject writes a fixture project folder under a fresh t.TempDir
// and returns the initialized Project alongside its folder path.
func WriteProject(t *testing.T, cfg ProjectConfig) (*project.Project, string) {
	t.Helper()
	dir := t.TempDir()

	must := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
	}

	must(cfg.Name+".prj", "Proj Title="+cfg.Name+"\n")
	must(cfg.Name+".g01", "Geom Title=Terrain\n")
	must(cfg.Name+".u01", "Flow Title=Storm\n")
	for i := 1; i <= cfg.PlanCount; i++ {
		must(PlanFileName(cfg.Name, i), "Plan Title=Plan\nGeom File=g01\nUnsteady File=u01\n")
	}

	p, err := project.Initialize(dir, "", cfg.ExecutablePath, fakeLocator{path: cfg.ExecutablePath}, nil)
	if err != nil {
		t.Fatalf("project.Initialize() error: %v", err)
	}
	return p, dir
}

// PlanFileName returns the conventional fixed-width plan file name for
// plan number i (01-09 only; callers needing more should name files
// directly).
func PlanFileName(name string, i int) string {
	return name + ".p0" + string(rune('0'+i))
}
