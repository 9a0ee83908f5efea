package locator

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jra3/hecras-orchestrator/internal/herr"
)

func writeFakeBinary(t *testing.T, dir string) string {
	t.Helper()
	name := "ras"
	if runtime.GOOS == "windows" {
		name = "Ras.exe"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("fake"), 0755); err != nil {
		t.Fatalf("writing fake binary: %v", err)
	}
	return path
}

func TestResolveExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFakeBinary(t, dir)

	l := New(nil)
	got, err := l.Resolve("", path)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != path {
		t.Errorf("Resolve() = %q, want %q", got, path)
	}
}

func TestResolveExplicitPathMissing(t *testing.T) {
	l := New(nil)
	_, err := l.Resolve("", "/no/such/binary")
	if !herr.Is(err, herr.SimulatorNotFound) {
		t.Errorf("Resolve() error kind = %v, want SimulatorNotFound", err)
	}
}

func TestResolveVersionFromRegistry(t *testing.T) {
	dir := t.TempDir()
	path := writeFakeBinary(t, dir)

	l := New(map[string][]string{"6.3": {dir}})
	got, err := l.Resolve("6.3", "")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != path {
		t.Errorf("Resolve() = %q, want %q", got, path)
	}
}

func TestResolveUnknownVersion(t *testing.T) {
	l := New(map[string][]string{})
	_, err := l.Resolve("9.9", "")
	if !herr.Is(err, herr.SimulatorNotFound) {
		t.Errorf("Resolve() error kind = %v, want SimulatorNotFound", err)
	}
}

func TestResolveRegisteredButNotInstalled(t *testing.T) {
	l := New(map[string][]string{"6.3": {"/no/such/dir"}})
	_, err := l.Resolve("6.3", "")
	if !herr.Is(err, herr.SimulatorNotFound) {
		t.Errorf("Resolve() error kind = %v, want SimulatorNotFound", err)
	}
}

func TestResolveNoInputAtAll(t *testing.T) {
	l := New(nil)
	_, err := l.Resolve("", "")
	if !herr.Is(err, herr.SimulatorNotFound) {
		t.Errorf("Resolve() error kind = %v, want SimulatorNotFound", err)
	}
}
