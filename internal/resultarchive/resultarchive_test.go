package resultarchive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jra3/hecras-orchestrator/internal/herr"
)

type fakeTables struct {
	plans      map[string]string
	geometries map[string]string
}

func (f fakeTables) PlanResultsPath(number string) (string, bool) {
	p, ok := f.plans[number]
	return p, ok
}

func (f fakeTables) GeometryArchivePath(number string) (string, bool) {
	p, ok := f.geometries[number]
	return p, ok
}

func TestResolveByNumber(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "muncie.p03.hdf")
	if err := os.WriteFile(archive, []byte("hdf"), 0644); err != nil {
		t.Fatal(err)
	}
	tables := fakeTables{plans: map[string]string{"03": archive}}

	got, err := Resolve(NumberLocator("03"), PlanArchive, tables)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != archive {
		t.Errorf("Resolve() = %q, want %q", got, archive)
	}
}

func TestResolveByPNNIdentifier(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "muncie.p03.hdf")
	if err := os.WriteFile(archive, []byte("hdf"), 0644); err != nil {
		t.Fatal(err)
	}
	tables := fakeTables{plans: map[string]string{"03": archive}}

	got, err := Resolve(NumberLocator("p03"), PlanArchive, tables)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != archive {
		t.Errorf("Resolve() = %q, want %q", got, archive)
	}
}

func TestResolveByPath(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "explicit.hdf")
	if err := os.WriteFile(archive, []byte("hdf"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Resolve(PathLocator(archive), PlanArchive, fakeTables{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != archive {
		t.Errorf("Resolve() = %q, want %q", got, archive)
	}
}

func TestResolveNotYetExecuted(t *testing.T) {
	tables := fakeTables{plans: map[string]string{}}
	_, err := Resolve(NumberLocator("01"), PlanArchive, tables)
	if !herr.Is(err, herr.ResultsNotAvailable) {
		t.Errorf("Resolve() error kind = %v, want ResultsNotAvailable", err)
	}
}

func TestResolveByHandle(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "muncie.p01.hdf")
	if err := os.WriteFile(archive, []byte("hdf"), 0644); err != nil {
		t.Fatal(err)
	}

	h, err := OpenPlanArchive(archive)
	if err != nil {
		t.Fatalf("OpenPlanArchive() error: %v", err)
	}
	defer h.Close()

	got, err := Resolve(HandleLocator(h), PlanArchive, fakeTables{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != archive {
		t.Errorf("Resolve() = %q, want %q", got, archive)
	}
}

func TestOpenPlanArchiveMissingFileIsResultsNotAvailable(t *testing.T) {
	_, err := OpenPlanArchive("/no/such/archive.p01.hdf")
	if !herr.Is(err, herr.ResultsNotAvailable) {
		t.Errorf("OpenPlanArchive() error kind = %v, want ResultsNotAvailable", err)
	}
}
