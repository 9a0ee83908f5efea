package planregistry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jra3/hecras-orchestrator/internal/herr"
)

func TestEditorBatchesOneReadAndWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "muncie.g01")
	content := "Geom Title=Old\nStation Elevation=2\n      1.00      2.00\n      3.00      4.00\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	e, err := EditInMemory(path)
	if err != nil {
		t.Fatalf("EditInMemory() error: %v", err)
	}
	e.SetScalar("Geom Title", "New").SetTable("Station Elevation", []float64{1, 2, 3, 4, 5, 6})
	if err := e.Apply(); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "Geom Title=New") {
		t.Errorf("Apply() result missing updated scalar: %q", got)
	}
	if !strings.Contains(string(got), "Station Elevation=3") {
		t.Errorf("Apply() result missing updated table count: %q", got)
	}
}

func TestEditorRejectsOversizedCrossSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "muncie.g01")
	if err := os.WriteFile(path, []byte("Station Elevation=1\n    1.00    2.00\n"), 0644); err != nil {
		t.Fatal(err)
	}

	e, err := EditInMemory(path)
	if err != nil {
		t.Fatalf("EditInMemory() error: %v", err)
	}
	values := make([]float64, 2*451)
	err = e.SetTable("Station Elevation", values).Apply()
	if !herr.Is(err, herr.FormatViolation) {
		t.Errorf("Apply() error kind = %v, want FormatViolation", err)
	}
}
