package planregistry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jra3/hecras-orchestrator/internal/herr"
	"github.com/jra3/hecras-orchestrator/internal/project"
)

type fakeLocator struct{ path string }

func (f fakeLocator) Resolve(version, explicitPath string) (string, error) { return f.path, nil }

func newTestProject(t *testing.T) (*project.Project, string) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"muncie.prj": "Proj Title=Muncie\n",
		"muncie.p01": "Plan Title=Base Plan\nShort Identifier=Base\nGeom File=g01\nUnsteady File=u01\n",
		"muncie.g01": "Geom Title=Muncie Terrain\n",
		"muncie.u01": "Flow Title=Muncie Storm\nFlow Hydrograph=2\n      10.00      20.00\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
	}
	p, err := project.Initialize(dir, "", "/usr/bin/ras", fakeLocator{path: "/usr/bin/ras"}, nil)
	if err != nil {
		t.Fatalf("project.Initialize() error: %v", err)
	}
	return p, dir
}

func TestCloneAllocatesNextNumberAndCopiesBytes(t *testing.T) {
	p, dir := newTestProject(t)

	newNumber, err := Clone(p, KindPlan, "01")
	if err != nil {
		t.Fatalf("Clone() error: %v", err)
	}
	if newNumber != "02" {
		t.Errorf("Clone() new number = %q, want %q", newNumber, "02")
	}

	original, err := os.ReadFile(filepath.Join(dir, "muncie.p01"))
	if err != nil {
		t.Fatal(err)
	}
	cloned, err := os.ReadFile(filepath.Join(dir, "muncie.p02"))
	if err != nil {
		t.Fatalf("cloned file not found: %v", err)
	}
	if string(original) != string(cloned) {
		t.Errorf("clone content = %q, want byte-identical copy %q", cloned, original)
	}

	plan, err := p.PlanByNumber("02")
	if err != nil {
		t.Fatalf("PlanByNumber(02) error: %v", err)
	}
	if plan.HDFResultsPath != "" {
		t.Errorf("cloned plan HDFResultsPath = %q, want empty", plan.HDFResultsPath)
	}
}

func TestCloneTwiceYieldsDistinctNumbers(t *testing.T) {
	p, _ := newTestProject(t)

	first, err := Clone(p, KindPlan, "01")
	if err != nil {
		t.Fatalf("first Clone() error: %v", err)
	}
	second, err := Clone(p, KindPlan, "01")
	if err != nil {
		t.Fatalf("second Clone() error: %v", err)
	}
	if first == second || first == "01" || second == "01" {
		t.Errorf("Clone() idempotence violated: first=%q second=%q source=01", first, second)
	}
}

func TestSetScalarPlanTitleTooLongRejected(t *testing.T) {
	p, _ := newTestProject(t)

	err := SetScalar(p, "01", "plan_title", "this title is exactly far too long")
	if !herr.Is(err, herr.FormatViolation) {
		t.Errorf("SetScalar() error kind = %v, want FormatViolation", err)
	}
}

func TestSetScalarPlanTitleExactlyAtLimitAccepted(t *testing.T) {
	p, _ := newTestProject(t)

	title := "123456789012345678901234" // exactly 24 chars
	if err := SetScalar(p, "01", "plan_title", title); err != nil {
		t.Fatalf("SetScalar() at the 24-char limit should succeed: %v", err)
	}
	plan, _ := p.PlanByNumber("01")
	if plan.PlanTitle != title {
		t.Errorf("PlanTitle = %q, want %q", plan.PlanTitle, title)
	}
}

func TestSetScalarPlanTitleOneOverLimitRejected(t *testing.T) {
	p, _ := newTestProject(t)

	title := "1234567890123456789012345" // 25 chars
	err := SetScalar(p, "01", "plan_title", title)
	if !herr.Is(err, herr.FormatViolation) {
		t.Errorf("SetScalar() error kind = %v, want FormatViolation", err)
	}
}

func TestSetScalarRunFlagsEnablesNamedStagesOnly(t *testing.T) {
	p, _ := newTestProject(t)

	if err := SetScalar(p, "01", "run_flags", "unet,postprocess"); err != nil {
		t.Fatalf("SetScalar() error: %v", err)
	}
	plan, _ := p.PlanByNumber("01")
	if plan.RunUnsteadyFlow != true || plan.RunPostProcessor != true {
		t.Errorf("RunUnsteadyFlow/RunPostProcessor = %v/%v, want true/true", plan.RunUnsteadyFlow, plan.RunPostProcessor)
	}
	if plan.RunGeometryPreprocessor || plan.RunSediment || plan.RunFloodplainMapping {
		t.Errorf("unnamed stages should be disabled, got HTab=%v Sediment=%v RASMapper=%v",
			plan.RunGeometryPreprocessor, plan.RunSediment, plan.RunFloodplainMapping)
	}
}

func TestSetScalarRunFlagsRejectsUnknownName(t *testing.T) {
	p, _ := newTestProject(t)

	err := SetScalar(p, "01", "run_flags", "htab,bogus")
	if !herr.Is(err, herr.FormatViolation) {
		t.Errorf("SetScalar() error kind = %v, want FormatViolation", err)
	}
}

func TestSetBindingRejectsBothUnsteadyAndFlow(t *testing.T) {
	p, _ := newTestProject(t)

	err := SetBinding(p, "01", "01", "01", "01")
	if !herr.Is(err, herr.BindingConflict) {
		t.Errorf("SetBinding() error kind = %v, want BindingConflict", err)
	}
}

func TestSetBindingSwitchesFromUnsteadyToFlow(t *testing.T) {
	p, dir := newTestProject(t)
	if err := os.WriteFile(filepath.Join(dir, "muncie.f01"), []byte("Flow Title=Steady\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := project.RefreshTables(p); err != nil {
		t.Fatal(err)
	}

	if err := SetBinding(p, "01", "", "", "01"); err != nil {
		t.Fatalf("SetBinding() error: %v", err)
	}

	plan, err := p.PlanByNumber("01")
	if err != nil {
		t.Fatal(err)
	}
	if plan.FlowNumber != "01" || plan.UnsteadyNumber != "" {
		t.Errorf("after SetBinding: FlowNumber=%q UnsteadyNumber=%q, want 01/empty", plan.FlowNumber, plan.UnsteadyNumber)
	}
}

func TestSetTableRewritesCountAndValues(t *testing.T) {
	_, dir := newTestProject(t)
	path := filepath.Join(dir, "muncie.u01")

	newValues := []float64{5, 10, 15}
	if err := SetTable(path, "Flow Hydrograph", newValues); err != nil {
		t.Fatalf("SetTable() error: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "Flow Hydrograph=3") {
		t.Errorf("written file does not contain updated count header: %q", content)
	}
}

func TestSetTableRejectsCrossSectionOver450Points(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "muncie.g01")
	if err := os.WriteFile(path, []byte("Station Elevation=1\n    1.00    2.00\n"), 0644); err != nil {
		t.Fatal(err)
	}

	values := make([]float64, 2*451)
	for i := range values {
		values[i] = float64(i)
	}
	err := SetTable(path, "Station Elevation", values)
	if !herr.Is(err, herr.FormatViolation) {
		t.Errorf("SetTable() error kind = %v, want FormatViolation", err)
	}
}

func TestSetTableAccepts450Points(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "muncie.g01")
	if err := os.WriteFile(path, []byte("Station Elevation=1\n    1.00    2.00\n"), 0644); err != nil {
		t.Fatal(err)
	}

	values := make([]float64, 2*450)
	for i := range values {
		values[i] = float64(i % 100)
	}
	if err := SetTable(path, "Station Elevation", values); err != nil {
		t.Fatalf("SetTable() at the 450-point limit should succeed: %v", err)
	}
}
