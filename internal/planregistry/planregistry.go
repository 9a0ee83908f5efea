// Package planregistry implements the Plan Registry and Mutator
// (§4.2): cloning plans/geometries/flows/unsteady flows, retargeting
// bindings, and rewriting scalar parameters and embedded tables. Every
// operation preserves byte-level formatting except for the fields it
// touches, and refreshes the owning Project's tables before returning.
package planregistry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jra3/hecras-orchestrator/internal/fixedwidth"
	"github.com/jra3/hecras-orchestrator/internal/herr"
	"github.com/jra3/hecras-orchestrator/internal/project"
	"github.com/jra3/hecras-orchestrator/internal/textfile"
)

// Kind identifies which of the four numbered file families an
// operation targets (§4.2 clone).
type Kind string

const (
	KindPlan      Kind = "plan"
	KindGeometry  Kind = "geometry"
	KindUnsteady  Kind = "unsteady"
	KindFlow      Kind = "flow"
)

func extensionFor(kind Kind) (string, error) {
	switch kind {
	case KindPlan:
		return "p", nil
	case KindGeometry:
		return "g", nil
	case KindUnsteady:
		return "u", nil
	case KindFlow:
		return "f", nil
	default:
		return "", herr.New(herr.FormatViolation, "unknown clone kind "+string(kind))
	}
}

func manifestKeyFor(kind Kind) string {
	switch kind {
	case KindPlan:
		return "Plan File"
	case KindGeometry:
		return "Geom File"
	case KindUnsteady:
		return "Unsteady File"
	case KindFlow:
		return "Flow File"
	default:
		return ""
	}
}

func usedNumbers(p *project.Project, kind Kind) map[string]bool {
	used := make(map[string]bool)
	switch kind {
	case KindPlan:
		for _, row := range p.Plans {
			used[row.Number] = true
		}
	case KindGeometry:
		for _, row := range p.Geometries {
			used[row.Number] = true
		}
	case KindUnsteady:
		for _, row := range p.Unsteadies {
			used[row.Number] = true
		}
	case KindFlow:
		for _, row := range p.Flows {
			used[row.Number] = true
		}
	}
	return used
}

func sourcePath(p *project.Project, kind Kind, number string) (string, error) {
	switch kind {
	case KindPlan:
		row, err := p.PlanByNumber(number)
		if err != nil {
			return "", err
		}
		return row.FullPath, nil
	case KindGeometry:
		row, err := p.GeometryByNumber(number)
		if err != nil {
			return "", err
		}
		return row.FilePath, nil
	case KindUnsteady:
		row, err := p.UnsteadyByNumber(number)
		if err != nil {
			return "", err
		}
		return row.FilePath, nil
	case KindFlow:
		row, err := p.FlowByNumber(number)
		if err != nil {
			return "", err
		}
		return row.FilePath, nil
	default:
		return "", herr.New(herr.FormatViolation, "unknown clone kind "+string(kind))
	}
}

// Clone copies the source file for kind/sourceNumber byte-for-byte to
// the lowest unused two-digit number, registers the new number on the
// manifest, refreshes the project's tables, and returns the new
// number (§4.2 clone).
func Clone(p *project.Project, kind Kind, sourceNumber string) (string, error) {
	ext, err := extensionFor(kind)
	if err != nil {
		return "", err
	}

	src, err := sourcePath(p, kind, sourceNumber)
	if err != nil {
		return "", err
	}

	newNumber, err := project.NextAvailableNumber(usedNumbers(p, kind))
	if err != nil {
		return "", err
	}

	dstDir := filepath.Dir(src)
	dst := filepath.Join(dstDir, fmt.Sprintf("%s.%s%s", p.Name, ext, newNumber))
	if err := copyFile(src, dst); err != nil {
		return "", err
	}

	// For a plan clone, the results archive is never copied: a fresh
	// plan number has no results until it is executed (§4.2 "clears
	// the hdf_results_path cell of the clone" — there is simply
	// nothing to populate it from).

	if err := registerOnManifest(p.ManifestPath, manifestKeyFor(kind), fmt.Sprintf("%s.%s%s", p.Name, ext, newNumber)); err != nil {
		return "", err
	}

	if err := project.RefreshTables(p); err != nil {
		return "", err
	}
	return newNumber, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return herr.Wrap(herr.IoError, "open clone source", err).WithPath(src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return herr.Wrap(herr.IoError, "create clone destination", err).WithPath(dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return herr.Wrap(herr.IoError, "copy clone contents", err).WithPath(dst)
	}
	return nil
}

// registerOnManifest appends a "Key=Value" line recording the new
// file in the manifest's recognized-files list (§4.2 clone). The
// manifest allows a repeated key, one per recognized file, so this
// always appends rather than going through SetField's single-value
// semantics.
func registerOnManifest(manifestPath, key, value string) error {
	doc, err := textfile.ReadDocument(manifestPath)
	if err != nil {
		return err
	}
	doc.AppendLine(fmt.Sprintf("%s=%s", key, value))
	return textfile.WriteAtomic(manifestPath, doc)
}

// SetBinding rewrites a plan's Geom File/Unsteady File/Flow File
// header lines (§4.2 set_binding). Exactly one of unsteadyNumber or
// flowNumber must be non-empty.
func SetBinding(p *project.Project, planNumber, geometryNumber, unsteadyNumber, flowNumber string) error {
	if (unsteadyNumber == "") == (flowNumber == "") {
		return herr.New(herr.BindingConflict, "exactly one of unsteady or flow must be set")
	}

	plan, err := p.PlanByNumber(planNumber)
	if err != nil {
		return err
	}

	doc, err := textfile.ReadDocument(plan.FullPath)
	if err != nil {
		return err
	}

	if geometryNumber != "" {
		doc.SetOrAddField("Geom File", fmt.Sprintf("g%s", geometryNumber))
	}
	if unsteadyNumber != "" {
		doc.SetOrAddField("Unsteady File", fmt.Sprintf("u%s", unsteadyNumber))
		doc.RemoveField("Flow File")
	} else {
		doc.SetOrAddField("Flow File", fmt.Sprintf("f%s", flowNumber))
		doc.RemoveField("Unsteady File")
	}

	if err := textfile.WriteAtomic(plan.FullPath, doc); err != nil {
		return err
	}
	return project.RefreshTables(p)
}

const (
	maxPlanTitleLength       = 24
	maxShortIdentifierLength = 12
)

// scalarFieldKeys maps the set_scalar field names from §4.2 to their
// plan-file header keys.
var scalarFieldKeys = map[string]string{
	"plan_title":           "Plan Title",
	"short_identifier":     "Short Identifier",
	"number_of_cores":      "Number of Cores",
	"computation_interval": "Computation Interval",
	"output_interval":      "Output Interval",
	"mapping_interval":     "Mapping Interval",
}

// runFlagKeys maps the run_flags names accepted by set_scalar to their
// plan-file header keys, in the same order parse_plan.go reads them
// back (Run HTab, Run UNet, Run Sediment, Run PostProcess, Run
// RASMapper).
var runFlagKeys = map[string]string{
	"htab":        "Run HTab",
	"unet":        "Run UNet",
	"sediment":    "Run Sediment",
	"postprocess": "Run PostProcess",
	"rasmapper":   "Run RASMapper",
}

// SetScalar rewrites one header line on a plan file (§4.2 set_scalar).
// field="run_flags" is the one multi-line case: value is a
// comma-separated subset of runFlagKeys' names naming which stages to
// enable; every other stage is written disabled.
func SetScalar(p *project.Project, planNumber, field, value string) error {
	switch field {
	case "plan_title":
		if len(value) > maxPlanTitleLength {
			return herr.New(herr.FormatViolation, fmt.Sprintf("plan_title exceeds %d characters", maxPlanTitleLength)).WithLine(0, value)
		}
	case "short_identifier":
		if len(value) > maxShortIdentifierLength {
			return herr.New(herr.FormatViolation, fmt.Sprintf("short_identifier exceeds %d characters", maxShortIdentifierLength)).WithLine(0, value)
		}
	case "number_of_cores":
		if _, err := strconv.Atoi(value); err != nil {
			return herr.Wrap(herr.FormatViolation, "number_of_cores must be an integer", err).WithLine(0, value)
		}
	case "run_flags":
		return setRunFlags(p, planNumber, value)
	}

	key, ok := scalarFieldKeys[field]
	if !ok {
		return herr.New(herr.FormatViolation, "unknown scalar field "+field)
	}

	plan, err := p.PlanByNumber(planNumber)
	if err != nil {
		return err
	}

	doc, err := textfile.ReadDocument(plan.FullPath)
	if err != nil {
		return err
	}
	doc.SetOrAddField(key, value)
	if err := textfile.WriteAtomic(plan.FullPath, doc); err != nil {
		return err
	}
	return project.RefreshTables(p)
}

func setRunFlags(p *project.Project, planNumber, value string) error {
	enabled := make(map[string]bool, len(runFlagKeys))
	if value != "" {
		for _, name := range strings.Split(value, ",") {
			name = strings.TrimSpace(name)
			if _, ok := runFlagKeys[name]; !ok {
				return herr.New(herr.FormatViolation, "unknown run_flags name "+name)
			}
			enabled[name] = true
		}
	}

	plan, err := p.PlanByNumber(planNumber)
	if err != nil {
		return err
	}

	doc, err := textfile.ReadDocument(plan.FullPath)
	if err != nil {
		return err
	}
	for name, key := range runFlagKeys {
		if enabled[name] {
			doc.SetOrAddField(key, "1")
		} else {
			doc.SetOrAddField(key, "0")
		}
	}
	if err := textfile.WriteAtomic(plan.FullPath, doc); err != nil {
		return err
	}
	return project.RefreshTables(p)
}

// maxCrossSectionPoints is the simulator hard limit (§6.2); the
// Mutator MUST reject writes exceeding it.
const maxCrossSectionPoints = 450

// stationElevationKeywords are the pair-count tables subject to the
// 450-point cross-section limit.
var stationElevationKeywords = map[string]bool{
	"Station Elevation":            true,
	"XS GIS Cut Line Station Elev": true,
}

// SetTable replaces a table's body with newly formatted values and
// rewrites its declared count header (§4.2 set_table). values holds
// raw scalar values (already flattened for pair tables).
func SetTable(filePath, tableKeyword string, values []float64) error {
	if stationElevationKeywords[tableKeyword] && len(values)/2 > maxCrossSectionPoints {
		return herr.New(herr.FormatViolation, fmt.Sprintf("cross section exceeds %d points", maxCrossSectionPoints)).WithPath(filePath)
	}

	doc, err := textfile.ReadDocument(filePath)
	if err != nil {
		return err
	}

	lines, err := fixedwidth.Format(values, fixedwidth.DefaultWidth, fixedwidth.DefaultPerLine, fixedwidth.DefaultPrecision)
	if err != nil {
		return err
	}

	declaredCount := len(values)
	if stationElevationKeywords[tableKeyword] {
		declaredCount = len(values) / 2
	}

	if err := doc.SetTableBody(tableKeyword, lines, declaredCount); err != nil {
		return herr.Wrap(herr.ParseError, "table not found in file", err).WithPath(filePath).WithLine(0, tableKeyword)
	}
	return textfile.WriteAtomic(filePath, doc)
}

