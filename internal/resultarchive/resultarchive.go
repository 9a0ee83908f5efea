// Package resultarchive implements the Result Reader's input
// normalization layer (§4.5): a tagged-variant PlanLocator, path
// resolution against the project model, and an opaque handle over the
// binary HDF5 result/geometry archives the core never parses itself
// (§3.5).
package resultarchive

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/jra3/hecras-orchestrator/internal/herr"
)

// ArchiveKind distinguishes the two archive families the Result
// Reader resolves paths for (§4.5).
type ArchiveKind int

const (
	PlanArchive ArchiveKind = iota
	GeometryArchive
)

// Documented HDF5 group paths a collaborator may pass to a real HDF5
// binding once it has opened a Handle (§4.5 "documented group-paths").
// The core never reads inside them.
const (
	GroupResultsUnsteady     = "/Results/Unsteady"
	GroupResultsSummary      = "/Results/Summary"
	GroupGeometryStructures  = "/Geometry/Structures"
	GroupGeometryCrossSections = "/Geometry/Cross Sections"
	GroupGeometry2DFlowAreas = "/Geometry/2D Flow Areas"
	GroupEventConditions     = "/Event Conditions"
)

// Handle is an opaque reference to an opened binary archive. The core
// does not parse its internal schema; it exists so collaborators can
// receive a resolved, already-open file without re-deriving the path
// or racing a second open.
type Handle struct {
	Path string
	file *os.File
}

// Close releases the underlying file handle.
func (h *Handle) Close() error {
	if h.file == nil {
		return nil
	}
	return h.file.Close()
}

// OpenPlanArchive opens a plan's result archive (<name>.pNN.hdf) and
// returns an opaque Handle.
func OpenPlanArchive(path string) (*Handle, error) {
	return open(path)
}

// OpenGeometryArchive opens a geometry's preprocessed archive
// (<name>.gNN.hdf) and returns an opaque Handle.
func OpenGeometryArchive(path string) (*Handle, error) {
	return open(path)
}

func open(path string) (*Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, herr.Wrap(herr.ResultsNotAvailable, "result archive not available", err).WithPath(path)
	}
	return &Handle{Path: path, file: f}, nil
}

// PlanLocator is the tagged variant from the Design Notes (§9): a
// caller may identify a plan by number, by an explicit path, or by an
// already-open Handle. Exactly one field is set.
type PlanLocator struct {
	Number string
	Path   string
	Handle *Handle
}

// NumberLocator builds a PlanLocator from a plan number or a "pNN"/"gNN"
// style identifier.
func NumberLocator(number string) PlanLocator { return PlanLocator{Number: number} }

// PathLocator builds a PlanLocator from an explicit filesystem path.
func PathLocator(path string) PlanLocator { return PlanLocator{Path: path} }

// HandleLocator builds a PlanLocator from an already-open Handle.
func HandleLocator(h *Handle) PlanLocator { return PlanLocator{Handle: h} }

var planNumberPattern = regexp.MustCompile(`^p?(\d{2})$`)
var geometryNumberPattern = regexp.MustCompile(`^g?(\d{2})$`)

// ProjectTables is the minimal view of a project's tables Resolve
// needs; internal/project.Project satisfies it via small adapter
// methods so this package never imports internal/project (avoiding a
// dependency cycle with internal/project's own use of this package).
type ProjectTables interface {
	PlanResultsPath(number string) (string, bool)
	GeometryArchivePath(number string) (string, bool)
}

// Resolve normalizes loc into an absolute archive path (§4.5 resolve).
// A locator carrying a bare number or "pNN"/"gNN" identifier is looked
// up via tables; a path locator uses its path as given; a handle
// locator uses its already-resolved path. ResultsNotAvailable is raised
// when the target archive does not exist on disk.
func Resolve(loc PlanLocator, kind ArchiveKind, tables ProjectTables) (string, error) {
	var path string

	switch {
	case loc.Handle != nil:
		path = loc.Handle.Path
	case loc.Path != "":
		path = loc.Path
	case loc.Number != "":
		number, pattern := loc.Number, planNumberPattern
		if kind == GeometryArchive {
			pattern = geometryNumberPattern
		}
		m := pattern.FindStringSubmatch(number)
		if m == nil {
			return "", herr.New(herr.ResultsNotAvailable, "locator is not a recognized plan/geometry identifier: "+number)
		}
		digits := m[1]

		var ok bool
		if kind == GeometryArchive {
			path, ok = tables.GeometryArchivePath(digits)
		} else {
			path, ok = tables.PlanResultsPath(digits)
		}
		if !ok || path == "" {
			return "", herr.New(herr.ResultsNotAvailable, "plan "+digits+" has not been executed").WithPath(digits)
		}
	default:
		return "", herr.New(herr.ResultsNotAvailable, "empty PlanLocator")
	}

	if _, err := os.Stat(path); err != nil {
		return "", herr.Wrap(herr.ResultsNotAvailable, "result archive does not exist", err).WithPath(path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, nil
}
