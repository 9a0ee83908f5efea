// Package project discovers and parses a HEC-RAS project folder into
// an in-memory tabular model (§3.1–§3.2, §4.1). It never mutates
// files; writes go through internal/planregistry.
package project

import (
	"go.uber.org/zap"

	"github.com/jra3/hecras-orchestrator/internal/herr"
)

// Project is a simulator project anchored at a directory. At most one
// Project should exclusively own a given folder path at a time;
// sharing is the caller's responsibility (§3.1).
type Project struct {
	Folder                  string
	Name                    string
	ManifestPath            string
	SimulatorExecutablePath string

	Plans      []PlanRow
	Geometries []GeometryRow
	Flows      []FlowRow
	Unsteadies []UnsteadyRow
	Boundaries []BoundaryRow

	logger *zap.Logger
}

// PlanRow is one row of the Plan Table (§3.2).
type PlanRow struct {
	Number          string
	UnsteadyNumber  string // mutually exclusive with FlowNumber
	FlowNumber      string
	GeometryNumber  string
	PlanTitle       string
	ShortIdentifier string

	ComputationInterval string
	OutputInterval       string
	MappingInterval      string
	NumberOfCores        int

	RunGeometryPreprocessor bool
	RunUnsteadyFlow         bool
	RunSediment             bool
	RunPostProcessor        bool
	RunFloodplainMapping    bool

	FullPath       string
	HDFResultsPath string // empty if not yet computed
}

// GeometryRow is one row of the Geometry Table (§3.2).
type GeometryRow struct {
	Number   string
	FilePath string
	Title    string

	CrossSectionCount            int
	Mesh2DCellCount              int
	BridgeCount                  int
	CulvertCount                 int
	WeirCount                    int
	GateCount                    int
	LateralStructureCount        int
	StorageAreaConnectionCount   int
	MeshAreaNames                []string
}

// FlowRow is one row of the (steady) Flow Table (§3.2).
type FlowRow struct {
	Number   string
	FilePath string
	Title    string
}

// UnsteadyRow is one row of the Unsteady Table (§3.2).
type UnsteadyRow struct {
	Number                  string
	FilePath                string
	FlowTitle               string
	PrecipitationMode       string
	InitialConditionSummary string
}

// BoundaryRow is one row of the flattened Boundary Table (§3.2).
type BoundaryRow struct {
	UnsteadyNumber    string
	RiverReachStation string
	StorageAreaName   string
	BoundaryType      string
	DSSFile           string
	Interval          string
}

// SimulatorLocator resolves a simulator version string or an explicit
// executable path override into an absolute path. internal/locator.Locator
// implements this.
type SimulatorLocator interface {
	Resolve(version, explicitPath string) (string, error)
}

// Initialize discovers folder's manifest, resolves the simulator
// executable, and populates all five tables (§4.1 initialize).
func Initialize(folder, simulatorVersion, simulatorExecutablePath string, locator SimulatorLocator, logger *zap.Logger) (*Project, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	manifestPath, name, err := discoverManifest(folder)
	if err != nil {
		return nil, err
	}

	execPath, err := locator.Resolve(simulatorVersion, simulatorExecutablePath)
	if err != nil {
		return nil, err
	}

	p := &Project{
		Folder:                  folder,
		Name:                    name,
		ManifestPath:            manifestPath,
		SimulatorExecutablePath: execPath,
		logger:                  logger,
	}

	if err := RefreshTables(p); err != nil {
		return nil, err
	}
	return p, nil
}

// RefreshTables re-parses every sibling file and entirely replaces the
// five table objects (§4.1 refresh_tables). Callers holding prior
// snapshots of p's tables retain stale views, by design.
func RefreshTables(p *Project) error {
	siblings, err := enumerateSiblings(p.Folder, p.Name)
	if err != nil {
		return err
	}

	plans := make([]PlanRow, 0, len(siblings.plans))
	for _, path := range siblings.plans {
		row, err := parsePlanFile(path)
		if err != nil {
			p.logger.Warn("failed to parse plan file", zap.String("path", path), zap.Error(err))
			row = PlanRow{Number: planNumberFromPath(path), FullPath: path}
		}
		if hdf, ok := siblings.planResults[row.Number]; ok {
			row.HDFResultsPath = hdf
		}
		plans = append(plans, row)
	}

	geometries := make([]GeometryRow, 0, len(siblings.geometries))
	for _, path := range siblings.geometries {
		row := parseGeometryFile(p, path, siblings.geometryArchives[geometryNumberFromPath(path)])
		geometries = append(geometries, row)
	}

	flows := make([]FlowRow, 0, len(siblings.flows))
	for _, path := range siblings.flows {
		row, err := parseFlowFile(path)
		if err != nil {
			p.logger.Warn("failed to parse flow file", zap.String("path", path), zap.Error(err))
			row = FlowRow{Number: flowNumberFromPath(path), FilePath: path}
		}
		flows = append(flows, row)
	}

	unsteadies := make([]UnsteadyRow, 0, len(siblings.unsteadies))
	var boundaries []BoundaryRow
	for _, path := range siblings.unsteadies {
		row, rowBoundaries, err := parseUnsteadyFile(path)
		if err != nil {
			p.logger.Warn("failed to parse unsteady file", zap.String("path", path), zap.Error(err))
			row = UnsteadyRow{Number: unsteadyNumberFromPath(path), FilePath: path}
		}
		unsteadies = append(unsteadies, row)
		boundaries = append(boundaries, rowBoundaries...)
	}

	p.Plans = plans
	p.Geometries = geometries
	p.Flows = flows
	p.Unsteadies = unsteadies
	p.Boundaries = boundaries
	return nil
}

// GetBoundaryConditions returns the flattened boundary list across all
// unsteady files (§4.1 get_boundary_conditions). It reflects the table
// as of the last RefreshTables call.
func GetBoundaryConditions(p *Project) []BoundaryRow {
	out := make([]BoundaryRow, len(p.Boundaries))
	copy(out, p.Boundaries)
	return out
}

// PlanByNumber returns the plan row for number, or PlanNotFound.
func (p *Project) PlanByNumber(number string) (*PlanRow, error) {
	for i := range p.Plans {
		if p.Plans[i].Number == number {
			return &p.Plans[i], nil
		}
	}
	return nil, herr.New(herr.PlanNotFound, "no plan numbered "+number).WithPath(p.Folder)
}

// GeometryByNumber returns the geometry row for number, or GeometryNotFound.
func (p *Project) GeometryByNumber(number string) (*GeometryRow, error) {
	for i := range p.Geometries {
		if p.Geometries[i].Number == number {
			return &p.Geometries[i], nil
		}
	}
	return nil, herr.New(herr.GeometryNotFound, "no geometry numbered "+number).WithPath(p.Folder)
}

// FlowByNumber returns the flow row for number, or FlowNotFound.
func (p *Project) FlowByNumber(number string) (*FlowRow, error) {
	for i := range p.Flows {
		if p.Flows[i].Number == number {
			return &p.Flows[i], nil
		}
	}
	return nil, herr.New(herr.FlowNotFound, "no flow numbered "+number).WithPath(p.Folder)
}

// UnsteadyByNumber returns the unsteady row for number, or UnsteadyNotFound.
func (p *Project) UnsteadyByNumber(number string) (*UnsteadyRow, error) {
	for i := range p.Unsteadies {
		if p.Unsteadies[i].Number == number {
			return &p.Unsteadies[i], nil
		}
	}
	return nil, herr.New(herr.UnsteadyNotFound, "no unsteady flow numbered "+number).WithPath(p.Folder)
}
