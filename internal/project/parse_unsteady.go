package project

import (
	"bufio"
	"os"
	"strings"

	"github.com/jra3/hecras-orchestrator/internal/herr"
	"github.com/jra3/hecras-orchestrator/internal/textfile"
)

// boundaryTypeMarkers are the header keys that, if present in a
// boundary condition block, identify its hydraulic type (§3.2
// Boundary Table "boundary type" column).
var boundaryTypeMarkers = []string{
	"Flow Hydrograph",
	"Stage Hydrograph",
	"Normal Depth",
	"Lateral Inflow Hydrograph",
	"Gate Opening",
}

func parseUnsteadyFile(path string) (UnsteadyRow, []BoundaryRow, error) {
	doc, err := textfile.ReadDocument(path)
	if err != nil {
		return UnsteadyRow{}, nil, err
	}

	row := UnsteadyRow{
		Number:   unsteadyNumberFromPath(path),
		FilePath: path,
	}
	if v, ok := doc.Field("Flow Title"); ok {
		row.FlowTitle = v
	}
	if v, ok := doc.Field("Met Mode"); ok {
		row.PrecipitationMode = v
	}
	if v, ok := doc.Field("IC Point"); ok {
		row.InitialConditionSummary = v
	} else if v, ok := doc.Field("Initial Flow Title"); ok {
		row.InitialConditionSummary = v
	}

	boundaries, err := scanBoundaryConditions(path, row.Number)
	if err != nil {
		return row, nil, err
	}
	return row, boundaries, nil
}

// scanBoundaryConditions walks the raw file line-by-line for
// "Boundary Location=" blocks and the type/DSS/interval keys that
// follow within the same block, terminated by a blank line or the
// next "Boundary Location=" line.
func scanBoundaryConditions(path, unsteadyNumber string) ([]BoundaryRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, herr.Wrap(herr.IoError, "open unsteady file", err).WithPath(path)
	}
	defer f.Close()

	var rows []BoundaryRow
	var current *BoundaryRow

	flush := func() {
		if current != nil {
			rows = append(rows, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if strings.HasPrefix(line, "Boundary Location=") {
			flush()
			fields := strings.Split(strings.TrimPrefix(line, "Boundary Location="), ",")
			row := BoundaryRow{UnsteadyNumber: unsteadyNumber}
			if len(fields) > 2 {
				row.RiverReachStation = strings.TrimSpace(strings.Join(fields[0:3], ","))
			}
			if len(fields) > 5 {
				row.StorageAreaName = strings.TrimSpace(fields[5])
			}
			current = &row
			continue
		}

		if current == nil {
			continue
		}

		for _, marker := range boundaryTypeMarkers {
			if strings.HasPrefix(line, marker+"=") {
				current.BoundaryType = marker
			}
		}
		if strings.HasPrefix(line, "DSS File=") {
			current.DSSFile = strings.TrimPrefix(line, "DSS File=")
		}
		if strings.HasPrefix(line, "Interval=") {
			current.Interval = strings.TrimPrefix(line, "Interval=")
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, herr.Wrap(herr.ParseError, "scanning unsteady file for boundary conditions", err).WithPath(path)
	}
	return rows, nil
}
