package project

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jra3/hecras-orchestrator/internal/resultarchive"
)

// parseGeometryFile builds a GeometryRow for path. When archivePath is
// non-empty the sibling .gNN.hdf is opened to confirm the preprocessed
// archive exists (§4.1 "prefer the sibling .gNN.hdf if present"); the
// element counts themselves still come from the text parse below,
// since the archive is an opaque handle in this core (§3.5) and
// attribute-level extraction is a collaborator's job.
//
// A malformed geometry file never aborts the project: on any parse
// failure the row is returned with zeroed counts and a warning is
// logged, per §3.2's "Project MUST remain well-formed even if a
// geometry file is malformed."
func parseGeometryFile(p *Project, path, archivePath string) GeometryRow {
	row := GeometryRow{
		Number:   geometryNumberFromPath(path),
		FilePath: path,
	}

	if archivePath != "" {
		if _, err := resultarchive.OpenGeometryArchive(archivePath); err != nil {
			p.logger.Warn("preprocessed geometry archive present but could not be opened", zap.String("path", archivePath), zap.Error(err))
		}
	}

	f, err := os.Open(path)
	if err != nil {
		p.logger.Warn("failed to open geometry file", zap.String("path", path), zap.Error(err))
		return row
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "Geom Title="):
			row.Title = strings.TrimPrefix(line, "Geom Title=")
		case strings.HasPrefix(line, "Type RM Length L Ch R ="):
			countStructureType(&row, line)
		case strings.HasPrefix(line, "2D Flow Area Cell Count="):
			if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "2D Flow Area Cell Count="))); err == nil {
				row.Mesh2DCellCount += n
			}
		case strings.HasPrefix(line, "2D Flow Area="):
			name := strings.TrimSpace(strings.Split(strings.TrimPrefix(line, "2D Flow Area="), ",")[0])
			if name != "" {
				row.MeshAreaNames = append(row.MeshAreaNames, name)
			}
		case strings.HasPrefix(line, "Connection="):
			row.StorageAreaConnectionCount++
		case strings.Contains(line, "Gate Name="):
			row.GateCount++
		}
	}
	if err := scanner.Err(); err != nil {
		p.logger.Warn("error scanning geometry file", zap.String("path", path), zap.Error(err))
	}
	return row
}

// countStructureType interprets the HEC-RAS river-station record type
// code that follows "Type RM Length L Ch R =": 1 is a cross section,
// 2 a culvert, 3 a bridge, 4 an inline structure (weir/gate), 5 a
// lateral structure.
func countStructureType(row *GeometryRow, line string) {
	rest := strings.TrimPrefix(line, "Type RM Length L Ch R =")
	fields := strings.Split(rest, ",")
	if len(fields) == 0 {
		return
	}
	typeCode := strings.TrimSpace(fields[0])
	switch typeCode {
	case "1":
		row.CrossSectionCount++
	case "2":
		row.CulvertCount++
	case "3":
		row.BridgeCount++
	case "4":
		row.WeirCount++
	case "5":
		row.LateralStructureCount++
	}
}
