package project

import (
	"strconv"

	"github.com/jra3/hecras-orchestrator/internal/herr"
	"github.com/jra3/hecras-orchestrator/internal/textfile"
)

func parsePlanFile(path string) (PlanRow, error) {
	doc, err := textfile.ReadDocument(path)
	if err != nil {
		return PlanRow{}, err
	}

	row := PlanRow{
		Number:   planNumberFromPath(path),
		FullPath: path,
	}

	if v, ok := doc.Field("Plan Title"); ok {
		row.PlanTitle = v
	}
	if v, ok := doc.Field("Short Identifier"); ok {
		row.ShortIdentifier = v
	}
	if v, ok := doc.Field("Geom File"); ok {
		row.GeometryNumber = geometryNumberFromPath("." + v)
	}
	if v, ok := doc.Field("Flow File"); ok {
		row.FlowNumber = flowNumberFromPath("." + v)
	}
	if v, ok := doc.Field("Unsteady File"); ok {
		row.UnsteadyNumber = unsteadyNumberFromPath("." + v)
	}
	if v, ok := doc.Field("Computation Interval"); ok {
		row.ComputationInterval = v
	}
	if v, ok := doc.Field("Output Interval"); ok {
		row.OutputInterval = v
	}
	if v, ok := doc.Field("Mapping Interval"); ok {
		row.MappingInterval = v
	}
	if v, ok := doc.Field("Number of Cores"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			row.NumberOfCores = n
		}
	}
	row.RunGeometryPreprocessor = fieldIsTrue(doc, "Run HTab")
	row.RunUnsteadyFlow = fieldIsTrue(doc, "Run UNet")
	row.RunSediment = fieldIsTrue(doc, "Run Sediment")
	row.RunPostProcessor = fieldIsTrue(doc, "Run PostProcess")
	row.RunFloodplainMapping = fieldIsTrue(doc, "Run RASMapper")

	if row.UnsteadyNumber != "" && row.FlowNumber != "" {
		return row, herr.New(herr.BindingConflict, "plan binds both an unsteady flow and a steady flow file").WithPath(path)
	}

	return row, nil
}

func fieldIsTrue(doc *textfile.Document, key string) bool {
	v, ok := doc.Field(key)
	return ok && v == "1"
}
