package project

import "github.com/jra3/hecras-orchestrator/internal/textfile"

func parseFlowFile(path string) (FlowRow, error) {
	doc, err := textfile.ReadDocument(path)
	if err != nil {
		return FlowRow{}, err
	}

	row := FlowRow{
		Number:   flowNumberFromPath(path),
		FilePath: path,
	}
	if v, ok := doc.Field("Flow Title"); ok {
		row.Title = v
	}
	return row, nil
}
