package history

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/bububa/marksix-agents/marksix"
)

const chartSheet = "Frequency"

// FrequencyChart builds an xlsx workbook holding the main number histogram and a column chart of it
func FrequencyChart(records []Record) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", chartSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(chartSheet, "A1", &[]any{"Number", "Count"}); err != nil {
		return nil, err
	}
	histogram := Histogram(records)
	for n := marksix.MinNumber; n <= marksix.MaxNumber; n++ {
		cell, err := excelize.CoordinatesToCellName(1, n+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(chartSheet, cell, &[]any{n, histogram[n]}); err != nil {
			return nil, err
		}
	}
	lastRow := marksix.MaxNumber + 1
	title := fmt.Sprintf("Main number frequency (%d draws)", len(records))
	if len(records) > 0 {
		title = fmt.Sprintf("Main number frequency %s to %s (%d draws)", records[len(records)-1].FormatDate(), records[0].FormatDate(), len(records))
	}
	if err := f.AddChart(chartSheet, "D2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("%s!$B$1", chartSheet),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", chartSheet, lastRow),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", chartSheet, lastRow),
			},
		},
		Title: []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{
			Position: "none",
		},
		Dimension: excelize.ChartDimension{
			Width:  960,
			Height: 480,
		},
	}); err != nil {
		return nil, err
	}
	return f.WriteToBuffer()
}
