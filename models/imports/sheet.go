package imports

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// PanelSheetColumns is the positional layout of the panel template.
// The panel importer maps by column index, not header text.
var PanelSheetColumns = []string{
	"project_name",
	"name",
	"type",
	"status",
	"date",
	"issue_transmittal_no",
	"dwg_no",
	"description",
	"unit_qty",
	"ifp_qty_nos",
	"ifp_qty",
	"weight",
	"dimension",
	"building_name",
	"facade_name",
	"customer_name",
}

// ProjectSheetColumns is the header-named layout of the project template.
var ProjectSheetColumns = []string{
	"name",
	"customer_name",
	"location",
	"start_date",
	"end_date",
	"status",
	"estimated_cost",
	"estimated_panels",
}

// projectHeaderAliases maps accepted header spellings to canonical
// column names. Matching is case-insensitive after trimming.
var projectHeaderAliases = map[string]string{
	"name":             "name",
	"project name":     "name",
	"project_name":     "name",
	"customer_name":    "customer_name",
	"customer name":    "customer_name",
	"customer":         "customer_name",
	"location":         "location",
	"start_date":       "start_date",
	"start date":       "start_date",
	"end_date":         "end_date",
	"end date":         "end_date",
	"status":           "status",
	"estimated_cost":   "estimated_cost",
	"estimated cost":   "estimated_cost",
	"cost":             "estimated_cost",
	"estimated_panels": "estimated_panels",
	"estimated panels": "estimated_panels",
	"panels":           "estimated_panels",
}

func sheetRows(f *excelize.File) ([][]string, error) {
	sheet := f.GetSheetName(0)
	if sheet == "" {
		sheet = "Sheet1"
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet: %v", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet is empty")
	}
	return rows, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ParsePanelSheet reads the panel template. The first row is the header
// and is skipped; fully-empty rows are dropped; everything else is kept
// for the validator to judge. Column mapping is positional.
func ParsePanelSheet(f *excelize.File) ([]PanelRow, error) {
	rows, err := sheetRows(f)
	if err != nil {
		return nil, err
	}

	parsed := make([]PanelRow, 0, len(rows)-1)
	for idx, row := range rows[1:] {
		if rowIsEmpty(row) {
			continue
		}
		parsed = append(parsed, PanelRow{
			RowNumber:          idx + 2, // 1-based sheet row, header is row 1
			ProjectName:        cellAt(row, 0),
			Name:               cellAt(row, 1),
			Type:               cellAt(row, 2),
			Status:             cellAt(row, 3),
			Date:               normalizeDateCell(cellAt(row, 4)),
			IssueTransmittalNo: cellAt(row, 5),
			DwgNo:              cellAt(row, 6),
			Description:        cellAt(row, 7),
			UnitQty:            cellAt(row, 8),
			IfpQtyNos:          cellAt(row, 9),
			IfpQty:             cellAt(row, 10),
			Weight:             cellAt(row, 11),
			Dimension:          cellAt(row, 12),
			BuildingName:       cellAt(row, 13),
			FacadeName:         cellAt(row, 14),
			CustomerName:       cellAt(row, 15),
		})
	}
	return parsed, nil
}

// ParseProjectSheet reads the project template. Unlike the panel sheet,
// columns are located by header name (with aliases), so column order
// does not matter.
func ParseProjectSheet(f *excelize.File) ([]ProjectRow, error) {
	rows, err := sheetRows(f)
	if err != nil {
		return nil, err
	}

	columnIndex := make(map[string]int, len(ProjectSheetColumns))
	for idx, header := range rows[0] {
		canonical, ok := projectHeaderAliases[strings.ToLower(strings.TrimSpace(header))]
		if !ok {
			continue
		}
		if _, seen := columnIndex[canonical]; !seen {
			columnIndex[canonical] = idx
		}
	}
	if _, ok := columnIndex["name"]; !ok {
		return nil, fmt.Errorf("missing required column header %q", "name")
	}

	pick := func(row []string, column string) string {
		idx, ok := columnIndex[column]
		if !ok {
			return ""
		}
		return cellAt(row, idx)
	}

	parsed := make([]ProjectRow, 0, len(rows)-1)
	for idx, row := range rows[1:] {
		if rowIsEmpty(row) {
			continue
		}
		parsed = append(parsed, ProjectRow{
			RowNumber:       idx + 2,
			Name:            pick(row, "name"),
			CustomerName:    pick(row, "customer_name"),
			Location:        pick(row, "location"),
			StartDate:       normalizeDateCell(pick(row, "start_date")),
			EndDate:         normalizeDateCell(pick(row, "end_date")),
			Status:          pick(row, "status"),
			EstimatedCost:   pick(row, "estimated_cost"),
			EstimatedPanels: pick(row, "estimated_panels"),
		})
	}
	return parsed, nil
}
