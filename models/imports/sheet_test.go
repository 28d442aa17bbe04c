package imports

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	return f
}

func TestParsePanelSheetPositionalMapping(t *testing.T) {
	header := make([]interface{}, len(PanelSheetColumns))
	for i, name := range PanelSheetColumns {
		header[i] = name
	}
	f := buildWorkbook(t, [][]interface{}{
		header,
		{"Lusail Tower", "QP-001", "GRC", "Produced", "15/3/2024", "TR-9", "DWG-1",
			"north elevation", "2", "4", "8.5", "120.5", "2400x1200", "Tower A", "North", "Qatar Build Co"},
		{"", "", "", "", "", "", "", "", "", "", "", "", "", "", "", ""},
		{"Lusail Tower", "QP-002", "XYZ", "", "", "", "", "", "", "", "", "", "", "", "", ""},
	})
	defer f.Close()

	rows, err := ParsePanelSheet(f)
	if err != nil {
		t.Fatalf("ParsePanelSheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (empty row dropped)", len(rows))
	}

	first := rows[0]
	if first.RowNumber != 2 {
		t.Errorf("RowNumber = %d, want 2", first.RowNumber)
	}
	if first.ProjectName != "Lusail Tower" || first.Name != "QP-001" || first.Type != "GRC" {
		t.Errorf("unexpected identity cells: %+v", first)
	}
	if first.Status != "Produced" || first.Date != "15/3/2024" {
		t.Errorf("unexpected status/date cells: %+v", first)
	}
	if first.BuildingName != "Tower A" || first.FacadeName != "North" || first.CustomerName != "Qatar Build Co" {
		t.Errorf("unexpected hierarchy cells: %+v", first)
	}

	// the parser keeps unusable rows; the validator is the judge
	second := rows[1]
	if second.RowNumber != 4 {
		t.Errorf("RowNumber = %d, want 4 (empty sheet rows still count)", second.RowNumber)
	}
	if second.Type != "XYZ" {
		t.Errorf("Type = %q, want raw XYZ", second.Type)
	}
	if v := ValidatePanelRow(second); v.Valid {
		t.Error("row with unknown type must fail validation")
	}
}

func TestParsePanelSheetConvertsSerialDates(t *testing.T) {
	header := make([]interface{}, len(PanelSheetColumns))
	for i, name := range PanelSheetColumns {
		header[i] = name
	}
	f := buildWorkbook(t, [][]interface{}{
		header,
		{"Lusail Tower", "QP-010", "", "", "45292", "", "", "", "", "", "", "", "", "", "", ""},
	})
	defer f.Close()

	rows, err := ParsePanelSheet(f)
	if err != nil {
		t.Fatalf("ParsePanelSheet: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Date != "01/01/2024" {
		t.Fatalf("serial date not converted, got %q", rows[0].Date)
	}
}

func TestParseProjectSheetMatchesHeadersByAlias(t *testing.T) {
	f := buildWorkbook(t, [][]interface{}{
		// aliased spellings, deliberately shuffled column order
		{"Customer", "Project Name", "Estimated Cost", "Start Date", "Status"},
		{"Qatar Build Co", "Lusail Tower", "1000000", "1/1/2024", "Active"},
	})
	defer f.Close()

	rows, err := ParseProjectSheet(f)
	if err != nil {
		t.Fatalf("ParseProjectSheet: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Name != "Lusail Tower" || row.CustomerName != "Qatar Build Co" {
		t.Errorf("alias mapping failed: %+v", row)
	}
	if row.EstimatedCost != "1000000" || row.StartDate != "1/1/2024" || row.Status != "Active" {
		t.Errorf("unexpected cells: %+v", row)
	}
}

func TestParseProjectSheetRequiresNameHeader(t *testing.T) {
	f := buildWorkbook(t, [][]interface{}{
		{"Location", "Status"},
		{"Doha", "Active"},
	})
	defer f.Close()

	if _, err := ParseProjectSheet(f); err == nil {
		t.Fatal("sheet without a name header must fail to parse")
	}
}

func TestParsePanelSheetEmptyWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := ParsePanelSheet(f); err == nil {
		t.Fatal("empty workbook must fail to parse")
	}
}
