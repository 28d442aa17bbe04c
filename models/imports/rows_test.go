package imports

import (
	"strings"
	"testing"
)

func TestValidatePanelRowMissingNameIsError(t *testing.T) {
	v := ValidatePanelRow(PanelRow{RowNumber: 2, ProjectName: "P1"})
	if v.Valid {
		t.Fatal("row without a panel name must be invalid")
	}
	if len(v.Errors) != 1 || !strings.Contains(v.Errors[0], "name is required") {
		t.Fatalf("unexpected errors: %v", v.Errors)
	}
}

func TestValidatePanelRowUnparseableDateBlocksRow(t *testing.T) {
	v := ValidatePanelRow(PanelRow{RowNumber: 3, Name: "QP-001", Date: "soon"})
	if v.Valid {
		t.Fatal("row with garbage date must be invalid")
	}
	if len(v.Errors) != 1 || !strings.Contains(v.Errors[0], "unparseable date") {
		t.Fatalf("unexpected errors: %v", v.Errors)
	}
}

func TestValidatePanelRowZeroDateIsAccepted(t *testing.T) {
	v := ValidatePanelRow(PanelRow{RowNumber: 3, Name: "QP-001", Date: "0/0/0"})
	if !v.Valid {
		t.Fatalf("explicit zero date must be importable, errors: %v", v.Errors)
	}
}

func TestValidatePanelRowUnknownTypeIsError(t *testing.T) {
	v := ValidatePanelRow(PanelRow{RowNumber: 4, Name: "QP-002", Type: "XYZ"})
	if v.Valid {
		t.Fatal("unknown panel type must be invalid")
	}
	if !strings.Contains(v.Errors[0], "GRC, GRG, GRP, EIFS, UHPC") {
		t.Fatalf("error must list the valid types: %v", v.Errors)
	}
}

func TestValidatePanelRowUnknownStatusIsOnlyAWarning(t *testing.T) {
	v := ValidatePanelRow(PanelRow{RowNumber: 5, Name: "QP-003", Status: "floating"})
	if !v.Valid {
		t.Fatalf("unknown status must not block the row, errors: %v", v.Errors)
	}
	if len(v.Warnings) != 1 || !strings.Contains(v.Warnings[0], "unrecognized status") {
		t.Fatalf("unexpected warnings: %v", v.Warnings)
	}
}

func TestValidatePanelRowNumericFields(t *testing.T) {
	v := ValidatePanelRow(PanelRow{
		RowNumber: 6,
		Name:      "QP-004",
		UnitQty:   "twelve",
		IfpQty:    "3.5",
		Weight:    "-1",
	})
	if v.Valid {
		t.Fatal("bad numeric fields must be invalid")
	}
	if len(v.Errors) != 2 {
		t.Fatalf("want unit_qty and weight errors, got: %v", v.Errors)
	}
}

func TestValidatePanelRowCleanRowIsValid(t *testing.T) {
	v := ValidatePanelRow(PanelRow{
		RowNumber: 7,
		Name:      "QP-005",
		Type:      "GRC",
		Status:    "Produced",
		Date:      "15/3/2024",
		UnitQty:   "2",
		Weight:    "120.5",
	})
	if !v.Valid || len(v.Errors) != 0 || len(v.Warnings) != 0 {
		t.Fatalf("clean row flagged: errors=%v warnings=%v", v.Errors, v.Warnings)
	}
}

func TestValidateProjectRow(t *testing.T) {
	v := ValidateProjectRow(ProjectRow{RowNumber: 2})
	if v.Valid || !strings.Contains(v.Errors[0], "name is required") {
		t.Fatalf("unnamed project row must be invalid: %v", v.Errors)
	}

	v = ValidateProjectRow(ProjectRow{
		RowNumber: 3,
		Name:      "Lusail Tower",
		StartDate: "not a date",
	})
	if v.Valid || !strings.Contains(v.Errors[0], "start_date") {
		t.Fatalf("bad start date must be invalid: %v", v.Errors)
	}

	v = ValidateProjectRow(ProjectRow{
		RowNumber:       4,
		Name:            "Lusail Tower",
		StartDate:       "1/1/2024",
		Status:          "paused",
		EstimatedCost:   "1000000",
		EstimatedPanels: "250",
	})
	if !v.Valid {
		t.Fatalf("clean project row flagged: %v", v.Errors)
	}
	if len(v.Warnings) != 1 || !strings.Contains(v.Warnings[0], "unrecognized project status") {
		t.Fatalf("unknown project status must warn: %v", v.Warnings)
	}
}
