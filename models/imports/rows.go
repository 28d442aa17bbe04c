package imports

import (
	"fmt"
	"strings"

	"github.com/hediammar/QatarPanels-sub002/models"
	"github.com/hediammar/QatarPanels-sub002/utils"
)

// PanelRow is one spreadsheet record, still string-typed. The parser
// never decides usability; that is the validator's job.
type PanelRow struct {
	RowNumber          int    `json:"row_number"`
	ProjectName        string `json:"project_name"`
	Name               string `json:"name"`
	Type               string `json:"type"`
	Status             string `json:"status"`
	Date               string `json:"date"`
	IssueTransmittalNo string `json:"issue_transmittal_no"`
	DwgNo              string `json:"dwg_no"`
	Description        string `json:"description"`
	UnitQty            string `json:"unit_qty"`
	IfpQtyNos          string `json:"ifp_qty_nos"`
	IfpQty             string `json:"ifp_qty"`
	Weight             string `json:"weight"`
	Dimension          string `json:"dimension"`
	BuildingName       string `json:"building_name"`
	FacadeName         string `json:"facade_name"`
	CustomerName       string `json:"customer_name"`
}

// ProjectRow is one record of the project template sheet.
type ProjectRow struct {
	RowNumber       int    `json:"row_number"`
	Name            string `json:"name"`
	CustomerName    string `json:"customer_name"`
	Location        string `json:"location"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Status          string `json:"status"`
	EstimatedCost   string `json:"estimated_cost"`
	EstimatedPanels string `json:"estimated_panels"`
}

// RowValidation is the per-row verdict. Zero errors means importable,
// regardless of how many warnings accumulated.
type RowValidation struct {
	RowNumber int      `json:"row_number"`
	Valid     bool     `json:"valid"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
}

// ValidatePanelRow checks a single parsed row. Pure; one result per row.
func ValidatePanelRow(row PanelRow) RowValidation {
	result := RowValidation{RowNumber: row.RowNumber}

	if strings.TrimSpace(row.Name) == "" {
		result.Errors = append(result.Errors, "panel name is required")
	}

	if strings.TrimSpace(row.Date) != "" {
		if _, err := ParseDate(row.Date); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("unparseable date %q", row.Date))
		}
	}

	if strings.TrimSpace(row.Type) != "" {
		if _, ok := models.ParsePanelType(row.Type); !ok {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"unknown panel type %q (valid: %s)", row.Type, strings.Join(models.PanelTypeNames(), ", ")))
		}
	}

	if strings.TrimSpace(row.Status) != "" {
		if _, ok := models.ParsePanelStatus(row.Status); !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"unrecognized status %q, defaulting to %q", row.Status, models.PanelStatusIssuedForProduction))
		}
	}

	numericFields := []struct {
		label string
		value string
	}{
		{"unit_qty", row.UnitQty},
		{"ifp_qty_nos", row.IfpQtyNos},
		{"ifp_qty", row.IfpQty},
	}
	for _, f := range numericFields {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		if _, err := utils.ParseDecimal(f.value); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s is not a number: %q", f.label, f.value))
		}
	}

	if strings.TrimSpace(row.Weight) != "" {
		weight, err := utils.ParseDecimal(row.Weight)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("weight is not a number: %q", row.Weight))
		} else if weight.IsNegative() {
			result.Errors = append(result.Errors, "weight must not be negative")
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// ValidateProjectRow checks a single parsed project row.
func ValidateProjectRow(row ProjectRow) RowValidation {
	result := RowValidation{RowNumber: row.RowNumber}

	if strings.TrimSpace(row.Name) == "" {
		result.Errors = append(result.Errors, "project name is required")
	}

	for _, f := range []struct {
		label string
		value string
	}{
		{"start_date", row.StartDate},
		{"end_date", row.EndDate},
	} {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		if _, err := ParseDate(f.value); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("unparseable %s %q", f.label, f.value))
		}
	}

	if strings.TrimSpace(row.Status) != "" {
		if _, ok := models.ParseProjectStatus(row.Status); !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"unrecognized project status %q, defaulting to %q", row.Status, models.ProjectStatusActive))
		}
	}

	if strings.TrimSpace(row.EstimatedCost) != "" {
		if _, err := utils.ParseDecimal(row.EstimatedCost); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("estimated_cost is not a number: %q", row.EstimatedCost))
		}
	}
	if strings.TrimSpace(row.EstimatedPanels) != "" {
		if _, err := utils.ParseDecimal(row.EstimatedPanels); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("estimated_panels is not a number: %q", row.EstimatedPanels))
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}
