package imports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hediammar/QatarPanels-sub002/config"
	"github.com/hediammar/QatarPanels-sub002/models"
	"github.com/hediammar/QatarPanels-sub002/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ProjectImport mirrors PanelImport for the project template sheet.
// It shares the same state machine and row-loop semantics; only the row
// shape and the upsert target differ.
type ProjectImport struct {
	state       ImportState
	rows        []ProjectRow
	validations []RowValidation

	Progress func(done int, total int)
}

func NewProjectImport() *ProjectImport {
	return &ProjectImport{state: StateIdle}
}

func (pi *ProjectImport) State() ImportState { return pi.state }

func (pi *ProjectImport) Rows() []ProjectRow { return pi.rows }

func (pi *ProjectImport) Validations() []RowValidation { return pi.validations }

func (pi *ProjectImport) Parse(f *excelize.File) error {
	if pi.state != StateIdle {
		return fmt.Errorf("cannot parse in state %q", pi.state)
	}
	rows, err := ParseProjectSheet(f)
	if err != nil {
		return err
	}
	pi.rows = rows
	pi.state = StateParsed
	return nil
}

func (pi *ProjectImport) Validate() []RowValidation {
	if pi.state != StateParsed {
		return pi.validations
	}
	pi.validations = make([]RowValidation, 0, len(pi.rows))
	for _, row := range pi.rows {
		pi.validations = append(pi.validations, ValidateProjectRow(row))
	}
	pi.state = StateValidated
	return pi.validations
}

func (pi *ProjectImport) Run(ctx context.Context) (*ImportSummary, error) {
	if pi.state != StateValidated {
		return nil, fmt.Errorf("cannot import in state %q", pi.state)
	}

	release, refresh, err := utils.ImportLock(ctx, "projects", "imports", "ProjectImport.Run", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	defer release()

	db := config.GetDB()
	ic, err := NewImportContext(ctx, db)
	if err != nil {
		return nil, err
	}

	pi.state = StateImporting

	summary := &ImportSummary{
		TotalRows:   len(pi.rows),
		Validations: pi.validations,
	}
	for _, v := range pi.validations {
		if v.Valid {
			summary.ValidRows++
		} else {
			summary.InvalidRows++
		}
	}

	done := 0
	for idx, row := range pi.rows {
		if !pi.validations[idx].Valid {
			continue
		}

		rowCtx, cancel := context.WithTimeout(ctx, rowTimeout)
		created, err := applyProjectRow(rowCtx, ic, row)
		cancel()

		result := RowResult{
			RowNumber: row.RowNumber,
			Name:      strings.TrimSpace(row.Name),
			Created:   created,
		}
		if err != nil {
			result.Error = err.Error()
			summary.Failed++
			config.LogError(config.GetLogger(), "imports", "ProjectImport.Run", "row failed", row.RowNumber, err)
		} else {
			result.Success = true
			summary.Succeeded++
		}
		summary.Results = append(summary.Results, result)

		done++
		if pi.Progress != nil {
			pi.Progress(done, summary.ValidRows)
		}

		// re-extend the lock TTL so a long batch never outlives it
		if err := refresh(ctx); err != nil {
			config.LogError(config.GetLogger(), "imports", "ProjectImport.Run", "lock refresh failed", row.RowNumber, err)
		}
	}

	summary.EntitiesCreated = ic.CreatedCounts()
	pi.state = StateDone
	return summary, nil
}

// applyProjectRow upserts one project by name, creating the customer
// when unknown. Existing projects keep their id; all mutable fields are
// overwritten from the row.
func applyProjectRow(ctx context.Context, ic *ImportContext, row ProjectRow) (bool, error) {
	db := config.GetDB()

	customerName := row.CustomerName
	if strings.TrimSpace(customerName) == "" {
		customerName = row.Name
	}
	customerId, err := ic.ResolveCustomer(ctx, db, customerName)
	if err != nil {
		return false, err
	}

	status, _ := models.ParseProjectStatus(row.Status)

	var startDate, endDate *time.Time
	if strings.TrimSpace(row.StartDate) != "" {
		t := NormalizeDate(row.StartDate)
		startDate = &t
	}
	if strings.TrimSpace(row.EndDate) != "" {
		t := NormalizeDate(row.EndDate)
		endDate = &t
	}

	estimatedCost := decimalOrZero(row.EstimatedCost)
	estimatedPanels := 0
	if strings.TrimSpace(row.EstimatedPanels) != "" {
		if d, err := utils.ParseDecimal(row.EstimatedPanels); err == nil {
			estimatedPanels = int(d.IntPart())
		}
	}

	name := strings.TrimSpace(row.Name)

	var existing models.Project
	err = db.WithContext(ctx).Where("name = ?", name).First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return false, err
	}

	if err == gorm.ErrRecordNotFound {
		project := models.Project{
			Name:            name,
			CustomerId:      customerId,
			Location:        row.Location,
			Status:          status,
			StartDate:       startDate,
			EndDate:         endDate,
			EstimatedCost:   estimatedCost,
			EstimatedPanels: estimatedPanels,
		}
		if err := db.WithContext(ctx).Create(&project).Error; err != nil {
			return false, err
		}
		ic.projects = append(ic.projects, &project)
		ic.created.projects++
		return true, nil
	}

	err = db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"CustomerId":      customerId,
		"Location":        row.Location,
		"Status":          status,
		"StartDate":       startDate,
		"EndDate":         endDate,
		"EstimatedCost":   estimatedCost,
		"EstimatedPanels": estimatedPanels,
	}).Error
	if err != nil {
		return false, err
	}
	return false, nil
}

func decimalOrZero(text string) (d decimal.Decimal) {
	d = decimal.Zero
	if strings.TrimSpace(text) == "" {
		return d
	}
	if parsed, err := utils.ParseDecimal(text); err == nil {
		d = parsed
	}
	return d
}
