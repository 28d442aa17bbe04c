package imports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hediammar/QatarPanels-sub002/config"
	"github.com/hediammar/QatarPanels-sub002/models"
	"github.com/hediammar/QatarPanels-sub002/utils"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// ImportState tracks one run through the import pipeline.
type ImportState string

const (
	StateIdle      ImportState = "idle"
	StateParsed    ImportState = "parsed"
	StateValidated ImportState = "validated"
	StateImporting ImportState = "importing"
	StateDone      ImportState = "done"
)

// rowTimeout bounds each row's store round-trips so one hung call cannot
// stall the whole batch forever; a timeout is recorded like any other
// row failure.
const rowTimeout = 30 * time.Second

// RowResult records the outcome of importing one valid row.
type RowResult struct {
	RowNumber int    `json:"row_number"`
	Name      string `json:"name"`
	Success   bool   `json:"success"`
	Created   bool   `json:"created"`
	Error     string `json:"error,omitempty"`
}

// ImportSummary is the aggregate tally reported after the last row.
type ImportSummary struct {
	TotalRows   int             `json:"total_rows"`
	ValidRows   int             `json:"valid_rows"`
	InvalidRows int             `json:"invalid_rows"`
	Succeeded   int             `json:"succeeded"`
	Failed      int             `json:"failed"`
	Validations []RowValidation `json:"validations"`
	Results     []RowResult     `json:"results"`
	// EntitiesCreated counts customers, projects, buildings and facades
	// auto-created while resolving row references.
	EntitiesCreated map[string]int `json:"entities_created,omitempty"`
}

func (s *ImportSummary) Tally() string {
	return fmt.Sprintf("%d successful, %d failed", s.Succeeded, s.Failed)
}

// PanelImport drives one spreadsheet through parse, validate and the
// sequential row loop. Rows are never processed in parallel: a row may
// depend on entities the previous row created.
type PanelImport struct {
	state       ImportState
	rows        []PanelRow
	validations []RowValidation

	// Progress, when set, is called after each imported row with
	// (rows completed, total valid rows).
	Progress func(done int, total int)
}

func NewPanelImport() *PanelImport {
	return &PanelImport{state: StateIdle}
}

func (pi *PanelImport) State() ImportState { return pi.state }

func (pi *PanelImport) Rows() []PanelRow { return pi.rows }

func (pi *PanelImport) Validations() []RowValidation { return pi.validations }

// Parse reads the sheet. A parse failure aborts the run before any
// validation or import work.
func (pi *PanelImport) Parse(f *excelize.File) error {
	if pi.state != StateIdle {
		return fmt.Errorf("cannot parse in state %q", pi.state)
	}
	rows, err := ParsePanelSheet(f)
	if err != nil {
		return err
	}
	pi.rows = rows
	pi.state = StateParsed
	return nil
}

// Validate runs the row validator over every parsed row, in order.
func (pi *PanelImport) Validate() []RowValidation {
	if pi.state != StateParsed {
		return pi.validations
	}
	pi.validations = make([]RowValidation, 0, len(pi.rows))
	for _, row := range pi.rows {
		pi.validations = append(pi.validations, ValidatePanelRow(row))
	}
	pi.state = StateValidated
	return pi.validations
}

// Run imports every valid row sequentially. Per-row failures are
// recorded and never halt the batch; there is no rollback of rows that
// already landed. The whole run holds the import lock so two concurrent
// uploads cannot race duplicate entity creation.
func (pi *PanelImport) Run(ctx context.Context) (*ImportSummary, error) {
	if pi.state != StateValidated {
		return nil, fmt.Errorf("cannot import in state %q", pi.state)
	}

	release, refresh, err := utils.ImportLock(ctx, "panels", "imports", "PanelImport.Run", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	defer release()

	userEmail, _ := utils.GetUserEmailFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"module": "imports",
		"rows":   len(pi.rows),
		"user":   userEmail,
	}).Info("panel import started")

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
		created, err := applyPanelRow(rowCtx, ic, row)
		cancel()

		result := RowResult{
			RowNumber: row.RowNumber,
			Name:      strings.TrimSpace(row.Name),
			Created:   created,
		}
		if err != nil {
			// the raw error text is surfaced to the user per row
			result.Error = err.Error()
			summary.Failed++
			config.LogError(config.GetLogger(), "imports", "PanelImport.Run", "row failed", row.RowNumber, err)
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
			config.LogError(config.GetLogger(), "imports", "PanelImport.Run", "lock refresh failed", row.RowNumber, err)
		}
	}

	summary.EntitiesCreated = ic.CreatedCounts()
	pi.state = StateDone
	return summary, nil
}

// applyPanelRow resolves the row's entity references and upserts the
// panel. Resolution failures and store failures are both row failures.
func applyPanelRow(ctx context.Context, ic *ImportContext, row PanelRow) (bool, error) {
	db := config.GetDB()

	if strings.TrimSpace(row.ProjectName) == "" {
		// never guess a default project
		return false, errors.New("project name is required")
	}

	projectId, err := ic.ResolveProject(ctx, db, row.ProjectName, row.CustomerName)
	if err != nil {
		return false, err
	}

	var buildingId *int
	if strings.TrimSpace(row.BuildingName) != "" {
		id, err := ic.ResolveBuilding(ctx, db, projectId, row.BuildingName)
		if err != nil {
			return false, err
		}
		buildingId = &id
	}

	var facadeId *int
	if strings.TrimSpace(row.FacadeName) != "" {
		if buildingId == nil {
			return false, errors.New("facade requires a building")
		}
		id, err := ic.ResolveFacade(ctx, db, *buildingId, row.FacadeName)
		if err != nil {
			return false, err
		}
		facadeId = &id
	}

	input := models.NewPanel{
		Name:               row.Name,
		ProjectId:          projectId,
		BuildingId:         buildingId,
		FacadeId:           facadeId,
		IssueTransmittalNo: row.IssueTransmittalNo,
		DwgNo:              row.DwgNo,
		Description:        row.Description,
		Dimension:          row.Dimension,
	}

	// the validator already rejected bad types; blank stays code 0
	if strings.TrimSpace(row.Type) != "" {
		typeCode, _ := models.ParsePanelType(row.Type)
		input.Type = typeCode
	}
	// unrecognized status text deliberately maps to code 0
	statusCode, _ := models.ParsePanelStatus(row.Status)
	input.Status = statusCode

	if strings.TrimSpace(row.Date) != "" {
		date := NormalizeDate(row.Date)
		iso := RenderISODate(date)
		input.IssuedForProductionDate = &iso
	}

	if strings.TrimSpace(row.UnitQty) != "" {
		input.UnitQty, _ = utils.ParseDecimal(row.UnitQty)
	}
	if strings.TrimSpace(row.IfpQtyNos) != "" {
		input.IfpQtyNos, _ = utils.ParseDecimal(row.IfpQtyNos)
	}
	if strings.TrimSpace(row.IfpQty) != "" {
		input.IfpQty, _ = utils.ParseDecimal(row.IfpQty)
	}
	if strings.TrimSpace(row.Weight) != "" {
		input.Weight, _ = utils.ParseDecimal(row.Weight)
	}

	_, created, err := models.UpsertPanelByName(ctx, db, &input)
	return created, err
}
