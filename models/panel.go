package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/hediammar/QatarPanels-sub002/config"
	"github.com/hediammar/QatarPanels-sub002/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

type Panel struct {
	ID                      int             `gorm:"primary_key" json:"id"`
	Name                    string          `gorm:"size:200;not null;uniqueIndex" json:"name" binding:"required"`
	Type                    PanelType       `gorm:"not null;default:0" json:"type"`
	Status                  PanelStatus     `gorm:"not null;default:0;index" json:"status"`
	ProjectId               int             `gorm:"not null;index" json:"project_id" binding:"required"`
	BuildingId              *int            `gorm:"index" json:"building_id"`
	FacadeId                *int            `gorm:"index" json:"facade_id"`
	IssuedForProductionDate *string         `gorm:"size:10" json:"issued_for_production_date"`
	IssueTransmittalNo      string          `gorm:"size:100" json:"issue_transmittal_no"`
	DwgNo                   string          `gorm:"size:100" json:"dwg_no"`
	Description             string          `gorm:"type:text" json:"description"`
	UnitRate                decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_rate"`
	UnitQty                 decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_qty"`
	IfpQtyNos               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"ifp_qty_nos"`
	IfpQty                  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"ifp_qty"`
	Weight                  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"weight"`
	Dimension               string          `gorm:"size:100" json:"dimension"`
	Project                 Project         `json:"project"`
	CreatedAt               time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPanel struct {
	Name                    string          `json:"name" binding:"required"`
	Type                    PanelType       `json:"type"`
	Status                  PanelStatus     `json:"status"`
	ProjectId               int             `json:"project_id" binding:"required"`
	BuildingId              *int            `json:"building_id"`
	FacadeId                *int            `json:"facade_id"`
	IssuedForProductionDate *string         `json:"issued_for_production_date"`
	IssueTransmittalNo      string          `json:"issue_transmittal_no"`
	DwgNo                   string          `json:"dwg_no"`
	Description             string          `json:"description"`
	UnitRate                decimal.Decimal `json:"unit_rate"`
	UnitQty                 decimal.Decimal `json:"unit_qty"`
	IfpQtyNos               decimal.Decimal `json:"ifp_qty_nos"`
	IfpQty                  decimal.Decimal `json:"ifp_qty"`
	Weight                  decimal.Decimal `json:"weight"`
	Dimension               string          `json:"dimension"`
}

// PanelFilter narrows panel listings; zero values mean "no filter".
type PanelFilter struct {
	ProjectId  int
	BuildingId int
	FacadeId   int
	Status     *PanelStatus
	Limit      int
	Offset     int
}

func (input *NewPanel) validate(ctx context.Context, id int) error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("panel name is required")
	}
	if id > 0 {
		if err := utils.ValidateResourceId[Panel](ctx, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[Panel](ctx, "name", strings.TrimSpace(input.Name), id); err != nil {
		return err
	}
	if !input.Type.Valid() {
		return fmt.Errorf("invalid panel type %d", input.Type)
	}
	if !input.Status.Valid() {
		return fmt.Errorf("invalid panel status %d", input.Status)
	}
	if input.Weight.IsNegative() {
		return errors.New("weight must not be negative")
	}
	if err := utils.ValidateResourceId[Project](ctx, input.ProjectId); err != nil {
		return errors.New("project not found")
	}
	return validatePanelHierarchy(ctx, input.ProjectId, input.BuildingId, input.FacadeId)
}

// validatePanelHierarchy enforces that a panel's building belongs to its
// project and its facade belongs to its building.
func validatePanelHierarchy(ctx context.Context, projectId int, buildingId *int, facadeId *int) error {
	db := config.GetDB()
	if buildingId != nil {
		var building Building
		if err := db.WithContext(ctx).First(&building, *buildingId).Error; err != nil {
			return errors.New("building not found")
		}
		if building.ProjectId != projectId {
			return errors.New("building does not belong to the panel's project")
		}
	}
	if facadeId != nil {
		if buildingId == nil {
			return errors.New("facade requires a building")
		}
		var facade Facade
		if err := db.WithContext(ctx).First(&facade, *facadeId).Error; err != nil {
			return errors.New("facade not found")
		}
		if facade.BuildingId != *buildingId {
			return errors.New("facade does not belong to the panel's building")
		}
	}
	return nil
}

func CreatePanel(ctx context.Context, input *NewPanel) (*Panel, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	panel := Panel{
		Name:                    strings.TrimSpace(input.Name),
		Type:                    input.Type,
		Status:                  input.Status,
		ProjectId:               input.ProjectId,
		BuildingId:              input.BuildingId,
		FacadeId:                input.FacadeId,
		IssuedForProductionDate: input.IssuedForProductionDate,
		IssueTransmittalNo:      input.IssueTransmittalNo,
		DwgNo:                   input.DwgNo,
		Description:             input.Description,
		UnitRate:                input.UnitRate,
		UnitQty:                 input.UnitQty,
		IfpQtyNos:               input.IfpQtyNos,
		IfpQty:                  input.IfpQty,
		Weight:                  input.Weight,
		Dimension:               input.Dimension,
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&panel).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := appendPanelStatusHistory(ctx, tx, panel.ID, panel.Status, "panel created"); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &panel, nil
}

func UpdatePanel(ctx context.Context, id int, input *NewPanel) (*Panel, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	panel, err := utils.FetchModel[Panel](ctx, id)
	if err != nil {
		return nil, err
	}
	statusChanged := panel.Status != input.Status

	tx := db.Begin()
	err = tx.WithContext(ctx).Model(panel).Updates(map[string]interface{}{
		"Name":                    strings.TrimSpace(input.Name),
		"Type":                    input.Type,
		"Status":                  input.Status,
		"ProjectId":               input.ProjectId,
		"BuildingId":              input.BuildingId,
		"FacadeId":                input.FacadeId,
		"IssuedForProductionDate": input.IssuedForProductionDate,
		"IssueTransmittalNo":      input.IssueTransmittalNo,
		"DwgNo":                   input.DwgNo,
		"Description":             input.Description,
		"UnitRate":                input.UnitRate,
		"UnitQty":                 input.UnitQty,
		"IfpQtyNos":               input.IfpQtyNos,
		"IfpQty":                  input.IfpQty,
		"Weight":                  input.Weight,
		"Dimension":               input.Dimension,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if statusChanged {
		if err := appendPanelStatusHistory(ctx, tx, panel.ID, input.Status, "status updated"); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return panel, nil
}

// UpdatePanelStatus changes only the status and appends a history row.
func UpdatePanelStatus(ctx context.Context, id int, status PanelStatus, notes string) (*Panel, error) {
	db := config.GetDB()

	if !status.Valid() {
		return nil, fmt.Errorf("invalid panel status %d", status)
	}

	panel, err := utils.FetchModel[Panel](ctx, id)
	if err != nil {
		return nil, err
	}
	if panel.Status == status {
		return panel, nil
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Model(panel).Update("Status", status).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := appendPanelStatusHistory(ctx, tx, panel.ID, status, notes); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return panel, nil
}

// UpsertPanelByName is the import path's write: match an existing panel
// by exact trimmed name and update every mutable field in place (same id,
// history intact), or insert when no match exists. Runs inside its own
// transaction so one spreadsheet row either fully lands or not at all.
func UpsertPanelByName(ctx context.Context, db *gorm.DB, input *NewPanel) (*Panel, bool, error) {
	name := strings.TrimSpace(input.Name)

	var existing Panel
	err := db.WithContext(ctx).Where("name = ?", name).First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	if err == gorm.ErrRecordNotFound {
		panel := Panel{
			Name:                    name,
			Type:                    input.Type,
			Status:                  input.Status,
			ProjectId:               input.ProjectId,
			BuildingId:              input.BuildingId,
			FacadeId:                input.FacadeId,
			IssuedForProductionDate: input.IssuedForProductionDate,
			IssueTransmittalNo:      input.IssueTransmittalNo,
			DwgNo:                   input.DwgNo,
			Description:             input.Description,
			UnitRate:                input.UnitRate,
			UnitQty:                 input.UnitQty,
			IfpQtyNos:               input.IfpQtyNos,
			IfpQty:                  input.IfpQty,
			Weight:                  input.Weight,
			Dimension:               input.Dimension,
		}
		tx := db.Begin()
		if err := tx.WithContext(ctx).Create(&panel).Error; err != nil {
			tx.Rollback()
			if isDuplicateKeyErr(err) {
				// lost a create race on the name index; retry as update
				return UpsertPanelByName(ctx, db, input)
			}
			return nil, false, err
		}
		if err := appendPanelStatusHistory(ctx, tx, panel.ID, panel.Status, "imported"); err != nil {
			tx.Rollback()
			return nil, false, err
		}
		if err := tx.Commit().Error; err != nil {
			return nil, false, err
		}
		return &panel, true, nil
	}

	statusChanged := existing.Status != input.Status

	tx := db.Begin()
	err = tx.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"Type":                    input.Type,
		"Status":                  input.Status,
		"ProjectId":               input.ProjectId,
		"BuildingId":              input.BuildingId,
		"FacadeId":                input.FacadeId,
		"IssuedForProductionDate": input.IssuedForProductionDate,
		"IssueTransmittalNo":      input.IssueTransmittalNo,
		"DwgNo":                   input.DwgNo,
		"Description":             input.Description,
		"UnitRate":                input.UnitRate,
		"UnitQty":                 input.UnitQty,
		"IfpQtyNos":               input.IfpQtyNos,
		"IfpQty":                  input.IfpQty,
		"Weight":                  input.Weight,
		"Dimension":               input.Dimension,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, false, err
	}
	if statusChanged {
		if err := appendPanelStatusHistory(ctx, tx, existing.ID, input.Status, "imported"); err != nil {
			tx.Rollback()
			return nil, false, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

func DeletePanel(ctx context.Context, id int) (*Panel, error) {
	db := config.GetDB()

	panel, err := utils.FetchModel[Panel](ctx, id)
	if err != nil {
		return nil, err
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("panel_id = ?", id).Delete(&PanelStatusHistory{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(panel).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return panel, nil
}

func GetPanel(ctx context.Context, id int) (*Panel, error) {
	return utils.FetchModel[Panel](ctx, id, "Project")
}

// GetPanelByName looks a panel up by its exact trimmed name, the key the
// import path upserts on.
func GetPanelByName(ctx context.Context, name string) (*Panel, error) {
	return utils.FetchModelWhere[Panel](ctx, "name = ?", strings.TrimSpace(name))
}

func ListPanels(ctx context.Context, filter PanelFilter) ([]*Panel, error) {
	db := config.GetDB()
	var panels []*Panel
	query := db.WithContext(ctx).Model(&Panel{}).Order("name")
	if filter.ProjectId > 0 {
		query = query.Where("project_id = ?", filter.ProjectId)
	}
	if filter.BuildingId > 0 {
		query = query.Where("building_id = ?", filter.BuildingId)
	}
	if filter.FacadeId > 0 {
		query = query.Where("facade_id = ?", filter.FacadeId)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := query.Find(&panels).Error; err != nil {
		return nil, err
	}
	return panels, nil
}

// CountPanels reports how many panels match the filter, for pagination.
func CountPanels(ctx context.Context, filter PanelFilter) (int64, error) {
	db := config.GetDB()
	var count int64
	query := db.WithContext(ctx).Model(&Panel{})
	if filter.ProjectId > 0 {
		query = query.Where("project_id = ?", filter.ProjectId)
	}
	if filter.BuildingId > 0 {
		query = query.Where("building_id = ?", filter.BuildingId)
	}
	if filter.FacadeId > 0 {
		query = query.Where("facade_id = ?", filter.FacadeId)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
