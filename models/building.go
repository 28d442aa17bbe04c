package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hediammar/QatarPanels-sub002/config"
	"github.com/hediammar/QatarPanels-sub002/utils"
)

type Building struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:200;not null;index" json:"name" binding:"required"`
	ProjectId int       `gorm:"not null;index" json:"project_id" binding:"required"`
	Project   Project   `json:"project"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBuilding struct {
	Name      string `json:"name" binding:"required"`
	ProjectId int    `json:"project_id" binding:"required"`
}

func (input *NewBuilding) validate(ctx context.Context, id int) error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("building name is required")
	}
	if id > 0 {
		if err := utils.ValidateResourceId[Building](ctx, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateResourceId[Project](ctx, input.ProjectId); err != nil {
		return errors.New("project not found")
	}
	// building names are unique within a project, not globally
	var count int64
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Building{}).
		Where("project_id = ? AND name = ?", input.ProjectId, strings.TrimSpace(input.Name))
	if id > 0 {
		query = query.Where("NOT id = ?", id)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("duplicate building name in project")
	}
	return nil
}

func CreateBuilding(ctx context.Context, input *NewBuilding) (*Building, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	building := Building{
		Name:      strings.TrimSpace(input.Name),
		ProjectId: input.ProjectId,
	}

	if err := db.WithContext(ctx).Create(&building).Error; err != nil {
		return nil, err
	}

	return &building, nil
}

func UpdateBuilding(ctx context.Context, id int, input *NewBuilding) (*Building, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	building, err := utils.FetchModel[Building](ctx, id)
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(building).Updates(map[string]interface{}{
		"Name":      strings.TrimSpace(input.Name),
		"ProjectId": input.ProjectId,
	}).Error
	if err != nil {
		return nil, err
	}

	return building, nil
}

func DeleteBuilding(ctx context.Context, id int) (*Building, error) {
	db := config.GetDB()

	building, err := utils.FetchModel[Building](ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Facade](ctx, "building_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("building has %d facade(s)", count)
	}

	count, err = utils.ResourceCountWhere[Panel](ctx, "building_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("building is referenced by %d panel(s)", count)
	}

	if err := db.WithContext(ctx).Delete(building).Error; err != nil {
		return nil, err
	}
	return building, nil
}

func GetBuilding(ctx context.Context, id int) (*Building, error) {
	return utils.FetchModel[Building](ctx, id, "Project")
}

func ListBuildings(ctx context.Context, projectId int) ([]*Building, error) {
	db := config.GetDB()
	var buildings []*Building
	query := db.WithContext(ctx).Order("name")
	if projectId > 0 {
		query = query.Where("project_id = ?", projectId)
	}
	if err := query.Find(&buildings).Error; err != nil {
		return nil, err
	}
	return buildings, nil
}
