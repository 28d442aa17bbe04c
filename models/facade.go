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

type Facade struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Name       string    `gorm:"size:200;not null;index" json:"name" binding:"required"`
	BuildingId int       `gorm:"not null;index" json:"building_id" binding:"required"`
	Building   Building  `json:"building"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFacade struct {
	Name       string `json:"name" binding:"required"`
	BuildingId int    `json:"building_id" binding:"required"`
}

func (input *NewFacade) validate(ctx context.Context, id int) error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("facade name is required")
	}
	if id > 0 {
		if err := utils.ValidateResourceId[Facade](ctx, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateResourceId[Building](ctx, input.BuildingId); err != nil {
		return errors.New("building not found")
	}
	// facade names are unique within a building
	var count int64
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Facade{}).
		Where("building_id = ? AND name = ?", input.BuildingId, strings.TrimSpace(input.Name))
	if id > 0 {
		query = query.Where("NOT id = ?", id)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("duplicate facade name in building")
	}
	return nil
}

func CreateFacade(ctx context.Context, input *NewFacade) (*Facade, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	facade := Facade{
		Name:       strings.TrimSpace(input.Name),
		BuildingId: input.BuildingId,
	}

	if err := db.WithContext(ctx).Create(&facade).Error; err != nil {
		return nil, err
	}

	return &facade, nil
}

func UpdateFacade(ctx context.Context, id int, input *NewFacade) (*Facade, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	facade, err := utils.FetchModel[Facade](ctx, id)
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(facade).Updates(map[string]interface{}{
		"Name":       strings.TrimSpace(input.Name),
		"BuildingId": input.BuildingId,
	}).Error
	if err != nil {
		return nil, err
	}

	return facade, nil
}

func DeleteFacade(ctx context.Context, id int) (*Facade, error) {
	db := config.GetDB()

	facade, err := utils.FetchModel[Facade](ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Panel](ctx, "facade_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("facade is referenced by %d panel(s)", count)
	}

	if err := db.WithContext(ctx).Delete(facade).Error; err != nil {
		return nil, err
	}
	return facade, nil
}

func GetFacade(ctx context.Context, id int) (*Facade, error) {
	return utils.FetchModel[Facade](ctx, id, "Building")
}

func ListFacades(ctx context.Context, buildingId int) ([]*Facade, error) {
	db := config.GetDB()
	var facades []*Facade
	query := db.WithContext(ctx).Order("name")
	if buildingId > 0 {
		query = query.Where("building_id = ?", buildingId)
	}
	if err := query.Find(&facades).Error; err != nil {
		return nil, err
	}
	return facades, nil
}
