package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hediammar/QatarPanels-sub002/config"
	"github.com/hediammar/QatarPanels-sub002/utils"
	"github.com/shopspring/decimal"
)

type Project struct {
	ID              int             `gorm:"primary_key" json:"id"`
	Name            string          `gorm:"size:200;not null;index" json:"name" binding:"required"`
	CustomerId      int             `gorm:"not null;index" json:"customer_id" binding:"required"`
	Location        string          `gorm:"size:200" json:"location"`
	Status          ProjectStatus   `gorm:"type:enum('active','completed','on-hold','inactive');not null;default:'active'" json:"status"`
	StartDate       *time.Time      `json:"start_date"`
	EndDate         *time.Time      `json:"end_date"`
	EstimatedCost   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"estimated_cost"`
	EstimatedPanels int             `gorm:"default:0" json:"estimated_panels"`
	Customer        Customer        `json:"customer"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProject struct {
	Name            string          `json:"name" binding:"required"`
	CustomerId      int             `json:"customer_id" binding:"required"`
	Location        string          `json:"location"`
	Status          ProjectStatus   `json:"status"`
	StartDate       *time.Time      `json:"start_date"`
	EndDate         *time.Time      `json:"end_date"`
	EstimatedCost   decimal.Decimal `json:"estimated_cost"`
	EstimatedPanels int             `json:"estimated_panels"`
}

func (input *NewProject) validate(ctx context.Context, id int) error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("project name is required")
	}
	if id > 0 {
		if err := utils.ValidateResourceId[Project](ctx, id); err != nil {
			return err
		}
	}
	// validate unique name
	if err := utils.ValidateUnique[Project](ctx, "name", input.Name, id); err != nil {
		return err
	}
	// validate customer
	if err := utils.ValidateResourceId[Customer](ctx, input.CustomerId); err != nil {
		return errors.New("customer not found")
	}
	if input.Status != "" {
		if _, ok := ParseProjectStatus(string(input.Status)); !ok {
			return fmt.Errorf("invalid project status %q", input.Status)
		}
	}
	return nil
}

func CreateProject(ctx context.Context, input *NewProject) (*Project, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = ProjectStatusActive
	}

	project := Project{
		Name:            strings.TrimSpace(input.Name),
		CustomerId:      input.CustomerId,
		Location:        input.Location,
		Status:          status,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		EstimatedCost:   input.EstimatedCost,
		EstimatedPanels: input.EstimatedPanels,
	}

	if err := db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

func UpdateProject(ctx context.Context, id int, input *NewProject) (*Project, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	project, err := utils.FetchModel[Project](ctx, id)
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(project).Updates(map[string]interface{}{
		"Name":            strings.TrimSpace(input.Name),
		"CustomerId":      input.CustomerId,
		"Location":        input.Location,
		"Status":          input.Status,
		"StartDate":       input.StartDate,
		"EndDate":         input.EndDate,
		"EstimatedCost":   input.EstimatedCost,
		"EstimatedPanels": input.EstimatedPanels,
	}).Error
	if err != nil {
		return nil, err
	}

	return project, nil
}

func DeleteProject(ctx context.Context, id int) (*Project, error) {
	db := config.GetDB()

	project, err := utils.FetchModel[Project](ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Building](ctx, "project_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("project has %d building(s)", count)
	}

	count, err = utils.ResourceCountWhere[Panel](ctx, "project_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("project is referenced by %d panel(s)", count)
	}

	if err := db.WithContext(ctx).Delete(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

func GetProject(ctx context.Context, id int) (*Project, error) {
	return utils.FetchModel[Project](ctx, id, "Customer")
}

func ListProjects(ctx context.Context) ([]*Project, error) {
	db := config.GetDB()
	var projects []*Project
	err := db.WithContext(ctx).Preload("Customer").Order("name").Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}
