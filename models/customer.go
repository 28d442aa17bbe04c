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

type Customer struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null;index" json:"name" binding:"required"`
	Email     string    `gorm:"size:100" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (input *NewCustomer) validate(ctx context.Context, id int) error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("customer name is required")
	}
	if id > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, id); err != nil {
			return err
		}
	}
	// validate unique name
	if err := utils.ValidateUnique[Customer](ctx, "name", input.Name, id); err != nil {
		return err
	}
	// validate email
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email")
	}
	// validate phone; "+000..." placeholders come from import auto-creation
	if input.Phone != "" && !strings.HasPrefix(input.Phone, "+000") {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return errors.New("invalid phone number")
		}
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	customer := Customer{
		Name:  strings.TrimSpace(input.Name),
		Email: input.Email,
		Phone: input.Phone,
	}

	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}

	return &customer, nil
}

func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, id)
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(customer).Updates(map[string]interface{}{
		"Name":  strings.TrimSpace(input.Name),
		"Email": input.Email,
		"Phone": input.Phone,
	}).Error
	if err != nil {
		return nil, err
	}

	return customer, nil
}

func DeleteCustomer(ctx context.Context, id int) (*Customer, error) {
	db := config.GetDB()

	customer, err := utils.FetchModel[Customer](ctx, id)
	if err != nil {
		return nil, err
	}

	// don't delete customers that still own projects
	count, err := utils.ResourceCountWhere[Project](ctx, "customer_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("customer is referenced by %d project(s)", count)
	}

	if err := db.WithContext(ctx).Delete(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return utils.FetchModel[Customer](ctx, id)
}

func ListCustomers(ctx context.Context) ([]*Customer, error) {
	db := config.GetDB()
	var customers []*Customer
	err := db.WithContext(ctx).Order("name").Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}
