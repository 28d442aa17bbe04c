package models

import (
	"context"
	"errors"
	"testing"

	"github.com/hediammar/QatarPanels-sub002/utils"
)

func TestCreateUserAdminEscalation(t *testing.T) {
	input := &NewUser{
		Name:     "New Admin",
		Email:    "new.admin@example.com",
		Password: "s3cret-pass",
		Role:     RoleAdmin,
	}

	ctx := utils.SetRoleInContext(context.Background(), RoleViewer)
	if _, err := CreateUser(ctx, input); !errors.Is(err, utils.ErrorPermissionDenied) {
		t.Errorf("viewer creating admin: err = %v, want %v", err, utils.ErrorPermissionDenied)
	}

	// Unauthenticated callers cannot create admins either.
	if _, err := CreateUser(context.Background(), input); !errors.Is(err, utils.ErrorPermissionDenied) {
		t.Errorf("no role creating admin: err = %v, want %v", err, utils.ErrorPermissionDenied)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	input := &NewUser{
		Name:     "Someone",
		Email:    "someone@example.com",
		Password: "s3cret-pass",
		Role:     "superuser",
	}
	if _, err := CreateUser(context.Background(), input); err == nil || err.Error() != "invalid role" {
		t.Errorf("unknown role: err = %v, want invalid role", err)
	}
}
