package models

import (
	"context"
	"time"

	"github.com/hediammar/QatarPanels-sub002/config"
)

// Role names are fixed; permissions per role live in role_permissions so a
// deployment can tighten or loosen them without a redeploy.
const (
	RoleAdmin          = "admin"
	RoleProjectManager = "project_manager"
	RoleDataEntry      = "data_entry"
	RoleViewer         = "viewer"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleProjectManager, RoleDataEntry, RoleViewer:
		return true
	}
	return false
}

type RolePermission struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Role      string    `gorm:"size:50;not null;index:idx_role_perm,unique" json:"role" binding:"required"`
	Resource  string    `gorm:"size:50;not null;index:idx_role_perm,unique" json:"resource" binding:"required"`
	Action    string    `gorm:"size:20;not null;index:idx_role_perm,unique" json:"action" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// HasPermission reports whether the role may perform action on resource.
// Admin short-circuits; everything else is a row lookup.
func HasPermission(role string, resource string, action string) bool {
	if role == RoleAdmin {
		return true
	}
	db := config.GetDB()
	if db == nil {
		return false
	}
	var count int64
	err := db.Model(&RolePermission{}).
		Where("role = ? AND resource = ? AND action = ?", role, resource, action).
		Count(&count).Error
	if err != nil {
		return false
	}
	return count > 0
}

// defaultRolePermissions is the seed matrix. Resources mirror the API
// surface; actions are read/create/update/delete/import.
var defaultRolePermissions = []RolePermission{
	{Role: RoleProjectManager, Resource: "customers", Action: "read"},
	{Role: RoleProjectManager, Resource: "customers", Action: "create"},
	{Role: RoleProjectManager, Resource: "customers", Action: "update"},
	{Role: RoleProjectManager, Resource: "projects", Action: "read"},
	{Role: RoleProjectManager, Resource: "projects", Action: "create"},
	{Role: RoleProjectManager, Resource: "projects", Action: "update"},
	{Role: RoleProjectManager, Resource: "projects", Action: "delete"},
	{Role: RoleProjectManager, Resource: "buildings", Action: "read"},
	{Role: RoleProjectManager, Resource: "buildings", Action: "create"},
	{Role: RoleProjectManager, Resource: "buildings", Action: "update"},
	{Role: RoleProjectManager, Resource: "buildings", Action: "delete"},
	{Role: RoleProjectManager, Resource: "facades", Action: "read"},
	{Role: RoleProjectManager, Resource: "facades", Action: "create"},
	{Role: RoleProjectManager, Resource: "facades", Action: "update"},
	{Role: RoleProjectManager, Resource: "facades", Action: "delete"},
	{Role: RoleProjectManager, Resource: "panels", Action: "read"},
	{Role: RoleProjectManager, Resource: "panels", Action: "create"},
	{Role: RoleProjectManager, Resource: "panels", Action: "update"},
	{Role: RoleProjectManager, Resource: "panels", Action: "delete"},
	{Role: RoleProjectManager, Resource: "panels", Action: "import"},
	{Role: RoleProjectManager, Resource: "projects", Action: "import"},
	{Role: RoleProjectManager, Resource: "dashboard", Action: "read"},
	{Role: RoleDataEntry, Resource: "customers", Action: "read"},
	{Role: RoleDataEntry, Resource: "projects", Action: "read"},
	{Role: RoleDataEntry, Resource: "buildings", Action: "read"},
	{Role: RoleDataEntry, Resource: "facades", Action: "read"},
	{Role: RoleDataEntry, Resource: "panels", Action: "read"},
	{Role: RoleDataEntry, Resource: "panels", Action: "create"},
	{Role: RoleDataEntry, Resource: "panels", Action: "update"},
	{Role: RoleDataEntry, Resource: "panels", Action: "import"},
	{Role: RoleDataEntry, Resource: "dashboard", Action: "read"},
	{Role: RoleViewer, Resource: "customers", Action: "read"},
	{Role: RoleViewer, Resource: "projects", Action: "read"},
	{Role: RoleViewer, Resource: "buildings", Action: "read"},
	{Role: RoleViewer, Resource: "facades", Action: "read"},
	{Role: RoleViewer, Resource: "panels", Action: "read"},
	{Role: RoleViewer, Resource: "dashboard", Action: "read"},
}

// SeedRolePermissions inserts any missing default permission rows. Safe to
// run repeatedly.
func SeedRolePermissions(ctx context.Context) error {
	db := config.GetDB()
	for _, perm := range defaultRolePermissions {
		var count int64
		err := db.WithContext(ctx).Model(&RolePermission{}).
			Where("role = ? AND resource = ? AND action = ?", perm.Role, perm.Resource, perm.Action).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		p := perm
		if err := db.WithContext(ctx).Create(&p).Error; err != nil {
			return err
		}
	}
	return nil
}
