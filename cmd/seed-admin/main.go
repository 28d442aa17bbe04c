// seed-admin creates or updates the bootstrap admin user and seeds the
// role permission matrix. Safe to run repeatedly.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
//
// ADMIN_EMAIL / ADMIN_PASSWORD / ADMIN_NAME override the defaults below.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hediammar/QatarPanels-sub002/config"
	"github.com/hediammar/QatarPanels-sub002/models"
	"github.com/hediammar/QatarPanels-sub002/utils"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@paneltracker.local"
	defaultAdminPassword = "ChangeMe!123"
	defaultAdminName     = "Panel Tracker Admin"
)

func envOr(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	if err := models.SeedRolePermissions(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed role permissions: %v\n", err)
		os.Exit(1)
	}

	adminEmail := strings.ToLower(envOr("ADMIN_EMAIL", defaultAdminEmail))
	adminPassword := envOr("ADMIN_PASSWORD", defaultAdminPassword)
	adminName := envOr("ADMIN_NAME", defaultAdminName)

	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Seed")

	hashed, err := utils.HashPassword(adminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	hashedStr := string(hashed)

	var existing models.User
	err = db.WithContext(ctx).Model(&models.User{}).Where("email = ?", adminEmail).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		u := models.User{
			Name:     adminName,
			Email:    adminEmail,
			Password: hashedStr,
			Role:     models.RoleAdmin,
			IsActive: utils.NewTrue(),
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin user: email=%q (role=admin)\n", adminEmail)
		return
	}

	// Update existing user: ensure password and admin role.
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", adminEmail).Updates(map[string]any{
		"password":  hashedStr,
		"name":      adminName,
		"is_active": utils.NewTrue(),
		"role":      models.RoleAdmin,
	}).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	// Drop any cached copy so the next login sees the new credentials.
	_ = config.RemoveRedisKey("User:" + adminEmail)
	fmt.Printf("Updated admin user: email=%q (role=admin)\n", adminEmail)
}
