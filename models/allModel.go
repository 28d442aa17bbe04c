package models

import (
	"log"

	"github.com/hediammar/QatarPanels-sub002/config"
)

// MigrateTable runs gorm automigration for every model in dependency order.
func MigrateTable() {
	db := config.GetDB()
	err := db.AutoMigrate(
		&Customer{},
		&Project{},
		&Building{},
		&Facade{},
		&Panel{},
		&PanelStatusHistory{},
		&User{},
		&RolePermission{},
	)
	if err != nil {
		log.Printf("automigration failed: %v", err)
	}
}
