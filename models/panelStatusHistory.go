package models

import (
	"context"
	"time"

	"github.com/hediammar/QatarPanels-sub002/config"
	"github.com/hediammar/QatarPanels-sub002/utils"
	"gorm.io/gorm"
)

// PanelStatusHistory is append-only: rows are written when a panel is
// created and whenever its status changes, never updated.
type PanelStatusHistory struct {
	ID        int         `gorm:"primary_key" json:"id"`
	PanelId   int         `gorm:"index;not null" json:"panel_id"`
	Status    PanelStatus `gorm:"not null" json:"status"`
	Notes     string      `gorm:"type:text" json:"notes"`
	UserId    int         `gorm:"index" json:"user_id"`
	UserName  string      `gorm:"size:100" json:"user_name"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func appendPanelStatusHistory(ctx context.Context, tx *gorm.DB, panelId int, status PanelStatus, notes string) error {
	history := PanelStatusHistory{
		PanelId: panelId,
		Status:  status,
		Notes:   notes,
	}
	// user info comes from the request context; imports run as the
	// uploading user
	if userId, ok := utils.GetUserIdFromContext(ctx); ok {
		history.UserId = userId
	}
	if userName, ok := utils.GetUserNameFromContext(ctx); ok {
		history.UserName = userName
	}
	return tx.WithContext(ctx).Create(&history).Error
}

func ListPanelStatusHistories(ctx context.Context, panelId int) ([]*PanelStatusHistory, error) {
	db := config.GetDB()
	var histories []*PanelStatusHistory
	err := db.WithContext(ctx).
		Where("panel_id = ?", panelId).
		Order("created_at").
		Find(&histories).Error
	if err != nil {
		return nil, err
	}
	return histories, nil
}
