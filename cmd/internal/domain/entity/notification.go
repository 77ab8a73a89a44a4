package entity

import "gorm.io/datatypes"

type Notification struct {
	ID        string         `gorm:"primaryKey;size:36"`
	UserID    string         `gorm:"size:36;not null;index"` // References: users(id)
	Type      string         `gorm:"size:64;not null"`
	Title     string         `gorm:"not null"`
	Message   string         `gorm:"type:text;not null"`
	Data      datatypes.JSON `gorm:"type:json"`
	IsRead    bool           `gorm:"not null;default:false"`
	CreatedAt int64          `gorm:"autoCreateTime:milli;not null;index"`
}
