package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	BaseModel
	UserID  string           `gorm:"type:uuid;not null;index"`
	Type    NotificationType `gorm:"type:varchar(40);not null"`
	Title   string           `gorm:"not null"`
	Message string
	Data    datatypes.JSON
	IsRead  bool `gorm:"not null;default:false;index"`
	ReadAt  *time.Time

	// DedupeKey collapses repeated emissions of the same event; NULL means no dedupe.
	DedupeKey *string `gorm:"uniqueIndex"`
}
