package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is an informational record for a user. It carries no financial meaning.
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Type      string         `gorm:"size:32;index;not null" json:"type"`
	Title     string         `gorm:"size:120" json:"title"`
	Message   string         `gorm:"size:500" json:"message"`
	Data      datatypes.JSON `json:"data,omitempty"`
	Read      bool           `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
