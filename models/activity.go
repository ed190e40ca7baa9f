package models

import "time"

// ActivityLog is an immutable audit record.
type ActivityLog struct {
	Base
	UserID     string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Action     string    `gorm:"size:225;not null" json:"action"`
	EntityType string    `gorm:"size:20;not null;index" json:"entity_type"`
	EntityID   string    `gorm:"type:varchar(36);not null" json:"entity_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`

	// Relations
	User *UserRef `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
