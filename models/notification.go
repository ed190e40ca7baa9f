package models

import "time"

// Notification is mutable only through IsRead.
type Notification struct {
	Base
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Message   string    `gorm:"size:1000;not null" json:"message"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User *UserRef `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
