package models

import "time"

type Comment struct {
	Base
	TaskID    string    `gorm:"type:varchar(36);not null;index" json:"task_id"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Content   string    `gorm:"size:1000;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User *UserRef `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Task *TaskRef `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
