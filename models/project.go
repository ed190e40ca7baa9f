package models

import "time"

const (
	ProjectPlanning   = "planning"
	ProjectInProgress = "in_progress"
	ProjectCompleted  = "completed"
	ProjectOnHold     = "on_hold"
)

type Project struct {
	Base
	TeamID      string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_team_project" json:"team_id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex:idx_team_project" json:"name"`
	Description *string   `gorm:"size:500" json:"description"`
	Status      string    `gorm:"size:20;not null" json:"status"`
	Deadline    time.Time `gorm:"not null" json:"deadline"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Team *TeamRef `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}
