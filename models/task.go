package models

import "time"

const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskDone       = "done"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	Base
	ProjectID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_project_title" json:"project_id"`
	AssignTo    string    `gorm:"type:varchar(36);not null;index" json:"assign_to"`
	Title       string    `gorm:"size:255;not null;uniqueIndex:idx_project_title" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	Priority    string    `gorm:"size:10;not null" json:"priority"`
	Status      string    `gorm:"size:20;not null" json:"status"`
	DueDate     time.Time `gorm:"not null" json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Project      *ProjectRef `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	AssignedUser *UserRef    `gorm:"foreignKey:AssignTo" json:"assignedUser,omitempty"`
}
