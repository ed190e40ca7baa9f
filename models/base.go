package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the application-generated UUID primary key shared by every entity.
type Base struct {
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// The *Ref types are shallow projections used for relational includes. They
// map onto the same tables as the full entities but expose only a handful of
// columns, so a preload never leaks password hashes or nested relations.

type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (UserRef) TableName() string { return "users" }

type TeamRef struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (TeamRef) TableName() string { return "teams" }

type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (ProjectRef) TableName() string { return "projects" }

type TaskRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (TaskRef) TableName() string { return "tasks" }
