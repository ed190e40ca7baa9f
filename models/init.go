package models

import "gorm.io/gorm"

// Migrate creates or updates every table owned by the application.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Team{},
		&TeamMember{},
		&Project{},
		&Task{},
		&Comment{},
		&ActivityLog{},
		&Notification{},
	)
}
