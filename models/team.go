package models

import "time"

// Team groups users that collaborate on projects.
type Team struct {
	Base
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"size:255" json:"description"`
	CreatedByID string    `gorm:"column:created_by;type:varchar(36);not null;index" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	CreatedBy *UserRef `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
}

const (
	MemberRoleOwner  = "owner"
	MemberRoleLead   = "lead"
	MemberRoleMember = "member"
)

// TeamMember links exactly one user to exactly one team.
type TeamMember struct {
	Base
	TeamID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_team_user" json:"team_id"`
	UserID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_team_user;index" json:"user_id"`
	Role     string    `gorm:"size:20;not null;default:'member'" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// Relations
	Team *TeamRef `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	User *UserRef `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
