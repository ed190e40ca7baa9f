package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/middleware"
	"projecthub/models"
	"projecthub/notifier"
	"projecthub/utils"
)

const memberRoleMessage = "Invalid role value. Allowed roles: owner, lead, member."

type CreateMemberRequest struct {
	TeamID string `json:"team_id" validate:"required,uuid"`
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,oneof=owner lead member"`
}

func (r *CreateMemberRequest) Normalize() {
	r.TeamID = strings.TrimSpace(r.TeamID)
	r.UserID = strings.TrimSpace(r.UserID)
	r.Role = strings.TrimSpace(r.Role)
}

func (r *CreateMemberRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"team_id.required": "Team ID is required",
		"team_id.uuid":     "Team ID must be a valid UUID",
		"user_id.required": "User ID is required",
		"user_id.uuid":     "User ID must be a valid UUID",
		"role.required":    "Role is required",
		"role.oneof":       memberRoleMessage,
	}
}

type UpdateMemberRequest struct {
	Role string `json:"role" validate:"required,oneof=owner lead member"`
}

func (r *UpdateMemberRequest) Normalize() {
	r.Role = strings.TrimSpace(r.Role)
}

func (r *UpdateMemberRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"role.required": "Role is required",
		"role.oneof":    memberRoleMessage,
	}
}

type MemberController struct {
	DB       *gorm.DB
	Logger   *logrus.Entry
	Notifier *notifier.Notifier
}

func NewMemberController(db *gorm.DB, logger *logrus.Entry, n *notifier.Notifier) *MemberController {
	return &MemberController{
		DB:       db,
		Logger:   logger,
		Notifier: n,
	}
}

func (mc *MemberController) AddMember(c *fiber.Ctx) error {
	req := middleware.Body[CreateMemberRequest](c)
	db := dbFor(mc.DB, c)

	if _, err := findByID[models.Team](db, req.TeamID, "Team not found"); err != nil {
		return err
	}
	if _, err := findByID[models.User](db, req.UserID, "User not found"); err != nil {
		return err
	}

	already, err := exists[models.TeamMember](db, "team_id = ? AND user_id = ?", req.TeamID, req.UserID)
	if err != nil {
		return err
	}
	if already {
		return utils.NewConflict("User is already a member of this team")
	}

	member := models.TeamMember{
		TeamID: req.TeamID,
		UserID: req.UserID,
		Role:   req.Role,
	}
	if err := db.Create(&member).Error; err != nil {
		return err
	}

	mc.Notifier.Notify(c.UserContext(), notifier.MemberJoined{TeamID: member.TeamID, UserID: member.UserID})

	created, err := findByID[models.TeamMember](db, member.ID, "Member not found", "Team", "User")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "Member added to team successfully", created)
}

// GetMembers searches over the member role and the names of the linked user
// and team.
func (mc *MemberController) GetMembers(c *fiber.Ctx) error {
	p, err := utils.ParsePagination(c)
	if err != nil {
		return err
	}
	filter := chain(
		memberSearch(c.Query("search")),
		eq(c, map[string]string{"team_id": "team_id", "user_id": "user_id", "role": "role"}),
	)

	members, total, err := paginate[models.TeamMember](dbFor(mc.DB, c), p, "joined_at DESC, id ASC", filter, "Team", "User")
	if err != nil {
		return err
	}
	return utils.PaginatedResponse(c, "Members retrieved successfully", members, total, p)
}

func memberSearch(term string) func(*gorm.DB) *gorm.DB {
	term = strings.TrimSpace(term)
	return func(db *gorm.DB) *gorm.DB {
		if term == "" {
			return db
		}
		pattern := utils.LikePattern(term)
		fresh := db.Session(&gorm.Session{NewDB: true})
		users := fresh.Model(&models.User{}).Select("id").Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
		teams := fresh.Model(&models.Team{}).Select("id").Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
		return db.Where(`(LOWER(role) LIKE ? ESCAPE '\' OR user_id IN (?) OR team_id IN (?))`, pattern, users, teams)
	}
}

func (mc *MemberController) GetMember(c *fiber.Ctx) error {
	member, err := findByID[models.TeamMember](dbFor(mc.DB, c), c.Params("id"), "Member not found", "Team", "User")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Member retrieved successfully", member)
}

func (mc *MemberController) UpdateMember(c *fiber.Ctx) error {
	req := middleware.Body[UpdateMemberRequest](c)
	caller := identity(c)
	db := dbFor(mc.DB, c)

	member, err := findByID[models.TeamMember](db, c.Params("id"), "Member not found")
	if err != nil {
		return err
	}

	changed := member.Role != req.Role
	if err := db.Model(member).Update("role", req.Role).Error; err != nil {
		return err
	}

	if changed {
		mc.Notifier.Notify(c.UserContext(), notifier.MemberRoleChanged{
			TeamID:  member.TeamID,
			UserID:  member.UserID,
			NewRole: req.Role,
			ActorID: caller.ID,
		})
	}

	updated, err := findByID[models.TeamMember](db, member.ID, "Member not found", "Team", "User")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Member updated successfully", updated)
}

func (mc *MemberController) RemoveMember(c *fiber.Ctx) error {
	caller := identity(c)
	db := dbFor(mc.DB, c)

	member, err := findByID[models.TeamMember](db, c.Params("id"), "Member not found")
	if err != nil {
		return err
	}

	res := db.Delete(&models.TeamMember{}, "id = ?", member.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NewNotFound("Member not found")
	}

	mc.Notifier.Notify(c.UserContext(), notifier.MemberRemoved{
		TeamID:  member.TeamID,
		UserID:  member.UserID,
		ActorID: caller.ID,
	})

	return utils.SuccessResponse(c, fiber.StatusOK, "Member deleted successfully", nil)
}
