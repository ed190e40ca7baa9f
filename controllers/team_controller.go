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

const teamNameTaken = "Team name already taken."

type CreateTeamRequest struct {
	Name        string  `json:"name" validate:"required,max=50"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

func (r *CreateTeamRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	trim(r.Description)
}

func (r *CreateTeamRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"name.required":   "Team name is required",
		"name.max":        "Team name must not exceed 50 characters",
		"description.max": "Description must not exceed 255 characters",
	}
}

type UpdateTeamRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

func (r *UpdateTeamRequest) Normalize() {
	trim(r.Name)
	trim(r.Description)
}

func (r *UpdateTeamRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"name.min":        "Team name cannot be empty",
		"name.max":        "Team name must not exceed 50 characters",
		"description.max": "Description must not exceed 255 characters",
	}
}

type TeamController struct {
	DB       *gorm.DB
	Logger   *logrus.Entry
	Notifier *notifier.Notifier
}

func NewTeamController(db *gorm.DB, logger *logrus.Entry, n *notifier.Notifier) *TeamController {
	return &TeamController{
		DB:       db,
		Logger:   logger,
		Notifier: n,
	}
}

// CreateTeam creates a team owned by the caller and tells the admins about it.
func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	req := middleware.Body[CreateTeamRequest](c)
	caller := identity(c)
	db := dbFor(tc.DB, c)

	taken, err := exists[models.Team](db, "name = ?", req.Name)
	if err != nil {
		return err
	}
	if taken {
		return utils.NewConflict(teamNameTaken)
	}

	team := models.Team{
		Name:        req.Name,
		Description: req.Description,
		CreatedByID: caller.ID,
	}
	if err := db.Create(&team).Error; err != nil {
		return err
	}

	tc.Notifier.Notify(c.UserContext(), notifier.TeamCreated{TeamID: team.ID, ActorID: caller.ID})

	created, err := findByID[models.Team](db, team.ID, "Team not found", "CreatedBy")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "Team created successfully", created)
}

func (tc *TeamController) GetTeams(c *fiber.Ctx) error {
	p, err := utils.ParsePagination(c)
	if err != nil {
		return err
	}

	teams, total, err := paginate[models.Team](dbFor(tc.DB, c), p, listOrder, search(c, "name", "description"), "CreatedBy")
	if err != nil {
		return err
	}
	return utils.PaginatedResponse(c, "Teams retrieved successfully", teams, total, p)
}

func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	team, err := findByID[models.Team](dbFor(tc.DB, c), c.Params("id"), "Team not found", "CreatedBy")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Team retrieved successfully", team)
}

func (tc *TeamController) UpdateTeam(c *fiber.Ctx) error {
	req := middleware.Body[UpdateTeamRequest](c)
	db := dbFor(tc.DB, c)

	team, err := findByID[models.Team](db, c.Params("id"), "Team not found")
	if err != nil {
		return err
	}

	if req.Name != nil && *req.Name != team.Name {
		taken, err := exists[models.Team](db, "name = ? AND id <> ?", *req.Name, team.ID)
		if err != nil {
			return err
		}
		if taken {
			return utils.NewConflict(teamNameTaken)
		}
	}

	updates := map[string]interface{}{}
	setIfPresent(updates, "name", req.Name)
	setIfPresent(updates, "description", req.Description)
	if len(updates) > 0 {
		if err := db.Model(team).Updates(updates).Error; err != nil {
			return err
		}
	}

	updated, err := findByID[models.Team](db, team.ID, "Team not found", "CreatedBy")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Team updated successfully", updated)
}

// DeleteTeam removes the team together with its projects, their tasks and
// comments, and all memberships, in one transaction.
func (tc *TeamController) DeleteTeam(c *fiber.Ctx) error {
	db := dbFor(tc.DB, c)

	team, err := findByID[models.Team](db, c.Params("id"), "Team not found")
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		projectIDs := tx.Model(&models.Project{}).Select("id").Where("team_id = ?", team.ID)
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id IN (?)", projectIDs)

		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id IN (?)", projectIDs).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.Project{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Team{}, "id = ?", team.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewNotFound("Team not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	tc.Logger.WithField("team_id", team.ID).Info("Team deleted")
	return utils.SuccessResponse(c, fiber.StatusOK, "Team deleted successfully", nil)
}
