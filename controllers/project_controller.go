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

const projectStatusMessage = "Invalid status value. Allowed values: planning, in_progress, completed, on_hold"

var projectMessages = map[string]string{
	"team_id.required":  "Team ID is required",
	"team_id.uuid":      "Team ID must be a valid UUID",
	"name.required":     "Project name is required",
	"name.min":          "Project name cannot be empty",
	"name.max":          "Project name cannot exceed 100 characters",
	"description.max":   "Description cannot exceed 500 characters",
	"status.required":   "Status is required",
	"status.oneof":      projectStatusMessage,
	"deadline.required": "Deadline is required",
	"deadline.iso8601":  "Deadline must be a valid date",
}

type CreateProjectRequest struct {
	TeamID      string  `json:"team_id" validate:"required,uuid"`
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Status      string  `json:"status" validate:"required,oneof=planning in_progress completed on_hold"`
	Deadline    string  `json:"deadline" validate:"required,iso8601"`
}

func (r *CreateProjectRequest) Normalize() {
	r.TeamID = strings.TrimSpace(r.TeamID)
	r.Name = strings.TrimSpace(r.Name)
	trim(r.Description)
}

func (r *CreateProjectRequest) ValidationMessages() map[string]string {
	return projectMessages
}

type UpdateProjectRequest struct {
	TeamID      *string `json:"team_id" validate:"omitempty,uuid"`
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Status      *string `json:"status" validate:"omitempty,oneof=planning in_progress completed on_hold"`
	Deadline    *string `json:"deadline" validate:"omitempty,iso8601"`
}

func (r *UpdateProjectRequest) Normalize() {
	trim(r.TeamID)
	trim(r.Name)
	trim(r.Description)
}

func (r *UpdateProjectRequest) ValidationMessages() map[string]string {
	return projectMessages
}

func (r *UpdateProjectRequest) ValidateComposite() []utils.FieldError {
	if r.TeamID == nil && r.Name == nil && r.Description == nil && r.Status == nil && r.Deadline == nil {
		return []utils.FieldError{{Field: "body", Message: "At least one field must be provided for update"}}
	}
	return nil
}

type ProjectController struct {
	DB       *gorm.DB
	Logger   *logrus.Entry
	Notifier *notifier.Notifier
}

func NewProjectController(db *gorm.DB, logger *logrus.Entry, n *notifier.Notifier) *ProjectController {
	return &ProjectController{
		DB:       db,
		Logger:   logger,
		Notifier: n,
	}
}

func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	req := middleware.Body[CreateProjectRequest](c)
	caller := identity(c)
	db := dbFor(pc.DB, c)

	if _, err := findByID[models.Team](db, req.TeamID, "Team not found"); err != nil {
		return err
	}

	taken, err := exists[models.Project](db, "team_id = ? AND name = ?", req.TeamID, req.Name)
	if err != nil {
		return err
	}
	if taken {
		return utils.NewConflict("Project with this name already exists in the team")
	}

	deadline, _ := utils.ParseISO8601(req.Deadline)
	project := models.Project{
		TeamID:      req.TeamID,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Deadline:    deadline,
	}
	if err := db.Create(&project).Error; err != nil {
		return err
	}

	pc.Notifier.Notify(c.UserContext(), notifier.ProjectCreated{ProjectID: project.ID, ActorID: caller.ID})

	created, err := findByID[models.Project](db, project.ID, "Project not found", "Team")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "Project created successfully", created)
}

func (pc *ProjectController) GetProjects(c *fiber.Ctx) error {
	p, err := utils.ParsePagination(c)
	if err != nil {
		return err
	}
	filter := chain(
		search(c, "name", "description"),
		eq(c, map[string]string{"status": "status", "team_id": "team_id"}),
	)

	projects, total, err := paginate[models.Project](dbFor(pc.DB, c), p, listOrder, filter, "Team")
	if err != nil {
		return err
	}
	return utils.PaginatedResponse(c, "Projects retrieved successfully", projects, total, p)
}

func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	project, err := findByID[models.Project](dbFor(pc.DB, c), c.Params("id"), "Project not found", "Team")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Project retrieved successfully", project)
}

// UpdateProject applies the fields present in the body. A status change is
// announced to the whole team.
func (pc *ProjectController) UpdateProject(c *fiber.Ctx) error {
	req := middleware.Body[UpdateProjectRequest](c)
	caller := identity(c)
	db := dbFor(pc.DB, c)

	project, err := findByID[models.Project](db, c.Params("id"), "Project not found")
	if err != nil {
		return err
	}

	teamID, name := project.TeamID, project.Name
	if req.TeamID != nil {
		if _, err := findByID[models.Team](db, *req.TeamID, "Team not found"); err != nil {
			return err
		}
		teamID = *req.TeamID
	}
	if req.Name != nil {
		name = *req.Name
	}
	if teamID != project.TeamID || name != project.Name {
		taken, err := exists[models.Project](db, "team_id = ? AND name = ? AND id <> ?", teamID, name, project.ID)
		if err != nil {
			return err
		}
		if taken {
			return utils.NewConflict("Project with this name already exists in the team")
		}
	}

	updates := map[string]interface{}{}
	setIfPresent(updates, "team_id", req.TeamID)
	setIfPresent(updates, "name", req.Name)
	setIfPresent(updates, "description", req.Description)
	setIfPresent(updates, "status", req.Status)
	if req.Deadline != nil {
		deadline, _ := utils.ParseISO8601(*req.Deadline)
		updates["deadline"] = deadline
	}

	if err := db.Model(project).Updates(updates).Error; err != nil {
		return err
	}

	if req.Status != nil && *req.Status != project.Status {
		pc.Notifier.Notify(c.UserContext(), notifier.ProjectStatusChanged{
			ProjectID: project.ID,
			NewStatus: *req.Status,
			ActorID:   caller.ID,
		})
	}

	updated, err := findByID[models.Project](db, project.ID, "Project not found", "Team")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Project updated successfully", updated)
}

// DeleteProject notifies the team first, while the project can still be
// resolved, then removes the project with its tasks and their comments.
func (pc *ProjectController) DeleteProject(c *fiber.Ctx) error {
	caller := identity(c)
	db := dbFor(pc.DB, c)

	project, err := findByID[models.Project](db, c.Params("id"), "Project not found")
	if err != nil {
		return err
	}

	pc.Notifier.Notify(c.UserContext(), notifier.ProjectDeleted{ProjectID: project.ID, ActorID: caller.ID})

	err = db.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", project.ID)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Project{}, "id = ?", project.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewNotFound("Project not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Project deleted successfully", nil)
}
