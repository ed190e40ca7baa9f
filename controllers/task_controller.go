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

var taskMessages = map[string]string{
	"project_id.required": "Project ID is required",
	"project_id.uuid":     "Project ID must be a valid UUID",
	"assign_to.required":  "Assign To is required",
	"assign_to.uuid":      "Assign To must be a valid UUID",
	"title.required":      "Title is required",
	"title.min":           "Title must be between 1 and 255 characters",
	"title.max":           "Title must be between 1 and 255 characters",
	"priority.required":   "Priority is required",
	"priority.oneof":      "Priority must be one of: low, medium, high",
	"status.required":     "Status is required",
	"status.oneof":        "Status must be one of: todo, in_progress, done",
	"due_date.required":   "Due Date is required",
	"due_date.iso8601":    "Due Date must be a valid date",
}

const taskTitleTaken = "Task with this title already exists in the project"

type CreateTaskRequest struct {
	ProjectID   string  `json:"project_id" validate:"required,uuid"`
	AssignTo    string  `json:"assign_to" validate:"required,uuid"`
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description *string `json:"description"`
	Priority    string  `json:"priority" validate:"required,oneof=low medium high"`
	Status      string  `json:"status" validate:"required,oneof=todo in_progress done"`
	DueDate     string  `json:"due_date" validate:"required,iso8601"`
}

func (r *CreateTaskRequest) Normalize() {
	r.ProjectID = strings.TrimSpace(r.ProjectID)
	r.AssignTo = strings.TrimSpace(r.AssignTo)
	r.Title = strings.TrimSpace(r.Title)
	trim(r.Description)
}

func (r *CreateTaskRequest) ValidationMessages() map[string]string {
	return taskMessages
}

type UpdateTaskRequest struct {
	ProjectID   *string `json:"project_id" validate:"omitempty,uuid"`
	AssignTo    *string `json:"assign_to" validate:"omitempty,uuid"`
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      *string `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	DueDate     *string `json:"due_date" validate:"omitempty,iso8601"`
}

func (r *UpdateTaskRequest) Normalize() {
	trim(r.ProjectID)
	trim(r.AssignTo)
	trim(r.Title)
	trim(r.Description)
}

func (r *UpdateTaskRequest) ValidationMessages() map[string]string {
	return taskMessages
}

type TaskController struct {
	DB       *gorm.DB
	Logger   *logrus.Entry
	Notifier *notifier.Notifier
}

func NewTaskController(db *gorm.DB, logger *logrus.Entry, n *notifier.Notifier) *TaskController {
	return &TaskController{
		DB:       db,
		Logger:   logger,
		Notifier: n,
	}
}

func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	req := middleware.Body[CreateTaskRequest](c)
	caller := identity(c)
	db := dbFor(tc.DB, c)

	if _, err := findByID[models.Project](db, req.ProjectID, "Project not found"); err != nil {
		return err
	}
	if _, err := findByID[models.User](db, req.AssignTo, "User not found"); err != nil {
		return err
	}

	taken, err := exists[models.Task](db, "project_id = ? AND title = ?", req.ProjectID, req.Title)
	if err != nil {
		return err
	}
	if taken {
		return utils.NewConflict(taskTitleTaken)
	}

	dueDate, _ := utils.ParseISO8601(req.DueDate)
	task := models.Task{
		ProjectID:   req.ProjectID,
		AssignTo:    req.AssignTo,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     dueDate,
	}
	if err := db.Create(&task).Error; err != nil {
		return err
	}

	tc.Notifier.Notify(c.UserContext(), notifier.TaskAssigned{
		TaskID:     task.ID,
		AssigneeID: task.AssignTo,
		ActorID:    caller.ID,
	})

	created, err := findByID[models.Task](db, task.ID, "Task not found", "Project", "AssignedUser")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "Task created successfully", created)
}

func (tc *TaskController) GetTasks(c *fiber.Ctx) error {
	p, err := utils.ParsePagination(c)
	if err != nil {
		return err
	}
	filter := chain(
		search(c, "title", "description"),
		eq(c, map[string]string{
			"status":     "status",
			"priority":   "priority",
			"project_id": "project_id",
			"assign_to":  "assign_to",
		}),
	)

	tasks, total, err := paginate[models.Task](dbFor(tc.DB, c), p, listOrder, filter, "Project", "AssignedUser")
	if err != nil {
		return err
	}
	return utils.PaginatedResponse(c, "Tasks retrieved successfully", tasks, total, p)
}

func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	task, err := findByID[models.Task](dbFor(tc.DB, c), c.Params("id"), "Task not found", "Project", "AssignedUser")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Task retrieved successfully", task)
}

// UpdateTask applies the fields present in the body. Reassignment notifies
// the new assignee; a status change notifies the assignee and the team.
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	req := middleware.Body[UpdateTaskRequest](c)
	caller := identity(c)
	db := dbFor(tc.DB, c)

	task, err := findByID[models.Task](db, c.Params("id"), "Task not found")
	if err != nil {
		return err
	}

	projectID, title := task.ProjectID, task.Title
	if req.ProjectID != nil {
		if _, err := findByID[models.Project](db, *req.ProjectID, "Project not found"); err != nil {
			return err
		}
		projectID = *req.ProjectID
	}
	if req.AssignTo != nil {
		if _, err := findByID[models.User](db, *req.AssignTo, "User not found"); err != nil {
			return err
		}
	}
	if req.Title != nil {
		title = *req.Title
	}
	if projectID != task.ProjectID || title != task.Title {
		taken, err := exists[models.Task](db, "project_id = ? AND title = ? AND id <> ?", projectID, title, task.ID)
		if err != nil {
			return err
		}
		if taken {
			return utils.NewConflict(taskTitleTaken)
		}
	}

	updates := map[string]interface{}{}
	setIfPresent(updates, "project_id", req.ProjectID)
	setIfPresent(updates, "assign_to", req.AssignTo)
	setIfPresent(updates, "title", req.Title)
	setIfPresent(updates, "description", req.Description)
	setIfPresent(updates, "priority", req.Priority)
	setIfPresent(updates, "status", req.Status)
	if req.DueDate != nil {
		dueDate, _ := utils.ParseISO8601(*req.DueDate)
		updates["due_date"] = dueDate
	}

	if len(updates) > 0 {
		if err := db.Model(task).Updates(updates).Error; err != nil {
			return err
		}
	}

	if req.AssignTo != nil && *req.AssignTo != task.AssignTo {
		tc.Notifier.Notify(c.UserContext(), notifier.TaskAssigned{
			TaskID:     task.ID,
			AssigneeID: *req.AssignTo,
			ActorID:    caller.ID,
		})
	}
	if req.Status != nil && *req.Status != task.Status {
		tc.Notifier.Notify(c.UserContext(), notifier.TaskStatusChanged{
			TaskID:    task.ID,
			NewStatus: *req.Status,
			ActorID:   caller.ID,
		})
	}

	updated, err := findByID[models.Task](db, task.ID, "Task not found", "Project", "AssignedUser")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Task updated successfully", updated)
}

func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	caller := identity(c)
	db := dbFor(tc.DB, c)

	task, err := findByID[models.Task](db, c.Params("id"), "Task not found")
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Task{}, "id = ?", task.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewNotFound("Task not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	tc.Notifier.Notify(c.UserContext(), notifier.TaskDeleted{
		TaskTitle:  task.Title,
		AssigneeID: task.AssignTo,
		ActorID:    caller.ID,
	})

	return utils.SuccessResponse(c, fiber.StatusOK, "Task deleted successfully", nil)
}
