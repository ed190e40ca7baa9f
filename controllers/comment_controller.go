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

var commentMessages = map[string]string{
	"task_id.required": "Task ID is required",
	"task_id.uuid":     "Task ID must be a valid UUID",
	"user_id.required": "User ID is required",
	"user_id.uuid":     "User ID must be a valid UUID",
	"content.required": "Content is required",
	"content.min":      "Content cannot be empty",
	"content.max":      "Content must be between 1 and 1000 characters",
}

type CreateCommentRequest struct {
	TaskID  string `json:"task_id" validate:"required,uuid"`
	UserID  string `json:"user_id" validate:"required,uuid"`
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

func (r *CreateCommentRequest) Normalize() {
	r.TaskID = strings.TrimSpace(r.TaskID)
	r.UserID = strings.TrimSpace(r.UserID)
}

func (r *CreateCommentRequest) ValidationMessages() map[string]string {
	return commentMessages
}

type UpdateCommentRequest struct {
	TaskID  *string `json:"task_id" validate:"omitempty,uuid"`
	UserID  *string `json:"user_id" validate:"omitempty,uuid"`
	Content *string `json:"content" validate:"omitempty,min=1,max=1000"`
}

func (r *UpdateCommentRequest) Normalize() {
	trim(r.TaskID)
	trim(r.UserID)
}

func (r *UpdateCommentRequest) ValidationMessages() map[string]string {
	return commentMessages
}

func (r *UpdateCommentRequest) ValidateComposite() []utils.FieldError {
	if r.TaskID == nil && r.UserID == nil && r.Content == nil {
		return []utils.FieldError{{Field: "body", Message: "At least one field must be provided for update"}}
	}
	return nil
}

type CommentController struct {
	DB       *gorm.DB
	Logger   *logrus.Entry
	Notifier *notifier.Notifier
}

func NewCommentController(db *gorm.DB, logger *logrus.Entry, n *notifier.Notifier) *CommentController {
	return &CommentController{
		DB:       db,
		Logger:   logger,
		Notifier: n,
	}
}

// CreateComment only accepts comments from members of the team that owns the
// task's project.
func (cc *CommentController) CreateComment(c *fiber.Ctx) error {
	req := middleware.Body[CreateCommentRequest](c)
	db := dbFor(cc.DB, c)

	task, err := findByID[models.Task](db, req.TaskID, "Task not found")
	if err != nil {
		return err
	}

	allowed, err := cc.isTaskTeamMember(db, task, req.UserID)
	if err != nil {
		return err
	}
	if !allowed {
		return utils.NewForbidden("Access denied to this task")
	}

	comment := models.Comment{
		TaskID:  req.TaskID,
		UserID:  req.UserID,
		Content: req.Content,
	}
	if err := db.Create(&comment).Error; err != nil {
		return err
	}

	cc.Notifier.Notify(c.UserContext(), notifier.CommentCreated{TaskID: task.ID, ActorID: comment.UserID})

	created, err := findByID[models.Comment](db, comment.ID, "Comment not found", "User", "Task")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "Comment added successfully", created)
}

func (cc *CommentController) isTaskTeamMember(db *gorm.DB, task *models.Task, userID string) (bool, error) {
	teamID := db.Session(&gorm.Session{NewDB: true}).Model(&models.Project{}).Select("team_id").Where("id = ?", task.ProjectID)
	return exists[models.TeamMember](db, "user_id = ? AND team_id IN (?)", userID, teamID)
}

func (cc *CommentController) GetComments(c *fiber.Ctx) error {
	p, err := utils.ParsePagination(c)
	if err != nil {
		return err
	}
	filter := chain(
		search(c, "content"),
		eq(c, map[string]string{"task_id": "task_id", "user_id": "user_id"}),
	)

	comments, total, err := paginate[models.Comment](dbFor(cc.DB, c), p, listOrder, filter, "User", "Task")
	if err != nil {
		return err
	}
	return utils.PaginatedResponse(c, "Comments retrieved successfully", comments, total, p)
}

func (cc *CommentController) GetComment(c *fiber.Ctx) error {
	comment, err := findByID[models.Comment](dbFor(cc.DB, c), c.Params("id"), "Comment not found", "User", "Task")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Comment retrieved successfully", comment)
}

func (cc *CommentController) UpdateComment(c *fiber.Ctx) error {
	req := middleware.Body[UpdateCommentRequest](c)
	db := dbFor(cc.DB, c)

	comment, err := findByID[models.Comment](db, c.Params("id"), "Comment not found")
	if err != nil {
		return err
	}

	if req.TaskID != nil {
		if _, err := findByID[models.Task](db, *req.TaskID, "Task not found"); err != nil {
			return err
		}
	}
	if req.UserID != nil {
		if _, err := findByID[models.User](db, *req.UserID, "User not found"); err != nil {
			return err
		}
	}

	updates := map[string]interface{}{}
	setIfPresent(updates, "task_id", req.TaskID)
	setIfPresent(updates, "user_id", req.UserID)
	setIfPresent(updates, "content", req.Content)
	if err := db.Model(comment).Updates(updates).Error; err != nil {
		return err
	}

	updated, err := findByID[models.Comment](db, comment.ID, "Comment not found", "User", "Task")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Comment updated successfully", updated)
}

func (cc *CommentController) DeleteComment(c *fiber.Ctx) error {
	caller := identity(c)
	db := dbFor(cc.DB, c)

	comment, err := findByID[models.Comment](db, c.Params("id"), "Comment not found")
	if err != nil {
		return err
	}

	var task models.Task
	hasTask := db.Select("id", "assign_to").First(&task, "id = ?", comment.TaskID).Error == nil

	res := db.Delete(&models.Comment{}, "id = ?", comment.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NewNotFound("Comment not found")
	}

	if hasTask {
		cc.Notifier.Notify(c.UserContext(), notifier.CommentDeleted{
			TaskID:     task.ID,
			AssigneeID: task.AssignTo,
			ActorID:    caller.ID,
		})
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Comment deleted successfully", nil)
}
