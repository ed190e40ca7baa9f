package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/middleware"
	"projecthub/models"
	"projecthub/utils"
)

type CreateActivityRequest struct {
	UserID     string `json:"user_id" validate:"required,uuid"`
	Action     string `json:"action" validate:"required,min=1,max=225"`
	EntityType string `json:"entity_type" validate:"required,oneof=task project team comment user"`
	EntityID   string `json:"entity_id" validate:"required,uuid"`
}

func (r *CreateActivityRequest) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Action = strings.TrimSpace(r.Action)
	r.EntityType = strings.TrimSpace(r.EntityType)
	r.EntityID = strings.TrimSpace(r.EntityID)
}

func (r *CreateActivityRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"user_id.required":     "User ID is required",
		"user_id.uuid":         "User ID must be a valid UUID",
		"action.required":      "Action is required",
		"action.min":           "Action must be between 1 and 225 characters",
		"action.max":           "Action must be between 1 and 225 characters",
		"entity_type.required": "Entity type is required",
		"entity_type.oneof":    "Entity type must be one of: task, project, team, comment, user",
		"entity_id.required":   "Entity ID is required",
		"entity_id.uuid":       "Entity ID must be a valid UUID",
	}
}

// ActivityController serves the audit log. Entries are never edited.
type ActivityController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewActivityController(db *gorm.DB, logger *logrus.Entry) *ActivityController {
	return &ActivityController{
		DB:     db,
		Logger: logger,
	}
}

func (ac *ActivityController) CreateActivity(c *fiber.Ctx) error {
	req := middleware.Body[CreateActivityRequest](c)
	db := dbFor(ac.DB, c)

	if _, err := findByID[models.User](db, req.UserID, "User not found"); err != nil {
		return err
	}

	activity := models.ActivityLog{
		UserID:     req.UserID,
		Action:     req.Action,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
	}
	if err := db.Create(&activity).Error; err != nil {
		return err
	}

	created, err := findByID[models.ActivityLog](db, activity.ID, "Activity not found", "User")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "Activity created successfully", created)
}

// GetActivities supports user_id and entity_type filters plus a from/to
// window on created_at.
func (ac *ActivityController) GetActivities(c *fiber.Ctx) error {
	p, err := utils.ParsePagination(c)
	if err != nil {
		return err
	}

	window, err := dateWindow(c, "created_at")
	if err != nil {
		return err
	}
	filter := chain(
		search(c, "action"),
		eq(c, map[string]string{"user_id": "user_id", "entity_type": "entity_type", "entity_id": "entity_id"}),
		window,
	)

	activities, total, err := paginate[models.ActivityLog](dbFor(ac.DB, c), p, listOrder, filter, "User")
	if err != nil {
		return err
	}
	return utils.PaginatedResponse(c, "Activities retrieved successfully", activities, total, p)
}

func dateWindow(c *fiber.Ctx, column string) (func(*gorm.DB) *gorm.DB, error) {
	var conds []string
	var args []interface{}
	for _, bound := range []struct{ param, op string }{{"from", ">="}, {"to", "<="}} {
		raw := strings.TrimSpace(c.Query(bound.param))
		if raw == "" {
			continue
		}
		t, err := utils.ParseISO8601(raw)
		if err != nil {
			return nil, utils.NewFieldError(bound.param, bound.param+" must be a valid date")
		}
		conds = append(conds, column+" "+bound.op+" ?")
		args = append(args, t)
	}
	return func(db *gorm.DB) *gorm.DB {
		if len(conds) == 0 {
			return db
		}
		return db.Where(strings.Join(conds, " AND "), args...)
	}, nil
}

func (ac *ActivityController) GetActivity(c *fiber.Ctx) error {
	activity, err := findByID[models.ActivityLog](dbFor(ac.DB, c), c.Params("id"), "Activity not found", "User")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Activity retrieved successfully", activity)
}

func (ac *ActivityController) DeleteActivity(c *fiber.Ctx) error {
	res := dbFor(ac.DB, c).Delete(&models.ActivityLog{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NewNotFound("Activity not found")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Activity deleted successfully", nil)
}
