package controller

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/middleware"
	"projecthub/models"
	"projecthub/utils"
)

type CreateNotificationRequest struct {
	UserID  string `json:"user_id" validate:"required,uuid"`
	Message string `json:"message" validate:"required,min=1,max=1000"`
	IsRead  *bool  `json:"is_read"`
}

func (r *CreateNotificationRequest) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
}

func (r *CreateNotificationRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"user_id.required": "User ID is required",
		"user_id.uuid":     "User ID must be a valid UUID",
		"message.required": "Message is required",
		"message.min":      "Message must be between 1 and 1000 characters",
		"message.max":      "Message must be between 1 and 1000 characters",
	}
}

type NotificationController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewNotificationController(db *gorm.DB, logger *logrus.Entry) *NotificationController {
	return &NotificationController{
		DB:     db,
		Logger: logger,
	}
}

func (nc *NotificationController) CreateNotification(c *fiber.Ctx) error {
	req := middleware.Body[CreateNotificationRequest](c)
	db := dbFor(nc.DB, c)

	if _, err := findByID[models.User](db, req.UserID, "User not found"); err != nil {
		return err
	}

	notification := models.Notification{
		UserID:  req.UserID,
		Message: req.Message,
	}
	if req.IsRead != nil {
		notification.IsRead = *req.IsRead
	}
	if err := db.Create(&notification).Error; err != nil {
		return err
	}

	created, err := findByID[models.Notification](db, notification.ID, "Notification not found", "User")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "Notification created successfully", created)
}

func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	p, err := utils.ParsePagination(c)
	if err != nil {
		return err
	}

	filters := []func(*gorm.DB) *gorm.DB{
		search(c, "message"),
		eq(c, map[string]string{"user_id": "user_id"}),
	}
	if raw := strings.TrimSpace(c.Query("is_read")); raw != "" {
		isRead, err := strconv.ParseBool(raw)
		if err != nil {
			return utils.NewFieldError("is_read", "is_read must be a boolean value")
		}
		filters = append(filters, func(db *gorm.DB) *gorm.DB {
			return db.Where("is_read = ?", isRead)
		})
	}

	notifications, total, err := paginate[models.Notification](dbFor(nc.DB, c), p, listOrder, chain(filters...), "User")
	if err != nil {
		return err
	}
	return utils.PaginatedResponse(c, "Notifications retrieved successfully", notifications, total, p)
}

func (nc *NotificationController) GetNotification(c *fiber.Ctx) error {
	notification, err := findByID[models.Notification](dbFor(nc.DB, c), c.Params("id"), "Notification not found", "User")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Notification retrieved successfully", notification)
}

// MarkAsRead is the only mutation a notification supports.
func (nc *NotificationController) MarkAsRead(c *fiber.Ctx) error {
	db := dbFor(nc.DB, c)

	notification, err := findByID[models.Notification](db, c.Params("id"), "Notification not found")
	if err != nil {
		return err
	}

	if err := db.Model(notification).Update("is_read", true).Error; err != nil {
		return err
	}

	updated, err := findByID[models.Notification](db, notification.ID, "Notification not found", "User")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Notification marked as read", updated)
}

func (nc *NotificationController) DeleteNotification(c *fiber.Ctx) error {
	res := dbFor(nc.DB, c).Delete(&models.Notification{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NewNotFound("Notification not found")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Notification deleted successfully", nil)
}
