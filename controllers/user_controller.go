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

var passwordMessages = map[string]string{
	"password.required":    "Password is required",
	"password.min":         "Password must be at least 8 characters long",
	"password.has_upper":   "Password must contain at least one uppercase letter",
	"password.has_lower":   "Password must contain at least one lowercase letter",
	"password.has_digit":   "Password must contain at least one number",
	"password.has_special": "Password must contain at least one special character",
}

type CreateUserRequest struct {
	Name      string  `json:"name" validate:"required,max=25"`
	Email     string  `json:"email" validate:"required,mailbox"`
	Password  string  `json:"password" validate:"required,min=8,has_upper,has_lower,has_digit,has_special"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin manager member"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

func (r *CreateUserRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	trim(r.AvatarURL)
}

func (r *CreateUserRequest) ValidationMessages() map[string]string {
	m := map[string]string{
		"name.required":  "Name is required",
		"name.max":       "Name must not exceed 25 characters",
		"email.required": "Email is required",
		"email.mailbox":  "Email is invalid",
		"role.oneof":     "Invalid role value. Allowed roles: admin, manager, member.",
	}
	for k, v := range passwordMessages {
		m[k] = v
	}
	return m
}

type UpdateUserRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=25"`
	Email     *string `json:"email" validate:"omitempty,min=1,mailbox"`
	Password  *string `json:"password" validate:"omitempty,min=8,has_upper,has_lower,has_digit,has_special"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin manager member"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

func (r *UpdateUserRequest) Normalize() {
	trim(r.Name)
	trim(r.Email)
	trim(r.AvatarURL)
}

func (r *UpdateUserRequest) ValidationMessages() map[string]string {
	m := map[string]string{
		"name.min":      "Name cannot be empty",
		"name.max":      "Name must not exceed 25 characters",
		"email.min":     "Email cannot be empty",
		"email.mailbox": "Email is invalid",
		"role.oneof":    "Invalid role value. Allowed roles: admin, manager, member.",
	}
	for k, v := range passwordMessages {
		m[k] = v
	}
	return m
}

type UserController struct {
	DB         *gorm.DB
	Logger     *logrus.Entry
	BcryptCost int
}

func NewUserController(db *gorm.DB, logger *logrus.Entry, bcryptCost int) *UserController {
	return &UserController{
		DB:         db,
		Logger:     logger,
		BcryptCost: bcryptCost,
	}
}

func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	req := middleware.Body[CreateUserRequest](c)
	db := dbFor(uc.DB, c)

	taken, err := exists[models.User](db, "email = ?", req.Email)
	if err != nil {
		return err
	}
	if taken {
		return utils.NewConflict("User with this email already exists")
	}

	hash, err := utils.HashPassword(req.Password, uc.BcryptCost)
	if err != nil {
		return err
	}

	user := models.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  hash,
		Role:      models.RoleMember,
		AvatarURL: req.AvatarURL,
	}
	if req.Role != nil {
		user.Role = *req.Role
	}

	if err := db.Create(&user).Error; err != nil {
		return err
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, "User created successfully", user)
}

// GetUsers lists users, optionally filtered by role and a name/email search.
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	p, err := utils.ParsePagination(c)
	if err != nil {
		return err
	}
	filter := chain(
		search(c, "name", "email"),
		eq(c, map[string]string{"role": "role"}),
	)

	users, total, err := paginate[models.User](dbFor(uc.DB, c), p, listOrder, filter)
	if err != nil {
		return err
	}
	return utils.PaginatedResponse(c, "Users retrieved successfully", users, total, p)
}

func (uc *UserController) GetUser(c *fiber.Ctx) error {
	user, err := findByID[models.User](dbFor(uc.DB, c), c.Params("id"), "User not found")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "User retrieved successfully", user)
}

func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	req := middleware.Body[UpdateUserRequest](c)
	db := dbFor(uc.DB, c)

	user, err := findByID[models.User](db, c.Params("id"), "User not found")
	if err != nil {
		return err
	}

	if req.Email != nil && *req.Email != user.Email {
		taken, err := exists[models.User](db, "email = ? AND id <> ?", *req.Email, user.ID)
		if err != nil {
			return err
		}
		if taken {
			return utils.NewConflict("User with this email already exists")
		}
	}

	updates := map[string]interface{}{}
	setIfPresent(updates, "name", req.Name)
	setIfPresent(updates, "email", req.Email)
	setIfPresent(updates, "role", req.Role)
	setIfPresent(updates, "avatar_url", req.AvatarURL)
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password, uc.BcryptCost)
		if err != nil {
			return err
		}
		updates["password"] = hash
	}

	if len(updates) > 0 {
		if err := db.Model(user).Updates(updates).Error; err != nil {
			return err
		}
	}

	updated, err := findByID[models.User](db, user.ID, "User not found")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "User updated successfully", updated)
}

// DeleteUser removes a user and the rows that only make sense with it. A user
// still assigned to tasks or owning teams cannot be removed.
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	db := dbFor(uc.DB, c)

	user, err := findByID[models.User](db, c.Params("id"), "User not found")
	if err != nil {
		return err
	}

	assigned, err := exists[models.Task](db, "assign_to = ?", user.ID)
	if err != nil {
		return err
	}
	if assigned {
		return utils.NewConflict("User still has assigned tasks")
	}
	owns, err := exists[models.Team](db, "created_by = ?", user.ID)
	if err != nil {
		return err
	}
	if owns {
		return utils.NewConflict("User is still the creator of a team")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.TeamMember{}, &models.Notification{}, &models.ActivityLog{}, &models.Comment{}} {
			if err := tx.Where("user_id = ?", user.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.User{}, "id = ?", user.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewNotFound("User not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.Logger.WithField("user_id", user.ID).Info("User deleted")
	return utils.SuccessResponse(c, fiber.StatusOK, "User deleted successfully", nil)
}
