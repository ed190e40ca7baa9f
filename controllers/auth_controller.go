package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/config"
	"projecthub/middleware"
	"projecthub/models"
	"projecthub/utils"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=25"`
	Email    string `json:"email" validate:"required,mailbox"`
	Password string `json:"password" validate:"required,min=6,has_lower,has_upper,has_digit,has_special"`
	Role     string `json:"role" validate:"required,oneof=admin manager member"`
}

func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Role = strings.TrimSpace(r.Role)
}

func (r *RegisterRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"name.required":        "Name is required",
		"name.max":             "Name must be at most 25 characters long",
		"email.required":       "Email is required",
		"email.mailbox":        "Invalid email format",
		"password.required":    "Password is required",
		"password.min":         "Password must be at least 6 characters long",
		"password.has_lower":   "Password must contain at least one lowercase letter",
		"password.has_upper":   "Password must contain at least one uppercase letter",
		"password.has_digit":   "Password must contain at least one number",
		"password.has_special": "Password must contain at least one special character",
		"role.required":        "Role is required",
		"role.oneof":           "Role must be either admin, manager, or member",
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,mailbox"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

func (r *LoginRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"email.required":    "Email is required",
		"email.mailbox":     "Invalid email format",
		"password.required": "Password is required",
		"password.min":      "Password must be at least 6 characters long",
	}
}

type LoginResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expiresAt"`
}

type AuthController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
	Config *config.Config
}

func NewAuthController(db *gorm.DB, logger *logrus.Entry, cfg *config.Config) *AuthController {
	return &AuthController{
		DB:     db,
		Logger: logger,
		Config: cfg,
	}
}

// Register creates a user account. The password is stored as a bcrypt hash.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	req := middleware.Body[RegisterRequest](c)
	db := dbFor(ac.DB, c)

	taken, err := exists[models.User](db, "email = ?", req.Email)
	if err != nil {
		return err
	}
	if taken {
		return utils.NewConflict("User with this email already exists")
	}

	hash, err := utils.HashPassword(req.Password, ac.Config.BcryptCost)
	if err != nil {
		return err
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     req.Role,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.NewConflict("User with this email already exists")
		}
		return err
	}

	utils.LogEvent("auth", "user_registered", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	return utils.SuccessResponse(c, fiber.StatusCreated, "User registered successfully", user)
}

// Login checks the credentials and issues a token, both in the body and as an
// http-only cookie.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	req := middleware.Body[LoginRequest](c)

	var user models.User
	if err := dbFor(ac.DB, c).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewUnauthorized("Invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		return utils.NewUnauthorized("Invalid credentials")
	}

	if ac.Config.JWTSecret == "" {
		ac.Logger.Error("JWT_SECRET is not defined")
		return utils.NewError(fiber.StatusInternalServerError, "Server configuration error")
	}

	token, expiresAt, err := utils.GenerateJWTToken(ac.Config.JWTSecret, user.ID, user.Role, ac.Config.JWTExpiresIn)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   ac.Config.IsProduction(),
		SameSite: fiber.CookieSameSiteStrictMode,
	})

	ac.Logger.WithField("user_id", user.ID).Info("User logged in successfully")

	return utils.SuccessResponse(c, fiber.StatusOK, "Login successful", LoginResponse{
		User:      &user,
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	})
}

// Logout clears the token cookie. Tokens are stateless, so a bearer token
// stays valid until it expires.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   ac.Config.IsProduction(),
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return utils.SuccessResponse(c, fiber.StatusOK, "Logout successful", nil)
}
