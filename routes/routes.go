package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/config"
	controller "projecthub/controllers"
	"projecthub/middleware"
	"projecthub/models"
	"projecthub/notifier"
	"projecthub/utils"
)

// NewApp builds the Fiber application with the global middleware stack, every
// route and the catch-all 404. storage backs the rate limiters; nil keeps
// their counters in memory.
func NewApp(cfg *config.Config, db *gorm.DB, storage fiber.Storage) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "projecthub",
		ErrorHandler: middleware.ErrorHandler(cfg.IsProduction()),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: !cfg.IsProduction()}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(helmet.New())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.CORSOrigins
	app.Use(middleware.CORS(corsConfig))

	app.Use(middleware.GlobalRateLimiter(cfg.RateLimit, storage))

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SuccessResponse(c, fiber.StatusOK, "Server is running", fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	SetupRoutes(app, cfg, db, storage)

	app.Use(middleware.NotFound())
	return app
}

// SetupRoutes registers the auth routes and the protected API.
func SetupRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB, storage fiber.Storage) {
	SetupAuthRoutes(app, cfg, db, storage)
	SetupAPIRoutes(app, cfg, db)
}

func SetupAuthRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB, storage fiber.Storage) {
	authController := controller.NewAuthController(db, componentLogger("auth"), cfg)

	auth := app.Group("/auth")
	auth.Post("/register",
		middleware.RegisterRateLimiter(cfg.RateLimit, storage),
		middleware.Validate[controller.RegisterRequest](),
		authController.Register,
	)
	auth.Post("/login",
		middleware.LoginRateLimiter(cfg.RateLimit, storage),
		middleware.Validate[controller.LoginRequest](),
		authController.Login,
	)
	auth.Post("/logout", authController.Logout)

	componentLogger("routes").Info("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	notify := notifier.New(db, componentLogger("notifier"))

	userController := controller.NewUserController(db, componentLogger("user"), cfg.BcryptCost)
	teamController := controller.NewTeamController(db, componentLogger("team"), notify)
	memberController := controller.NewMemberController(db, componentLogger("member"), notify)
	projectController := controller.NewProjectController(db, componentLogger("project"), notify)
	taskController := controller.NewTaskController(db, componentLogger("task"), notify)
	commentController := controller.NewCommentController(db, componentLogger("comment"), notify)
	activityController := controller.NewActivityController(db, componentLogger("activity"))
	notificationController := controller.NewNotificationController(db, componentLogger("notification"))
	dashboardController := controller.NewDashboardController(db, componentLogger("dashboard"))

	protected := middleware.Protected(cfg.JWTSecret)
	admins := requireRoles(cfg, models.RoleAdmin)
	managers := requireRoles(cfg, models.RoleAdmin, models.RoleManager)

	users := app.Group("/users", protected)
	users.Get("/all", userController.GetUsers)
	users.Get("/:id", userController.GetUser)
	users.Post("/create", admins, middleware.Validate[controller.CreateUserRequest](), userController.CreateUser)
	users.Put("/update/:id", admins, middleware.Validate[controller.UpdateUserRequest](), userController.UpdateUser)
	users.Delete("/delete/:id", admins, userController.DeleteUser)

	teams := app.Group("/teams", protected)
	teams.Get("/all", teamController.GetTeams)
	teams.Get("/:id", teamController.GetTeam)
	teams.Post("/create", managers, middleware.Validate[controller.CreateTeamRequest](), teamController.CreateTeam)
	teams.Put("/update/:id", managers, middleware.Validate[controller.UpdateTeamRequest](), teamController.UpdateTeam)
	teams.Delete("/delete/:id", managers, teamController.DeleteTeam)

	members := app.Group("/members", protected)
	members.Get("/all", memberController.GetMembers)
	members.Get("/:id", memberController.GetMember)
	members.Post("/create", managers, middleware.Validate[controller.CreateMemberRequest](), memberController.AddMember)
	members.Put("/update/:id", managers, middleware.Validate[controller.UpdateMemberRequest](), memberController.UpdateMember)
	members.Delete("/delete/:id", managers, memberController.RemoveMember)

	projects := app.Group("/projects", protected)
	projects.Get("/all", projectController.GetProjects)
	projects.Get("/:id", projectController.GetProject)
	projects.Post("/create", managers, middleware.Validate[controller.CreateProjectRequest](), projectController.CreateProject)
	projects.Put("/update/:id", managers, middleware.Validate[controller.UpdateProjectRequest](), projectController.UpdateProject)
	projects.Delete("/delete/:id", managers, projectController.DeleteProject)

	tasks := app.Group("/tasks", protected)
	tasks.Get("/all", taskController.GetTasks)
	tasks.Get("/:id", taskController.GetTask)
	tasks.Post("/create", middleware.Validate[controller.CreateTaskRequest](), taskController.CreateTask)
	tasks.Put("/update/:id", middleware.Validate[controller.UpdateTaskRequest](), taskController.UpdateTask)
	tasks.Delete("/delete/:id", taskController.DeleteTask)

	comments := app.Group("/comments", protected)
	comments.Get("/all", commentController.GetComments)
	comments.Get("/:id", commentController.GetComment)
	comments.Post("/create", middleware.Validate[controller.CreateCommentRequest](), commentController.CreateComment)
	comments.Put("/update/:id", middleware.Validate[controller.UpdateCommentRequest](), commentController.UpdateComment)
	comments.Delete("/delete/:id", commentController.DeleteComment)

	activities := app.Group("/activities", protected)
	activities.Get("/all", activityController.GetActivities)
	activities.Get("/:id", activityController.GetActivity)
	activities.Post("/create", middleware.Validate[controller.CreateActivityRequest](), activityController.CreateActivity)
	activities.Delete("/delete/:id", activityController.DeleteActivity)

	notifications := app.Group("/notifications", protected)
	notifications.Get("/all", notificationController.GetNotifications)
	notifications.Get("/:id", notificationController.GetNotification)
	notifications.Post("/create", middleware.Validate[controller.CreateNotificationRequest](), notificationController.CreateNotification)
	notifications.Patch("/:id/read", notificationController.MarkAsRead)
	notifications.Delete("/delete/:id", notificationController.DeleteNotification)

	dashboard := app.Group("/dashboard", protected)
	dashboard.Get("/tasks/status", dashboardController.GetTaskStatusStats)
	dashboard.Get("/tasks/priority", dashboardController.GetTaskPriorityStats)
	dashboard.Get("/tasks/workload", dashboardController.GetTaskWorkloadStats)
	dashboard.Get("/projects/progress", dashboardController.GetProjectProgressStats)
	dashboard.Get("/activities/counts", dashboardController.GetActivityCounts)
	dashboard.Get("/teams/teams", dashboardController.GetTasksByTeam)
	dashboard.Get("/users/roles", dashboardController.GetUserRoleStats)

	componentLogger("routes").Info("API routes initialized successfully")
}

// requireRoles gates a route by role unless role enforcement is switched off.
func requireRoles(cfg *config.Config, roles ...string) fiber.Handler {
	if !cfg.EnforceRoles {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return middleware.RequireRoles(roles...)
}

func componentLogger(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}
