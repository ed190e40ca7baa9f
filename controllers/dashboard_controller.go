package controller

import (
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/models"
	"projecthub/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
	// Now is the clock used for activity windows.
	Now func() time.Time
}

func NewDashboardController(db *gorm.DB, logger *logrus.Entry) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
		Now:    time.Now,
	}
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int64  `json:"count"`
}

type UserWorkload struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Workload int64  `json:"workload"`
}

type ProjectProgress struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	TotalTasks  int64  `json:"total_tasks"`
	DoneTasks   int64  `json:"done_tasks"`
	Progress    int    `json:"progress"`
}

type TeamTaskCount struct {
	TeamID    string `json:"team_id"`
	TeamName  string `json:"team_name"`
	TaskCount int64  `json:"task_count"`
}

// GetTaskStatusStats counts tasks per status.
func (dc *DashboardController) GetTaskStatusStats(c *fiber.Ctx) error {
	stats := []StatusCount{}
	if err := dbFor(dc.DB, c).Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&stats).Error; err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Task status statistics retrieved successfully", stats)
}

// GetTaskPriorityStats counts tasks per priority.
func (dc *DashboardController) GetTaskPriorityStats(c *fiber.Ctx) error {
	stats := []PriorityCount{}
	if err := dbFor(dc.DB, c).Model(&models.Task{}).
		Select("priority, COUNT(*) AS count").
		Group("priority").
		Order("priority").
		Scan(&stats).Error; err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Task priority statistics retrieved successfully", stats)
}

// GetTaskWorkloadStats counts open tasks per user, including users with none.
func (dc *DashboardController) GetTaskWorkloadStats(c *fiber.Ctx) error {
	stats := []UserWorkload{}
	if err := dbFor(dc.DB, c).Model(&models.User{}).
		Select("users.id AS user_id, users.name AS name, COUNT(tasks.id) AS workload").
		Joins("LEFT JOIN tasks ON tasks.assign_to = users.id AND tasks.status IN ?", []string{models.TaskTodo, models.TaskInProgress}).
		Group("users.id, users.name").
		Order("users.name").
		Scan(&stats).Error; err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Task workload statistics retrieved successfully", stats)
}

// GetProjectProgressStats reports done/total tasks per project as a rounded
// percentage. Projects without tasks are at 0.
func (dc *DashboardController) GetProjectProgressStats(c *fiber.Ctx) error {
	db := dbFor(dc.DB, c)

	var projects []models.Project
	if err := db.Select("id", "name").Order("name").Find(&projects).Error; err != nil {
		return err
	}

	var counts []struct {
		ProjectID string
		Total     int64
		Done      int64
	}
	if err := db.Model(&models.Task{}).
		Select("project_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS done", models.TaskDone).
		Group("project_id").
		Scan(&counts).Error; err != nil {
		return err
	}

	byProject := make(map[string]int, len(counts))
	for i, row := range counts {
		byProject[row.ProjectID] = i
	}

	stats := make([]ProjectProgress, 0, len(projects))
	for _, project := range projects {
		entry := ProjectProgress{ProjectID: project.ID, ProjectName: project.Name}
		if i, ok := byProject[project.ID]; ok {
			entry.TotalTasks = counts[i].Total
			entry.DoneTasks = counts[i].Done
		}
		entry.Progress = progressPercent(entry.DoneTasks, entry.TotalTasks)
		stats = append(stats, entry)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Project progress statistics retrieved successfully", stats)
}

func progressPercent(done, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// GetTasksByTeam counts tasks across every project of each team.
func (dc *DashboardController) GetTasksByTeam(c *fiber.Ctx) error {
	stats := []TeamTaskCount{}
	if err := dbFor(dc.DB, c).Model(&models.Team{}).
		Select("teams.id AS team_id, teams.name AS team_name, COUNT(tasks.id) AS task_count").
		Joins("LEFT JOIN projects ON projects.team_id = teams.id").
		Joins("LEFT JOIN tasks ON tasks.project_id = projects.id").
		Group("teams.id, teams.name").
		Order("teams.name").
		Scan(&stats).Error; err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Team task statistics retrieved successfully", stats)
}

// GetUserRoleStats counts users per role. Every role is present, even at 0.
func (dc *DashboardController) GetUserRoleStats(c *fiber.Ctx) error {
	var rows []struct {
		Role  string
		Count int64
	}
	if err := dbFor(dc.DB, c).Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error; err != nil {
		return err
	}

	stats := map[string]int64{
		models.RoleAdmin:   0,
		models.RoleManager: 0,
		models.RoleMember:  0,
	}
	for _, row := range rows {
		stats[row.Role] = row.Count
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "User role statistics retrieved successfully", stats)
}

// activityBucket keeps per-action counts apart from the period label, since
// actions are free text.
type activityBucket struct {
	Period  string         `json:"period"`
	Total   int            `json:"total"`
	Actions map[string]int `json:"actions"`
}

// GetActivityCounts buckets activity logs by day (day, week, month) or by
// calendar month (year) and counts them per action. Every bucket of the
// window is present, empty ones with total 0.
func (dc *DashboardController) GetActivityCounts(c *fiber.Ctx) error {
	rangeName := c.Query("range", "week")

	now := dc.Now()
	start, periods, layout, ok := activityWindow(rangeName, now)
	if !ok {
		return utils.NewFieldError("range", "range must be one of: day, week, month, year")
	}

	var activities []models.ActivityLog
	if err := dbFor(dc.DB, c).
		Select("action", "created_at").
		Where("created_at >= ?", start).
		Find(&activities).Error; err != nil {
		return err
	}

	buckets := make(map[string]*activityBucket, len(periods))
	data := make([]*activityBucket, 0, len(periods))
	for _, period := range periods {
		bucket := &activityBucket{Period: period, Actions: map[string]int{}}
		buckets[period] = bucket
		data = append(data, bucket)
	}

	for _, activity := range activities {
		bucket, ok := buckets[activity.CreatedAt.In(now.Location()).Format(layout)]
		if !ok {
			continue
		}
		bucket.Actions[activity.Action]++
		bucket.Total++
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Activity counts retrieved successfully", data)
}

// activityWindow returns the first instant of the window, the bucket labels in
// order and the layout that maps a timestamp to its label.
func activityWindow(rangeName string, now time.Time) (time.Time, []string, string, bool) {
	const dayLayout, monthLayout = "2006-01-02", "2006-01"
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	days := 0
	switch rangeName {
	case "day":
		days = 1
	case "week":
		days = 7
	case "month":
		days = 30
	case "year":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)
		periods := make([]string, 12)
		for i := range periods {
			periods[i] = first.AddDate(0, i, 0).Format(monthLayout)
		}
		return first, periods, monthLayout, true
	default:
		return time.Time{}, nil, "", false
	}

	start := today.AddDate(0, 0, -(days - 1))
	periods := make([]string, days)
	for i := range periods {
		periods[i] = start.AddDate(0, 0, i).Format(dayLayout)
	}
	return start, periods, dayLayout, true
}
