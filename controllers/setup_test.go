package controller_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"projecthub/config"
	"projecthub/models"
	"projecthub/routes"
	"projecthub/utils"
)

const testSecret = "test-secret"

type testEnv struct {
	t   *testing.T
	cfg *config.Config
	db  *gorm.DB
	app *fiber.App
}

func newTestConfig() *config.Config {
	return &config.Config{
		Environment:  "test",
		JWTSecret:    testSecret,
		JWTExpiresIn: time.Hour,
		BcryptCost:   bcrypt.MinCost,
		EnforceRoles: true,
		DBDriver:     "sqlite",
		DBName:       ":memory:",
	}
}

func newTestDB(t *testing.T, cfg *config.Config) *gorm.DB {
	t.Helper()

	gormCfg := config.GormConfig(cfg)
	gormCfg.Logger = logger.Default.LogMode(logger.Silent)

	db, err := gorm.Open(sqlite.Open(":memory:"), gormCfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.Migrate(db))
	return db
}

func setup(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := newTestConfig()
	for _, m := range mutate {
		m(cfg)
	}
	db := newTestDB(t, cfg)

	return &testEnv{
		t:   t,
		cfg: cfg,
		db:  db,
		app: routes.NewApp(cfg, db, nil),
	}
}

func (e *testEnv) createUser(name, email, role string) models.User {
	e.t.Helper()

	hash, err := utils.HashPassword("Secret123!", bcrypt.MinCost)
	require.NoError(e.t, err)

	user := models.User{Name: name, Email: email, Password: hash, Role: role}
	require.NoError(e.t, e.db.Create(&user).Error)
	return user
}

func (e *testEnv) token(user models.User) string {
	e.t.Helper()

	token, _, err := utils.GenerateJWTToken(testSecret, user.ID, user.Role, time.Hour)
	require.NoError(e.t, err)
	return token
}

func (e *testEnv) createTeam(name, creatorID string) models.Team {
	e.t.Helper()

	team := models.Team{Name: name, CreatedByID: creatorID}
	require.NoError(e.t, e.db.Create(&team).Error)
	return team
}

func (e *testEnv) addMember(teamID, userID string) models.TeamMember {
	e.t.Helper()

	member := models.TeamMember{TeamID: teamID, UserID: userID, Role: models.MemberRoleMember}
	require.NoError(e.t, e.db.Create(&member).Error)
	return member
}

func (e *testEnv) createProject(teamID, name string) models.Project {
	e.t.Helper()

	project := models.Project{
		TeamID:   teamID,
		Name:     name,
		Status:   models.ProjectPlanning,
		Deadline: time.Now().Add(30 * 24 * time.Hour),
	}
	require.NoError(e.t, e.db.Create(&project).Error)
	return project
}

func (e *testEnv) createTask(projectID, assignTo, title, status string) models.Task {
	e.t.Helper()

	task := models.Task{
		ProjectID: projectID,
		AssignTo:  assignTo,
		Title:     title,
		Priority:  models.PriorityMedium,
		Status:    status,
		DueDate:   time.Now().Add(7 * 24 * time.Hour),
	}
	require.NoError(e.t, e.db.Create(&task).Error)
	return task
}

func (e *testEnv) count(model interface{}, query string, args ...interface{}) int64 {
	e.t.Helper()

	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(e.t, q.Count(&n).Error)
	return n
}

// do sends a request through the app. body may be nil, a string (sent raw) or
// any value marshalled as JSON.
func (e *testEnv) do(method, path string, body interface{}, token string) (*http.Response, map[string]interface{}) {
	e.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	_ = resp.Body.Close()

	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(e.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func dataOf(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "data is not an object: %v", body["data"])
	return data
}

func listOf(t *testing.T, body map[string]interface{}) []interface{} {
	t.Helper()
	data, ok := body["data"].([]interface{})
	require.True(t, ok, "data is not an array: %v", body["data"])
	return data
}

func errorFields(body map[string]interface{}) []string {
	var fields []string
	errs, _ := body["errors"].([]interface{})
	for _, e := range errs {
		if m, ok := e.(map[string]interface{}); ok {
			fields = append(fields, m["field"].(string))
		}
	}
	return fields
}
