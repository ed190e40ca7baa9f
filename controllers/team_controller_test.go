package controller_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/config"
	"projecthub/models"
	"projecthub/utils"
)

func TestTeamLifecycle(t *testing.T) {
	env := setup(t)

	resp, body := env.do(http.MethodPost, "/auth/register", map[string]interface{}{
		"name":     "A",
		"email":    "a@x.com",
		"password": "Abc12345!",
		"role":     "admin",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	admin := dataOf(t, body)

	resp, body = env.do(http.MethodPost, "/auth/login", map[string]interface{}{
		"email":    "a@x.com",
		"password": "Abc12345!",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := dataOf(t, body)["token"].(string)

	resp, body = env.do(http.MethodPost, "/teams/create", map[string]interface{}{"name": "T1"}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	team := dataOf(t, body)
	assert.Equal(t, admin["id"], team["createdBy"].(map[string]interface{})["id"])

	resp, body = env.do(http.MethodPost, "/teams/create", map[string]interface{}{"name": "T1"}, token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Team name already taken.", body["message"])

	resp, body = env.do(http.MethodPost, "/projects/create", map[string]interface{}{
		"team_id":  team["id"],
		"name":     "P1",
		"status":   "planning",
		"deadline": time.Now().Add(30 * 24 * time.Hour).Format(time.RFC3339),
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	project := dataOf(t, body)

	resp, body = env.do(http.MethodPost, "/tasks/create", map[string]interface{}{
		"project_id": project["id"],
		"assign_to":  admin["id"],
		"title":      "First",
		"priority":   "high",
		"status":     "todo",
		"due_date":   "2030-01-01",
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	task := dataOf(t, body)

	env.addMember(team["id"].(string), admin["id"].(string))
	require.NoError(t, env.db.Create(&models.Comment{TaskID: task["id"].(string), UserID: admin["id"].(string), Content: "hi"}).Error)

	resp, body = env.do(http.MethodDelete, "/teams/delete/"+team["id"].(string), nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Team deleted successfully", body["message"])

	assert.EqualValues(t, 0, env.count(&models.Team{}, ""))
	assert.EqualValues(t, 0, env.count(&models.TeamMember{}, ""))
	assert.EqualValues(t, 0, env.count(&models.Project{}, ""))
	assert.EqualValues(t, 0, env.count(&models.Task{}, ""))
	assert.EqualValues(t, 0, env.count(&models.Comment{}, ""))

	resp, body = env.do(http.MethodDelete, "/teams/delete/"+team["id"].(string), nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Team not found", body["message"])
}

func TestTeamAuthorization(t *testing.T) {
	t.Run("401 without a token and nothing is written", func(t *testing.T) {
		env := setup(t)

		resp, body := env.do(http.MethodPost, "/teams/create", map[string]interface{}{"name": "T1"}, "")

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Access token required", body["message"])
		assert.EqualValues(t, 0, env.count(&models.Team{}, ""))
	})

	t.Run("401 for a token signed with another secret", func(t *testing.T) {
		env := setup(t)
		user := env.createUser("Alice", "alice@x.com", models.RoleAdmin)
		forged, _, err := utils.GenerateJWTToken("other-secret", user.ID, user.Role, time.Hour)
		require.NoError(t, err)

		resp, body := env.do(http.MethodGet, "/teams/all", nil, forged)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid or expired token", body["message"])
	})

	t.Run("403 for a member creating a team", func(t *testing.T) {
		env := setup(t)
		member := env.createUser("Bob", "bob@x.com", models.RoleMember)

		resp, body := env.do(http.MethodPost, "/teams/create", map[string]interface{}{"name": "T1"}, env.token(member))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Access denied: Insufficient permissions", body["message"])
		assert.EqualValues(t, 0, env.count(&models.Team{}, ""))
	})

	t.Run("role gating can be switched off", func(t *testing.T) {
		env := setup(t, func(cfg *config.Config) { cfg.EnforceRoles = false })
		member := env.createUser("Bob", "bob@x.com", models.RoleMember)

		resp, _ := env.do(http.MethodPost, "/teams/create", map[string]interface{}{"name": "T1"}, env.token(member))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})
}

func TestGetTeams(t *testing.T) {
	env := setup(t)
	admin := env.createUser("Admin", "admin@x.com", models.RoleAdmin)
	token := env.token(admin)
	for i := 1; i <= 15; i++ {
		env.createTeam(fmt.Sprintf("Team %02d", i), admin.ID)
	}

	t.Run("paginates with numbered items", func(t *testing.T) {
		resp, body := env.do(http.MethodGet, "/teams/all?page=2&limit=10", nil, token)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 2, body["currentPage"])
		assert.EqualValues(t, 15, body["totalData"])
		assert.EqualValues(t, 2, body["totalPages"])

		items := listOf(t, body)
		require.Len(t, items, 5)
		for i, item := range items {
			assert.EqualValues(t, 11+i, item.(map[string]interface{})["no"])
		}
	})

	t.Run("defaults to the first page of ten", func(t *testing.T) {
		_, body := env.do(http.MethodGet, "/teams/all", nil, token)

		assert.EqualValues(t, 1, body["currentPage"])
		assert.Len(t, listOf(t, body), 10)
	})

	t.Run("a limit larger than every page answers one page", func(t *testing.T) {
		_, body := env.do(http.MethodGet, "/teams/all?limit=100", nil, token)

		assert.EqualValues(t, 1, body["totalPages"])
		assert.Len(t, listOf(t, body), 15)
	})

	t.Run("422 for a limit above the cap", func(t *testing.T) {
		resp, body := env.do(http.MethodGet, "/teams/all?limit=200", nil, token)

		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, []string{"limit"}, errorFields(body))
	})

	t.Run("searches case-insensitively and treats wildcards literally", func(t *testing.T) {
		env.createTeam("50% Done", admin.ID)
		env.createTeam("500 Done", admin.ID)

		_, body := env.do(http.MethodGet, "/teams/all?search=50%25", nil, token)
		items := listOf(t, body)
		require.Len(t, items, 1)
		assert.Equal(t, "50% Done", items[0].(map[string]interface{})["name"])

		_, body = env.do(http.MethodGet, "/teams/all?search=TEAM%200", nil, token)
		assert.EqualValues(t, 9, body["totalData"])
	})

	t.Run("an empty page still answers an array", func(t *testing.T) {
		_, body := env.do(http.MethodGet, "/teams/all?page=9", nil, token)
		assert.Empty(t, listOf(t, body))
	})
}

func TestUpdateTeam(t *testing.T) {
	env := setup(t)
	admin := env.createUser("Admin", "admin@x.com", models.RoleAdmin)
	token := env.token(admin)
	team := env.createTeam("Core", admin.ID)
	env.createTeam("Other", admin.ID)

	t.Run("touches only the fields present", func(t *testing.T) {
		resp, body := env.do(http.MethodPut, "/teams/update/"+team.ID, map[string]interface{}{"description": "backend"}, token)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		data := dataOf(t, body)
		assert.Equal(t, "Core", data["name"])
		assert.Equal(t, "backend", data["description"])

		_, body = env.do(http.MethodGet, "/teams/"+team.ID, nil, token)
		assert.Equal(t, "backend", dataOf(t, body)["description"])
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		resp, body := env.do(http.MethodPut, "/teams/update/"+team.ID, map[string]interface{}{"name": "  "}, token)

		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		errs := body["errors"].([]interface{})
		assert.Equal(t, "Team name cannot be empty", errs[0].(map[string]interface{})["message"])
	})

	t.Run("rejects a name another team uses", func(t *testing.T) {
		resp, body := env.do(http.MethodPut, "/teams/update/"+team.ID, map[string]interface{}{"name": "Other"}, token)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "Team name already taken.", body["message"])
	})

	t.Run("404 for an unknown team", func(t *testing.T) {
		resp, _ := env.do(http.MethodPut, "/teams/update/missing", map[string]interface{}{"name": "X"}, token)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCreateTeamNotifiesAdmins(t *testing.T) {
	env := setup(t)
	creator := env.createUser("Creator", "creator@x.com", models.RoleAdmin)
	other := env.createUser("Other", "other@x.com", models.RoleAdmin)
	env.createUser("Manager", "manager@x.com", models.RoleManager)

	resp, _ := env.do(http.MethodPost, "/teams/create", map[string]interface{}{"name": "Core"}, env.token(creator))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var notifications []models.Notification
	require.NoError(t, env.db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, other.ID, notifications[0].UserID)
	assert.Equal(t, `New team "Core" has been created by Creator`, notifications[0].Message)
}

func TestUnknownRoute(t *testing.T) {
	env := setup(t)

	resp, body := env.do(http.MethodGet, "/nothing/here", nil, "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Route not found", body["message"])
	assert.Equal(t, false, body["success"])
}
