package controller_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/models"
)

func TestCreateProject(t *testing.T) {
	env := setup(t)
	manager := env.createUser("Manager", "manager@x.com", models.RoleManager)
	alice := env.createUser("Alice", "alice@x.com", models.RoleMember)
	bob := env.createUser("Bob", "bob@x.com", models.RoleMember)
	team := env.createTeam("Core", manager.ID)
	for _, u := range []models.User{manager, alice, bob} {
		env.addMember(team.ID, u.ID)
	}
	token := env.token(manager)

	payload := map[string]interface{}{
		"team_id":  team.ID,
		"name":     "Launch",
		"status":   "planning",
		"deadline": "2030-06-01",
	}

	t.Run("notifies every other team member", func(t *testing.T) {
		resp, body := env.do(http.MethodPost, "/projects/create", payload, token)

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		data := dataOf(t, body)
		assert.Equal(t, "Launch", data["name"])
		assert.Equal(t, team.ID, data["team"].(map[string]interface{})["id"])

		var recipients []string
		require.NoError(t, env.db.Model(&models.Notification{}).Pluck("user_id", &recipients).Error)
		assert.ElementsMatch(t, []string{alice.ID, bob.ID}, recipients)
	})

	t.Run("409 for a duplicate name in the team", func(t *testing.T) {
		resp, body := env.do(http.MethodPost, "/projects/create", payload, token)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "Project with this name already exists in the team", body["message"])
	})

	t.Run("404 for an unknown team", func(t *testing.T) {
		resp, body := env.do(http.MethodPost, "/projects/create", map[string]interface{}{
			"team_id":  "00000000-0000-4000-8000-000000000000",
			"name":     "Orphan",
			"status":   "planning",
			"deadline": "2030-06-01",
		}, token)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Team not found", body["message"])
	})

	t.Run("422 for an unknown status and a bad deadline", func(t *testing.T) {
		resp, body := env.do(http.MethodPost, "/projects/create", map[string]interface{}{
			"team_id":  team.ID,
			"name":     "Broken",
			"status":   "archived",
			"deadline": "next week",
		}, token)

		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, []string{"status", "deadline"}, errorFields(body))
	})
}

func TestUpdateProject(t *testing.T) {
	env := setup(t)
	manager := env.createUser("Manager", "manager@x.com", models.RoleManager)
	alice := env.createUser("Alice", "alice@x.com", models.RoleMember)
	team := env.createTeam("Core", manager.ID)
	env.addMember(team.ID, manager.ID)
	env.addMember(team.ID, alice.ID)
	project := env.createProject(team.ID, "Launch")
	token := env.token(manager)

	t.Run("422 for an empty body", func(t *testing.T) {
		resp, body := env.do(http.MethodPut, "/projects/update/"+project.ID, map[string]interface{}{}, token)

		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, []string{"body"}, errorFields(body))
	})

	t.Run("a status change reaches the whole team", func(t *testing.T) {
		resp, body := env.do(http.MethodPut, "/projects/update/"+project.ID, map[string]interface{}{"status": "in_progress"}, token)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "in_progress", dataOf(t, body)["status"])
		assert.Equal(t, "Launch", dataOf(t, body)["name"])
		assert.EqualValues(t, 2, env.count(&models.Notification{}, ""))
	})

	t.Run("an unchanged status sends nothing", func(t *testing.T) {
		before := env.count(&models.Notification{}, "")

		resp, _ := env.do(http.MethodPut, "/projects/update/"+project.ID, map[string]interface{}{"status": "in_progress"}, token)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, before, env.count(&models.Notification{}, ""))
	})
}

func TestDeleteProject(t *testing.T) {
	env := setup(t)
	manager := env.createUser("Manager", "manager@x.com", models.RoleManager)
	alice := env.createUser("Alice", "alice@x.com", models.RoleMember)
	team := env.createTeam("Core", manager.ID)
	env.addMember(team.ID, manager.ID)
	env.addMember(team.ID, alice.ID)
	project := env.createProject(team.ID, "Launch")
	task := env.createTask(project.ID, alice.ID, "Ship", models.TaskTodo)
	require.NoError(t, env.db.Create(&models.Comment{TaskID: task.ID, UserID: alice.ID, Content: "ok"}).Error)

	resp, body := env.do(http.MethodDelete, "/projects/delete/"+project.ID, nil, env.token(manager))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Project deleted successfully", body["message"])
	assert.EqualValues(t, 0, env.count(&models.Project{}, ""))
	assert.EqualValues(t, 0, env.count(&models.Task{}, ""))
	assert.EqualValues(t, 0, env.count(&models.Comment{}, ""))
	assert.EqualValues(t, 1, env.count(&models.Team{}, ""))

	var messages []string
	require.NoError(t, env.db.Model(&models.Notification{}).Pluck("message", &messages).Error)
	require.Len(t, messages, 2)
	assert.Equal(t, `Project "Launch" has been deleted by Manager`, messages[0])
}
