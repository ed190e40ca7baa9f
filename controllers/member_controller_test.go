package controller_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/models"
)

func TestMembers(t *testing.T) {
	env := setup(t)
	manager := env.createUser("Manager", "manager@x.com", models.RoleManager)
	alice := env.createUser("Alice", "alice@x.com", models.RoleMember)
	team := env.createTeam("Core", manager.ID)
	token := env.token(manager)

	resp, body := env.do(http.MethodPost, "/members/create", map[string]interface{}{
		"team_id": team.ID,
		"user_id": alice.ID,
		"role":    "member",
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Member added to team successfully", body["message"])
	member := dataOf(t, body)
	assert.Equal(t, "Core", member["team"].(map[string]interface{})["name"])
	assert.Equal(t, "Alice", member["user"].(map[string]interface{})["name"])
	id := member["id"].(string)

	var welcome models.Notification
	require.NoError(t, env.db.First(&welcome, "user_id = ?", alice.ID).Error)
	assert.Equal(t, `Welcome to team "Core"! Check out your assigned tasks and projects.`, welcome.Message)

	t.Run("409 for a second membership", func(t *testing.T) {
		resp, body := env.do(http.MethodPost, "/members/create", map[string]interface{}{
			"team_id": team.ID,
			"user_id": alice.ID,
			"role":    "lead",
		}, token)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "User is already a member of this team", body["message"])
	})

	t.Run("404 for an unknown user", func(t *testing.T) {
		resp, body := env.do(http.MethodPost, "/members/create", map[string]interface{}{
			"team_id": team.ID,
			"user_id": "00000000-0000-4000-8000-000000000000",
			"role":    "member",
		}, token)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "User not found", body["message"])
	})

	t.Run("searches by user name", func(t *testing.T) {
		_, body := env.do(http.MethodGet, "/members/all?search=ali", nil, token)
		assert.EqualValues(t, 1, body["totalData"])

		_, body = env.do(http.MethodGet, "/members/all?search=nobody", nil, token)
		assert.EqualValues(t, 0, body["totalData"])
	})

	t.Run("a role change notifies the member", func(t *testing.T) {
		resp, body := env.do(http.MethodPut, "/members/update/"+id, map[string]interface{}{"role": "lead"}, token)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "lead", dataOf(t, body)["role"])
		assert.EqualValues(t, 1, env.count(&models.Notification{}, "message LIKE ?", "Your role in team%"))
	})

	t.Run("removal notifies the member", func(t *testing.T) {
		resp, body := env.do(http.MethodDelete, "/members/delete/"+id, nil, token)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Member deleted successfully", body["message"])
		assert.EqualValues(t, 0, env.count(&models.TeamMember{}, ""))
		assert.EqualValues(t, 1, env.count(&models.Notification{}, "message = ?", `You have been removed from team "Core" by Manager`))
	})
}
