package notifier

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/models"
	"projecthub/utils"
)

const unknownActor = "someone"

// Notifier writes in-app notifications for domain events. Delivery is
// best-effort: every failure is logged and swallowed so the triggering request
// never fails because of it.
type Notifier struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func New(db *gorm.DB, logger *logrus.Entry) *Notifier {
	return &Notifier{
		DB:     db,
		Logger: logger,
	}
}

// Notify resolves the recipients and message for ev and inserts one
// notification per recipient.
func (n *Notifier) Notify(ctx context.Context, ev Event) {
	if n == nil || n.DB == nil {
		return
	}
	db := n.DB.WithContext(ctx)

	switch e := ev.(type) {
	case ProjectCreated:
		project, ok := n.project(db, e.ProjectID)
		if !ok {
			return
		}
		msg := fmt.Sprintf("New project %q has been created by %s", project.Name, n.actorName(db, e.ActorID))
		n.send(db, e, without(n.teamMemberIDs(db, project.TeamID), e.ActorID), msg)

	case ProjectStatusChanged:
		project, ok := n.project(db, e.ProjectID)
		if !ok {
			return
		}
		msg := fmt.Sprintf("Project %q status changed to %s by %s", project.Name, e.NewStatus, n.actorName(db, e.ActorID))
		n.send(db, e, n.teamMemberIDs(db, project.TeamID), msg)

	case ProjectDeleted:
		project, ok := n.project(db, e.ProjectID)
		if !ok {
			return
		}
		msg := fmt.Sprintf("Project %q has been deleted by %s", project.Name, n.actorName(db, e.ActorID))
		n.send(db, e, n.teamMemberIDs(db, project.TeamID), msg)

	case TeamCreated:
		team, ok := n.team(db, e.TeamID)
		if !ok {
			return
		}
		var admins []string
		if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Pluck("id", &admins).Error; err != nil {
			n.logFailure(e, "lookup admins", err)
			return
		}
		msg := fmt.Sprintf("New team %q has been created by %s", team.Name, n.actorName(db, e.ActorID))
		n.send(db, e, without(admins, e.ActorID), msg)

	case MemberJoined:
		team, ok := n.team(db, e.TeamID)
		if !ok {
			return
		}
		msg := fmt.Sprintf("Welcome to team %q! Check out your assigned tasks and projects.", team.Name)
		n.send(db, e, []string{e.UserID}, msg)

	case MemberRemoved:
		team, ok := n.team(db, e.TeamID)
		if !ok {
			return
		}
		msg := fmt.Sprintf("You have been removed from team %q by %s", team.Name, n.actorName(db, e.ActorID))
		n.send(db, e, []string{e.UserID}, msg)

	case MemberRoleChanged:
		team, ok := n.team(db, e.TeamID)
		if !ok {
			return
		}
		msg := fmt.Sprintf("Your role in team %q has been changed to %s by %s", team.Name, e.NewRole, n.actorName(db, e.ActorID))
		n.send(db, e, []string{e.UserID}, msg)

	case TaskAssigned:
		task, ok := n.task(db, e.TaskID)
		if !ok {
			return
		}
		msg := fmt.Sprintf("You have been assigned a new task: %q by %s", task.Title, n.actorName(db, e.ActorID))
		n.send(db, e, []string{e.AssigneeID}, msg)

	case TaskStatusChanged:
		task, ok := n.task(db, e.TaskID)
		if !ok {
			return
		}
		recipients := []string{task.AssignTo}
		var project models.Project
		if err := db.Select("id", "team_id").First(&project, "id = ?", task.ProjectID).Error; err != nil {
			n.logFailure(e, "lookup project", err)
		} else {
			recipients = append(recipients, n.teamMemberIDs(db, project.TeamID)...)
		}
		msg := fmt.Sprintf("Task %q status changed to %s by %s", task.Title, e.NewStatus, n.actorName(db, e.ActorID))
		n.send(db, e, dedupe(recipients), msg)

	case TaskDeleted:
		msg := fmt.Sprintf("Task %q has been deleted by %s", e.TaskTitle, n.actorName(db, e.ActorID))
		n.send(db, e, []string{e.AssigneeID}, msg)

	case CommentCreated:
		task, ok := n.task(db, e.TaskID)
		if !ok || task.AssignTo == e.ActorID {
			return
		}
		msg := fmt.Sprintf("%s commented on task: %q", n.actorName(db, e.ActorID), task.Title)
		n.send(db, e, []string{task.AssignTo}, msg)

	case CommentDeleted:
		if e.AssigneeID == e.ActorID {
			return
		}
		task, ok := n.task(db, e.TaskID)
		if !ok {
			return
		}
		msg := fmt.Sprintf("A comment on task %q has been deleted by %s", task.Title, n.actorName(db, e.ActorID))
		n.send(db, e, []string{e.AssigneeID}, msg)

	default:
		n.Logger.WithField("event", fmt.Sprintf("%T", ev)).Warn("Unhandled notification event")
	}
}

// send inserts one row per recipient. Each insert stands alone; a failure is
// logged and the loop moves on.
func (n *Notifier) send(db *gorm.DB, ev Event, recipients []string, message string) {
	delivered := 0
	for _, userID := range recipients {
		if userID == "" {
			continue
		}
		notification := models.Notification{UserID: userID, Message: message}
		if err := db.Create(&notification).Error; err != nil {
			n.logFailure(ev, "create notification", err)
			continue
		}
		delivered++
	}

	utils.LogEvent("notifier", "notifications_sent", map[string]interface{}{
		"event":      fmt.Sprintf("%T", ev),
		"recipients": len(recipients),
		"delivered":  delivered,
	})
}

func (n *Notifier) actorName(db *gorm.DB, userID string) string {
	if userID == "" {
		return unknownActor
	}
	var user models.User
	if err := db.Select("id", "name").First(&user, "id = ?", userID).Error; err != nil || user.Name == "" {
		return unknownActor
	}
	return user.Name
}

func (n *Notifier) teamMemberIDs(db *gorm.DB, teamID string) []string {
	var ids []string
	if err := db.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Pluck("user_id", &ids).Error; err != nil {
		n.Logger.WithError(err).WithField("team_id", teamID).Error("Failed to load team members")
		return nil
	}
	return ids
}

func (n *Notifier) project(db *gorm.DB, id string) (models.Project, bool) {
	var project models.Project
	if err := db.First(&project, "id = ?", id).Error; err != nil {
		n.Logger.WithError(err).WithField("project_id", id).Warn("Project lookup failed")
		return project, false
	}
	return project, true
}

func (n *Notifier) team(db *gorm.DB, id string) (models.Team, bool) {
	var team models.Team
	if err := db.First(&team, "id = ?", id).Error; err != nil {
		n.Logger.WithError(err).WithField("team_id", id).Warn("Team lookup failed")
		return team, false
	}
	return team, true
}

func (n *Notifier) task(db *gorm.DB, id string) (models.Task, bool) {
	var task models.Task
	if err := db.First(&task, "id = ?", id).Error; err != nil {
		n.Logger.WithError(err).WithField("task_id", id).Warn("Task lookup failed")
		return task, false
	}
	return task, true
}

func (n *Notifier) logFailure(ev Event, step string, err error) {
	n.Logger.WithError(err).WithFields(logrus.Fields{
		"event": fmt.Sprintf("%T", ev),
		"step":  step,
	}).Error("Notification delivery failed")
}

func without(ids []string, exclude string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != exclude {
			out = append(out, id)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
