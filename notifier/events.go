package notifier

// Event is one of the domain changes that fan out notifications. The set is
// closed: only types in this package implement it.
type Event interface {
	event()
}

type ProjectCreated struct {
	ProjectID string
	ActorID   string
}

type ProjectStatusChanged struct {
	ProjectID string
	NewStatus string
	ActorID   string
}

// ProjectDeleted must be sent while the project row still exists.
type ProjectDeleted struct {
	ProjectID string
	ActorID   string
}

type TeamCreated struct {
	TeamID  string
	ActorID string
}

type MemberJoined struct {
	TeamID string
	UserID string
}

type MemberRemoved struct {
	TeamID  string
	UserID  string
	ActorID string
}

type MemberRoleChanged struct {
	TeamID  string
	UserID  string
	NewRole string
	ActorID string
}

type TaskAssigned struct {
	TaskID     string
	AssigneeID string
	ActorID    string
}

type TaskStatusChanged struct {
	TaskID    string
	NewStatus string
	ActorID   string
}

// TaskDeleted carries the title because the task is gone by the time it is sent.
type TaskDeleted struct {
	TaskTitle  string
	AssigneeID string
	ActorID    string
}

type CommentCreated struct {
	TaskID  string
	ActorID string
}

type CommentDeleted struct {
	TaskID     string
	AssigneeID string
	ActorID    string
}

func (ProjectCreated) event()       {}
func (ProjectStatusChanged) event() {}
func (ProjectDeleted) event()       {}
func (TeamCreated) event()          {}
func (MemberJoined) event()         {}
func (MemberRemoved) event()        {}
func (MemberRoleChanged) event()    {}
func (TaskAssigned) event()         {}
func (TaskStatusChanged) event()    {}
func (TaskDeleted) event()          {}
func (CommentCreated) event()       {}
func (CommentDeleted) event()       {}
